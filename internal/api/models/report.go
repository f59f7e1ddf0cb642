package models

// ReportCreateRequest is the payload for filing an accident report.
// Location is optional: dispatchers sometimes file before coordinates are
// known. Lat and Lon must be sent together.
type ReportCreateRequest struct {
	Location         *Point    `json:"location" validate:"omitempty"`
	OccurredAt       Timestamp `json:"occurredAt"`
	Severity         string    `json:"severity" validate:"required,oneof=minor major dangerous"`
	WeatherCondition string    `json:"weatherCondition"`
	VehicleCount     int       `json:"vehicleCount" validate:"gte=0"`
	Description      string    `json:"description" validate:"max=2000"`
}

// ReportResponse describes a filed accident report.
type ReportResponse struct {
	ID               string    `json:"id"`
	ReportID         string    `json:"reportId"`
	OfficerID        string    `json:"officerId"`
	Location         *Point    `json:"location,omitempty"`
	OccurredAt       Timestamp `json:"occurredAt"`
	Severity         string    `json:"severity"`
	WeatherCondition string    `json:"weatherCondition,omitempty"`
	VehicleCount     int       `json:"vehicleCount"`
	Description      string    `json:"description,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
}

// ReportListResponse is a page of reports, newest first.
type ReportListResponse struct {
	Items []ReportResponse `json:"items"`
	Count int              `json:"count"`
}
