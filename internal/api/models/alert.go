package models

// AlertCheckRequest is a live-position risk check. WeatherCondition is
// optional: when omitted the server looks up current conditions itself.
type AlertCheckRequest struct {
	Position         Point  `json:"position"`
	WeatherCondition string `json:"weatherCondition"`
}

// AlertCheckResponse is the verdict for an alert check.
type AlertCheckResponse struct {
	InRiskZone       bool                  `json:"inRiskZone"`
	NearestHotspotID *string               `json:"nearestHotspotId,omitempty"`
	DistanceKM       float64               `json:"distanceKm"`
	RiskLevel        string                `json:"riskLevel,omitempty"`
	Nearby           []HotspotWithDistance `json:"nearby"`
	WeatherCondition string                `json:"weatherCondition,omitempty"`
}

// AlertFeedbackRequest reports a false alert so hotspot tuning can be
// reviewed.
type AlertFeedbackRequest struct {
	AlertID string `json:"alertId" validate:"required"`
	Reason  string `json:"reason" validate:"max=500"`
}
