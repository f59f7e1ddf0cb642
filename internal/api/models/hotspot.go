package models

// HotspotResponse describes a risk hotspot.
type HotspotResponse struct {
	ID             string    `json:"id"`
	Center         Point     `json:"center"`
	RiskLevel      string    `json:"riskLevel"`
	AccidentCount  int       `json:"accidentCount"`
	DangerousCount int       `json:"dangerousCount"`
	SeverityScore  float64   `json:"severityScore"`
	LastAccidentAt Timestamp `json:"lastAccidentAt"`
	UpdatedAt      Timestamp `json:"updatedAt"`
}

// HotspotWithDistance pairs a hotspot with its distance from a query point
// or route.
type HotspotWithDistance struct {
	HotspotResponse
	DistanceKM float64 `json:"distanceKm"`
}

// HotspotListResponse is a snapshot of known hotspots.
type HotspotListResponse struct {
	Items []HotspotResponse `json:"items"`
	Count int               `json:"count"`
}

// AreaAlertsResponse lists the hotspots within a queried radius, nearest
// first.
type AreaAlertsResponse struct {
	Items    []HotspotWithDistance `json:"items"`
	Count    int                   `json:"count"`
	RadiusKM float64               `json:"radiusKm"`
}
