package models

// RouteRequest asks for risk-ranked route alternatives between two points.
type RouteRequest struct {
	Origin      Point `json:"origin"`
	Destination Point `json:"destination"`

	// AvoidHighRisk drops routes crossing high-risk hotspots when a clean
	// alternative exists.
	AvoidHighRisk bool `json:"avoidHighRisk"`
}

// ScoredRouteResponse is one route alternative annotated with hotspot
// exposure.
type ScoredRouteResponse struct {
	GeometryPolyline string                `json:"geometryPolyline"`
	DistanceMeters   int                   `json:"distanceMeters"`
	DurationSeconds  int                   `json:"durationSeconds"`
	Summary          string                `json:"summary,omitempty"`
	HighRiskCount    int                   `json:"highRiskCount"`
	MediumRiskCount  int                   `json:"mediumRiskCount"`
	Hotspots         []HotspotWithDistance `json:"hotspots"`
	Recommended      bool                  `json:"recommended"`
}

// RouteResponse is the outcome of a safe-route computation. Degraded is true
// when hotspot data was unavailable and routes are returned unscored.
type RouteResponse struct {
	Routes     []ScoredRouteResponse `json:"routes"`
	Degraded   bool                  `json:"degraded"`
	ComputedAt Timestamp             `json:"computedAt"`
}
