// Package hotspot maintains risk hotspots: spatial clusters of accident
// history with a derived risk classification. Hotspot state is a materialized
// view over the report history and can be rebuilt from scratch at any time.
package hotspot

import (
	"time"

	"github.com/google/uuid"

	"github.com/roadwatch/roadwatch/internal/report"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

// RiskLevel classifies how dangerous a hotspot is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Hotspot is a spatial cluster of accident reports. All fields except ID are
// derived and recomputed whenever a report is attributed to the cluster.
type Hotspot struct {
	ID uuid.UUID

	// Center is the running centroid of all attributed report locations.
	Center geo.Point

	RiskLevel     RiskLevel
	AccidentCount int

	// DangerousCount is the number of attributed reports with severity
	// "dangerous".
	DangerousCount int

	// SeverityScore is the severity-weighted mean over attributed reports
	// (minor=1, major=3, dangerous=5).
	SeverityScore float64

	LastAccidentAt time.Time
	UpdatedAt      time.Time
}

// WithDistance pairs a hotspot with its distance from a query point.
type WithDistance struct {
	Hotspot    *Hotspot
	DistanceKM float64
}

// Member is a report attributed to a hotspot. The store keeps the fields the
// engine needs to recompute derived state without consulting the report
// repository.
type Member struct {
	ReportID   string
	Point      geo.Point
	Severity   report.Severity
	OccurredAt time.Time
}

// severityWeight mirrors the weighting used for the severity score.
func severityWeight(s report.Severity) float64 {
	switch s {
	case report.SeverityDangerous:
		return 5
	case report.SeverityMajor:
		return 3
	default:
		return 1
	}
}

// Config holds the hotspot policy knobs. Thresholds are configuration, not
// constants, so deployments and tests can tune them independently.
type Config struct {
	// AttributionRadiusKM is the distance within which a new report merges
	// into an existing hotspot instead of spawning one (default: 0.5).
	AttributionRadiusKM float64

	// ThresholdHigh is the recency-weighted accident count at which a hotspot
	// becomes high risk (default: 10).
	ThresholdHigh int

	// ThresholdMedium is the recency-weighted accident count at which a
	// hotspot becomes medium risk (default: 5).
	ThresholdMedium int

	// LookbackWindowDays bounds the recency-weighted count (default: 30).
	LookbackWindowDays int

	// SeverityScoreHigh upgrades a hotspot to high risk regardless of count
	// (default: 4.0).
	SeverityScoreHigh float64

	// SeverityScoreMedium upgrades a hotspot to medium risk regardless of
	// count (default: 2.5).
	SeverityScoreMedium float64

	// MinClusterSize is the member count below which the severity score is
	// ignored for classification (default: 3).
	MinClusterSize int
}

// DefaultConfig returns the default hotspot policy.
func DefaultConfig() Config {
	return Config{
		AttributionRadiusKM: 0.5,
		ThresholdHigh:       10,
		ThresholdMedium:     5,
		LookbackWindowDays:  30,
		SeverityScoreHigh:   4.0,
		SeverityScoreMedium: 2.5,
		MinClusterSize:      3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AttributionRadiusKM <= 0 {
		c.AttributionRadiusKM = d.AttributionRadiusKM
	}
	if c.ThresholdHigh <= 0 {
		c.ThresholdHigh = d.ThresholdHigh
	}
	if c.ThresholdMedium <= 0 {
		c.ThresholdMedium = d.ThresholdMedium
	}
	if c.LookbackWindowDays <= 0 {
		c.LookbackWindowDays = d.LookbackWindowDays
	}
	if c.SeverityScoreHigh <= 0 {
		c.SeverityScoreHigh = d.SeverityScoreHigh
	}
	if c.SeverityScoreMedium <= 0 {
		c.SeverityScoreMedium = d.SeverityScoreMedium
	}
	if c.MinClusterSize <= 0 {
		c.MinClusterSize = d.MinClusterSize
	}
	return c
}
