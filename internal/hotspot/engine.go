package hotspot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadwatch/roadwatch/internal/report"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

// ErrNoReportSource indicates RebuildAll was called on an engine constructed
// without a report source.
var ErrNoReportSource = errors.New("no report source configured")

// ReportSource supplies the full report history for rebuilds.
type ReportSource interface {
	ListAllOrdered(ctx context.Context) ([]*report.Report, error)
}

// EngineConfig holds configuration for the hotspot engine.
type EngineConfig struct {
	// Store is the geospatial store adapter (required).
	Store Store

	// Reports supplies report history for RebuildAll (optional).
	Reports ReportSource

	// Config is the hotspot policy; zero fields take defaults.
	Config Config

	// Logger for engine operations.
	Logger zerolog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine maintains hotspot state and answers proximity queries over it.
// Hotspots are derived state: Evaluate is an incremental optimization over the
// ground truth that RebuildAll recomputes from the full report history.
type Engine struct {
	store   Store
	reports ReportSource
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time
}

// NewEngine creates a new hotspot engine.
func NewEngine(cfg EngineConfig) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		store:   cfg.Store,
		reports: cfg.Reports,
		cfg:     cfg.Config.withDefaults(),
		logger:  cfg.Logger,
		now:     now,
	}
}

// Config returns the active hotspot policy.
func (e *Engine) Config() Config {
	return e.cfg
}

// Evaluate attributes a report to a hotspot and recomputes the affected
// hotspot's derived state. Reports without a location are ignored.
// Re-evaluating the same report is a no-op: attribution is tracked per report
// ID, so counts never double.
func (e *Engine) Evaluate(ctx context.Context, r *report.Report) error {
	if r.Location == nil {
		return nil
	}
	if err := r.Location.Validate(); err != nil {
		return err
	}

	result, err := e.store.AttributeReport(ctx, Member{
		ReportID:   r.ReportID,
		Point:      *r.Location,
		Severity:   r.Severity,
		OccurredAt: r.OccurredAt,
	}, e.cfg.AttributionRadiusKM)
	if err != nil {
		return err
	}
	if result.Duplicate {
		return nil
	}

	if err := e.recompute(ctx, result.HotspotID); err != nil {
		return err
	}

	e.logger.Debug().
		Str("report_id", r.ReportID).
		Str("hotspot_id", result.HotspotID.String()).
		Bool("created", result.Created).
		Msg("report attributed to hotspot")

	return nil
}

// recompute rederives a hotspot's centroid, counts, severity score and risk
// level from its attributed members.
func (e *Engine) recompute(ctx context.Context, hotspotID uuid.UUID) error {
	members, err := e.store.Members(ctx, hotspotID)
	if err != nil {
		return err
	}

	var (
		sumLat, sumLon float64
		weightSum      float64
		dangerous      int
		recent         int
		last           time.Time
	)

	lookback := e.now().AddDate(0, 0, -e.cfg.LookbackWindowDays)

	for _, m := range members {
		sumLat += m.Point.Lat
		sumLon += m.Point.Lon
		weightSum += severityWeight(m.Severity)
		if m.Severity == report.SeverityDangerous {
			dangerous++
		}
		if !m.OccurredAt.Before(lookback) {
			recent++
		}
		if m.OccurredAt.After(last) {
			last = m.OccurredAt
		}
	}

	n := len(members)
	h := &Hotspot{
		ID:             hotspotID,
		Center:         geo.Point{Lat: sumLat / float64(n), Lon: sumLon / float64(n)},
		AccidentCount:  n,
		DangerousCount: dangerous,
		SeverityScore:  weightSum / float64(n),
		LastAccidentAt: last,
		UpdatedAt:      e.now().UTC(),
	}
	h.RiskLevel = e.RiskLevelFor(recent, h.SeverityScore)

	return e.store.UpdateDerived(ctx, h)
}

// RiskLevelFor classifies a hotspot from its accident count within the
// lookback window and its severity-weighted score. Deterministic thresholding;
// all cutoffs come from Config.
func (e *Engine) RiskLevelFor(recencyWeightedCount int, severityScore float64) RiskLevel {
	// The severity score only counts once a cluster has enough members;
	// a lone dangerous report is not yet a pattern.
	scored := recencyWeightedCount >= e.cfg.MinClusterSize

	switch {
	case recencyWeightedCount >= e.cfg.ThresholdHigh || (scored && severityScore >= e.cfg.SeverityScoreHigh):
		return RiskHigh
	case recencyWeightedCount >= e.cfg.ThresholdMedium || (scored && severityScore >= e.cfg.SeverityScoreMedium):
		return RiskMedium
	default:
		return RiskLow
	}
}

// ListAll returns a full snapshot of all hotspots.
func (e *Engine) ListAll(ctx context.Context) ([]*Hotspot, error) {
	return e.store.ListAll(ctx)
}

// WithinRadius returns hotspots within radiusKM of p, ordered by ascending
// geodesic distance, ties broken by ID.
func (e *Engine) WithinRadius(ctx context.Context, p geo.Point, radiusKM float64) ([]WithDistance, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return e.store.WithinRadius(ctx, p, radiusKM)
}

// Nearest returns the closest hotspot to p, or nil when no hotspots exist.
func (e *Engine) Nearest(ctx context.Context, p geo.Point) (*WithDistance, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	all, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	var best *WithDistance
	for _, h := range all {
		d := geo.Distance(p, h.Center)
		if best == nil || d < best.DistanceKM ||
			(d == best.DistanceKM && h.ID.String() < best.Hotspot.ID.String()) {
			best = &WithDistance{Hotspot: h, DistanceKM: d}
		}
	}
	return best, nil
}

// RebuildAll reconstructs all hotspot state from the full report history.
// This is the repair path after any suspected inconsistency; incremental
// evaluation is an optimization over this ground truth.
func (e *Engine) RebuildAll(ctx context.Context) error {
	if e.reports == nil {
		return ErrNoReportSource
	}

	history, err := e.reports.ListAllOrdered(ctx)
	if err != nil {
		return err
	}

	if err := e.store.Reset(ctx); err != nil {
		return err
	}

	rebuilt := 0
	for _, r := range history {
		if r.Location == nil {
			continue
		}
		if err := e.Evaluate(ctx, r); err != nil {
			return err
		}
		rebuilt++
	}

	e.logger.Info().
		Int("reports", rebuilt).
		Msg("hotspot state rebuilt from report history")

	return nil
}
