// Package analytics computes accident statistics for dashboards. All
// aggregations are computed per call from the report history; nothing is
// cached or precomputed.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadwatch/roadwatch/internal/report"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

// Lookback windows, in days.
const (
	severityWindowDays = 30
	hourlyWindowDays   = 7
	trendWindowDays    = 30
	heatmapWindowDays  = 90
)

// SeverityCount is the number of reports at one severity level.
type SeverityCount struct {
	Severity report.Severity `json:"severity"`
	Count    int             `json:"count"`
}

// HourCount is the number of reports in one hour of day (0-23, UTC).
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// TrendPoint is one day of the accident trend.
type TrendPoint struct {
	// Date is the UTC calendar day in YYYY-MM-DD form.
	Date  string `json:"date"`
	Count int    `json:"count"`

	// DangerRate is the fraction of that day's reports marked dangerous,
	// 0 when the day has no reports.
	DangerRate float64 `json:"danger_rate"`
}

// HeatmapPoint is a geotagged accident for map rendering.
type HeatmapPoint struct {
	Location geo.Point       `json:"location"`
	Severity report.Severity `json:"severity"`
	Weight   int             `json:"weight"`
}

// Summary bundles the dashboard statistics.
type Summary struct {
	TodayCount           int             `json:"today_count"`
	SeverityDistribution []SeverityCount `json:"severity_distribution"`
	HourlyDistribution   []HourCount     `json:"hourly_distribution"`
	GeneratedAt          time.Time       `json:"generated_at"`
}

// ReportSource is the report history view the analytics service reads.
type ReportSource interface {
	ListSince(ctx context.Context, since time.Time) ([]*report.Report, error)
}

// ServiceConfig holds configuration for the analytics service.
type ServiceConfig struct {
	// Reports is the report history (required).
	Reports ReportSource

	// Logger for service operations.
	Logger zerolog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service computes accident statistics.
type Service struct {
	reports ReportSource
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a new analytics service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		reports: cfg.Reports,
		logger:  cfg.Logger,
		now:     now,
	}
}

// TodayCount returns the number of reports that occurred during the current
// UTC calendar day.
func (s *Service) TodayCount(ctx context.Context) (int, error) {
	start := startOfDay(s.now().UTC())
	reports, err := s.reports.ListSince(ctx, start)
	if err != nil {
		return 0, err
	}
	return len(reports), nil
}

// SeverityDistribution returns report counts per severity over the last 30
// days. Every severity level is present, zero-filled.
func (s *Service) SeverityDistribution(ctx context.Context) ([]SeverityCount, error) {
	reports, err := s.window(ctx, severityWindowDays)
	if err != nil {
		return nil, err
	}

	counts := make(map[report.Severity]int)
	for _, r := range reports {
		counts[r.Severity]++
	}

	out := make([]SeverityCount, 0, len(report.Severities()))
	for _, sev := range report.Severities() {
		out = append(out, SeverityCount{Severity: sev, Count: counts[sev]})
	}
	return out, nil
}

// HourlyDistribution returns report counts per UTC hour of day over the last
// 7 days. All 24 hours are present, ascending, zero-filled.
func (s *Service) HourlyDistribution(ctx context.Context) ([]HourCount, error) {
	reports, err := s.window(ctx, hourlyWindowDays)
	if err != nil {
		return nil, err
	}

	out := make([]HourCount, 24)
	for h := range out {
		out[h].Hour = h
	}
	for _, r := range reports {
		out[r.OccurredAt.UTC().Hour()].Count++
	}
	return out, nil
}

// Trend returns per-day report counts and danger rates over the last 30 days,
// oldest day first. Only days with at least one report appear; an empty
// window yields an empty series.
func (s *Service) Trend(ctx context.Context) ([]TrendPoint, error) {
	reports, err := s.window(ctx, trendWindowDays)
	if err != nil {
		return nil, err
	}

	type dayStats struct {
		count     int
		dangerous int
	}
	days := make(map[string]*dayStats)
	for _, r := range reports {
		key := r.OccurredAt.UTC().Format(time.DateOnly)
		st := days[key]
		if st == nil {
			st = &dayStats{}
			days[key] = st
		}
		st.count++
		if r.Severity == report.SeverityDangerous {
			st.dangerous++
		}
	}

	out := make([]TrendPoint, 0, len(days))
	for key, st := range days {
		out = append(out, TrendPoint{
			Date:       key,
			Count:      st.count,
			DangerRate: float64(st.dangerous) / float64(st.count),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// HeatmapPoints returns geotagged reports from the last 90 days for map
// rendering. Reports without coordinates are excluded. Weight follows
// severity so dangerous accidents render hotter.
func (s *Service) HeatmapPoints(ctx context.Context) ([]HeatmapPoint, error) {
	reports, err := s.window(ctx, heatmapWindowDays)
	if err != nil {
		return nil, err
	}

	out := make([]HeatmapPoint, 0, len(reports))
	for _, r := range reports {
		if r.Location == nil {
			continue
		}
		out = append(out, HeatmapPoint{
			Location: *r.Location,
			Severity: r.Severity,
			Weight:   severityWeight(r.Severity),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out, nil
}

// Summary bundles today's count and the severity and hourly distributions in
// a single call.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	today, err := s.TodayCount(ctx)
	if err != nil {
		return nil, err
	}
	severity, err := s.SeverityDistribution(ctx)
	if err != nil {
		return nil, err
	}
	hourly, err := s.HourlyDistribution(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TodayCount:           today,
		SeverityDistribution: severity,
		HourlyDistribution:   hourly,
		GeneratedAt:          s.now().UTC(),
	}, nil
}

func (s *Service) window(ctx context.Context, days int) ([]*report.Report, error) {
	since := s.now().UTC().AddDate(0, 0, -days)
	return s.reports.ListSince(ctx, since)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func severityWeight(sev report.Severity) int {
	switch sev {
	case report.SeverityDangerous:
		return 5
	case report.SeverityMajor:
		return 3
	default:
		return 1
	}
}
