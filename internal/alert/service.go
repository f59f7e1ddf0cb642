// Package alert decides whether a live position warrants a risk-zone warning
// based on nearby hotspot state and current weather.
package alert

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadwatch/roadwatch/internal/hotspot"
	"github.com/roadwatch/roadwatch/internal/weather"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

// Verdict is the outcome of an alert check. It is transient: computed per
// request, never persisted.
type Verdict struct {
	// InRiskZone is true when the position is inside or near a hotspot that
	// the policy considers dangerous right now.
	InRiskZone bool

	// NearestHotspotID and DistanceKM describe the closest known hotspot,
	// set even when the verdict is pass so callers can render proximity.
	NearestHotspotID *uuid.UUID
	DistanceKM       float64

	// RiskLevel is the risk of the triggering hotspot, or of the nearest one
	// when not in a risk zone.
	RiskLevel hotspot.RiskLevel

	// Nearby lists every hotspot inside the effective alert radius, nearest
	// first.
	Nearby []hotspot.WithDistance

	// WeatherCondition is the condition the decision used, when any.
	WeatherCondition string
}

// Config holds the alert policy.
type Config struct {
	// AlertRadiusKM is the base radius within which hotspots trigger alerts
	// (default: 1.0).
	AlertRadiusKM float64

	// WeatherMultipliers scales the alert radius for medium-risk hotspots by
	// weather condition, matched as a lowercase substring. Conditions not
	// listed use a multiplier of 1. Defaults: rain 1.5, fog 1.5, snow 2.0.
	WeatherMultipliers map[string]float64

	// WeatherTimeout bounds the optional current-conditions lookup
	// (default: 2 seconds).
	WeatherTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.AlertRadiusKM <= 0 {
		c.AlertRadiusKM = 1.0
	}
	if c.WeatherMultipliers == nil {
		c.WeatherMultipliers = map[string]float64{
			"rain": 1.5,
			"fog":  1.5,
			"snow": 2.0,
		}
	}
	if c.WeatherTimeout == 0 {
		c.WeatherTimeout = 2 * time.Second
	}
	return c
}

// HotspotSource is the view of the hotspot engine the alert service needs.
type HotspotSource interface {
	WithinRadius(ctx context.Context, p geo.Point, radiusKM float64) ([]hotspot.WithDistance, error)
	Nearest(ctx context.Context, p geo.Point) (*hotspot.WithDistance, error)
}

// WeatherSource supplies current conditions when the caller sends none.
type WeatherSource interface {
	CurrentConditions(ctx context.Context, p geo.Point) (*weather.Observation, error)
}

// ServiceConfig holds configuration for the alert service.
type ServiceConfig struct {
	// Hotspots is the hotspot engine (required).
	Hotspots HotspotSource

	// Weather supplies conditions when the request omits them (optional).
	Weather WeatherSource

	// Config is the alert policy; zero fields take defaults.
	Config Config

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service implements the alert decision policy. Check is a pure read: no side
// effects beyond logging.
type Service struct {
	hotspots HotspotSource
	weather  WeatherSource
	cfg      Config
	logger   zerolog.Logger
}

// NewService creates a new alert service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		hotspots: cfg.Hotspots,
		weather:  cfg.Weather,
		cfg:      cfg.Config.withDefaults(),
		logger:   cfg.Logger,
	}
}

// Check evaluates a live position against the hotspot set.
//
// Policy: any high-risk hotspot within the base alert radius triggers,
// regardless of weather. Medium-risk hotspots trigger within a radius scaled
// by the weather multiplier, so adverse conditions widen the warning zone.
// The verdict always carries the nearest known hotspot and its distance.
func (s *Service) Check(ctx context.Context, p geo.Point, weatherCondition string) (*Verdict, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	condition := s.resolveWeather(ctx, p, weatherCondition)
	multiplier := s.weatherMultiplier(condition)
	effectiveRadius := s.cfg.AlertRadiusKM * multiplier

	nearby, err := s.hotspots.WithinRadius(ctx, p, effectiveRadius)
	if err != nil {
		return nil, err
	}

	verdict := &Verdict{
		Nearby:           nearby,
		WeatherCondition: condition,
	}

	for _, wd := range nearby {
		switch wd.Hotspot.RiskLevel {
		case hotspot.RiskHigh:
			if wd.DistanceKM <= s.cfg.AlertRadiusKM {
				s.trigger(verdict, wd)
			}
		case hotspot.RiskMedium:
			s.trigger(verdict, wd)
		}
		if verdict.InRiskZone {
			break
		}
	}

	if err := s.fillNearest(ctx, p, verdict); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Float64("lat", p.Lat).
		Float64("lon", p.Lon).
		Str("weather", condition).
		Bool("in_risk_zone", verdict.InRiskZone).
		Int("nearby_hotspots", len(nearby)).
		Msg("alert check evaluated")

	return verdict, nil
}

func (s *Service) trigger(v *Verdict, wd hotspot.WithDistance) {
	v.InRiskZone = true
	id := wd.Hotspot.ID
	v.NearestHotspotID = &id
	v.DistanceKM = wd.DistanceKM
	v.RiskLevel = wd.Hotspot.RiskLevel
}

// fillNearest sets the nearest-hotspot fields when no hotspot triggered, so
// callers can always render "closest known hotspot is N km away".
func (s *Service) fillNearest(ctx context.Context, p geo.Point, v *Verdict) error {
	if v.NearestHotspotID != nil {
		return nil
	}

	nearest, err := s.hotspots.Nearest(ctx, p)
	if err != nil {
		return err
	}
	if nearest == nil {
		return nil
	}

	id := nearest.Hotspot.ID
	v.NearestHotspotID = &id
	v.DistanceKM = nearest.DistanceKM
	v.RiskLevel = nearest.Hotspot.RiskLevel
	return nil
}

// resolveWeather returns the caller-supplied condition, falling back to a
// bounded lookup against the weather service. A lookup failure degrades to
// no-weather; it never fails the check.
func (s *Service) resolveWeather(ctx context.Context, p geo.Point, condition string) string {
	if condition != "" || s.weather == nil {
		return condition
	}

	wctx, cancel := context.WithTimeout(ctx, s.cfg.WeatherTimeout)
	defer cancel()

	obs, err := s.weather.CurrentConditions(wctx, p)
	if err != nil {
		s.logger.Warn().Err(err).Msg("weather lookup failed, checking without weather context")
		return ""
	}
	return obs.Description
}

func (s *Service) weatherMultiplier(condition string) float64 {
	if condition == "" {
		return 1.0
	}

	lower := strings.ToLower(condition)
	multiplier := 1.0
	for key, m := range s.cfg.WeatherMultipliers {
		if strings.Contains(lower, key) && m > multiplier {
			multiplier = m
		}
	}
	return multiplier
}

// ReportFalseAlert acknowledges a false-alert report. The feedback is logged
// for later model improvement; nothing is persisted yet.
func (s *Service) ReportFalseAlert(_ context.Context, alertID, reason string) {
	s.logger.Info().
		Str("alert_id", alertID).
		Str("reason", reason).
		Msg("false alert feedback received")
}
