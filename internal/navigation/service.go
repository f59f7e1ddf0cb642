// Package navigation ranks route alternatives by the risk hotspots they pass
// through, so drivers can prefer a slightly longer route over a dangerous one.
package navigation

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadwatch/roadwatch/internal/hotspot"
	"github.com/roadwatch/roadwatch/internal/routing"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

// ScoredRoute is a route alternative annotated with hotspot exposure.
type ScoredRoute struct {
	Route routing.Route

	// HighRiskCount and MediumRiskCount are the hotspots of each level whose
	// center lies within the corridor radius of the route geometry.
	HighRiskCount   int
	MediumRiskCount int

	// Hotspots lists the hotspots the route passes, nearest-to-route
	// distance ascending.
	Hotspots []hotspot.WithDistance

	// Recommended marks the route the ranking selected.
	Recommended bool
}

// Result is the outcome of a safe-route computation.
type Result struct {
	Routes []ScoredRoute

	// Degraded is true when hotspot data could not be loaded and routes are
	// returned unscored, in provider order.
	Degraded bool

	ComputedAt time.Time
}

// RouteSource is the view of the routing service the navigation layer needs.
type RouteSource interface {
	GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error)
}

// HotspotSource lists known hotspots for corridor matching.
type HotspotSource interface {
	ListAll(ctx context.Context) ([]*hotspot.Hotspot, error)
}

// ServiceConfig holds configuration for the navigation service.
type ServiceConfig struct {
	// Routes is the routing service (required).
	Routes RouteSource

	// Hotspots is the hotspot engine (required).
	Hotspots HotspotSource

	// CorridorRadiusKM is how far from the route geometry a hotspot center
	// may lie and still count as "on the route" (default: 0.5).
	CorridorRadiusKM float64

	// MaxAlternatives is how many alternatives to request from the routing
	// provider (default: 2).
	MaxAlternatives int

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service computes risk-ranked route alternatives.
type Service struct {
	routes   RouteSource
	hotspots HotspotSource
	radiusKM float64
	maxAlts  int
	logger   zerolog.Logger
}

// NewService creates a new navigation service.
func NewService(cfg ServiceConfig) *Service {
	radius := cfg.CorridorRadiusKM
	if radius <= 0 {
		radius = 0.5
	}

	maxAlts := cfg.MaxAlternatives
	if maxAlts <= 0 {
		maxAlts = 2
	}

	return &Service{
		routes:   cfg.Routes,
		hotspots: cfg.Hotspots,
		radiusKM: radius,
		maxAlts:  maxAlts,
		logger:   cfg.Logger,
	}
}

// SafeRoutes fetches route alternatives and ranks them by hotspot exposure.
//
// Ranking: fewest high-risk hotspots first, then fewest medium-risk, then
// shortest distance. With avoidHighRisk set, routes crossing a high-risk
// hotspot are dropped as long as at least one clean alternative exists.
// Routing failure is fatal; a hotspot-listing failure degrades to unscored
// routes so the caller still gets somewhere to drive.
func (s *Service) SafeRoutes(ctx context.Context, origin, destination geo.Point, avoidHighRisk bool) (*Result, error) {
	resp, err := s.routes.GetDirections(ctx, routing.DirectionsRequest{
		Origin:          origin,
		Destination:     destination,
		Profile:         routing.ProfileDriving,
		MaxAlternatives: s.maxAlts,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Routes:     make([]ScoredRoute, 0, len(resp.Routes)),
		ComputedAt: time.Now().UTC(),
	}

	spots, err := s.hotspots.ListAll(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("hotspot lookup failed, returning unscored routes")
		result.Degraded = true
		for _, r := range resp.Routes {
			result.Routes = append(result.Routes, ScoredRoute{Route: r})
		}
		if len(result.Routes) > 0 {
			result.Routes[0].Recommended = true
		}
		return result, nil
	}

	for _, r := range resp.Routes {
		result.Routes = append(result.Routes, s.score(r, spots))
	}

	sort.SliceStable(result.Routes, func(i, j int) bool {
		a, b := result.Routes[i], result.Routes[j]
		if a.HighRiskCount != b.HighRiskCount {
			return a.HighRiskCount < b.HighRiskCount
		}
		if a.MediumRiskCount != b.MediumRiskCount {
			return a.MediumRiskCount < b.MediumRiskCount
		}
		return a.Route.DistanceMeters < b.Route.DistanceMeters
	})

	// Prefer routes clear of high-risk hotspots when asked, but never
	// return an empty set: if every candidate crosses one, all come back
	// annotated and the caller decides.
	if avoidHighRisk {
		safe := make([]ScoredRoute, 0, len(result.Routes))
		for _, r := range result.Routes {
			if r.HighRiskCount == 0 {
				safe = append(safe, r)
			}
		}
		if len(safe) > 0 {
			result.Routes = safe
		}
	}

	if len(result.Routes) > 0 {
		result.Routes[0].Recommended = true
	}

	s.logger.Debug().
		Int("route_count", len(result.Routes)).
		Int("hotspot_count", len(spots)).
		Bool("degraded", result.Degraded).
		Msg("safe routes computed")

	return result, nil
}

// score matches a route's geometry against the hotspot set.
func (s *Service) score(r routing.Route, spots []*hotspot.Hotspot) ScoredRoute {
	scored := ScoredRoute{Route: r}

	points := r.Geometry()
	if len(points) == 0 {
		return scored
	}

	for _, h := range spots {
		d := corridorDistance(h.Center, points)
		if d > s.radiusKM {
			continue
		}

		scored.Hotspots = append(scored.Hotspots, hotspot.WithDistance{Hotspot: h, DistanceKM: d})
		switch h.RiskLevel {
		case hotspot.RiskHigh:
			scored.HighRiskCount++
		case hotspot.RiskMedium:
			scored.MediumRiskCount++
		}
	}

	sort.Slice(scored.Hotspots, func(i, j int) bool {
		return scored.Hotspots[i].DistanceKM < scored.Hotspots[j].DistanceKM
	})

	return scored
}

// corridorDistance returns the distance in km from a point to the nearest
// segment of the route geometry.
func corridorDistance(p geo.Point, route []geo.Point) float64 {
	if len(route) == 1 {
		return geo.Distance(p, route[0])
	}

	best := geo.PointSegmentDistance(p, route[0], route[1])
	for i := 1; i < len(route)-1; i++ {
		if d := geo.PointSegmentDistance(p, route[i], route[i+1]); d < best {
			best = d
		}
	}
	return best
}
