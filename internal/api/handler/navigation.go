package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadwatch/roadwatch/internal/api/models"
	"github.com/roadwatch/roadwatch/internal/api/response"
	"github.com/roadwatch/roadwatch/internal/navigation"
	"github.com/roadwatch/roadwatch/internal/routing"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

// NavigationHandler handles safe-route endpoints.
type NavigationHandler struct {
	navigation *navigation.Service
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(nav *navigation.Service) *NavigationHandler {
	return &NavigationHandler{
		navigation: nav,
	}
}

// Route handles POST /v1/navigation/route - risk-ranked route alternatives.
func (h *NavigationHandler) Route(w http.ResponseWriter, r *http.Request) {
	// The routing provider is optional at startup; without it there is
	// nothing to score.
	if h.navigation == nil {
		response.ServiceUnavailable(w, r, "routing is not configured")
		return
	}

	var req models.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, models.ErrPartialPoint) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	origin := geo.Point{Lat: req.Origin.Lat, Lon: req.Origin.Lon}
	destination := geo.Point{Lat: req.Destination.Lat, Lon: req.Destination.Lon}

	result, err := h.navigation.SafeRoutes(r.Context(), origin, destination, req.AvoidHighRisk)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrInvalidLocation):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, routing.ErrNoRouteFound):
			response.NotFound(w, r, "no route found between the given points")
		case errors.Is(err, routing.ErrRateLimitExceeded):
			response.TooManyRequests(w, r, "routing provider rate limit exceeded")
		case errors.Is(err, routing.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "routing provider is unavailable")
		default:
			response.InternalError(w, r, "route computation failed")
		}
		return
	}

	routes := make([]models.ScoredRouteResponse, 0, len(result.Routes))
	for _, sr := range result.Routes {
		routes = append(routes, toScoredRouteResponse(sr))
	}

	response.JSON(w, r, http.StatusOK, models.RouteResponse{
		Routes:     routes,
		Degraded:   result.Degraded,
		ComputedAt: models.Timestamp(result.ComputedAt),
	})
}

func toScoredRouteResponse(sr navigation.ScoredRoute) models.ScoredRouteResponse {
	hotspots := make([]models.HotspotWithDistance, 0, len(sr.Hotspots))
	for _, wd := range sr.Hotspots {
		hotspots = append(hotspots, toHotspotWithDistance(wd))
	}
	return models.ScoredRouteResponse{
		GeometryPolyline: sr.Route.GeometryPolyline,
		DistanceMeters:   sr.Route.DistanceMeters,
		DurationSeconds:  sr.Route.DurationSeconds,
		Summary:          sr.Route.Summary,
		HighRiskCount:    sr.HighRiskCount,
		MediumRiskCount:  sr.MediumRiskCount,
		Hotspots:         hotspots,
		Recommended:      sr.Recommended,
	}
}
