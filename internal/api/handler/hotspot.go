package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/roadwatch/roadwatch/internal/api/models"
	"github.com/roadwatch/roadwatch/internal/api/response"
	"github.com/roadwatch/roadwatch/internal/hotspot"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

const defaultAreaRadiusKM = 5.0

// HotspotHandler handles hotspot endpoints.
type HotspotHandler struct {
	hotspots *hotspot.Engine
}

// NewHotspotHandler creates a new HotspotHandler.
func NewHotspotHandler(hotspots *hotspot.Engine) *HotspotHandler {
	return &HotspotHandler{
		hotspots: hotspots,
	}
}

// List handles GET /v1/hotspots - snapshot of all known hotspots.
func (h *HotspotHandler) List(w http.ResponseWriter, r *http.Request) {
	spots, err := h.hotspots.ListAll(r.Context())
	if err != nil {
		if errors.Is(err, hotspot.ErrStoreUnavailable) {
			response.ServiceUnavailable(w, r, "hotspot store is unavailable")
			return
		}
		response.InternalError(w, r, "failed to list hotspots")
		return
	}

	items := make([]models.HotspotResponse, 0, len(spots))
	for _, s := range spots {
		items = append(items, toHotspotResponse(s))
	}

	response.JSON(w, r, http.StatusOK, models.HotspotListResponse{
		Items: items,
		Count: len(items),
	})
}

// AreaAlerts handles GET /v1/navigation/alerts - hotspots within a radius of
// a point, nearest first. Query parameters: lat, lon, radius_km (optional).
func (h *HotspotHandler) AreaAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		response.BadRequest(w, r, "lat and lon query parameters are required", nil)
		return
	}

	radiusKM := defaultAreaRadiusKM
	if raw := q.Get("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed > 100 {
			response.BadRequest(w, r, "radius_km must be between 0 and 100", nil)
			return
		}
		radiusKM = parsed
	}

	p := geo.Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	nearby, err := h.hotspots.WithinRadius(r.Context(), p, radiusKM)
	if err != nil {
		if errors.Is(err, hotspot.ErrStoreUnavailable) {
			response.ServiceUnavailable(w, r, "hotspot store is unavailable")
			return
		}
		response.InternalError(w, r, "failed to query hotspots")
		return
	}

	items := make([]models.HotspotWithDistance, 0, len(nearby))
	for _, wd := range nearby {
		items = append(items, toHotspotWithDistance(wd))
	}

	response.JSON(w, r, http.StatusOK, models.AreaAlertsResponse{
		Items:    items,
		Count:    len(items),
		RadiusKM: radiusKM,
	})
}

func toHotspotResponse(s *hotspot.Hotspot) models.HotspotResponse {
	return models.HotspotResponse{
		ID:             s.ID.String(),
		Center:         models.Point{Lat: s.Center.Lat, Lon: s.Center.Lon},
		RiskLevel:      string(s.RiskLevel),
		AccidentCount:  s.AccidentCount,
		DangerousCount: s.DangerousCount,
		SeverityScore:  s.SeverityScore,
		LastAccidentAt: models.Timestamp(s.LastAccidentAt),
		UpdatedAt:      models.Timestamp(s.UpdatedAt),
	}
}

func toHotspotWithDistance(wd hotspot.WithDistance) models.HotspotWithDistance {
	return models.HotspotWithDistance{
		HotspotResponse: toHotspotResponse(wd.Hotspot),
		DistanceKM:      wd.DistanceKM,
	}
}
