package handler

import (
	"net/http"

	"github.com/roadwatch/roadwatch/internal/analytics"
	"github.com/roadwatch/roadwatch/internal/api/response"
)

// AnalyticsHandler handles accident statistics endpoints.
type AnalyticsHandler struct {
	analytics *analytics.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: svc,
	}
}

// Summary handles GET /v1/analytics/summary - the dashboard payload.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, r, "report history is unavailable")
		return
	}
	response.JSON(w, r, http.StatusOK, summary)
}

// Trends handles GET /v1/analytics/trends - the 30-day accident trend.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	trend, err := h.analytics.Trend(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, r, "report history is unavailable")
		return
	}
	response.JSON(w, r, http.StatusOK, trend)
}

// Heatmap handles GET /v1/analytics/heatmap - geotagged accident weights.
func (h *AnalyticsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	points, err := h.analytics.HeatmapPoints(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, r, "report history is unavailable")
		return
	}
	response.JSON(w, r, http.StatusOK, points)
}
