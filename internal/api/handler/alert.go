package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadwatch/roadwatch/internal/alert"
	"github.com/roadwatch/roadwatch/internal/api/models"
	"github.com/roadwatch/roadwatch/internal/api/response"
	"github.com/roadwatch/roadwatch/internal/hotspot"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

// AlertHandler handles live-position alert endpoints.
type AlertHandler struct {
	alerts *alert.Service
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alerts *alert.Service) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
	}
}

// Check handles POST /v1/alerts/check - risk-zone check for a live position.
func (h *AlertHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req models.AlertCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, models.ErrPartialPoint) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	p := geo.Point{Lat: req.Position.Lat, Lon: req.Position.Lon}
	verdict, err := h.alerts.Check(r.Context(), p, req.WeatherCondition)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrInvalidLocation):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, hotspot.ErrStoreUnavailable):
			response.ServiceUnavailable(w, r, "hotspot store is unavailable")
		default:
			response.InternalError(w, r, "alert check failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toAlertCheckResponse(verdict))
}

// Feedback handles POST /v1/navigation/feedback - report a false alert.
func (h *AlertHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req models.AlertFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := models.Validate(req); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	h.alerts.ReportFalseAlert(r.Context(), req.AlertID, req.Reason)
	response.Accepted(w, r, "", map[string]string{"status": "recorded"})
}

func toAlertCheckResponse(v *alert.Verdict) models.AlertCheckResponse {
	resp := models.AlertCheckResponse{
		InRiskZone:       v.InRiskZone,
		DistanceKM:       v.DistanceKM,
		RiskLevel:        string(v.RiskLevel),
		Nearby:           make([]models.HotspotWithDistance, 0, len(v.Nearby)),
		WeatherCondition: v.WeatherCondition,
	}
	if v.NearestHotspotID != nil {
		id := v.NearestHotspotID.String()
		resp.NearestHotspotID = &id
	}
	for _, wd := range v.Nearby {
		resp.Nearby = append(resp.Nearby, toHotspotWithDistance(wd))
	}
	return resp
}
