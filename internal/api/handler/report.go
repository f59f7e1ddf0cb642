// Package handler provides HTTP handlers for the RoadWatch API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/roadwatch/roadwatch/internal/api/models"
	"github.com/roadwatch/roadwatch/internal/api/response"
	"github.com/roadwatch/roadwatch/internal/report"
	"github.com/roadwatch/roadwatch/pkg/geo"
)

const (
	defaultReportListLimit = 50
	maxReportListLimit     = 200
)

// ReportHandler handles accident report endpoints.
type ReportHandler struct {
	reports *report.Service
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{
		reports: reports,
	}
}

// Create handles POST /v1/reports - file a new accident report.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ReportCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, models.ErrPartialPoint) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := models.Validate(req); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	officerID, err := uuid.Parse(GetOfficerID(r.Context()))
	if err != nil {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	var point *geo.Point
	if req.Location != nil {
		point = &geo.Point{Lat: req.Location.Lat, Lon: req.Location.Lon}
	}

	rep, err := h.reports.Submit(r.Context(), report.SubmitInput{
		OfficerID:        officerID,
		Location:         point,
		OccurredAt:       req.OccurredAt.Time(),
		Severity:         report.Severity(req.Severity),
		WeatherCondition: req.WeatherCondition,
		VehicleCount:     req.VehicleCount,
		Description:      req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, report.ErrValidation), errors.Is(err, geo.ErrInvalidLocation):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, report.ErrStoreUnavailable):
			response.ServiceUnavailable(w, r, "report store is unavailable")
		default:
			response.InternalError(w, r, "failed to file report")
		}
		return
	}

	location := fmt.Sprintf("/v1/reports/%s", rep.ReportID)
	response.Created(w, r, location, toReportResponse(rep))
}

// Get handles GET /v1/reports/{reportId} - fetch a single report.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportId")
	if reportID == "" {
		response.BadRequest(w, r, "reportId is required", nil)
		return
	}

	rep, err := h.reports.Get(r.Context(), reportID)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrReportNotFound):
			response.NotFound(w, r, "report not found")
		case errors.Is(err, report.ErrStoreUnavailable):
			response.ServiceUnavailable(w, r, "report store is unavailable")
		default:
			response.InternalError(w, r, "failed to load report")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toReportResponse(rep))
}

// List handles GET /v1/reports - list recent reports, newest first.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultReportListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}
	if limit > maxReportListLimit {
		limit = maxReportListLimit
	}

	reports, err := h.reports.List(r.Context(), limit)
	if err != nil {
		if errors.Is(err, report.ErrStoreUnavailable) {
			response.ServiceUnavailable(w, r, "report store is unavailable")
			return
		}
		response.InternalError(w, r, "failed to list reports")
		return
	}

	items := make([]models.ReportResponse, 0, len(reports))
	for _, rep := range reports {
		items = append(items, toReportResponse(rep))
	}

	response.JSON(w, r, http.StatusOK, models.ReportListResponse{
		Items: items,
		Count: len(items),
	})
}

func toReportResponse(rep *report.Report) models.ReportResponse {
	resp := models.ReportResponse{
		ID:               rep.ID.String(),
		ReportID:         rep.ReportID,
		OfficerID:        rep.OfficerID.String(),
		OccurredAt:       models.Timestamp(rep.OccurredAt),
		Severity:         string(rep.Severity),
		WeatherCondition: rep.WeatherCondition,
		VehicleCount:     rep.VehicleCount,
		Description:      rep.Description,
		CreatedAt:        models.Timestamp(rep.CreatedAt),
	}
	if rep.Location != nil {
		resp.Location = &models.Point{Lat: rep.Location.Lat, Lon: rep.Location.Lon}
	}
	return resp
}
