package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadwatch/roadwatch/internal/api/models"
	"github.com/roadwatch/roadwatch/internal/api/response"
	"github.com/roadwatch/roadwatch/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /v1/auth/register - create an officer account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := models.Validate(req); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	session, err := h.authService.Register(r.Context(), auth.RegisterInput{
		BadgeNumber: req.BadgeNumber,
		Name:        req.Name,
		Password:    req.Password,
		Station:     req.Station,
		Role:        auth.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadgeAlreadyTaken):
			response.Conflict(w, r, "badge number is already registered")
		case errors.Is(err, auth.ErrValidation):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, auth.ErrStoreUnavailable):
			response.ServiceUnavailable(w, r, "account store is unavailable")
		default:
			response.InternalError(w, r, "registration failed")
		}
		return
	}

	response.Created(w, r, "", toSessionResponse(session))
}

// Login handles POST /v1/auth/login - authenticate an officer.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := models.Validate(req); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	session, err := h.authService.Login(r.Context(), auth.LoginInput{
		BadgeNumber: req.BadgeNumber,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.Unauthorized(w, r, "invalid badge number or password")
		case errors.Is(err, auth.ErrStoreUnavailable):
			response.ServiceUnavailable(w, r, "account store is unavailable")
		default:
			response.InternalError(w, r, "login failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toSessionResponse(session))
}

func toSessionResponse(s *auth.Session) models.SessionResponse {
	return models.SessionResponse{
		Officer: models.OfficerResponse{
			ID:          s.Officer.ID.String(),
			BadgeNumber: s.Officer.BadgeNumber,
			Name:        s.Officer.Name,
			Role:        string(s.Officer.Role),
			Station:     s.Officer.Station,
			CreatedAt:   models.Timestamp(s.Officer.CreatedAt),
		},
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   models.Timestamp(s.ExpiresAt),
	}
}
