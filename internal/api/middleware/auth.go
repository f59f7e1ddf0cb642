package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/roadwatch/roadwatch/internal/api/models"
	"github.com/roadwatch/roadwatch/internal/auth"
)

// officerIDKey is the context key for the authenticated officer ID.
type officerIDKey struct{}

// officerRoleKey is the context key for the authenticated officer's role.
type officerRoleKey struct{}

// Auth creates authentication middleware that validates JWT bearer tokens
// and injects the officer identity into the request context.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract bearer token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, r, "missing authorization header")
				return
			}

			// Check for Bearer prefix (case-insensitive)
			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := authHeader[len(bearerPrefix):]
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			// Validate the token
			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrAccessTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrInvalidAccessToken):
					writeUnauthorized(w, r, "invalid access token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			// Add officer identity to context
			ctx := context.WithValue(r.Context(), officerIDKey{}, claims.OfficerID)
			ctx = context.WithValue(ctx, officerRoleKey{}, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates middleware that rejects authenticated requests whose
// role does not match. It must run after Auth.
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetOfficerRole(r.Context()) != role {
				writeForbidden(w, r, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthorized writes a 401 Unauthorized response.
// This is implemented directly here to avoid import cycle with response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// writeForbidden writes a 403 Forbidden response.
func writeForbidden(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewProblem(
		"https://api.roadwatch.lk/problems/forbidden",
		"Forbidden",
		http.StatusForbidden,
		traceID,
	)
	problem.Detail = detail
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetOfficerID retrieves the authenticated officer ID from the context.
// Returns an empty string if not authenticated.
func GetOfficerID(ctx context.Context) string {
	if id, ok := ctx.Value(officerIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetOfficerRole retrieves the authenticated officer's role from the context.
func GetOfficerRole(ctx context.Context) auth.Role {
	if role, ok := ctx.Value(officerRoleKey{}).(auth.Role); ok {
		return role
	}
	return ""
}
