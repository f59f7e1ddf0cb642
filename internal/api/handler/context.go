package handler

import (
	"context"

	"github.com/roadwatch/roadwatch/internal/api/middleware"
)

// GetOfficerID retrieves the authenticated officer ID from the context.
// This is a convenience wrapper around middleware.GetOfficerID.
func GetOfficerID(ctx context.Context) string {
	return middleware.GetOfficerID(ctx)
}
