package auth

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists officer accounts.
type Repository interface {
	// Create persists a new officer. Returns ErrBadgeAlreadyTaken when the
	// badge number is in use.
	Create(ctx context.Context, o *Officer) error

	// GetByBadge retrieves an officer by badge number.
	GetByBadge(ctx context.Context, badgeNumber string) (*Officer, error)

	// GetByID retrieves an officer by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Officer, error)
}
