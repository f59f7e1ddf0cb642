package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation of Repository for tests and
// local development.
type MemoryRepository struct {
	mu      sync.RWMutex
	byBadge map[string]*Officer
	byID    map[uuid.UUID]*Officer
}

// NewMemoryRepository creates a new in-memory officer repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byBadge: make(map[string]*Officer),
		byID:    make(map[uuid.UUID]*Officer),
	}
}

// Create persists a new officer account.
func (r *MemoryRepository) Create(_ context.Context, o *Officer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byBadge[o.BadgeNumber]; exists {
		return ErrBadgeAlreadyTaken
	}

	stored := *o
	r.byBadge[stored.BadgeNumber] = &stored
	r.byID[stored.ID] = &stored
	return nil
}

// GetByBadge retrieves an officer by badge number.
func (r *MemoryRepository) GetByBadge(_ context.Context, badgeNumber string) (*Officer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byBadge[badgeNumber]
	if !ok {
		return nil, ErrOfficerNotFound
	}
	copied := *o
	return &copied, nil
}

// GetByID retrieves an officer by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Officer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, ErrOfficerNotFound
	}
	copied := *o
	return &copied, nil
}
