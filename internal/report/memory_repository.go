package report

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository for tests and
// local development.
type MemoryRepository struct {
	mu      sync.RWMutex
	reports []*Report
	byID    map[string]*Report
}

// NewMemoryRepository creates a new in-memory report repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*Report),
	}
}

// Create persists a new report.
func (r *MemoryRepository) Create(_ context.Context, rep *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *rep
	r.reports = append(r.reports, &stored)
	r.byID[stored.ReportID] = &stored
	return nil
}

// GetByReportID retrieves a report by its external identifier.
func (r *MemoryRepository) GetByReportID(_ context.Context, reportID string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.byID[reportID]
	if !ok {
		return nil, ErrReportNotFound
	}
	copied := *rep
	return &copied, nil
}

// List retrieves the most recent reports, newest first.
func (r *MemoryRepository) List(_ context.Context, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.copyAll()
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.After(sorted[j].OccurredAt)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// ListSince retrieves reports that occurred at or after the given instant.
func (r *MemoryRepository) ListSince(_ context.Context, since time.Time) ([]*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Report
	for _, rep := range r.reports {
		if !rep.OccurredAt.Before(since) {
			copied := *rep
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ListAllOrdered retrieves the full report history in occurrence order.
func (r *MemoryRepository) ListAllOrdered(_ context.Context) ([]*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.copyAll()
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted, nil
}

func (r *MemoryRepository) copyAll() []*Report {
	out := make([]*Report, 0, len(r.reports))
	for _, rep := range r.reports {
		copied := *rep
		out = append(out, &copied)
	}
	return out
}
