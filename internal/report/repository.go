package report

import (
	"context"
	"time"
)

// Repository defines accident report persistence.
type Repository interface {
	// Create persists a new report.
	Create(ctx context.Context, r *Report) error

	// GetByReportID retrieves a report by its external identifier.
	// Returns ErrReportNotFound if it does not exist.
	GetByReportID(ctx context.Context, reportID string) (*Report, error)

	// List retrieves the most recent reports, newest first.
	List(ctx context.Context, limit int) ([]*Report, error)

	// ListSince retrieves reports with OccurredAt at or after the given
	// instant, in no particular order.
	ListSince(ctx context.Context, since time.Time) ([]*Report, error)

	// ListAllOrdered retrieves the full report history in occurrence order,
	// oldest first. Used for hotspot rebuilds.
	ListAllOrdered(ctx context.Context) ([]*Report, error)
}
