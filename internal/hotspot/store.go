package hotspot

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/roadwatch/roadwatch/pkg/geo"
)

// Store errors.
var (
	// ErrHotspotNotFound indicates the requested hotspot does not exist.
	ErrHotspotNotFound = errors.New("hotspot not found")
	// ErrStoreUnavailable indicates the backing geospatial store failed.
	ErrStoreUnavailable = errors.New("hotspot store unavailable")
)

// AttributionResult reports what AttributeReport did.
type AttributionResult struct {
	// HotspotID is the cluster the report now belongs to.
	HotspotID uuid.UUID

	// Created is true when a new hotspot was spawned for the report.
	Created bool

	// Duplicate is true when the report was already attributed; nothing
	// changed.
	Duplicate bool
}

// Store is the geospatial store adapter for hotspot state. Implementations
// must serialize AttributeReport calls for nearby points so that two
// simultaneous reports in the same vicinity cannot spawn two overlapping
// hotspots.
type Store interface {
	// AttributeReport atomically attributes a report to the nearest hotspot
	// whose center lies within radiusKM of the report, creating a new hotspot
	// centered on the report when none qualifies. Re-attributing the same
	// report is a recorded no-op (Duplicate=true).
	AttributeReport(ctx context.Context, m Member, radiusKM float64) (AttributionResult, error)

	// Members returns all reports attributed to a hotspot.
	Members(ctx context.Context, hotspotID uuid.UUID) ([]Member, error)

	// UpdateDerived replaces the derived fields of a hotspot.
	UpdateDerived(ctx context.Context, h *Hotspot) error

	// Get retrieves a single hotspot.
	Get(ctx context.Context, id uuid.UUID) (*Hotspot, error)

	// ListAll returns a full snapshot of all hotspots.
	ListAll(ctx context.Context) ([]*Hotspot, error)

	// WithinRadius returns hotspots whose center lies within radiusKM of p,
	// ordered by ascending distance, ties broken by ID.
	WithinRadius(ctx context.Context, p geo.Point, radiusKM float64) ([]WithDistance, error)

	// Reset removes all hotspot state, including attribution records. Used
	// before a full rebuild.
	Reset(ctx context.Context) error
}
