package hotspot

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/roadwatch/roadwatch/pkg/geo"
)

// MemoryStore is an in-memory implementation of Store for tests and local
// development. A single mutex serializes attribution, which is the
// single-writer guarantee the engine requires.
type MemoryStore struct {
	mu           sync.RWMutex
	hotspots     map[uuid.UUID]*Hotspot
	members      map[uuid.UUID][]Member
	attributions map[string]uuid.UUID
}

// NewMemoryStore creates a new in-memory hotspot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hotspots:     make(map[uuid.UUID]*Hotspot),
		members:      make(map[uuid.UUID][]Member),
		attributions: make(map[string]uuid.UUID),
	}
}

// AttributeReport attributes a report to the nearest hotspot within radiusKM,
// creating one when none qualifies.
func (s *MemoryStore) AttributeReport(_ context.Context, m Member, radiusKM float64) (AttributionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.attributions[m.ReportID]; ok {
		return AttributionResult{HotspotID: id, Duplicate: true}, nil
	}

	targetID, found := s.nearestWithin(m.Point, radiusKM)
	created := false
	if !found {
		targetID = uuid.New()
		s.hotspots[targetID] = &Hotspot{
			ID:        targetID,
			Center:    m.Point,
			RiskLevel: RiskLow,
		}
		created = true
	}

	s.attributions[m.ReportID] = targetID
	s.members[targetID] = append(s.members[targetID], m)

	return AttributionResult{HotspotID: targetID, Created: created}, nil
}

// nearestWithin returns the closest hotspot ID within radiusKM, ties broken by
// ID. Caller must hold the lock.
func (s *MemoryStore) nearestWithin(p geo.Point, radiusKM float64) (uuid.UUID, bool) {
	var (
		bestID   uuid.UUID
		bestDist float64
		found    bool
	)
	for id, h := range s.hotspots {
		d := geo.Distance(p, h.Center)
		if d > radiusKM {
			continue
		}
		if !found || d < bestDist || (d == bestDist && id.String() < bestID.String()) {
			bestID = id
			bestDist = d
			found = true
		}
	}
	return bestID, found
}

// Members returns all reports attributed to a hotspot.
func (s *MemoryStore) Members(_ context.Context, hotspotID uuid.UUID) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.members[hotspotID]
	if !ok {
		return nil, ErrHotspotNotFound
	}
	out := make([]Member, len(members))
	copy(out, members)
	return out, nil
}

// UpdateDerived replaces the derived fields of a hotspot.
func (s *MemoryStore) UpdateDerived(_ context.Context, h *Hotspot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hotspots[h.ID]; !ok {
		return ErrHotspotNotFound
	}
	stored := *h
	s.hotspots[h.ID] = &stored
	return nil
}

// Get retrieves a single hotspot.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Hotspot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hotspots[id]
	if !ok {
		return nil, ErrHotspotNotFound
	}
	copied := *h
	return &copied, nil
}

// ListAll returns a snapshot of all hotspots.
func (s *MemoryStore) ListAll(_ context.Context) ([]*Hotspot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Hotspot, 0, len(s.hotspots))
	for _, h := range s.hotspots {
		copied := *h
		out = append(out, &copied)
	}
	return out, nil
}

// WithinRadius returns hotspots within radiusKM of p, nearest first.
func (s *MemoryStore) WithinRadius(_ context.Context, p geo.Point, radiusKM float64) ([]WithDistance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []WithDistance
	for _, h := range s.hotspots {
		d := geo.Distance(p, h.Center)
		if d > radiusKM {
			continue
		}
		copied := *h
		out = append(out, WithDistance{Hotspot: &copied, DistanceKM: d})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKM != out[j].DistanceKM {
			return out[i].DistanceKM < out[j].DistanceKM
		}
		return out[i].Hotspot.ID.String() < out[j].Hotspot.ID.String()
	})

	return out, nil
}

// Reset removes all hotspot state.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hotspots = make(map[uuid.UUID]*Hotspot)
	s.members = make(map[uuid.UUID][]Member)
	s.attributions = make(map[string]uuid.UUID)
	return nil
}
