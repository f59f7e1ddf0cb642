package hotspot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadwatch/roadwatch/pkg/geo"
)

// PostgresStore is a PostGIS-backed implementation of Store.
//
// Attribution is serialized per geographic region with transaction-scoped
// advisory locks: the report's grid cell and its eight neighbors are locked in
// sorted key order, so any two reports within attribution radius of each other
// contend on at least one shared lock and cannot spawn duplicate hotspots.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostGIS hotspot store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const hotspotColumns = `
	id, latitude, longitude, risk_level, accident_count, dangerous_count,
	severity_score, last_accident_at, updated_at
`

// AttributeReport atomically attributes a report to the nearest hotspot within
// radiusKM, creating one when none qualifies.
func (s *PostgresStore) AttributeReport(ctx context.Context, m Member, radiusKM float64) (AttributionResult, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return AttributionResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, key := range regionLockKeys(m.Point, radiusKM) {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return AttributionResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	var result AttributionResult

	// Already attributed?
	err = tx.QueryRow(ctx,
		`SELECT hotspot_id FROM hotspot_members WHERE report_id = $1`,
		m.ReportID,
	).Scan(&result.HotspotID)
	switch {
	case err == nil:
		result.Duplicate = true
		return result, tx.Commit(ctx)
	case !errors.Is(err, pgx.ErrNoRows):
		return AttributionResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	// Nearest existing hotspot within the attribution radius.
	err = tx.QueryRow(ctx, `
		SELECT id FROM hotspots
		WHERE ST_DWithin(
			center_point,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3 * 1000
		)
		ORDER BY ST_Distance(
			center_point,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
		) ASC, id ASC
		LIMIT 1
	`, m.Point.Lon, m.Point.Lat, radiusKM).Scan(&result.HotspotID)

	if errors.Is(err, pgx.ErrNoRows) {
		result.Created = true
		err = tx.QueryRow(ctx, `
			INSERT INTO hotspots (
				id, latitude, longitude, center_point,
				risk_level, accident_count, dangerous_count, severity_score,
				last_accident_at, updated_at
			) VALUES (
				gen_random_uuid(), $1, $2,
				ST_SetSRID(ST_MakePoint($3, $1), 4326)::geography,
				$4, 0, 0, 0, $5, now()
			)
			RETURNING id
		`, m.Point.Lat, m.Point.Lon, m.Point.Lon, RiskLow, m.OccurredAt).Scan(&result.HotspotID)
	}
	if err != nil {
		return AttributionResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO hotspot_members (report_id, hotspot_id, latitude, longitude, severity, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ReportID, result.HotspotID, m.Point.Lat, m.Point.Lon, m.Severity, m.OccurredAt)
	if err != nil {
		return AttributionResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return AttributionResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return result, nil
}

// regionLockKeys returns deterministic lock keys covering the report's grid
// cell and its neighbors. Cell size matches the attribution radius so nearby
// reports always share at least one key.
func regionLockKeys(p geo.Point, radiusKM float64) []string {
	cellDeg := radiusKM / 111.0
	if cellDeg <= 0 {
		cellDeg = 0.005
	}

	cellX := int(math.Floor(p.Lon / cellDeg))
	cellY := int(math.Floor(p.Lat / cellDeg))

	keys := make([]string, 0, 9)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			keys = append(keys, fmt.Sprintf("hotspot_region:%d:%d", cellX+dx, cellY+dy))
		}
	}
	sort.Strings(keys)
	return keys
}

// Members returns all reports attributed to a hotspot.
func (s *PostgresStore) Members(ctx context.Context, hotspotID uuid.UUID) ([]Member, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT report_id, latitude, longitude, severity, occurred_at
		FROM hotspot_members
		WHERE hotspot_id = $1
	`, hotspotID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ReportID, &m.Point.Lat, &m.Point.Lon, &m.Severity, &m.OccurredAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if members == nil {
		return nil, ErrHotspotNotFound
	}
	return members, nil
}

// UpdateDerived replaces the derived fields of a hotspot.
func (s *PostgresStore) UpdateDerived(ctx context.Context, h *Hotspot) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE hotspots SET
			latitude = $2,
			longitude = $3,
			center_point = ST_SetSRID(ST_MakePoint($3, $2), 4326)::geography,
			risk_level = $4,
			accident_count = $5,
			dangerous_count = $6,
			severity_score = $7,
			last_accident_at = $8,
			updated_at = now()
		WHERE id = $1
	`, h.ID, h.Center.Lat, h.Center.Lon, h.RiskLevel,
		h.AccidentCount, h.DangerousCount, h.SeverityScore, h.LastAccidentAt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrHotspotNotFound
	}
	return nil
}

// Get retrieves a single hotspot.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Hotspot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+hotspotColumns+` FROM hotspots WHERE id = $1`, id)

	h, err := scanHotspot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHotspotNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return h, nil
}

// ListAll returns a snapshot of all hotspots.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*Hotspot, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+hotspotColumns+` FROM hotspots`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []*Hotspot
	for rows.Next() {
		h, err := scanHotspot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

// WithinRadius returns hotspots within radiusKM of p, nearest first, ties
// broken by ID.
func (s *PostgresStore) WithinRadius(ctx context.Context, p geo.Point, radiusKM float64) ([]WithDistance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+hotspotColumns+`,
			ST_Distance(
				center_point,
				ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography
			) / 1000 AS distance_km
		FROM hotspots
		WHERE ST_DWithin(
			center_point,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3 * 1000
		)
		ORDER BY distance_km ASC, id ASC
	`, p.Lon, p.Lat, radiusKM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []WithDistance
	for rows.Next() {
		var (
			h    Hotspot
			dist float64
		)
		err := rows.Scan(
			&h.ID, &h.Center.Lat, &h.Center.Lon, &h.RiskLevel,
			&h.AccidentCount, &h.DangerousCount, &h.SeverityScore,
			&h.LastAccidentAt, &h.UpdatedAt, &dist,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		out = append(out, WithDistance{Hotspot: &h, DistanceKM: dist})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return out, nil
}

// Reset removes all hotspot state, including attribution records.
func (s *PostgresStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE hotspot_members, hotspots`); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func scanHotspot(row pgx.Row) (*Hotspot, error) {
	var h Hotspot
	err := row.Scan(
		&h.ID, &h.Center.Lat, &h.Center.Lon, &h.RiskLevel,
		&h.AccidentCount, &h.DangerousCount, &h.SeverityScore,
		&h.LastAccidentAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
