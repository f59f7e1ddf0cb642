package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadwatch/roadwatch/pkg/geo"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL report repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `
	id, report_id, officer_id, latitude, longitude,
	occurred_at, severity, weather_condition, vehicle_count, description,
	created_at
`

// Create persists a new report.
func (r *PostgresRepository) Create(ctx context.Context, rep *Report) error {
	query := `
		INSERT INTO accident_reports (
			id, report_id, officer_id, latitude, longitude,
			occurred_at, severity, weather_condition, vehicle_count, description,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var lat, lon *float64
	if rep.Location != nil {
		lat = &rep.Location.Lat
		lon = &rep.Location.Lon
	}

	_, err := r.pool.Exec(ctx, query,
		rep.ID,
		rep.ReportID,
		rep.OfficerID,
		lat,
		lon,
		rep.OccurredAt,
		rep.Severity,
		nullIfEmpty(rep.WeatherCondition),
		rep.VehicleCount,
		nullIfEmpty(rep.Description),
		rep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return nil
}

// GetByReportID retrieves a report by its external identifier.
func (r *PostgresRepository) GetByReportID(ctx context.Context, reportID string) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM accident_reports WHERE report_id = $1`

	rep, err := r.scanReport(r.pool.QueryRow(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return rep, nil
}

// List retrieves the most recent reports, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + reportColumns + ` FROM accident_reports ORDER BY occurred_at DESC LIMIT $1`
	return r.queryReports(ctx, query, limit)
}

// ListSince retrieves reports that occurred at or after the given instant.
func (r *PostgresRepository) ListSince(ctx context.Context, since time.Time) ([]*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM accident_reports WHERE occurred_at >= $1`
	return r.queryReports(ctx, query, since)
}

// ListAllOrdered retrieves the full report history in occurrence order.
func (r *PostgresRepository) ListAllOrdered(ctx context.Context) ([]*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM accident_reports ORDER BY occurred_at ASC, created_at ASC`
	return r.queryReports(ctx, query)
}

func (r *PostgresRepository) queryReports(ctx context.Context, query string, args ...any) ([]*Report, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		rep, err := r.scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return reports, nil
}

func (r *PostgresRepository) scanReport(row pgx.Row) (*Report, error) {
	var (
		rep         Report
		lat, lon    *float64
		weather     *string
		description *string
	)

	err := row.Scan(
		&rep.ID,
		&rep.ReportID,
		&rep.OfficerID,
		&lat,
		&lon,
		&rep.OccurredAt,
		&rep.Severity,
		&weather,
		&rep.VehicleCount,
		&description,
		&rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lon != nil {
		rep.Location = &geo.Point{Lat: *lat, Lon: *lon}
	}
	if weather != nil {
		rep.WeatherCondition = *weather
	}
	if description != nil {
		rep.Description = *description
	}

	return &rep, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
