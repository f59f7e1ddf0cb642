package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const officerColumns = `id, badge_number, name, password_hash, role, station, created_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL officer repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new officer account.
func (r *PostgresRepository) Create(ctx context.Context, o *Officer) error {
	query := `
		INSERT INTO officers (id, badge_number, name, password_hash, role, station, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.BadgeNumber, o.Name, o.PasswordHash, o.Role, o.Station, o.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrBadgeAlreadyTaken
		}
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// GetByBadge retrieves an officer by badge number.
func (r *PostgresRepository) GetByBadge(ctx context.Context, badgeNumber string) (*Officer, error) {
	query := fmt.Sprintf(`SELECT %s FROM officers WHERE badge_number = $1`, officerColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, badgeNumber))
}

// GetByID retrieves an officer by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Officer, error) {
	query := fmt.Sprintf(`SELECT %s FROM officers WHERE id = $1`, officerColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Officer, error) {
	var o Officer
	err := row.Scan(&o.ID, &o.BadgeNumber, &o.Name, &o.PasswordHash, &o.Role, &o.Station, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfficerNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return &o, nil
}
