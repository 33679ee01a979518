package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcr/rental-system/internal/core/domain"
)

// exclusion_violation, raised by rental_windows_no_overlap.
const codeExclusionViolation = "23P01"

// RentalRepository implements ports.RentalRepository backed by PostgreSQL.
// The table's exclusion constraint rejects overlapping windows even when no
// lock is held.
type RentalRepository struct {
	pool *pgxpool.Pool
}

// NewRentalRepository creates a PostgreSQL-backed rental repository.
func NewRentalRepository(pool *pgxpool.Pool) *RentalRepository {
	return &RentalRepository{pool: pool}
}

// FindActiveForVehicle returns the windows of carID that have not ended or
// end at/after the given instant.
func (r *RentalRepository) FindActiveForVehicle(ctx context.Context, carID string, after time.Time) ([]*domain.RentalWindow, error) {
	const selectSQL = `
		SELECT id, user_id, car_id, rent_started_at, rent_ended_at, created_at, updated_at
		FROM rental_windows
		WHERE car_id = $1
		  AND (rent_ended_at IS NULL OR rent_ended_at >= $2)
		ORDER BY rent_started_at
	`

	rows, err := r.pool.Query(ctx, selectSQL, carID, after.UTC())
	if err != nil {
		return nil, fmt.Errorf("rentals: find active: %w", err)
	}
	defer rows.Close()

	var out []*domain.RentalWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("rentals: scan: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rentals: find active: %w", err)
	}
	return out, nil
}

// Create inserts w and sets its ID.
func (r *RentalRepository) Create(ctx context.Context, w *domain.RentalWindow) error {
	const insertSQL = `
		INSERT INTO rental_windows (user_id, car_id, rent_started_at, rent_ended_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, insertSQL,
		w.UserID, w.CarID, w.RentStartedAt.UTC(), w.RentEndedAt, w.CreatedAt, w.UpdatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeExclusionViolation {
			return domain.ErrRentalOverlap
		}
		return fmt.Errorf("rentals: create: %w", err)
	}

	w.ID = strconv.FormatInt(id, 10)
	return nil
}

// BlockedVehicleIDs lists the distinct cars with a window active at at.
func (r *RentalRepository) BlockedVehicleIDs(ctx context.Context, at time.Time) ([]string, error) {
	const selectSQL = `
		SELECT DISTINCT car_id
		FROM rental_windows
		WHERE rent_ended_at IS NULL OR rent_ended_at >= $1
	`

	rows, err := r.pool.Query(ctx, selectSQL, at.UTC())
	if err != nil {
		return nil, fmt.Errorf("rentals: blocked vehicles: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("rentals: blocked vehicles: %w", err)
	}
	return ids, nil
}

func scanWindow(row pgx.Row) (*domain.RentalWindow, error) {
	var (
		w   domain.RentalWindow
		id  int64
		end *time.Time
	)
	if err := row.Scan(&id, &w.UserID, &w.CarID, &w.RentStartedAt, &end, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}

	w.ID = strconv.FormatInt(id, 10)
	w.RentStartedAt = w.RentStartedAt.UTC()
	if end != nil {
		e := end.UTC()
		w.RentEndedAt = &e
	}
	return &w, nil
}
