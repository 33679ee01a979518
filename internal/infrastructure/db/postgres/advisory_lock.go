package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/bcr/rental-system/internal/pkg/metrics"
)

// lockNamespace is the first key of every advisory lock taken here, keeping
// car locks apart from any other advisory lock user of the database.
const lockNamespace int32 = 0x42435201

const defaultLockWait = 5 * time.Second

// VehicleLocker takes a session-level advisory lock per car. The lock lives
// on one pooled connection, which is held until release.
type VehicleLocker struct {
	pool *pgxpool.Pool
	wait time.Duration
	log  zerolog.Logger
}

func NewVehicleLocker(pool *pgxpool.Pool, wait time.Duration, log zerolog.Logger) *VehicleLocker {
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &VehicleLocker{pool: pool, wait: wait, log: log}
}

// Lock blocks in pg_advisory_lock until the car's lock is granted, the wait
// elapses, or ctx is done. A session lock lasts as long as its connection, so
// held only ends with ctx or release.
func (l *VehicleLocker) Lock(ctx context.Context, carID string) (context.Context, func(), error) {
	began := time.Now()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	conn, err := l.pool.Acquire(waitCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("advisory lock %s: acquire conn: %w", carID, err)
	}

	if _, err := conn.Exec(waitCtx, `SELECT pg_advisory_lock($1, hashtext($2))`, lockNamespace, carID); err != nil {
		// A cancelled query can leave the session in an unknown state.
		_ = conn.Conn().Close(context.Background())
		conn.Release()
		return nil, nil, fmt.Errorf("advisory lock %s: %w", carID, err)
	}
	metrics.VehicleLockWaitDuration.WithLabelValues("postgres").Observe(time.Since(began).Seconds())

	held, stop := context.WithCancel(ctx)
	return held, func() {
		stop()
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock($1, hashtext($2))`, lockNamespace, carID); err != nil {
			l.log.Warn().Err(err).Str("car_id", carID).Msg("failed to release advisory lock, closing session")
			// Closing the session drops every advisory lock it holds.
			_ = conn.Conn().Close(ctx)
		}
		conn.Release()
	}, nil
}
