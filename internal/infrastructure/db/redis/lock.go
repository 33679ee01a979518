package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bcr/rental-system/internal/pkg/metrics"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 5 * time.Second
	retryInterval   = 25 * time.Millisecond
)

// ErrLockTimeout is returned when the lock could not be acquired within the
// configured wait.
var ErrLockTimeout = errors.New("redis lock: timed out waiting for lock")

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// VehicleLocker provides per-car mutual exclusion across instances.
// Key format: bcr:lock:car:<car_id>
//
// The key is a lease that is not renewed. The context handed back by Lock
// expires hold after the acquiring SET was sent, strictly before the key can
// expire, so protected work is cancelled while the lease is still ours.
type VehicleLocker struct {
	client *redis.Client
	ttl    time.Duration
	hold   time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewVehicleLocker creates a VehicleLocker wrapping the given Redis client.
// ttl bounds how long a crashed holder can block a car; hold bounds the work
// done under the lock and must be below ttl (otherwise 4/5 of ttl is used);
// wait bounds how long Lock retries before giving up.
func NewVehicleLocker(client *redis.Client, ttl, hold, wait time.Duration, log zerolog.Logger) *VehicleLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if hold <= 0 || hold >= ttl {
		hold = ttl * 4 / 5
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &VehicleLocker{client: client, ttl: ttl, hold: hold, wait: wait, log: log}
}

// Lock acquires the car's key with SET NX PX, retrying until the wait elapses
// or ctx is done.
func (l *VehicleLocker) Lock(ctx context.Context, carID string) (context.Context, func(), error) {
	key := l.key(carID)
	token := uuid.NewString()
	began := time.Now()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		// The lease can start no earlier than the moment the SET leaves us.
		sent := time.Now()
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			metrics.VehicleLockWaitDuration.WithLabelValues("redis").Observe(time.Since(began).Seconds())
			held, stop := context.WithDeadline(ctx, l.leaseDeadline(sent))
			return held, func() {
				stop()
				l.release(key, token)
			}, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return nil, nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *VehicleLocker) release(key, token string) {
	// The request context may already be cancelled; releasing must still run.
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("failed to release redis lock")
	}
}

// leaseDeadline is when work under a lock acquired by a SET sent at sent must
// stop. It always falls before sent+ttl.
func (l *VehicleLocker) leaseDeadline(sent time.Time) time.Time {
	return sent.Add(l.hold)
}

func (l *VehicleLocker) key(carID string) string {
	return fmt.Sprintf("%slock:car:%s", keyNamespace, carID)
}
