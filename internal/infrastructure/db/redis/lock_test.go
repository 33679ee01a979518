package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLocker connects to REDIS_TEST_ADDR and skips when it is unset.
func testLocker(t *testing.T, ttl, hold, wait time.Duration) *VehicleLocker {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client, err := NewClient(context.Background(), Options{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewVehicleLocker(client, ttl, hold, wait, zerolog.Nop())
}

func testCarID() string {
	return "car-" + time.Now().Format("150405.000000")
}

func TestVehicleLocker_Defaults(t *testing.T) {
	l := NewVehicleLocker(nil, 0, 0, 0, zerolog.Nop())
	assert.Equal(t, "bcr:lock:car:42", l.key("42"))
	assert.Equal(t, defaultLockTTL, l.ttl)
	assert.Equal(t, defaultLockTTL*4/5, l.hold)
	assert.Equal(t, defaultLockWait, l.wait)
}

func TestVehicleLocker_HoldStaysBelowTTL(t *testing.T) {
	cases := map[string]struct {
		ttl, hold, want time.Duration
	}{
		"configured":   {10 * time.Second, 6 * time.Second, 6 * time.Second},
		"equal to ttl": {10 * time.Second, 10 * time.Second, 8 * time.Second},
		"above ttl":    {10 * time.Second, 30 * time.Second, 8 * time.Second},
		"unset":        {5 * time.Second, 0, 4 * time.Second},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			l := NewVehicleLocker(nil, tc.ttl, tc.hold, time.Second, zerolog.Nop())
			assert.Equal(t, tc.want, l.hold)

			sent := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
			assert.True(t, l.leaseDeadline(sent).Before(sent.Add(tc.ttl)))
		})
	}
}

func TestVehicleLocker_ExclusiveUntilReleased(t *testing.T) {
	l := testLocker(t, 5*time.Second, 0, 100*time.Millisecond)
	carID := testCarID()

	_, release, err := l.Lock(context.Background(), carID)
	require.NoError(t, err)

	_, _, err = l.Lock(context.Background(), carID)
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()

	_, release, err = l.Lock(context.Background(), carID)
	require.NoError(t, err)
	release()
}

func TestVehicleLocker_HeldContextEndsBeforeLease(t *testing.T) {
	ttl := 500 * time.Millisecond
	l := testLocker(t, ttl, 300*time.Millisecond, time.Second)
	carID := testCarID()

	held, release, err := l.Lock(context.Background(), carID)
	require.NoError(t, err)
	defer release()

	<-held.Done()
	require.True(t, errors.Is(held.Err(), context.DeadlineExceeded))

	// The key must still be ours when protected work is cut off.
	pttl, err := l.client.PTTL(context.Background(), l.key(carID)).Result()
	require.NoError(t, err)
	assert.Greater(t, pttl, time.Duration(0))
}

func TestVehicleLocker_ReleaseCancelsHeldContext(t *testing.T) {
	l := testLocker(t, 5*time.Second, 0, time.Second)

	held, release, err := l.Lock(context.Background(), testCarID())
	require.NoError(t, err)
	release()

	assert.ErrorIs(t, held.Err(), context.Canceled)
}

func TestVehicleLocker_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	l := testLocker(t, 200*time.Millisecond, 0, 2*time.Second)
	carID := testCarID()

	_, staleRelease, err := l.Lock(context.Background(), carID)
	require.NoError(t, err)

	// Wait for the TTL to lapse, then take the lock as a new holder.
	_, release, err := l.Lock(context.Background(), carID)
	require.NoError(t, err)
	defer release()

	staleRelease()

	val, err := l.client.Get(context.Background(), l.key(carID)).Result()
	require.NoError(t, err)
	assert.NotEmpty(t, val)
}
