// Package lock provides the in-process VehicleLocker.
package lock

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/bcr/rental-system/internal/pkg/metrics"
)

const defaultStripes = 64

// Striped serialises work per car using a fixed set of mutex stripes chosen
// by consistent hashing on the car ID. Two cars may share a stripe; one car
// always maps to the same one.
//
// It only protects a single process. Multi-instance deployments use the
// redis or postgres lockers instead.
type Striped struct {
	stripes []chan struct{}
}

// NewStriped creates a Striped locker with n stripes.
// If n <= 0, defaultStripes is used.
func NewStriped(n int) *Striped {
	if n <= 0 {
		n = defaultStripes
	}
	s := &Striped{stripes: make([]chan struct{}, n)}
	for i := range s.stripes {
		s.stripes[i] = make(chan struct{}, 1)
	}
	return s
}

// Lock blocks until the stripe for carID is free or ctx is done. The stripe
// never expires, so held only ends with ctx or release.
func (s *Striped) Lock(ctx context.Context, carID string) (context.Context, func(), error) {
	stripe := s.stripes[s.stripeIndex(carID)]
	began := time.Now()

	select {
	case stripe <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	metrics.VehicleLockWaitDuration.WithLabelValues("local").Observe(time.Since(began).Seconds())

	held, cancel := context.WithCancel(ctx)
	return held, func() {
		cancel()
		<-stripe
	}, nil
}

// stripeIndex maps a car ID deterministically to a stripe index.
func (s *Striped) stripeIndex(carID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(carID))
	return int(h.Sum32() % uint32(len(s.stripes)))
}
