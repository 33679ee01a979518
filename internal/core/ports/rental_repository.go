package ports

import (
	"context"
	"time"

	"github.com/bcr/rental-system/internal/core/domain"
)

// RentalRepository handles rental window persistence.
type RentalRepository interface {
	// FindActiveForVehicle returns the windows of carID whose end is unset or
	// at/after the given instant.
	FindActiveForVehicle(ctx context.Context, carID string, after time.Time) ([]*domain.RentalWindow, error)

	// Create persists a new window and sets its ID. Stores that enforce
	// non-overlap themselves report a violation as domain.ErrRentalOverlap.
	Create(ctx context.Context, w *domain.RentalWindow) error

	// BlockedVehicleIDs lists the cars that have a window ending at/after at,
	// or not ending at all.
	BlockedVehicleIDs(ctx context.Context, at time.Time) ([]string, error)
}

// VehicleLocker serialises the conflict check and the create for one car.
// Release must be called exactly once after a successful Lock.
//
// held is derived from ctx and is done no later than the moment the lock may
// be lost, for instance when a lease is about to expire. Every operation the
// lock protects must run under held.
type VehicleLocker interface {
	Lock(ctx context.Context, carID string) (held context.Context, release func(), err error)
}
