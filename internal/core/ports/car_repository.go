package ports

import (
	"context"

	"github.com/bcr/rental-system/internal/core/domain"
)

// ListCarsFilter carries the query parameters for listing cars.
type ListCarsFilter struct {
	Size       domain.CarSize // optional
	ExcludeIDs []string       // cars that must not appear, e.g. rented at the requested instant
	Offset     int
	Limit      int
}

// CarUpdate holds the mutable attributes of a car.
type CarUpdate struct {
	Name              string
	Price             float64
	Size              domain.CarSize
	Image             string
	IsCurrentlyRented bool
}

// CarRepository defines persistence operations for cars.
type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) (*domain.Car, error)
	// FindByID returns domain.ErrNotFound when the car does not exist.
	FindByID(ctx context.Context, id string) (*domain.Car, error)
	// List returns a page of cars matching filter and the total count.
	List(ctx context.Context, filter ListCarsFilter) ([]*domain.Car, int64, error)
	Update(ctx context.Context, id string, update CarUpdate) (*domain.Car, error)
	Delete(ctx context.Context, id string) error
}
