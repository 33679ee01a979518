package ports

import (
	"context"
	"time"

	"github.com/bcr/rental-system/internal/core/domain"
)

// CreateCarInput carries all data needed to register a new car.
type CreateCarInput struct {
	Name  string
	Price float64
	Size  domain.CarSize
	Image string
}

// ListCarsInput carries all parameters for the list endpoint.
type ListCarsInput struct {
	Size        domain.CarSize
	AvailableAt *time.Time // optional: only cars free at this instant
	Page        int        // 1-based
	PageSize    int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	PageSize  int   `json:"pageSize"`
	Count     int64 `json:"count"`
}

// ListCarsResult is returned by ListCars.
type ListCarsResult struct {
	Cars       []*domain.Car
	Pagination Pagination
}

// CarService defines use-case operations for cars.
type CarService interface {
	CreateCar(ctx context.Context, input CreateCarInput) (*domain.Car, error)
	GetCar(ctx context.Context, id string) (*domain.Car, error)
	ListCars(ctx context.Context, input ListCarsInput) (*ListCarsResult, error)
	UpdateCar(ctx context.Context, id string, update CarUpdate) (*domain.Car, error)
	DeleteCar(ctx context.Context, id string) error
}
