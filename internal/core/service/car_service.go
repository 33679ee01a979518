package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

type CarService struct {
	repo    ports.CarRepository
	rentals ports.RentalRepository
	logger  zerolog.Logger
}

func NewCarService(repo ports.CarRepository, rentals ports.RentalRepository, logger zerolog.Logger) *CarService {
	return &CarService{repo: repo, rentals: rentals, logger: logger}
}

// CreateCar registers a new car in the fleet.
func (s *CarService) CreateCar(ctx context.Context, input ports.CreateCarInput) (*domain.Car, error) {
	now := time.Now().UTC()
	car, err := s.repo.Create(ctx, &domain.Car{
		Name:      input.Name,
		Price:     input.Price,
		Size:      input.Size,
		Image:     input.Image,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create car")
		return nil, fmt.Errorf("create car: %w", err)
	}

	s.logger.Info().Str("car_id", car.ID).Str("name", car.Name).Msg("car created")
	return car, nil
}

func (s *CarService) GetCar(ctx context.Context, id string) (*domain.Car, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, id, "get car")
	}
	return car, nil
}

// ListCars returns one page of cars. When AvailableAt is set, cars with a
// rental window still active at that instant are left out.
func (s *CarService) ListCars(ctx context.Context, input ports.ListCarsInput) (*ports.ListCarsResult, error) {
	page := input.Page
	if page < 1 {
		page = defaultPage
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := ports.ListCarsFilter{
		Size:   input.Size,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	if input.AvailableAt != nil {
		blocked, err := s.rentals.BlockedVehicleIDs(ctx, input.AvailableAt.UTC())
		if err != nil {
			return nil, fmt.Errorf("list cars: blocked vehicles: %w", err)
		}
		filter.ExcludeIDs = blocked
	}

	cars, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}

	return &ports.ListCarsResult{
		Cars: cars,
		Pagination: ports.Pagination{
			Page:      page,
			PageCount: pageCount(total, pageSize),
			PageSize:  pageSize,
			Count:     total,
		},
	}, nil
}

func (s *CarService) UpdateCar(ctx context.Context, id string, update ports.CarUpdate) (*domain.Car, error) {
	car, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, notFoundAs(err, id, "update car")
	}

	s.logger.Info().Str("car_id", id).Msg("car updated")
	return car, nil
}

func (s *CarService) DeleteCar(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, id, "delete car")
	}

	s.logger.Info().Str("car_id", id).Msg("car deleted")
	return nil
}

func pageCount(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// notFoundAs maps a storage miss to RecordNotFound and wraps anything else.
func notFoundAs(err error, id, op string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.RecordNotFound(id)
	}
	return fmt.Errorf("%s: %w", op, err)
}
