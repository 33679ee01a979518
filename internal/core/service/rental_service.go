package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
	"github.com/bcr/rental-system/internal/pkg/metrics"
)

// ErrLockHoldExceeded reports that the check or the write did not finish
// before the car's lock stopped being guaranteed. Nothing is booked.
var ErrLockHoldExceeded = errors.New("rental lock hold budget exceeded")

type rentalService struct {
	cars            ports.CarRepository
	rentals         ports.RentalRepository
	locker          ports.VehicleLocker
	defaultDuration time.Duration
	log             zerolog.Logger
	now             func() time.Time
}

// NewRentalService returns a RentalService implementation. A window without
// an end is closed at start+defaultDuration; a zero defaultDuration leaves it
// open-ended.
func NewRentalService(
	cars ports.CarRepository,
	rentals ports.RentalRepository,
	locker ports.VehicleLocker,
	defaultDuration time.Duration,
	log zerolog.Logger,
) ports.RentalService {
	return &rentalService{
		cars:            cars,
		rentals:         rentals,
		locker:          locker,
		defaultDuration: defaultDuration,
		log:             log,
		now:             time.Now,
	}
}

// Rent books a car for the requested window unless an active window already
// blocks it. The check and the write run under the car's lock so two
// concurrent requests for the same car cannot both succeed.
func (s *rentalService) Rent(ctx context.Context, in ports.RentInput) (*domain.RentalWindow, error) {
	if in.RentStartedAt.IsZero() {
		return nil, domain.InvalidRentalWindow("rentStartedAt is required")
	}
	start := in.RentStartedAt.UTC()

	end := in.RentEndedAt
	if end == nil && s.defaultDuration > 0 {
		e := start.Add(s.defaultDuration)
		end = &e
	}
	if end != nil {
		e := end.UTC()
		if !e.After(start) {
			return nil, domain.InvalidRentalWindow("rentEndedAt must be after rentStartedAt")
		}
		end = &e
	}

	car, err := s.cars.FindByID(ctx, in.CarID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.RecordNotFound(in.CarID)
		}
		return nil, fmt.Errorf("rent: find car: %w", err)
	}

	// Check and create run under held, which ends before the lock can lapse.
	held, release, err := s.locker.Lock(ctx, car.ID)
	if err != nil {
		return nil, fmt.Errorf("rent: lock car %s: %w", car.ID, err)
	}
	defer release()

	active, err := s.rentals.FindActiveForVehicle(held, car.ID, start)
	if err != nil {
		return nil, s.lockedErr(ctx, held, car.ID, "find active rentals", err)
	}
	if len(active) > 0 {
		metrics.RentalConflictsTotal.WithLabelValues("check").Inc()
		s.log.Warn().Str("car_id", car.ID).Str("user_id", in.UserID).Time("start", start).Msg("rental conflict")
		return nil, domain.VehicleAlreadyRented(car)
	}

	now := s.now().UTC()
	window := &domain.RentalWindow{
		UserID:        in.UserID,
		CarID:         car.ID,
		RentStartedAt: start,
		RentEndedAt:   end,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.rentals.Create(held, window); err != nil {
		if errors.Is(err, domain.ErrRentalOverlap) {
			metrics.RentalConflictsTotal.WithLabelValues("storage").Inc()
			s.log.Warn().Str("car_id", car.ID).Str("user_id", in.UserID).Msg("rental conflict rejected by store")
			return nil, domain.VehicleAlreadyRented(car)
		}
		return nil, s.lockedErr(ctx, held, car.ID, "create rental", err)
	}

	metrics.RentalsCreatedTotal.Inc()
	s.log.Info().
		Str("rental_id", window.ID).
		Str("car_id", car.ID).
		Str("user_id", in.UserID).
		Time("start", start).
		Msg("rental created")

	return window, nil
}

// lockedErr wraps a failure of work done under the car's lock, naming the
// case where the lock's hold budget ran out rather than the caller giving up.
func (s *rentalService) lockedErr(ctx, held context.Context, carID, op string, err error) error {
	if held.Err() != nil && ctx.Err() == nil {
		s.log.Error().Err(err).Str("car_id", carID).Str("op", op).Msg("rental lock hold budget exceeded")
		return fmt.Errorf("rent: %s: %w: %w", op, ErrLockHoldExceeded, err)
	}
	return fmt.Errorf("rent: %s: %w", op, err)
}
