package ports

import (
	"context"
	"time"

	"github.com/bcr/rental-system/internal/core/domain"
)

// RentInput is the DTO passed from the transport layer to RentalService.
type RentInput struct {
	CarID         string
	UserID        string
	RentStartedAt time.Time
	RentEndedAt   *time.Time // optional
}

// RentalService assigns cars to renters without double-booking.
type RentalService interface {
	Rent(ctx context.Context, input RentInput) (*domain.RentalWindow, error)
}
