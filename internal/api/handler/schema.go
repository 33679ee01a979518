package handler

import (
	"time"

	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
)

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// --- Cars ---

type createCarRequest struct {
	Name  string  `json:"name"  validate:"required"`
	Price float64 `json:"price" validate:"required,gt=0"`
	Size  string  `json:"size"  validate:"required,oneof=SMALL MEDIUM LARGE"`
	Image string  `json:"image" validate:"omitempty,url"`
}

type updateCarRequest struct {
	Name              string  `json:"name"              validate:"required"`
	Price             float64 `json:"price"             validate:"required,gt=0"`
	Size              string  `json:"size"              validate:"required,oneof=SMALL MEDIUM LARGE"`
	Image             string  `json:"image"             validate:"omitempty,url"`
	IsCurrentlyRented bool    `json:"isCurrentlyRented"`
}

type listCarsQuery struct {
	Size        string `query:"size"        validate:"omitempty,oneof=SMALL MEDIUM LARGE"`
	AvailableAt string `query:"availableAt"`
	Page        int    `query:"page"        validate:"gte=0"`
	PageSize    int    `query:"pageSize"    validate:"gte=0,max=100"`
}

type listCarsMeta struct {
	Pagination ports.Pagination `json:"pagination"`
}

type listCarsResponse struct {
	Cars []*domain.Car `json:"cars"`
	Meta listCarsMeta  `json:"meta"`
}

// --- Rentals ---

type rentCarRequest struct {
	RentStartedAt time.Time  `json:"rentStartedAt"`
	RentEndedAt   *time.Time `json:"rentEndedAt"`
}
