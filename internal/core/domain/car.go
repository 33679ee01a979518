package domain

import "time"

// CarSize classifies a car by capacity.
type CarSize string

const (
	CarSizeSmall  CarSize = "SMALL"
	CarSizeMedium CarSize = "MEDIUM"
	CarSizeLarge  CarSize = "LARGE"
)

// Car is a rentable vehicle.
type Car struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Price             float64   `json:"price"`
	Size              CarSize   `json:"size"`
	Image             string    `json:"image"`
	IsCurrentlyRented bool      `json:"isCurrentlyRented"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
