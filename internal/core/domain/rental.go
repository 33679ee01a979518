package domain

import "time"

// RentalWindow assigns a car to a renter for a period of time.
// A nil RentEndedAt means the rental has not ended yet.
type RentalWindow struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	CarID         string     `json:"carId"`
	RentStartedAt time.Time  `json:"rentStartedAt"`
	RentEndedAt   *time.Time `json:"rentEndedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Blocks reports whether w prevents a new rental of the same car starting at
// start. The boundary is inclusive: a window ending exactly at start blocks.
func (w RentalWindow) Blocks(start time.Time) bool {
	return w.RentEndedAt == nil || !w.RentEndedAt.Before(start)
}
