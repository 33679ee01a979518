package domain

import "time"

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// DefaultRole is assigned to every identity created through registration.
const DefaultRole = RoleCustomer

// Role is immutable reference data; it is looked up, never created by the API.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User models a registered identity that can be authenticated.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Image        string    `json:"image,omitempty"`
	PasswordHash string    `json:"-"`
	RoleID       string    `json:"roleId"`
	Role         *Role     `json:"role,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Claims is the identity carried by a session token.
type Claims struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Image    string    `json:"image,omitempty"`
	Role     Role      `json:"role"`
	IssuedAt time.Time `json:"-"`
}
