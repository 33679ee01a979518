package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is; every *Error unwraps to exactly one.
var (
	ErrTokenMissing         = errors.New("token missing")
	ErrInvalidSignature     = errors.New("invalid token signature")
	ErrMalformedToken       = errors.New("malformed token")
	ErrTokenExpired         = errors.New("token expired")
	ErrInsufficientAccess   = errors.New("insufficient access")
	ErrEmailAlreadyTaken    = errors.New("email already taken")
	ErrEmailNotRegistered   = errors.New("email not registered")
	ErrWrongPassword        = errors.New("wrong password")
	ErrRecordNotFound       = errors.New("record not found")
	ErrVehicleAlreadyRented = errors.New("vehicle already rented")
	ErrInvalidRentalWindow  = errors.New("invalid rental window")
)

// Storage-level outcomes returned by repositories. Services translate these
// into the kinds above; they never reach the HTTP boundary on their own.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrRentalOverlap = errors.New("rental window overlaps an active rental")
)

// Error is a domain failure with enough context to render a self-describing
// response body.
type Error struct {
	Name    string
	Message string
	Details any
	kind    error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.kind }

func TokenMissing() *Error {
	return &Error{Name: "TokenMissingError", Message: "jwt must be provided", kind: ErrTokenMissing}
}

func InvalidSignature() *Error {
	return &Error{Name: "InvalidSignatureError", Message: "invalid signature", kind: ErrInvalidSignature}
}

func MalformedToken(reason string) *Error {
	return &Error{
		Name:    "MalformedTokenError",
		Message: "jwt malformed",
		Details: map[string]string{"reason": reason},
		kind:    ErrMalformedToken,
	}
}

func TokenExpired() *Error {
	return &Error{Name: "TokenExpiredError", Message: "jwt expired", kind: ErrTokenExpired}
}

func InsufficientAccess(role string) *Error {
	return &Error{
		Name:    "InsufficientAccessError",
		Message: "Access forbidden!",
		Details: map[string]string{
			"role":   role,
			"reason": fmt.Sprintf("%s is not allowed to perform this operation.", role),
		},
		kind: ErrInsufficientAccess,
	}
}

func EmailAlreadyTaken(email string) *Error {
	return &Error{
		Name:    "EmailAlreadyTakenError",
		Message: fmt.Sprintf("%s is already taken!!!", email),
		Details: map[string]string{"email": email},
		kind:    ErrEmailAlreadyTaken,
	}
}

func EmailNotRegistered(email string) *Error {
	return &Error{
		Name:    "EmailNotRegisteredError",
		Message: fmt.Sprintf("%s is not registered!", email),
		Details: map[string]string{"email": email},
		kind:    ErrEmailNotRegistered,
	}
}

func WrongPassword() *Error {
	return &Error{Name: "WrongPasswordError", Message: "Password is not correct!", kind: ErrWrongPassword}
}

func RecordNotFound(name string) *Error {
	return &Error{
		Name:    "RecordNotFoundError",
		Message: fmt.Sprintf("%s not found!", name),
		Details: map[string]string{"name": name},
		kind:    ErrRecordNotFound,
	}
}

func VehicleAlreadyRented(car *Car) *Error {
	name := car.ID
	if car.Name != "" {
		name = car.Name
	}
	return &Error{
		Name:    "CarAlreadyRentedError",
		Message: fmt.Sprintf("%s is already rented!!", name),
		Details: map[string]any{"car": car},
		kind:    ErrVehicleAlreadyRented,
	}
}

func InvalidRentalWindow(reason string) *Error {
	return &Error{
		Name:    "InvalidRentalWindowError",
		Message: reason,
		kind:    ErrInvalidRentalWindow,
	}
}
