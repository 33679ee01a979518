// Package response renders the error envelope shared by the error handler
// and the access control middleware.
package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bcr/rental-system/internal/core/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// ErrorBody is the canonical error envelope: {"error":{name,message,details}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// StatusFor maps a domain error kind to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTokenMissing),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrMalformedToken),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrInsufficientAccess),
		errors.Is(err, domain.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmailNotRegistered),
		errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailAlreadyTaken),
		errors.Is(err, domain.ErrVehicleAlreadyRented),
		errors.Is(err, domain.ErrInvalidRentalWindow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Write renders the envelope with the given status.
func Write(c echo.Context, status int, name, message string, details any) error {
	return c.JSON(status, ErrorBody{Error: ErrorDetail{Name: name, Message: message, Details: details}})
}

// WriteDomain renders e with status.
func WriteDomain(c echo.Context, status int, e *domain.Error) error {
	return Write(c, status, e.Name, e.Message, e.Details)
}
