package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bcr/rental-system/internal/api/middleware"
	"github.com/bcr/rental-system/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Authorize middleware. Their
// absence means the route was mounted without the gate; fail closed.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, domain.TokenMissing()
	}
	return claims, nil
}
