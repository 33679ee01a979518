package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bcr/rental-system/internal/core/domain"
)

// RequireRole enforces role-based access control on an already authorized
// request. It is the role half of Authorize, for routes open to several roles.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return reject(c, domain.TokenMissing())
			}
			if _, ok := allowed[claims.Role.Name]; !ok {
				return reject(c, domain.InsufficientAccess(claims.Role.Name))
			}
			return next(c)
		}
	}
}
