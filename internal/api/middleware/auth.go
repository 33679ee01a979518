package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bcr/rental-system/internal/api/response"
	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
	"github.com/bcr/rental-system/internal/pkg/metrics"
)

// ClaimsKey is the echo context key holding the *domain.Claims of an
// authorized request.
const ClaimsKey = "claims"

// Authorize validates the bearer token and injects its claims into the
// context. A non-empty requiredRole must match the token's role exactly.
//
// Every failure is answered here with a 401 envelope; the next handler is
// never called.
func Authorize(decoder ports.TokenDecoder, requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := decoder.Decode(bearerToken(c.Request()))
			if err != nil {
				return reject(c, err)
			}

			if requiredRole != "" && claims.Role.Name != requiredRole {
				return reject(c, domain.InsufficientAccess(claims.Role.Name))
			}

			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Authorize.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

// bearerToken extracts the credential of an "Authorization: Bearer <token>"
// header. Any other shape yields "".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization)), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// reject writes the 401 envelope for err. Errors that are not domain errors
// are reported as a malformed token rather than leaking their text.
func reject(c echo.Context, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.MalformedToken("token could not be decoded")
	}
	metrics.AuthRejectionsTotal.WithLabelValues(de.Name).Inc()
	return response.WriteDomain(c, http.StatusUnauthorized, de)
}
