package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bcr/rental-system/internal/core/domain"
)

func newContext(claims *domain.Claims) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(ClaimsKey, claims)
	}
	return c, rec
}

func TestRequireRole_Allows(t *testing.T) {
	c, rec := newContext(&domain.Claims{ID: "1", Role: domain.Role{Name: domain.RoleAdmin}})

	called := false
	handler := RequireRole(domain.RoleAdmin, domain.RoleCustomer)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	c, rec := newContext(&domain.Claims{ID: "1", Role: domain.Role{Name: domain.RoleCustomer}})

	handler := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if name := decodeBody(t, rec).Name; name != "InsufficientAccessError" {
		t.Fatalf("unexpected error name %q", name)
	}
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	c, rec := newContext(nil)

	handler := RequireRole(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if name := decodeBody(t, rec).Name; name != "TokenMissingError" {
		t.Fatalf("unexpected error name %q", name)
	}
}
