package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcr/rental-system/internal/api/response"
	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
	"github.com/bcr/rental-system/internal/infrastructure/auth"
)

type fakeAuth struct{ ports.AuthService }

type fakeCars struct {
	ports.CarService
	created int
}

func (f *fakeCars) CreateCar(ctx context.Context, in ports.CreateCarInput) (*domain.Car, error) {
	f.created++
	return &domain.Car{ID: "c1", Name: in.Name, Price: in.Price, Size: in.Size}, nil
}

type fakeRentals struct{ userID string }

func (f *fakeRentals) Rent(ctx context.Context, in ports.RentInput) (*domain.RentalWindow, error) {
	f.userID = in.UserID
	return &domain.RentalWindow{ID: "r1", CarID: in.CarID, UserID: in.UserID, RentStartedAt: in.RentStartedAt}, nil
}

type routerFixture struct {
	t       *testing.T
	codec   *auth.JWTCodec
	cars    *fakeCars
	rentals *fakeRentals
	e       *echo.Echo
}

func newRouterFixture(t *testing.T) *routerFixture {
	codec, err := auth.NewJWTCodec("router-test-secret", time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	f := &routerFixture{t: t, codec: codec, cars: &fakeCars{}, rentals: &fakeRentals{}}
	f.e = NewRouter(Deps{
		Log:        zerolog.Nop(),
		Tokens:     codec,
		Auth:       fakeAuth{},
		Cars:       f.cars,
		Rentals:    f.rentals,
		Registerer: reg,
		Gatherer:   reg,
	})
	return f
}

func (f *routerFixture) token(role string) string {
	token, err := f.codec.Encode(
		&domain.User{ID: "u7", Name: "bochi", Email: "bochi@mail.com"},
		&domain.Role{ID: "r1", Name: role},
	)
	require.NoError(f.t, err)
	return "Bearer " + token
}

func (f *routerFixture) do(method, target, authorization, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func errorName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Name
}

func TestRouter_Root(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","message":"BCR API is up and running!"}`, rec.Body.String())
}

func TestRouter_UnknownRoute(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFoundError", errorName(t, rec))
}

func TestRouter_AdminRouteRequiresToken(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(http.MethodPost, "/cars", "", `{"name":"Van","price":1,"size":"LARGE"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TokenMissingError", errorName(t, rec))
	assert.Zero(t, f.cars.created)
}

func TestRouter_AdminRouteRejectsCustomer(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(http.MethodPost, "/cars", f.token(domain.RoleCustomer), `{"name":"Van","price":1,"size":"LARGE"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InsufficientAccessError", errorName(t, rec))
	assert.Zero(t, f.cars.created)
}

func TestRouter_AdminCreatesCar(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(http.MethodPost, "/cars", f.token(domain.RoleAdmin), `{"name":"Van","price":1,"size":"LARGE"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, f.cars.created)
}

func TestRouter_RentIsCustomerOnly(t *testing.T) {
	f := newRouterFixture(t)
	body := `{"rentStartedAt":"2026-03-01T10:00:00Z"}`

	rec := f.do(http.MethodPost, "/cars/c1/rent", f.token(domain.RoleAdmin), body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InsufficientAccessError", errorName(t, rec))

	rec = f.do(http.MethodPost, "/cars/c1/rent", f.token(domain.RoleCustomer), body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u7", f.rentals.userID)
}

func TestRouter_TamperedToken(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(domain.RoleCustomer)
	rec := f.do(http.MethodPost, "/cars/c1/rent", token[:len(token)-2]+"xx", `{"rentStartedAt":"2026-03-01T10:00:00Z"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.rentals.userID)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health/ready", "", "").Code)

	rec := f.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MeRejectsUnknownRole(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.do(http.MethodGet, "/auth/me", f.token("GUEST"), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InsufficientAccessError", errorName(t, rec))
}
