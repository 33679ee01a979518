package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bcr/rental-system/internal/core/domain"
	"github.com/bcr/rental-system/internal/core/ports"
)

// CarHandler handles HTTP requests for the fleet and for renting cars.
type CarHandler struct {
	cars    ports.CarService
	rentals ports.RentalService
}

func NewCarHandler(cars ports.CarService, rentals ports.RentalService) *CarHandler {
	return &CarHandler{cars: cars, rentals: rentals}
}

// List returns one page of cars.
//
// @Summary      List cars
// @Tags         cars
// @Produce      json
// @Param        size         query     string  false  "SMALL, MEDIUM or LARGE"
// @Param        availableAt  query     string  false  "RFC 3339 instant the car must be free at"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        pageSize     query     int     false  "Page size (default 10, max 100)"
// @Success      200          {object}  listCarsResponse
// @Failure      400          {object}  response.ErrorBody
// @Router       /cars [get]
func (h *CarHandler) List(c echo.Context) error {
	var q listCarsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	input := ports.ListCarsInput{
		Size:     domain.CarSize(q.Size),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.AvailableAt != "" {
		at, err := time.Parse(time.RFC3339, q.AvailableAt)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "availableAt must be an RFC 3339 timestamp")
		}
		input.AvailableAt = &at
	}

	result, err := h.cars.ListCars(c.Request().Context(), input)
	if err != nil {
		return err
	}

	cars := result.Cars
	if cars == nil {
		cars = []*domain.Car{}
	}
	return c.JSON(http.StatusOK, listCarsResponse{
		Cars: cars,
		Meta: listCarsMeta{Pagination: result.Pagination},
	})
}

// Get returns a single car.
//
// @Summary      Get a car
// @Tags         cars
// @Produce      json
// @Param        id   path      string  true  "Car ID"
// @Success      200  {object}  domain.Car
// @Failure      404  {object}  response.ErrorBody
// @Router       /cars/{id} [get]
func (h *CarHandler) Get(c echo.Context) error {
	car, err := h.cars.GetCar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, car)
}

// Create adds a car to the fleet.
//
// @Summary      Create a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCarRequest  true  "Car attributes"
// @Success      201   {object}  domain.Car
// @Failure      400   {object}  response.ErrorBody
// @Failure      401   {object}  response.ErrorBody
// @Router       /cars [post]
func (h *CarHandler) Create(c echo.Context) error {
	var req createCarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	car, err := h.cars.CreateCar(c.Request().Context(), ports.CreateCarInput{
		Name:  req.Name,
		Price: req.Price,
		Size:  domain.CarSize(req.Size),
		Image: req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, car)
}

// Update replaces the attributes of a car.
//
// @Summary      Update a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Car ID"
// @Param        body  body      updateCarRequest  true  "Car attributes"
// @Success      200   {object}  domain.Car
// @Failure      400   {object}  response.ErrorBody
// @Failure      401   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Router       /cars/{id} [put]
func (h *CarHandler) Update(c echo.Context) error {
	var req updateCarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	car, err := h.cars.UpdateCar(c.Request().Context(), c.Param("id"), ports.CarUpdate{
		Name:              req.Name,
		Price:             req.Price,
		Size:              domain.CarSize(req.Size),
		Image:             req.Image,
		IsCurrentlyRented: req.IsCurrentlyRented,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, car)
}

// Delete removes a car from the fleet.
//
// @Summary      Delete a car
// @Tags         cars
// @Security     BearerAuth
// @Param        id   path  string  true  "Car ID"
// @Success      204
// @Failure      401  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /cars/{id} [delete]
func (h *CarHandler) Delete(c echo.Context) error {
	if err := h.cars.DeleteCar(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Rent books a car for the authenticated customer.
//
// @Summary      Rent a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Car ID"
// @Param        body  body      rentCarRequest  true  "Rental window; rentEndedAt defaults to one day after the start"
// @Success      201   {object}  domain.RentalWindow
// @Failure      401   {object}  response.ErrorBody
// @Failure      404   {object}  response.ErrorBody
// @Failure      422   {object}  response.ErrorBody
// @Router       /cars/{id}/rent [post]
func (h *CarHandler) Rent(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req rentCarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	window, err := h.rentals.Rent(c.Request().Context(), ports.RentInput{
		CarID:         c.Param("id"),
		UserID:        claims.ID,
		RentStartedAt: req.RentStartedAt,
		RentEndedAt:   req.RentEndedAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, window)
}
