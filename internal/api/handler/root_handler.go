package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type rootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Root answers GET / so clients can tell the API is reachable.
//
// @Summary      API status
// @Tags         system
// @Produce      json
// @Success      200  {object}  rootResponse
// @Router       / [get]
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, rootResponse{Status: "OK", Message: "BCR API is up and running!"})
}
