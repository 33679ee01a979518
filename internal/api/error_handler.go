package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bcr/rental-system/internal/api/response"
	"github.com/bcr/rental-system/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders domain errors with the status of their kind.
//   - Renders echo's own errors (bind failures, unknown routes) in the same envelope.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = render(err, log, c)
	}
}

func render(err error, log zerolog.Logger, c echo.Context) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return response.WriteDomain(c, response.StatusFor(de), de)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound && errors.Is(err, echo.ErrNotFound) {
			req := c.Request()
			return response.Write(c, http.StatusNotFound, "NotFoundError",
				fmt.Sprintf("%s %s not found", req.Method, req.URL.Path),
				map[string]string{"method": req.Method, "url": req.URL.String()},
			)
		}
		return response.Write(c, he.Code, httpErrorName(he.Code), fmt.Sprintf("%v", he.Message), nil)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return response.Write(c, http.StatusInternalServerError, "InternalServerError", "internal server error", nil)
}

// httpErrorName turns a status code into an error name, e.g. 400 → "BadRequestError".
func httpErrorName(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "HTTPError"
	}
	name := strings.NewReplacer(" ", "", "-", "", "'", "").Replace(text)
	if !strings.HasSuffix(name, "Error") {
		name += "Error"
	}
	return name
}
