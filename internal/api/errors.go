package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/david/deal-portal/internal/repository"
	"github.com/david/deal-portal/internal/source"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Hint  string `json:"hint,omitempty"`
}

// describeError maps an error onto an HTTP status and response body.
func describeError(err error) (int, errorBody) {
	var (
		cfgErr    *repository.ConfigurationError
		connErr   *repository.ConnectivityError
		schemaErr *repository.SchemaMismatchError
		writeErr  *repository.WriteError
		throttled *throttledError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: "configuration", Hint: cfgErr.Hint}
	case errors.As(err, &connErr):
		return http.StatusBadGateway, errorBody{Error: err.Error(), Kind: "connectivity"}
	case errors.As(err, &schemaErr):
		return http.StatusConflict, errorBody{Error: err.Error(), Kind: "schema_mismatch"}
	case errors.As(err, &writeErr):
		return http.StatusBadGateway, errorBody{Error: err.Error(), Kind: "write"}
	case errors.As(err, &throttled):
		return http.StatusTooManyRequests, errorBody{Error: err.Error(), Kind: "throttled"}
	case errors.Is(err, source.ErrUnsupported):
		return http.StatusNotImplemented, errorBody{Error: err.Error(), Kind: "unsupported"}
	}
	return http.StatusInternalServerError, errorBody{Error: "Internal Server Error", Kind: "internal"}
}

// errorJSON logs err and writes it as a JSON error response.
func (s *Server) errorJSON(c echo.Context, err error) error {
	status, body := describeError(err)
	s.logFailure(c, status, body.Kind, err)

	var throttled *throttledError
	if errors.As(err, &throttled) {
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(throttled.retryAfter)))
	}
	return c.JSON(status, body)
}

func (s *Server) logFailure(c echo.Context, status int, kind string, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.Request().Context(), level, "Request failed", "path", c.Path(), "status", status, "kind", kind, "error", err)
}
