package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/example/vehicore/middleware"
	"github.com/example/vehicore/services"
	"github.com/example/vehicore/state"
	"github.com/example/vehicore/validation"
)

type Handler struct {
	App *state.App
}

func NewHandler(app *state.App) *Handler {
	return &Handler{
		App: app,
	}
}

// respondError maps an operation error onto the BFF error contract.
func respondError(c echo.Context, err error, fallback string) error {
	if fields, ok := validation.AsErrors(err); ok {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "Validation failed",
			"fields": fields,
		})
	}
	if errors.Is(err, services.ErrUnauthorized) {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error":    "Session expired",
			"redirect": middleware.LoginPath,
		})
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status >= 500 || status < 400 {
			status = http.StatusBadGateway
		}
		return c.JSON(status, map[string]string{"error": services.MessageOr(err, fallback)})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg(fallback)
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": fallback})
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	return nil
}
