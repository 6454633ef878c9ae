package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/vehicore/onboarding"
)

// GetRoute returns the dashboard state the client should render. The key list
// is fetched again on every call so the decision follows first use.
func (h *Handler) GetRoute(c echo.Context) error {
	if err := h.refreshKeys(c); err != nil {
		return respondError(c, err, "Failed to load API keys")
	}
	return c.JSON(http.StatusOK, h.App.Route())
}

func (h *Handler) GetOnboarding(c echo.Context) error {
	if err := h.refreshKeys(c); err != nil {
		return respondError(c, err, "Failed to load API keys")
	}

	keys := h.App.Keys.Snapshot()
	content := onboarding.BuildContent(keys.Keys, keys.NewlyCreated, h.App.Config.APIBaseURL, c.QueryParam("reveal") == "true")
	return c.JSON(http.StatusOK, map[string]any{
		"decision": h.App.Route(),
		"content":  content,
	})
}

func (h *Handler) refreshKeys(c echo.Context) error {
	if !h.App.Session.CheckAuth() {
		return nil
	}
	_, err := h.App.Keys.List(c.Request().Context())
	return err
}
