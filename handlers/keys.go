package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/vehicore/models"
	"github.com/example/vehicore/onboarding"
)

func (h *Handler) ListKeys(c echo.Context) error {
	if _, err := h.App.Keys.List(c.Request().Context()); err != nil {
		return respondError(c, err, "Failed to load API keys")
	}
	return c.JSON(http.StatusOK, h.App.Keys.Snapshot())
}

// CreateKey returns the plaintext key exactly once alongside its masked form.
func (h *Handler) CreateKey(c echo.Context) error {
	var req models.CreateKeyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	key, err := h.App.Keys.Create(c.Request().Context(), req.Name)
	if err != nil {
		return respondError(c, err, "Failed to create API key")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"key":     key,
		"masked":  onboarding.Mask(key.Plaintext()),
		"message": "Copy this key now. It will not be shown again.",
	})
}

func (h *Handler) AcknowledgeKey(c echo.Context) error {
	h.App.Keys.AcknowledgeNewKey()
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// DeleteKey revokes a key. Revocation cannot be undone, so the caller must
// pass confirm=true.
func (h *Handler) DeleteKey(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Revoking a key cannot be undone; repeat the request with confirm=true",
		})
	}

	if err := h.App.Keys.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err, "Failed to revoke API key")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
