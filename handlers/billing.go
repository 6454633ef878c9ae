package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/vehicore/models"
)

func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.App.Billing.LoadProducts(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to load products")
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) ListPackages(c echo.Context) error {
	packages, err := h.App.Billing.LoadPackages(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to load packages")
	}
	return c.JSON(http.StatusOK, map[string]any{"packages": packages})
}

func (h *Handler) CreateCheckout(c echo.Context) error {
	var req models.CheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.App.Billing.Checkout(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to start checkout")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"url":       resp.RedirectURL(),
		"sessionId": resp.SessionID,
	})
}

// CheckoutSuccess waits for the purchase to be credited after the payment
// provider redirected back with a session id.
func (h *Handler) CheckoutSuccess(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	credited, err := h.App.Usage.AwaitPurchase(c.Request().Context(), sessionID)
	if err != nil {
		return respondError(c, err, "Failed to confirm purchase")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"polled":    sessionID != "",
		"credited":  credited,
	})
}
