package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Register mounts the BFF routes under prefix. Everything except the auth
// flows, the session probe and the routing decision needs a session.
func (h *Handler) Register(e *echo.Echo, prefix string, requireSession echo.MiddlewareFunc) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/sign-in", h.SignIn)
	auth.POST("/sign-up", h.SignUp)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)
	auth.GET("/confirm-email", h.ConfirmEmail)
	auth.POST("/sign-out", h.SignOut)
	auth.GET("/session", h.GetSession)
	auth.POST("/change-password", h.ChangePassword, requireSession)

	api.GET("/route", h.GetRoute)

	private := api.Group("", requireSession)
	private.GET("/me", h.GetMe)
	private.GET("/onboarding", h.GetOnboarding)

	private.GET("/keys", h.ListKeys)
	private.POST("/keys", h.CreateKey)
	private.POST("/keys/acknowledge", h.AcknowledgeKey)
	private.DELETE("/keys/:id", h.DeleteKey)

	private.GET("/billing/products", h.ListProducts)
	private.GET("/billing/packages", h.ListPackages)
	private.POST("/billing/checkout", h.CreateCheckout)
	private.GET("/billing/checkout/success", h.CheckoutSuccess)

	private.GET("/usage", h.GetUsage)

	private.GET("/settings/language", h.GetLanguage)
	private.PUT("/settings/language", h.SetLanguage)
}
