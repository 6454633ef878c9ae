package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/vehicore/models"
	"github.com/example/vehicore/onboarding"
	"github.com/example/vehicore/services"
)

func (h *Handler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.App.Session.SignIn(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to sign in")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user":     user,
		"redirect": onboarding.DashboardPath,
	})
}

func (h *Handler) SignUp(c echo.Context) error {
	var req models.SignUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.App.Session.SignUp(c.Request().Context(), req); err != nil {
		return respondError(c, err, "Failed to sign up")
	}
	return c.JSON(http.StatusCreated, models.MessageResponse{
		Message: "Check your email to confirm your account",
		Success: true,
	})
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.App.Session.ForgotPassword(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to send reset email")
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword accepts the token in the body or, as in the emailed link, the query string.
func (h *Handler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		req.Token = c.QueryParam("token")
	}

	resp, err := h.App.Session.ResetPassword(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to reset password")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ConfirmEmail(c echo.Context) error {
	resp, err := h.App.Session.ConfirmEmail(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return respondError(c, err, "Failed to confirm email")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.App.Session.ChangePassword(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to change password")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) SignOut(c echo.Context) error {
	h.App.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"redirect": onboarding.LoginPath,
	})
}

// GetSession reports the session state, loading the profile on first use.
func (h *Handler) GetSession(c echo.Context) error {
	if h.App.Session.CheckAuth() && h.App.Session.Snapshot().User == nil {
		if _, err := h.App.Session.LoadCurrentUser(c.Request().Context()); err != nil && !errors.Is(err, services.ErrUnauthorized) {
			return respondError(c, err, "Failed to load user")
		}
	}
	return c.JSON(http.StatusOK, h.App.Session.Snapshot())
}

func (h *Handler) GetMe(c echo.Context) error {
	user, err := h.App.Session.LoadCurrentUser(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to load user")
	}
	return c.JSON(http.StatusOK, user)
}
