package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LoginPath is where clients are sent when the session is missing or expired.
const LoginPath = "/login"

// SessionChecker resolves whether a usable session exists.
type SessionChecker interface {
	CheckAuth() bool
}

type AuthMiddleware struct {
	Session SessionChecker
}

func NewAuthMiddleware(session SessionChecker) *AuthMiddleware {
	return &AuthMiddleware{
		Session: session,
	}
}

// RequireSession rejects the request unless a stored, unexpired access token exists.
func (m *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.Session.CheckAuth() {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error":    "Unauthorized: sign in required",
				"redirect": LoginPath,
			})
		}
		return next(c)
	}
}
