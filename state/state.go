// Package state holds the dashboard's client-side state slices. Each store
// guards an immutable snapshot, talks to the backend through a narrow
// interface and never holds its lock across a network call.
package state

import (
	"context"
	"errors"

	"github.com/example/vehicore/models"
	"github.com/example/vehicore/services"
)

const fallbackError = "An error occurred"

// TokenStorage is the durable key-value store behind tokens and preferences.
type TokenStorage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(keys ...string) error
}

type AuthBackend interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.SignInResponse, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResponse, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.MessageResponse, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error)
	ConfirmEmail(ctx context.Context, token string) (*models.MessageResponse, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error)
	GetCurrentUser(ctx context.Context) (*models.User, error)
}

// SignOuter is implemented by backends that expose a sign-out endpoint.
type SignOuter interface {
	SignOut(ctx context.Context) error
}

type KeyBackend interface {
	ListKeys(ctx context.Context) ([]models.APIKey, error)
	CreateKey(ctx context.Context, name string) (*models.APIKey, error)
	RevokeKey(ctx context.Context, id string) error
}

type BillingBackend interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListPackages(ctx context.Context) ([]models.Package, error)
	CreateCheckout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
}

type UsageBackend interface {
	GetUsageOverview(ctx context.Context) (*models.UsageOverview, error)
}

// errorMessage is the user-facing text for a failed operation. Session
// expiry is handled globally and is never shown as an operation error.
func errorMessage(err error, fallback string) string {
	if errors.Is(err, services.ErrUnauthorized) {
		return ""
	}
	return services.MessageOr(err, fallback)
}
