package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/example/vehicore/config"
	"github.com/example/vehicore/models"
)

// Backend paths.
const (
	PathSignUp         = "/api/auth/sign-up"
	PathSignIn         = "/api/auth/sign-in"
	PathForgotPassword = "/api/auth/forgot-password"
	PathResetPassword  = "/api/auth/forgot-password"
	PathConfirmEmail   = "/api/auth/confirm-email"
	PathChangePassword = "/api/auth/change-password"
	PathCurrentUser    = "/api/users/me"
	PathKeys           = "/api/keys"
	PathRevokeKey      = "/api/keys/%s/revoke"
	PathProducts       = "/api/billing/products"
	PathPackages       = "/api/packages"
	PathCheckout       = "/api/billing/checkout"
	PathUsage          = "/api/usage"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	AccessToken() string
}

type VehiCoreService struct {
	BaseURL string
	Client  *http.Client
	Tokens  TokenSource

	// OnUnauthorized runs once for every 401 response.
	OnUnauthorized func()

	limiter *rate.Limiter
}

func NewVehiCoreService() *VehiCoreService {
	s := &VehiCoreService{
		BaseURL: strings.TrimSuffix(config.AppConfig.APIBaseURL, "/"),
		Client:  &http.Client{Timeout: config.AppConfig.RequestTimeout},
	}
	if s.Client.Timeout <= 0 {
		s.Client.Timeout = 10 * time.Second
	}
	if config.AppConfig.RateLimit > 0 {
		burst := config.AppConfig.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(config.AppConfig.RateLimit), burst)
	}
	return s
}

// Auth

func (s *VehiCoreService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.SignInResponse, error) {
	var resp models.SignInResponse
	if err := s.doJSON(ctx, "auth.sign_up", http.MethodPost, PathSignUp, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *VehiCoreService) SignIn(ctx context.Context, req models.SignInRequest) (*models.SignInResponse, error) {
	var resp models.SignInResponse
	if err := s.doJSON(ctx, "auth.sign_in", http.MethodPost, PathSignIn, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *VehiCoreService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := s.doJSON(ctx, "auth.forgot_password", http.MethodPost, PathForgotPassword, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword posts the new password to the forgot-password route with the reset token in the query.
func (s *VehiCoreService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	q := url.Values{}
	q.Set("token", req.Token)
	body := map[string]string{"password": req.Password}

	var resp models.MessageResponse
	if err := s.doJSON(ctx, "auth.reset_password", http.MethodPost, PathResetPassword, q, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *VehiCoreService) ConfirmEmail(ctx context.Context, token string) (*models.MessageResponse, error) {
	q := url.Values{}
	q.Set("token", token)

	var resp models.MessageResponse
	if err := s.doJSON(ctx, "auth.confirm_email", http.MethodGet, PathConfirmEmail, q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *VehiCoreService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := s.doJSON(ctx, "auth.change_password", http.MethodPost, PathChangePassword, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *VehiCoreService) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.doJSON(ctx, "users.me", http.MethodGet, PathCurrentUser, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Keys

func (s *VehiCoreService) ListKeys(ctx context.Context) ([]models.APIKey, error) {
	body, err := s.send(ctx, "keys.list", http.MethodGet, PathKeys, nil, nil)
	if err != nil {
		return nil, err
	}
	keys, err := decodeList[models.APIKey](body, "keys")
	if err != nil {
		return nil, fmt.Errorf("failed to decode keys: %w", err)
	}
	return keys, nil
}

func (s *VehiCoreService) CreateKey(ctx context.Context, name string) (*models.APIKey, error) {
	var key models.APIKey
	req := models.CreateKeyRequest{Name: name}
	if err := s.doJSON(ctx, "keys.create", http.MethodPost, PathKeys, nil, req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *VehiCoreService) RevokeKey(ctx context.Context, id string) error {
	path := fmt.Sprintf(PathRevokeKey, url.PathEscape(id))
	_, err := s.send(ctx, "keys.revoke", http.MethodPost, path, nil, nil)
	return err
}

// Billing

func (s *VehiCoreService) ListProducts(ctx context.Context) ([]models.Product, error) {
	body, err := s.send(ctx, "billing.products", http.MethodGet, PathProducts, nil, nil)
	if err != nil {
		return nil, err
	}
	products, err := decodeList[models.Product](body, "products")
	if err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *VehiCoreService) ListPackages(ctx context.Context) ([]models.Package, error) {
	body, err := s.send(ctx, "billing.packages", http.MethodGet, PathPackages, nil, nil)
	if err != nil {
		return nil, err
	}
	packages, err := decodeList[models.Package](body, "packages")
	if err != nil {
		return nil, fmt.Errorf("failed to decode packages: %w", err)
	}
	return packages, nil
}

func (s *VehiCoreService) CreateCheckout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	var resp models.CheckoutResponse
	if err := s.doJSON(ctx, "billing.checkout", http.MethodPost, PathCheckout, nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.RedirectURL() == "" {
		return nil, fmt.Errorf("checkout response carried no redirect url")
	}
	return &resp, nil
}

// Usage

func (s *VehiCoreService) GetUsageOverview(ctx context.Context) (*models.UsageOverview, error) {
	var overview models.UsageOverview
	if err := s.doJSON(ctx, "usage.overview", http.MethodGet, PathUsage, nil, nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

func (s *VehiCoreService) doJSON(ctx context.Context, endpoint, method, path string, query url.Values, payload, out any) error {
	body, err := s.send(ctx, endpoint, method, path, query, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (s *VehiCoreService) send(ctx context.Context, endpoint, method, path string, query url.Values, payload any) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqURL := s.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	s.setAuth(req)

	started := time.Now()
	resp, err := s.Client.Do(req)
	if err != nil {
		observe(endpoint, 0, started)
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	observe(endpoint, resp.StatusCode, started)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		unauthorizedTotal.Inc()
		log.Warn().Str("endpoint", endpoint).Str("request_id", requestID).Msg("Backend rejected session")
		if s.OnUnauthorized != nil {
			s.OnUnauthorized()
		}
		return nil, newAPIError(resp.StatusCode, body)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body)
		log.Debug().
			Str("endpoint", endpoint).
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("Backend request failed")
		return nil, apiErr
	}

	return body, nil
}

func (s *VehiCoreService) setAuth(req *http.Request) {
	if s.Tokens == nil {
		return
	}
	if token := s.Tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// decodeList accepts a bare array or an object wrapping it under field, "data" or "items".
func decodeList[T any](body []byte, field string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}

	if body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	for _, name := range []string{field, "data", "items"} {
		raw, ok := wrapped[name]
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return []T{}, nil
}
