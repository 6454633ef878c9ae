package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/example/vehicore/models"
	"github.com/example/vehicore/validation"
)

type Session struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	AuthLoading     bool         `json:"authLoading"`
	User            *models.User `json:"user"`
	Error           string       `json:"error,omitempty"`
}

type SessionStore struct {
	backend AuthBackend
	storage TokenStorage
	now     func() time.Time

	mu      sync.RWMutex
	session Session
	pending int
}

func NewSessionStore(backend AuthBackend, storage TokenStorage) *SessionStore {
	return &SessionStore{
		backend: backend,
		storage: storage,
		now:     time.Now,
	}
}

func (s *SessionStore) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

// AccessToken returns the stored bearer token, or "" when signed out.
func (s *SessionStore) AccessToken() string {
	token, ok, err := s.storage.Get(models.AccessTokenKey)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read access token")
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// CheckAuth resolves the authenticated flag from durable storage. A token
// that decodes as a JWT with an expiry in the past counts as signed out and
// is discarded.
func (s *SessionStore) CheckAuth() bool {
	token := s.AccessToken()
	authenticated := token != ""
	if authenticated && s.expired(token) {
		log.Info().Msg("Stored access token has expired")
		s.clearTokens()
		authenticated = false
	}

	s.mu.Lock()
	s.session.IsAuthenticated = authenticated
	if !authenticated {
		s.session.User = nil
	}
	s.mu.Unlock()
	return authenticated
}

func (s *SessionStore) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque tokens carry no expiry.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(s.now())
}

// HandleUnauthorized drops the session after the backend rejected the token.
func (s *SessionStore) HandleUnauthorized() {
	s.clearTokens()
	s.mu.Lock()
	s.session.IsAuthenticated = false
	s.session.User = nil
	s.mu.Unlock()
}

func (s *SessionStore) SignIn(ctx context.Context, req models.SignInRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	s.begin()
	resp, err := s.backend.SignIn(ctx, req)
	if err == nil && (resp == nil || resp.AccessToken == "") {
		err = errors.New("empty sign-in response")
	}
	if err == nil {
		err = s.storeTokens(resp)
	}
	if err != nil {
		s.end(err, true)
		return nil, err
	}

	user := resp.User
	s.mu.Lock()
	s.session.IsAuthenticated = true
	s.session.User = &user
	s.mu.Unlock()
	s.end(nil, true)

	out := user
	return &out, nil
}

func (s *SessionStore) storeTokens(resp *models.SignInResponse) error {
	if resp.AccessToken != "" {
		if err := s.storage.Set(models.AccessTokenKey, resp.AccessToken); err != nil {
			return fmt.Errorf("failed to store access token: %w", err)
		}
	}
	if resp.RefreshToken != "" {
		if err := s.storage.Set(models.RefreshTokenKey, resp.RefreshToken); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
	}
	return nil
}

// SignUp registers the account. Email confirmation is required before the
// first sign-in, so any stored tokens are cleared and the session stays
// unauthenticated.
func (s *SessionStore) SignUp(ctx context.Context, req models.SignUpRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	s.begin()
	_, err := s.backend.SignUp(ctx, req)
	if err == nil {
		s.clearTokens()
		s.mu.Lock()
		s.session.IsAuthenticated = false
		s.session.User = nil
		s.mu.Unlock()
	}
	s.end(err, true)
	return err
}

// Logout always succeeds locally; tokens are cleared even when the backend
// call fails.
func (s *SessionStore) Logout(ctx context.Context) {
	s.begin()
	defer func() {
		s.clearTokens()
		s.mu.Lock()
		s.session.IsAuthenticated = false
		s.session.User = nil
		s.mu.Unlock()
		s.end(nil, true)
	}()

	if so, ok := s.backend.(SignOuter); ok {
		if err := so.SignOut(ctx); err != nil {
			log.Warn().Err(err).Msg("Backend sign-out failed")
		}
	}
}

func (s *SessionStore) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.MessageResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.backend.ForgotPassword(ctx, req)
}

func (s *SessionStore) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.backend.ResetPassword(ctx, req)
}

func (s *SessionStore) ConfirmEmail(ctx context.Context, token string) (*models.MessageResponse, error) {
	if token == "" {
		return nil, validation.Errors{"token": "token is required"}
	}
	return s.backend.ConfirmEmail(ctx, token)
}

func (s *SessionStore) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	s.begin()
	resp, err := s.backend.ChangePassword(ctx, req)
	s.end(err, false)
	return resp, err
}

// LoadCurrentUser refreshes the profile of the signed-in user.
func (s *SessionStore) LoadCurrentUser(ctx context.Context) (*models.User, error) {
	user, err := s.backend.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("empty user response")
	}

	u := *user
	s.mu.Lock()
	s.session.User = &u
	s.mu.Unlock()
	return user, nil
}

func (s *SessionStore) begin() {
	s.mu.Lock()
	s.pending++
	s.session.AuthLoading = true
	s.mu.Unlock()
}

// end settles one in-flight operation. Only sign-in, sign-up and logout
// outcomes are reflected in Error.
func (s *SessionStore) end(err error, tracked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	s.session.AuthLoading = s.pending > 0
	if !tracked {
		return
	}
	if err != nil {
		if _, ok := validation.AsErrors(err); !ok {
			s.session.Error = errorMessage(err, fallbackError)
		}
		return
	}
	s.session.Error = ""
}

func (s *SessionStore) clearTokens() {
	if err := s.storage.Remove(models.AccessTokenKey, models.RefreshTokenKey); err != nil {
		log.Error().Err(err).Msg("Failed to clear stored tokens")
	}
}
