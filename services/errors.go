package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned after the backend answered 401 and the session was torn down.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
	Errors     map[string][]string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("vehicore api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("vehicore api error (status %d): %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == 401 {
		return ErrUnauthorized
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}

	var payload struct {
		Message json.RawMessage     `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	apiErr.Errors = payload.Errors

	// NestJS-style backends send either a string or a list of strings.
	var msg string
	var msgs []string
	switch {
	case json.Unmarshal(payload.Message, &msg) == nil && msg != "":
		apiErr.Message = msg
	case json.Unmarshal(payload.Message, &msgs) == nil && len(msgs) > 0:
		apiErr.Message = strings.Join(msgs, "; ")
	case payload.Error != "":
		apiErr.Message = payload.Error
	}
	return apiErr
}

// MessageOr returns the backend message carried by err, or fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
