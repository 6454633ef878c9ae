// Package onboarding decides which dashboard surface a user lands on and
// builds the first-run integration guide.
package onboarding

import (
	"github.com/example/vehicore/models"
)

type State string

const (
	StateLoading        State = "LOADING"
	StateSignIn         State = "SIGN_IN"
	StateOnboarding     State = "ONBOARDING"
	StateUsageDashboard State = "USAGE_DASHBOARD"
)

// Landing routes.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// IsKeyUsed reports whether the key has authenticated at least one request.
func IsKeyUsed(key models.APIKey) bool {
	_, used := key.UsedAt()
	return used
}

// ShouldShowOnboarding is true while the user has no key or any key is unused.
func ShouldShowOnboarding(keys []models.APIKey) bool {
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if !IsKeyUsed(k) {
			return true
		}
	}
	return false
}

type Input struct {
	AuthLoading   bool
	Authenticated bool
	KeysLoaded    bool
	Keys          []models.APIKey
}

type Decision struct {
	State    State  `json:"state"`
	Redirect string `json:"redirect,omitempty"`
}

// Decide maps the current session and key list to a dashboard state. It holds
// no memory between calls.
func Decide(in Input) Decision {
	switch {
	case in.AuthLoading:
		return Decision{State: StateLoading}
	case !in.Authenticated:
		return Decision{State: StateSignIn, Redirect: LoginPath}
	case !in.KeysLoaded:
		return Decision{State: StateLoading}
	case ShouldShowOnboarding(in.Keys):
		return Decision{State: StateOnboarding, Redirect: DashboardPath}
	default:
		return Decision{State: StateUsageDashboard, Redirect: DashboardPath}
	}
}
