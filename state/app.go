package state

import (
	"context"
	"time"

	"github.com/example/vehicore/config"
	"github.com/example/vehicore/onboarding"
	"github.com/example/vehicore/services"
	"github.com/example/vehicore/usage"
)

// App is the explicit application state: every store plus the gateway they
// share. Presentation layers receive it instead of reaching for globals.
type App struct {
	Config      *config.Config
	Service     *services.VehiCoreService
	Session     *SessionStore
	Keys        *KeyStore
	Billing     *BillingStore
	Usage       *UsageStore
	Preferences *Preferences
	Policy      usage.Policy
}

// NewApp wires the stores to the gateway. The session store becomes the
// gateway's token source, and a 401 from any call tears down the session
// together with every per-user slice.
func NewApp(cfg *config.Config, service *services.VehiCoreService, storage TokenStorage) *App {
	a := &App{
		Config:      cfg,
		Service:     service,
		Session:     NewSessionStore(service, storage),
		Keys:        NewKeyStore(service),
		Billing:     NewBillingStore(service),
		Usage:       NewUsageStore(service, cfg.CheckoutPollInterval, cfg.CheckoutPollTimeout),
		Preferences: NewPreferences(storage, cfg.DefaultLanguage),
		Policy:      usage.Policy{PurchasedMerge: usage.ParseMergePolicy(cfg.PurchaseMerge)},
	}
	service.Tokens = a.Session
	service.OnUnauthorized = a.handleUnauthorized

	a.Session.CheckAuth()
	return a
}

func (a *App) handleUnauthorized() {
	a.Session.HandleUnauthorized()
	a.Keys.Reset()
	a.Usage.Reset()
}

// Logout ends the session and forgets per-user state.
func (a *App) Logout(ctx context.Context) {
	a.Session.Logout(ctx)
	a.Keys.Reset()
	a.Usage.Reset()
}

// Route evaluates the onboarding decision against the current snapshots.
func (a *App) Route() onboarding.Decision {
	session := a.Session.Snapshot()
	keys := a.Keys.Snapshot()
	return onboarding.Decide(onboarding.Input{
		AuthLoading:   session.AuthLoading,
		Authenticated: session.IsAuthenticated,
		KeysLoaded:    keys.Loaded,
		Keys:          keys.Keys,
	})
}

// DefaultFilter is the usage filter for the configured default range.
func (a *App) DefaultFilter(now time.Time, loc *time.Location) usage.Filter {
	from, to := usage.DefaultRange(now, a.Config.DefaultRangeDays, loc)
	return usage.Filter{From: from, To: to, KeyID: usage.AllKeys, Location: loc}
}
