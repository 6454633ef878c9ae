package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/example/vehicore/models"
	"github.com/example/vehicore/services"
	"github.com/example/vehicore/usage"
)

const fallbackUsage = "Failed to load usage"

type Usage struct {
	Overview *models.UsageOverview `json:"overview"`
	Loading  bool                  `json:"loading"`
	Error    string                `json:"error,omitempty"`
}

type UsageStore struct {
	backend      UsageBackend
	pollInterval time.Duration
	pollTimeout  time.Duration

	mu      sync.RWMutex
	state   Usage
	pending int
}

func NewUsageStore(backend UsageBackend, pollInterval, pollTimeout time.Duration) *UsageStore {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if pollTimeout <= 0 {
		pollTimeout = 20 * time.Second
	}
	return &UsageStore{
		backend:      backend,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

func (s *UsageStore) Snapshot() Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Refresh replaces the overview wholesale. Revoked keys are dropped here so
// no derivation ever sees them.
func (s *UsageStore) Refresh(ctx context.Context) (*models.UsageOverview, error) {
	s.mu.Lock()
	s.pending++
	s.state.Loading = true
	s.mu.Unlock()

	overview, err := s.backend.GetUsageOverview(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	s.state.Loading = s.pending > 0
	if err != nil {
		s.state.Error = errorMessage(err, fallbackUsage)
		return nil, err
	}
	s.state.Error = ""

	var clean models.UsageOverview
	if overview != nil {
		clean = overview.WithoutRevokedKeys()
	}
	s.state.Overview = &clean
	return &clean, nil
}

// View derives the dashboard view from the last fetched overview.
func (s *UsageStore) View(f usage.Filter, policy usage.Policy) usage.View {
	return usage.Derive(s.Snapshot().Overview, f, policy)
}

// AwaitPurchase polls the usage overview after a successful checkout until
// credits or purchases show up, the poll timeout elapses, or ctx is done. It
// reports whether purchase evidence was seen. Reaching the timeout is not an
// error.
func (s *UsageStore) AwaitPurchase(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	pollCtx, cancel := context.WithTimeout(ctx, s.pollTimeout)
	ticker := time.NewTicker(s.pollInterval)
	defer func() {
		ticker.Stop()
		cancel()
	}()

	logger := log.With().Str("session_id", sessionID).Logger()
	for {
		overview, err := s.Refresh(pollCtx)
		switch {
		case err == nil && usage.HasPurchaseEvidence(overview):
			logger.Info().Msg("Purchase credited")
			return true, nil
		case errors.Is(err, services.ErrUnauthorized):
			return false, err
		case err != nil && pollCtx.Err() == nil:
			logger.Warn().Err(err).Msg("Usage poll failed")
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			logger.Info().Dur("timeout", s.pollTimeout).Msg("Stopped waiting for purchase")
			return false, nil
		case <-ticker.C:
		}
	}
}

func (s *UsageStore) Reset() {
	s.mu.Lock()
	s.state = Usage{}
	s.mu.Unlock()
}
