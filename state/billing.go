package state

import (
	"context"
	"errors"
	"sync"

	"github.com/example/vehicore/models"
	"github.com/example/vehicore/validation"
)

type Billing struct {
	Products []models.Product `json:"products"`
	Packages []models.Package `json:"packages"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
}

type BillingStore struct {
	backend BillingBackend

	mu      sync.RWMutex
	state   Billing
	pending int
}

func NewBillingStore(backend BillingBackend) *BillingStore {
	return &BillingStore{
		backend: backend,
		state:   Billing{Products: []models.Product{}, Packages: []models.Package{}},
	}
}

func (s *BillingStore) Snapshot() Billing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.Products = append([]models.Product{}, s.state.Products...)
	out.Packages = append([]models.Package{}, s.state.Packages...)
	return out
}

func (s *BillingStore) LoadProducts(ctx context.Context) ([]models.Product, error) {
	s.begin()
	products, err := s.backend.ListProducts(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(err)
	if err != nil {
		return nil, err
	}
	s.state.Products = products
	return append([]models.Product{}, products...), nil
}

func (s *BillingStore) LoadPackages(ctx context.Context) ([]models.Package, error) {
	s.begin()
	packages, err := s.backend.ListPackages(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(err)
	if err != nil {
		return nil, err
	}
	s.state.Packages = packages
	return append([]models.Package{}, packages...), nil
}

// Checkout starts a payment session and returns where to send the user.
func (s *BillingStore) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	s.begin()
	resp, err := s.backend.CreateCheckout(ctx, req)
	if err == nil && resp.RedirectURL() == "" {
		err = errors.New("checkout response has no redirect URL")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *BillingStore) begin() {
	s.mu.Lock()
	s.pending++
	s.state.Loading = true
	s.mu.Unlock()
}

// end must be called with s.mu held.
func (s *BillingStore) end(err error) {
	s.pending--
	s.state.Loading = s.pending > 0
	if err != nil {
		s.state.Error = errorMessage(err, fallbackError)
		return
	}
	s.state.Error = ""
}
