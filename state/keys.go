package state

import (
	"context"
	"strings"
	"sync"

	"github.com/example/vehicore/models"
	"github.com/example/vehicore/validation"
)

const (
	fallbackListKeys  = "Failed to load API keys"
	fallbackCreateKey = "Failed to create API key"
	fallbackRevokeKey = "Failed to revoke API key"
)

// Keys is a snapshot of the key lifecycle state. NewlyCreated is the only
// place a plaintext key is ever held.
type Keys struct {
	Keys         []models.APIKey `json:"keys"`
	Loaded       bool            `json:"loaded"`
	Loading      bool            `json:"loading"`
	Error        string          `json:"error,omitempty"`
	NewlyCreated *models.APIKey  `json:"newlyCreated,omitempty"`
}

type KeyStore struct {
	backend KeyBackend

	mu      sync.RWMutex
	state   Keys
	pending int
}

func NewKeyStore(backend KeyBackend) *KeyStore {
	return &KeyStore{backend: backend, state: Keys{Keys: []models.APIKey{}}}
}

func (s *KeyStore) Snapshot() Keys {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.Keys = append([]models.APIKey(nil), s.state.Keys...)
	if out.Keys == nil {
		out.Keys = []models.APIKey{}
	}
	if s.state.NewlyCreated != nil {
		k := *s.state.NewlyCreated
		out.NewlyCreated = &k
	}
	return out
}

// List replaces the key list with the backend's, minus revoked keys.
func (s *KeyStore) List(ctx context.Context) ([]models.APIKey, error) {
	s.begin()
	keys, err := s.backend.ListKeys(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(err, fallbackListKeys)
	if err != nil {
		return nil, err
	}

	active := models.ActiveKeys(keys)
	s.state.Keys = active
	s.state.Loaded = true
	return append([]models.APIKey(nil), active...), nil
}

// Create issues a new key. The returned record carries the plaintext, which
// stays retrievable from the store until AcknowledgeNewKey.
func (s *KeyStore) Create(ctx context.Context, name string) (*models.APIKey, error) {
	req := models.CreateKeyRequest{Name: strings.TrimSpace(name)}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	s.begin()
	created, err := s.backend.CreateKey(ctx, req.Name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(err, fallbackCreateKey)
	if err != nil {
		return nil, err
	}

	plain := *created
	if plain.Name == "" {
		plain.Name = req.Name
	}
	s.state.NewlyCreated = &plain
	s.state.Keys = append([]models.APIKey{plain.Redacted()}, s.state.Keys...)

	out := plain
	return &out, nil
}

// AcknowledgeNewKey discards the plaintext of the newly created key.
func (s *KeyStore) AcknowledgeNewKey() {
	s.mu.Lock()
	s.state.NewlyCreated = nil
	s.mu.Unlock()
}

// Delete revokes the key on the backend and removes it locally once that succeeded.
func (s *KeyStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return validation.Errors{"id": "id is required"}
	}

	s.begin()
	err := s.backend.RevokeKey(ctx, id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end(err, fallbackRevokeKey)
	if err != nil {
		return err
	}

	kept := make([]models.APIKey, 0, len(s.state.Keys))
	for _, k := range s.state.Keys {
		if k.Identifier() == id {
			continue
		}
		kept = append(kept, k)
	}
	s.state.Keys = kept
	if s.state.NewlyCreated != nil && s.state.NewlyCreated.Identifier() == id {
		s.state.NewlyCreated = nil
	}
	return nil
}

// Reset forgets everything, including the loaded flag.
func (s *KeyStore) Reset() {
	s.mu.Lock()
	s.state = Keys{Keys: []models.APIKey{}}
	s.mu.Unlock()
}

func (s *KeyStore) begin() {
	s.mu.Lock()
	s.pending++
	s.state.Loading = true
	s.mu.Unlock()
}

// end must be called with s.mu held.
func (s *KeyStore) end(err error, fallback string) {
	s.pending--
	s.state.Loading = s.pending > 0
	if err != nil {
		s.state.Error = errorMessage(err, fallback)
		return
	}
	s.state.Error = ""
}
