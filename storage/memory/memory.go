// Package memory provides a thread-safe in-memory credential store.
// Suitable for tests and ephemeral sessions.
package memory

import (
	"sync"

	"github.com/Brisa-Ol/loteplan-client/storage"
)

// Store is an in-memory implementation of storage.CredentialStore.
type Store struct {
	mu    sync.Mutex
	token string
	set   bool
}

var _ storage.CredentialStore = (*Store)(nil)

// NewStore creates an empty in-memory credential store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

func (s *Store) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", storage.ErrNotFound
	}
	return s.token, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}
