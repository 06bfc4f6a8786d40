// Package storage defines the persistence abstraction for the portal's
// single durable value: the bearer credential.
package storage

import "errors"

// ErrNotFound is returned when no credential has been persisted.
var ErrNotFound = errors.New("credential not found")

// TokenKey is the fixed record key the credential is stored under. Its
// presence is the sole input to session initialization.
const TokenKey = "auth_token"

// CredentialStore persists the bearer credential across process restarts.
// At most one credential is stored at a time; Save replaces any prior value.
type CredentialStore interface {
	// Save persists the credential, replacing any existing one.
	Save(token string) error
	// Load returns the persisted credential, or ErrNotFound.
	Load() (string, error)
	// Clear removes the persisted credential. Clearing an empty store is
	// not an error.
	Clear() error
}
