// Package bbolt provides a BBolt-backed credential store that encrypts the
// bearer credential at rest.
package bbolt

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/Brisa-Ol/loteplan-client/internal/util"
	"github.com/Brisa-Ol/loteplan-client/storage"
)

const (
	bucketName  = "session"
	keyFileName = "store.key"
	keyFileMode = 0o600
)

// Store implements storage.CredentialStore backed by a BBolt database.
// The credential is sealed with AES-GCM under a key derived from a
// per-installation random keyfile created next to the database.
type Store struct {
	db  *bbolt.DB
	key []byte
}

var _ storage.CredentialStore = (*Store)(nil)

// Open opens (creating if needed) the credential database at path and loads
// or creates the adjacent keyfile.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening credential db: %w", err)
	}

	seed, err := loadOrCreateKeyFile(filepath.Join(filepath.Dir(path), keyFileName))
	if err != nil {
		db.Close()
		return nil, err
	}
	key, err := util.DeriveKey(seed, []byte("loteplan/credential-store"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("deriving storage key: %w", err)
	}

	return &Store{db: db, key: key}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(token string) error {
	sealed, err := util.Seal([]byte(token), s.key)
	if err != nil {
		return fmt.Errorf("sealing credential: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return b.Put([]byte(storage.TokenKey), sealed)
	})
}

func (s *Store) Load() (string, error) {
	var sealed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return storage.ErrNotFound
		}
		data := b.Get([]byte(storage.TokenKey))
		if data == nil {
			return storage.ErrNotFound
		}
		sealed = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return "", err
	}

	token, err := util.Open(sealed, s.key)
	if err != nil {
		return "", fmt.Errorf("unsealing credential: %w", err)
	}
	return string(token), nil
}

func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(storage.TokenKey))
	})
}

func loadOrCreateKeyFile(path string) ([]byte, error) {
	seed, err := os.ReadFile(path)
	if err == nil && len(seed) == util.KeySize {
		return seed, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading keyfile: %w", err)
	}

	seed, err = util.RandomBytes(util.KeySize)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, seed, keyFileMode); err != nil {
		return nil, fmt.Errorf("writing keyfile: %w", err)
	}
	return seed, nil
}
