package util

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey expands seed into a 32-byte key bound to the given context info.
func DeriveKey(seed, info []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, seed, nil, info)
	k := make([]byte, KeySize)
	if _, err := io.ReadFull(h, k); err != nil {
		return nil, fmt.Errorf("reading from HKDF: %w", err)
	}
	return k, nil
}
