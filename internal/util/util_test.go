package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)

	plain := []byte("bearer-token-value")
	sealed, err := Seal(plain, key)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "bearer-token-value")

	opened, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, plain, opened)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)
	other, err := RandomBytes(KeySize)
	require.NoError(t, err)

	sealed, err := Seal([]byte("secret"), key)
	require.NoError(t, err)

	_, err = Open(sealed, other)
	assert.Error(t, err)
}

func TestSealRejectsBadKeySize(t *testing.T) {
	_, err := Seal([]byte("x"), []byte("short"))
	assert.Error(t, err)
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	seed := []byte("seed material")

	a, err := DeriveKey(seed, []byte("credential-store"))
	require.NoError(t, err)
	b, err := DeriveKey(seed, []byte("credential-store"))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := DeriveKey(seed, []byte("other-context"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "different info should derive a different key")
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "user@loteplan.com", NormalizeIdentifier("  User@Loteplan.COM "))
	assert.Equal(t, "maría@loteplan.com", NormalizeIdentifier("María@loteplan.com"))
}
