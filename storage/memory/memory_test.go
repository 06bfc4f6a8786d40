package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brisa-Ol/loteplan-client/storage"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()

	_, err := s.Load()
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Save("tok"))
	tok, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	require.NoError(t, s.Clear())
	_, err = s.Load()
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
