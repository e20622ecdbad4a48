package secrets

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyringStore(t *testing.T) {
	store := newRingStore(keyring.NewArrayKeyring(nil))

	_, err := store.Get(APIKeyName)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(APIKeyName), ErrNotFound)

	require.NoError(t, store.Set(APIKeyName, "sk-ring"))
	value, err := store.Get(APIKeyName)
	require.NoError(t, err)
	assert.Equal(t, "sk-ring", value)

	require.NoError(t, store.Delete(APIKeyName))
	_, err = store.Get(APIKeyName)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "keyring", store.Backend())
}

func TestRingConfig(t *testing.T) {
	cfg := ringConfig("pw")
	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.NotEmpty(t, cfg.FileDir)

	password, err := cfg.FilePasswordFunc("unlock")
	require.NoError(t, err)
	assert.Equal(t, "pw", password)
}
