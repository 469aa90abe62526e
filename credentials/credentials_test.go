package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeyEnv seeds MINUTE_ENCRYPTION_KEY with a fresh random 32-byte key
// and points MINUTE_CONFIG_DIR at a temp dir, so tests never touch the
// system keyring or the real home directory.
func testStore(t *testing.T) *Store {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	t.Setenv("MINUTE_ENCRYPTION_KEY", hex.EncodeToString(key))
	t.Setenv("MINUTE_CONFIG_DIR", t.TempDir())

	store, err := NewStoreWithKeyProvider(NewEnvKeyProvider("MINUTE_ENCRYPTION_KEY"))
	require.NoError(t, err)
	return store
}

func TestStore_SetGetAPIKey(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.SetAPIKey("openai", "sk-test-123"))

	key, err := store.GetAPIKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", key)
}

func TestStore_KeyEncryptedAtRest(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetAPIKey("anthropic", "sk-ant-secret"))

	path, err := CredentialsPath()
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-ant-secret")
}

func TestStore_EnvVarWinsOverFile(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetAPIKey("openai", "from-file"))
	t.Setenv("OPENAI_API_KEY", "from-env")

	key, err := store.GetAPIKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestStore_MissingKey(t *testing.T) {
	store := testStore(t)

	_, err := store.GetAPIKey("openai")
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestStore_DeleteAPIKey(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetAPIKey("openai", "sk-x"))
	require.NoError(t, store.DeleteAPIKey("openai"))

	_, err := store.GetAPIKey("openai")
	assert.ErrorIs(t, err, ErrNoCredentials)

	// Deleting again is not an error.
	assert.NoError(t, store.DeleteAPIKey("openai"))
}

func TestStore_ListProviders(t *testing.T) {
	store := testStore(t)

	providers, err := store.ListProviders()
	require.NoError(t, err)
	assert.Empty(t, providers)

	require.NoError(t, store.SetAPIKey("openai", "a"))
	require.NoError(t, store.SetAPIKey("anthropic", "b"))

	providers, err = store.ListProviders()
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic", "openai"}, providers)
}

func TestStore_WrongKeyFailsDecryption(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetAPIKey("openai", "sk-secret"))

	// A second store with a different key must not decrypt the file.
	other := make([]byte, 32)
	_, err := rand.Read(other)
	require.NoError(t, err)
	t.Setenv("MINUTE_ENCRYPTION_KEY", hex.EncodeToString(other))

	store2, err := NewStoreWithKeyProvider(NewEnvKeyProvider("MINUTE_ENCRYPTION_KEY"))
	require.NoError(t, err)

	_, err = store2.GetAPIKey("openai")
	assert.ErrorIs(t, err, ErrEncryptionFailed)
}

func TestKeyRequired(t *testing.T) {
	assert.True(t, KeyRequired("openai"))
	assert.True(t, KeyRequired("anthropic"))
	assert.False(t, KeyRequired("ollama"))
	assert.True(t, KeyRequired("unknown-provider"))
}

func TestCredentialsDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINUTE_CONFIG_DIR", dir)

	got, err := CredentialsDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	path, err := CredentialsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultCredentialsFile), path)
}
