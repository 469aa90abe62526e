package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minute-cli/credentials"
)

// testEncryptionKey is 32 bytes hex-encoded, for the env key provider.
const testEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testAuthDeps(t *testing.T) (*AuthCommandDeps, *bytes.Buffer) {
	t.Helper()
	t.Setenv("MINUTE_CONFIG_DIR", t.TempDir())
	t.Setenv("MINUTE_ENCRYPTION_KEY", testEncryptionKey)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	stdout := &bytes.Buffer{}
	return &AuthCommandDeps{
		NewStore: credentials.NewStore,
		ReadKey:  func() (string, error) { return "sk-prompted-key-123456", nil },
		Stdout:   stdout,
	}, stdout
}

func TestAuthSetAndStatus(t *testing.T) {
	deps, stdout := testAuthDeps(t)

	cmd := NewAuthCommand(deps)
	cmd.SetArgs([]string{"set", "openai", "--api-key", "sk-test-key-123456"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Stored API key for openai")
	assert.NotContains(t, stdout.String(), "sk-test-key-123456", "keys are never echoed in full")

	stdout.Reset()
	cmd = NewAuthCommand(deps)
	cmd.SetArgs([]string{"status"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "openai")
	assert.Contains(t, stdout.String(), "stored")
	assert.Contains(t, stdout.String(), "ollama")
	assert.Contains(t, stdout.String(), "no key needed")
}

func TestAuthSetPrompts(t *testing.T) {
	deps, stdout := testAuthDeps(t)

	cmd := NewAuthCommand(deps)
	cmd.SetArgs([]string{"set", "anthropic"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Stored API key for anthropic")

	store, err := deps.NewStore()
	require.NoError(t, err)
	key, err := store.GetAPIKey("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-prompted-key-123456", key)
}

func TestAuthSetKeylessProvider(t *testing.T) {
	deps, _ := testAuthDeps(t)

	cmd := NewAuthCommand(deps)
	cmd.SetArgs([]string{"set", "ollama", "--api-key", "whatever"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not use an API key")
}

func TestAuthRemove(t *testing.T) {
	deps, stdout := testAuthDeps(t)

	cmd := NewAuthCommand(deps)
	cmd.SetArgs([]string{"set", "openai", "--api-key", "sk-test-key-123456"})
	require.NoError(t, cmd.Execute())

	stdout.Reset()
	cmd = NewAuthCommand(deps)
	cmd.SetArgs([]string{"remove", "openai"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Removed stored key for openai")

	store, err := deps.NewStore()
	require.NoError(t, err)
	_, err = store.GetAPIKey("openai")
	assert.ErrorIs(t, err, credentials.ErrNoCredentials)
}
