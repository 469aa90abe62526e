// Package credentials provides secure API-key storage for the minute CLI.
// Keys are stored per provider in ~/.minute/credentials.yaml, encrypted at
// rest with AES-256-GCM. The encryption key lives in the system keyring:
//   - macOS: Keychain
//   - Windows: Credential Manager
//   - Linux: Secret Service (libsecret)
//
// For CI/testing environments, set MINUTE_ENCRYPTION_KEY to a 64-character
// hex string (32 bytes). Provider env vars (OPENAI_API_KEY,
// ANTHROPIC_API_KEY) always take precedence over the stored file.
package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Credential storage constants.
const (
	DefaultCredentialsDir  = ".minute"
	DefaultCredentialsFile = "credentials.yaml"
)

// Common errors.
var (
	// ErrNoCredentials is returned when no key is stored for a provider.
	ErrNoCredentials = errors.New("no credentials stored")
	// ErrInvalidCredentials is returned when stored credentials are malformed.
	ErrInvalidCredentials = errors.New("invalid credentials format")
	// ErrEncryptionFailed is returned when encryption/decryption fails.
	ErrEncryptionFailed = errors.New("encryption failed")
)

// envVarForProvider maps provider names to their conventional API-key
// environment variables.
var envVarForProvider = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"ollama":    "", // local, no key
}

// EnvVarFor returns the conventional API-key env var for a provider, or
// empty if the provider needs no key.
func EnvVarFor(provider string) string {
	return envVarForProvider[strings.ToLower(provider)]
}

// KeyRequired reports whether a provider needs an API key at all.
func KeyRequired(provider string) bool {
	v, known := envVarForProvider[strings.ToLower(provider)]
	return !known || v != ""
}

// ProviderKey holds one stored provider credential.
type ProviderKey struct {
	// APIKey is the stored key, encrypted at rest.
	APIKey string `yaml:"api_key"`
	// LastUpdated is when the key was last written.
	LastUpdated time.Time `yaml:"last_updated"`
}

// Credentials is the on-disk credential file shape.
type Credentials struct {
	// Providers maps provider name to its stored key.
	Providers map[string]ProviderKey `yaml:"providers"`
}

// Store manages credential storage operations.
type Store struct {
	credentialsDir string
	encryptionKey  []byte
	keyProvider    KeyProvider
}

// NewStore creates a new credential store with default settings, using the
// system keyring (or MINUTE_ENCRYPTION_KEY) for the encryption key.
func NewStore() (*Store, error) {
	dir, err := CredentialsDir()
	if err != nil {
		return nil, fmt.Errorf("getting credentials directory: %w", err)
	}

	keyProvider, err := GetDefaultKeyProvider()
	if err != nil {
		return nil, fmt.Errorf("initializing key provider: %w", err)
	}

	return newStore(dir, keyProvider)
}

// NewStoreWithKeyProvider creates a new credential store with a custom key
// provider. This is primarily used for testing.
func NewStoreWithKeyProvider(keyProvider KeyProvider) (*Store, error) {
	dir, err := CredentialsDir()
	if err != nil {
		return nil, fmt.Errorf("getting credentials directory: %w", err)
	}
	return newStore(dir, keyProvider)
}

func newStore(dir string, keyProvider KeyProvider) (*Store, error) {
	key, err := keyProvider.GetKey()
	if err != nil {
		return nil, fmt.Errorf("getting encryption key: %w", err)
	}
	return &Store{
		credentialsDir: dir,
		encryptionKey:  key,
		keyProvider:    keyProvider,
	}, nil
}

// CredentialsDir returns the credentials directory path.
// Uses $MINUTE_CONFIG_DIR if set, otherwise ~/.minute
func CredentialsDir() (string, error) {
	if dir := os.Getenv("MINUTE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultCredentialsDir), nil
}

// CredentialsPath returns the full path to the credentials file.
func CredentialsPath() (string, error) {
	dir, err := CredentialsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultCredentialsFile), nil
}

// SetAPIKey stores an API key for a provider, encrypting it at rest.
func (s *Store) SetAPIKey(provider, apiKey string) error {
	if provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	if apiKey == "" {
		return fmt.Errorf("API key must not be empty")
	}

	creds, err := s.load()
	if err != nil && !errors.Is(err, ErrNoCredentials) {
		return err
	}
	if creds == nil {
		creds = &Credentials{Providers: map[string]ProviderKey{}}
	}

	encrypted, err := s.encrypt(apiKey)
	if err != nil {
		return err
	}
	creds.Providers[strings.ToLower(provider)] = ProviderKey{
		APIKey:      encrypted,
		LastUpdated: time.Now().UTC(),
	}

	return s.save(creds)
}

// GetAPIKey resolves the API key for a provider. The provider's
// conventional environment variable wins over the stored file. Returns
// ErrNoCredentials when neither source has a key.
func (s *Store) GetAPIKey(provider string) (string, error) {
	provider = strings.ToLower(provider)

	if envVar := EnvVarFor(provider); envVar != "" {
		if key := os.Getenv(envVar); key != "" {
			return key, nil
		}
	}

	creds, err := s.load()
	if err != nil {
		return "", err
	}
	entry, ok := creds.Providers[provider]
	if !ok || entry.APIKey == "" {
		return "", fmt.Errorf("%w for provider %q", ErrNoCredentials, provider)
	}
	return s.decrypt(entry.APIKey)
}

// DeleteAPIKey removes the stored key for a provider. Deleting a provider
// with no stored key is not an error.
func (s *Store) DeleteAPIKey(provider string) error {
	creds, err := s.load()
	if errors.Is(err, ErrNoCredentials) {
		return nil
	}
	if err != nil {
		return err
	}
	delete(creds.Providers, strings.ToLower(provider))
	return s.save(creds)
}

// ListProviders returns the providers with stored keys, sorted.
func (s *Store) ListProviders() ([]string, error) {
	creds, err := s.load()
	if errors.Is(err, ErrNoCredentials) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(creds.Providers))
	for p := range creds.Providers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// KeySource describes where the encryption key comes from.
func (s *Store) KeySource() string {
	return s.keyProvider.Description()
}

// load reads and parses the credentials file.
func (s *Store) load() (*Credentials, error) {
	path := filepath.Join(s.credentialsDir, DefaultCredentialsFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if creds.Providers == nil {
		creds.Providers = map[string]ProviderKey{}
	}
	return &creds, nil
}

// save writes the credentials file with restrictive permissions.
func (s *Store) save(creds *Credentials) error {
	if err := os.MkdirAll(s.credentialsDir, 0o700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	path := filepath.Join(s.credentialsDir, DefaultCredentialsFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// encrypt encrypts plaintext with AES-256-GCM and base64-encodes the result.
func (s *Store) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("%w: creating cipher: %v", ErrEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: creating GCM: %v", ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: generating nonce: %v", ErrEncryptionFailed, err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt reverses encrypt.
func (s *Store) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decoding base64: %v", ErrEncryptionFailed, err)
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("%w: creating cipher: %v", ErrEncryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: creating GCM: %v", ErrEncryptionFailed, err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrEncryptionFailed)
	}

	nonce, ciphertextBytes := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertextBytes, nil)
	if err != nil {
		return "", fmt.Errorf("%w: decryption failed: %v", ErrEncryptionFailed, err)
	}
	return string(plaintext), nil
}
