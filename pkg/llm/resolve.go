package llm

import (
	"errors"
	"fmt"

	"github.com/otherjamesbrown/minute-cli/config"
	"github.com/otherjamesbrown/minute-cli/credentials"
	pkgerrors "github.com/otherjamesbrown/minute-cli/pkg/errors"
)

// KeyStore resolves API keys per provider. *credentials.Store satisfies it.
type KeyStore interface {
	GetAPIKey(provider string) (string, error)
}

// Resolve builds a Provider from CLI configuration, sourcing the API key
// from the credential store (or the provider's environment variable, which
// the store checks first). A missing key surfaces as an api_key_missing
// pipeline error so callers can render remedies without special-casing.
func Resolve(cfg *config.CLIConfig, store KeyStore) (Provider, error) {
	var apiKey string
	if credentials.KeyRequired(cfg.Provider) {
		key, err := store.GetAPIKey(cfg.Provider)
		if err != nil {
			if errors.Is(err, credentials.ErrNoCredentials) {
				return nil, (&pkgerrors.PipelineError{
					Code:    pkgerrors.ErrAPIKeyMissing,
					Message: fmt.Sprintf("no API key configured for provider %q", cfg.Provider),
					Cause:   err,
				}).WithModel(cfg.Provider, cfg.Model)
			}
			return nil, fmt.Errorf("resolving API key for %s: %w", cfg.Provider, err)
		}
		apiKey = key
	}

	return New(Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   apiKey,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
	})
}
