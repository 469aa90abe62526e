package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/otherjamesbrown/minute-cli/credentials"
)

// AuthCommandDeps holds dependencies for auth commands.
type AuthCommandDeps struct {
	NewStore func() (*credentials.Store, error)
	ReadKey  func() (string, error)
	Stdout   io.Writer
}

// DefaultAuthDeps returns default dependencies for production use.
func DefaultAuthDeps() *AuthCommandDeps {
	return &AuthCommandDeps{
		NewStore: credentials.NewStore,
		ReadKey:  readKeyFromTerminal,
		Stdout:   os.Stdout,
	}
}

// readKeyFromTerminal prompts for an API key without echoing it.
func readKeyFromTerminal() (string, error) {
	fmt.Fprint(os.Stderr, "API key: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// NewAuthCommand creates the 'auth' command group.
func NewAuthCommand(deps *AuthCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAuthDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage API keys for model providers.

Keys are stored encrypted at rest in ~/.minute/credentials.yaml. The
encryption key lives in the system keyring, or in MINUTE_ENCRYPTION_KEY
where no keyring is available. Provider environment variables
(OPENAI_API_KEY, ANTHROPIC_API_KEY) always take precedence over stored
keys.

Examples:
  # Store a key (prompts without echo)
  minute auth set openai

  # Store a key non-interactively
  minute auth set anthropic --api-key sk-ant-...

  # Inspect what is configured
  minute auth status

  # Remove a stored key
  minute auth remove openai`,
	}

	cmd.AddCommand(newAuthSetCommand(deps))
	cmd.AddCommand(newAuthStatusCommand(deps))
	cmd.AddCommand(newAuthRemoveCommand(deps))

	return cmd
}

func newAuthSetCommand(deps *AuthCommandDeps) *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "set <provider>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthSet(deps, args[0], apiKey)
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (omit to be prompted)")
	return cmd
}

func runAuthSet(deps *AuthCommandDeps, provider, apiKey string) error {
	provider = strings.ToLower(provider)
	if !credentials.KeyRequired(provider) {
		return fmt.Errorf("provider %q does not use an API key", provider)
	}

	if apiKey == "" {
		var err error
		apiKey, err = deps.ReadKey()
		if err != nil {
			return err
		}
	}
	if apiKey == "" {
		return errors.New("no API key provided")
	}

	store, err := deps.NewStore()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	if err := store.SetAPIKey(provider, apiKey); err != nil {
		return fmt.Errorf("storing key: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Stored API key for %s (%s)\n", provider, maskKey(apiKey))
	if envVar := credentials.EnvVarFor(provider); envVar != "" && os.Getenv(envVar) != "" {
		fmt.Fprintf(deps.Stdout, "Note: %s is set and takes precedence over the stored key\n", envVar)
	}
	return nil
}

func newAuthStatusCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configured providers and key sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(deps)
		},
	}
}

func runAuthStatus(deps *AuthCommandDeps) error {
	store, err := deps.NewStore()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	stored, err := store.ListProviders()
	if err != nil {
		return fmt.Errorf("listing providers: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Encryption key: %s\n\n", store.KeySource())

	known := []string{"openai", "anthropic", "ollama"}
	for _, provider := range known {
		switch {
		case !credentials.KeyRequired(provider):
			fmt.Fprintf(deps.Stdout, "  %-10s no key needed\n", provider)
		case credentials.EnvVarFor(provider) != "" && os.Getenv(credentials.EnvVarFor(provider)) != "":
			fmt.Fprintf(deps.Stdout, "  %-10s from %s\n", provider, credentials.EnvVarFor(provider))
		case contains(stored, provider):
			fmt.Fprintf(deps.Stdout, "  %-10s stored\n", provider)
		default:
			fmt.Fprintf(deps.Stdout, "  %-10s not configured\n", provider)
		}
	}
	return nil
}

func newAuthRemoveCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.NewStore()
			if err != nil {
				return fmt.Errorf("opening credential store: %w", err)
			}
			provider := strings.ToLower(args[0])
			if err := store.DeleteAPIKey(provider); err != nil {
				return fmt.Errorf("removing key: %w", err)
			}
			fmt.Fprintf(deps.Stdout, "Removed stored key for %s\n", provider)
			return nil
		},
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
