package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minute-cli/config"
)

// knownModels lists the providers and models the CLI is routinely used
// with. Any model the provider accepts works; these are starting points.
var knownModels = []struct {
	Provider string
	Models   []string
	Notes    string
}{
	{
		Provider: "openai",
		Models:   []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
		Notes:    "needs OPENAI_API_KEY or 'minute auth set openai'",
	},
	{
		Provider: "anthropic",
		Models:   []string{"claude-sonnet-4-5", "claude-haiku-4-5"},
		Notes:    "needs ANTHROPIC_API_KEY or 'minute auth set anthropic'",
	},
	{
		Provider: "ollama",
		Models:   []string{"llama3", "mistral", "qwen2.5"},
		Notes:    "local, no key; --base-url for a remote server",
	},
}

var (
	modelsProviderStyle = lipgloss.NewStyle().Bold(true)
	modelsCurrentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// ModelsCommandDeps holds dependencies for the models command.
type ModelsCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
	Stdout     io.Writer
}

// DefaultModelsDeps returns default dependencies for production use.
func DefaultModelsDeps() *ModelsCommandDeps {
	return &ModelsCommandDeps{
		LoadConfig: config.LoadConfig,
		Stdout:     os.Stdout,
	}
}

// NewModelsCommand creates the 'models' command.
func NewModelsCommand(deps *ModelsCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultModelsDeps()
	}

	return &cobra.Command{
		Use:   "models",
		Short: "List supported providers and common models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			for _, entry := range knownModels {
				fmt.Fprintln(deps.Stdout, modelsProviderStyle.Render(entry.Provider))
				for _, model := range entry.Models {
					marker := "  "
					line := fmt.Sprintf("%s %s", entry.Provider, model)
					if cfg.Provider == entry.Provider && cfg.Model == model {
						marker = "* "
						line = modelsCurrentStyle.Render(line)
					}
					fmt.Fprintf(deps.Stdout, "  %s%s\n", marker, line)
				}
				fmt.Fprintf(deps.Stdout, "    (%s)\n\n", entry.Notes)
			}
			fmt.Fprintf(deps.Stdout, "Current: %s / %s\n", cfg.Provider, cfg.Model)
			return nil
		},
	}
}
