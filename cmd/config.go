package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minute-cli/config"
)

// ConfigCommandDeps holds dependencies for config commands.
type ConfigCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)
	SaveConfig func(cfg *config.CLIConfig) error
	Stdout     io.Writer
}

// DefaultConfigDeps returns default dependencies for production use.
func DefaultConfigDeps() *ConfigCommandDeps {
	return &ConfigCommandDeps{
		LoadConfig: config.LoadConfig,
		SaveConfig: config.SaveConfig,
		Stdout:     os.Stdout,
	}
}

// NewConfigCommand creates the 'config' command group.
func NewConfigCommand(deps *ConfigCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultConfigDeps()
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage minute configuration",
		Long: `Inspect and change the minute configuration.

Settings load from ~/.minute/config.yaml, with MINUTE_* environment
variables taking precedence. 'config set' writes to the file.

Examples:
  minute config show
  minute config show --output yaml
  minute config set model gpt-4o
  minute config set timeout 5m
  minute config set progress silent`,
	}

	cmd.AddCommand(newConfigShowCommand(deps))
	cmd.AddCommand(newConfigSetCommand(deps))
	cmd.AddCommand(newConfigInitCommand(deps))

	return cmd
}

func newConfigShowCommand(deps *ConfigCommandDeps) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			format, err := resolveFormat(outputFormat, cfg)
			if err != nil {
				return err
			}
			if format != config.OutputFormatText {
				return writeFormatted(deps.Stdout, format, cfg)
			}

			fmt.Fprintf(deps.Stdout, "provider:      %s\n", cfg.Provider)
			fmt.Fprintf(deps.Stdout, "model:         %s\n", cfg.Model)
			if cfg.BaseURL != "" {
				fmt.Fprintf(deps.Stdout, "base_url:      %s\n", cfg.BaseURL)
			}
			fmt.Fprintf(deps.Stdout, "timeout:       %s\n", cfg.Timeout)
			fmt.Fprintf(deps.Stdout, "output_format: %s\n", cfg.OutputFormat)
			fmt.Fprintf(deps.Stdout, "progress:      %s\n", cfg.Progress)
			fmt.Fprintf(deps.Stdout, "chunk_size:    %d\n", cfg.Chunking.ChunkSize)
			fmt.Fprintf(deps.Stdout, "overlap_size:  %d\n", cfg.Chunking.OverlapSize)
			fmt.Fprintf(deps.Stdout, "generate_prd:  %t\n", cfg.PRDEnabled())
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, yaml")
	return cmd
}

func newConfigSetCommand(deps *ConfigCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(deps, args[0], args[1])
		},
	}
}

func runConfigSet(deps *ConfigCommandDeps, key, value string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "base_url":
		cfg.BaseURL = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		cfg.Timeout = d
	case "output_format":
		cfg.OutputFormat = config.OutputFormat(value)
	case "progress":
		cfg.Progress = config.ProgressMode(value)
	case "chunk_size":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("invalid chunk_size %q", value)
		}
		cfg.Chunking.ChunkSize = n
	case "overlap_size":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("invalid overlap_size %q", value)
		}
		cfg.Chunking.OverlapSize = n
	case "generate_prd":
		enabled := value == "true"
		cfg.GeneratePRD = &enabled
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := deps.SaveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(deps.Stdout, "Set %s = %s\n", key, value)
	return nil
}

func newConfigInitCommand(deps *ConfigCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if err := deps.SaveConfig(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			dir, err := config.ConfigDir()
			if err == nil {
				fmt.Fprintf(deps.Stdout, "Wrote default configuration to %s/%s\n", dir, config.DefaultConfigFile)
			}
			return nil
		},
	}
}
