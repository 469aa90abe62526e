// Package config provides CLI configuration management for the minute
// command-line tool. It supports loading configuration from a YAML file,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable Markdown output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// ProgressMode selects how pipeline progress is reported.
type ProgressMode string

const (
	// ProgressInteractive renders an in-place spinner on a TTY.
	ProgressInteractive ProgressMode = "interactive"
	// ProgressVerbose prints stage and debug lines through the logger.
	ProgressVerbose ProgressMode = "verbose"
	// ProgressSilent suppresses all progress output.
	ProgressSilent ProgressMode = "silent"
)

// Default configuration values.
const (
	DefaultProvider     = "openai"
	DefaultModel        = "gpt-4o-mini"
	DefaultTimeout      = 2 * time.Minute
	DefaultOutputFormat = OutputFormatText
	DefaultProgressMode = ProgressInteractive
	DefaultConfigDir    = ".minute"
	DefaultConfigFile   = "config.yaml"

	// DefaultChunkSize is the per-chunk token budget for transcripts.
	DefaultChunkSize = 4000
	// DefaultOverlapSize is the read-only lookahead attached to each chunk.
	DefaultOverlapSize = 200

	// MinTimeout rejects accidental misconfiguration in smaller units
	// (e.g. a raw "120" parsed as nanoseconds).
	MinTimeout = time.Second
)

// ChunkingConfig holds transcript segmentation settings.
type ChunkingConfig struct {
	// ChunkSize is the target chunk length in estimated tokens.
	ChunkSize int `yaml:"chunk_size,omitempty"`

	// OverlapSize is the lookahead overlap in estimated tokens.
	OverlapSize int `yaml:"overlap_size,omitempty"`

	// PreserveSpeakerContext carries the last active speaker across a cut
	// that falls mid-conversation.
	PreserveSpeakerContext *bool `yaml:"preserve_speaker_context,omitempty"`
}

// PreserveSpeakers returns the speaker-context setting, defaulting to true.
func (c *ChunkingConfig) PreserveSpeakers() bool {
	if c == nil || c.PreserveSpeakerContext == nil {
		return true
	}
	return *c.PreserveSpeakerContext
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// Provider selects the model provider ("openai", "anthropic", "ollama").
	Provider string `yaml:"provider"`

	// Model is the model identifier sent to the provider.
	Model string `yaml:"model"`

	// BaseURL overrides the provider endpoint (mainly for ollama or
	// OpenAI-compatible gateways).
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout is the per-request time budget shared across the pipeline.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Progress selects the progress reporting mode.
	Progress ProgressMode `yaml:"progress,omitempty"`

	// Chunking holds transcript segmentation settings.
	Chunking ChunkingConfig `yaml:"chunking,omitempty"`

	// GeneratePRD controls whether a requirements document is produced
	// when the meeting discussed deliverables. Defaults to true.
	GeneratePRD *bool `yaml:"generate_prd,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// PRDEnabled returns the PRD-generation setting, defaulting to true.
func (c *CLIConfig) PRDEnabled() bool {
	if c.GeneratePRD == nil {
		return true
	}
	return *c.GeneratePRD
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		Provider:     DefaultProvider,
		Model:        DefaultModel,
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultOutputFormat,
		Progress:     DefaultProgressMode,
		Chunking: ChunkingConfig{
			ChunkSize:   DefaultChunkSize,
			OverlapSize: DefaultOverlapSize,
		},
	}
}

// ConfigDir returns the configuration directory path.
// Uses $MINUTE_CONFIG_DIR if set, otherwise ~/.minute
func ConfigDir() (string, error) {
	if dir := os.Getenv("MINUTE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment
// variables. Configuration is loaded in this order (later sources override
// earlier):
// 1. Default values
// 2. Config file (~/.minute/config.yaml or $MINUTE_CONFIG_DIR/config.yaml)
// 3. Environment variables (MINUTE_PROVIDER, MINUTE_MODEL, MINUTE_TIMEOUT,
//    MINUTE_OUTPUT_FORMAT, MINUTE_PROGRESS, MINUTE_DEBUG)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// Temp struct so the timeout can be written as a duration string.
	type configFile struct {
		Provider     string         `yaml:"provider"`
		Model        string         `yaml:"model"`
		BaseURL      string         `yaml:"base_url"`
		Timeout      string         `yaml:"timeout"`
		OutputFormat OutputFormat   `yaml:"output_format"`
		Progress     ProgressMode   `yaml:"progress"`
		Chunking     ChunkingConfig `yaml:"chunking"`
		GeneratePRD  *bool          `yaml:"generate_prd"`
		Debug        *bool          `yaml:"debug"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Provider != "" {
		cfg.Provider = fileCfg.Provider
	}
	if fileCfg.Model != "" {
		cfg.Model = fileCfg.Model
	}
	if fileCfg.BaseURL != "" {
		cfg.BaseURL = fileCfg.BaseURL
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.Progress != "" {
		cfg.Progress = fileCfg.Progress
	}
	if fileCfg.Chunking.ChunkSize > 0 {
		cfg.Chunking.ChunkSize = fileCfg.Chunking.ChunkSize
	}
	if fileCfg.Chunking.OverlapSize > 0 {
		cfg.Chunking.OverlapSize = fileCfg.Chunking.OverlapSize
	}
	if fileCfg.Chunking.PreserveSpeakerContext != nil {
		cfg.Chunking.PreserveSpeakerContext = fileCfg.Chunking.PreserveSpeakerContext
	}
	if fileCfg.GeneratePRD != nil {
		cfg.GeneratePRD = fileCfg.GeneratePRD
	}
	if fileCfg.Debug != nil {
		cfg.Debug = *fileCfg.Debug
	}

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("MINUTE_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("MINUTE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("MINUTE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("MINUTE_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}
	if v := os.Getenv("MINUTE_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}
	if v := os.Getenv("MINUTE_PROGRESS"); v != "" {
		cfg.Progress = ProgressMode(v)
	}
	if v := os.Getenv("MINUTE_DEBUG"); v != "" {
		cfg.Debug = strings.EqualFold(v, "true") || v == "1"
	}
}

// Validate checks the configuration for invalid values.
func (c *CLIConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.Timeout < MinTimeout {
		return fmt.Errorf("timeout %s is below the minimum of %s (did you mean %ds?)", c.Timeout, MinTimeout, int(c.Timeout))
	}
	switch c.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return fmt.Errorf("invalid output format %q (valid: text, json, yaml)", c.OutputFormat)
	}
	switch c.Progress {
	case ProgressInteractive, ProgressVerbose, ProgressSilent, "":
	default:
		return fmt.Errorf("invalid progress mode %q (valid: interactive, verbose, silent)", c.Progress)
	}
	if c.Chunking.ChunkSize < 0 || c.Chunking.OverlapSize < 0 {
		return fmt.Errorf("chunk sizes must not be negative")
	}
	return nil
}

// SaveConfig writes the configuration to the config file, creating the
// config directory if needed.
func SaveConfig(cfg *CLIConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Marshal through a map so the timeout is written as a duration string.
	type configFile struct {
		Provider     string         `yaml:"provider"`
		Model        string         `yaml:"model"`
		BaseURL      string         `yaml:"base_url,omitempty"`
		Timeout      string         `yaml:"timeout"`
		OutputFormat OutputFormat   `yaml:"output_format"`
		Progress     ProgressMode   `yaml:"progress,omitempty"`
		Chunking     ChunkingConfig `yaml:"chunking,omitempty"`
		GeneratePRD  *bool          `yaml:"generate_prd,omitempty"`
		Debug        bool           `yaml:"debug,omitempty"`
	}

	out := configFile{
		Provider:     cfg.Provider,
		Model:        cfg.Model,
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Timeout.String(),
		OutputFormat: cfg.OutputFormat,
		Progress:     cfg.Progress,
		Chunking:     cfg.Chunking,
		GeneratePRD:  cfg.GeneratePRD,
		Debug:        cfg.Debug,
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
