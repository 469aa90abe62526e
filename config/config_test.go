package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultProvider, cfg.Provider)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, OutputFormatText, cfg.OutputFormat)
	assert.Equal(t, DefaultChunkSize, cfg.Chunking.ChunkSize)
	assert.Equal(t, DefaultOverlapSize, cfg.Chunking.OverlapSize)
	assert.True(t, cfg.Chunking.PreserveSpeakers())
	assert.True(t, cfg.PRDEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINUTE_CONFIG_DIR", dir)

	content := `provider: anthropic
model: claude-sonnet-4-5
timeout: 3m
output_format: json
progress: silent
chunking:
  chunk_size: 2000
  overlap_size: 100
  preserve_speaker_context: false
generate_prd: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	assert.Equal(t, 3*time.Minute, cfg.Timeout)
	assert.Equal(t, OutputFormatJSON, cfg.OutputFormat)
	assert.Equal(t, ProgressSilent, cfg.Progress)
	assert.Equal(t, 2000, cfg.Chunking.ChunkSize)
	assert.Equal(t, 100, cfg.Chunking.OverlapSize)
	assert.False(t, cfg.Chunking.PreserveSpeakers())
	assert.False(t, cfg.PRDEnabled())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINUTE_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("provider: openai\nmodel: gpt-4o\n"), 0o600))

	t.Setenv("MINUTE_PROVIDER", "ollama")
	t.Setenv("MINUTE_MODEL", "llama3")
	t.Setenv("MINUTE_TIMEOUT", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "llama3", cfg.Model)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MINUTE_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultProvider, cfg.Provider)
}

func TestValidate_TimeoutFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 120 * time.Nanosecond // a raw "120" misparsed as nanoseconds

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below the minimum")

	cfg.Timeout = time.Second
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CLIConfig)
	}{
		{"empty provider", func(c *CLIConfig) { c.Provider = "" }},
		{"empty model", func(c *CLIConfig) { c.Model = "" }},
		{"bad output format", func(c *CLIConfig) { c.OutputFormat = "xml" }},
		{"bad progress mode", func(c *CLIConfig) { c.Progress = "loud" }},
		{"negative chunk size", func(c *CLIConfig) { c.Chunking.ChunkSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("MINUTE_CONFIG_DIR", t.TempDir())

	cfg := DefaultConfig()
	cfg.Provider = "anthropic"
	cfg.Model = "claude-haiku-4-5"
	cfg.Timeout = 5 * time.Minute
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", loaded.Provider)
	assert.Equal(t, "claude-haiku-4-5", loaded.Model)
	assert.Equal(t, 5*time.Minute, loaded.Timeout)
}
