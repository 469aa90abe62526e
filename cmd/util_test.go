package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minute-cli/config"
)

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("short"))
	assert.Equal(t, "sk-t...3456", maskKey("sk-test-key-123456"))
}

func TestFormatDurationMs(t *testing.T) {
	assert.Equal(t, "250ms", formatDurationMs(250))
	assert.Equal(t, "1.5s", formatDurationMs(1500))
	assert.Equal(t, "2.0m", formatDurationMs(120000))
}

func TestResolveFormat(t *testing.T) {
	cfg := &config.CLIConfig{OutputFormat: config.OutputFormatJSON}

	format, err := resolveFormat("", cfg)
	require.NoError(t, err)
	assert.Equal(t, config.OutputFormatJSON, format)

	format, err = resolveFormat("yaml", cfg)
	require.NoError(t, err)
	assert.Equal(t, config.OutputFormatYAML, format)

	_, err = resolveFormat("xml", cfg)
	assert.Error(t, err)
}

func TestWriteFormatted(t *testing.T) {
	payload := map[string]int{"chunks": 3}

	var buf bytes.Buffer
	require.NoError(t, writeFormatted(&buf, config.OutputFormatJSON, payload))
	assert.Contains(t, buf.String(), `"chunks": 3`)

	buf.Reset()
	require.NoError(t, writeFormatted(&buf, config.OutputFormatYAML, payload))
	assert.Contains(t, buf.String(), "chunks: 3")

	assert.Error(t, writeFormatted(&buf, config.OutputFormatText, payload))
}
