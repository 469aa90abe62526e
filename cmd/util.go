// Package cmd provides CLI commands for the minute tool.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/minute-cli/config"
)

// writeFormatted renders v to w in the requested format. Text rendering
// is the caller's business; this helper covers json and yaml.
func writeFormatted(w io.Writer, format config.OutputFormat, v interface{}) error {
	switch format {
	case config.OutputFormatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	case config.OutputFormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		fmt.Fprint(w, string(out))
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// resolveFormat picks the output format: flag first, then config.
func resolveFormat(flag string, cfg *config.CLIConfig) (config.OutputFormat, error) {
	if flag == "" {
		if cfg != nil && cfg.OutputFormat != "" {
			return cfg.OutputFormat, nil
		}
		return config.OutputFormatText, nil
	}
	f := config.OutputFormat(flag)
	switch f {
	case config.OutputFormatText, config.OutputFormatJSON, config.OutputFormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q (valid: text, json, yaml)", flag)
	}
}

// maskKey shows only the edges of an API key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// formatDurationMs formats milliseconds as a human-readable duration.
func formatDurationMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	return fmt.Sprintf("%.1fm", float64(ms)/60000)
}
