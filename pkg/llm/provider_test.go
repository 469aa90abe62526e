package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"bare object",
			`{"a": 1}`,
			`{"a": 1}`,
		},
		{
			"fenced json",
			"```json\n{\"a\": 1}\n```",
			`{"a": 1}`,
		},
		{
			"fence without language",
			"```\n{\"a\": 1}\n```",
			`{"a": 1}`,
		},
		{
			"leading prose",
			"Here is the extraction you asked for:\n{\"a\": 1}",
			`{"a": 1}`,
		},
		{
			"trailing prose",
			"{\"a\": 1}\nLet me know if you need anything else.",
			`{"a": 1}`,
		},
		{
			"nested braces",
			`{"outer": {"inner": 2}}`,
			`{"outer": {"inner": 2}}`,
		},
		{
			"no json at all",
			"sorry, I cannot do that",
			"sorry, I cannot do that",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.content))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Provider: "openai"})
	assert.Error(t, err, "empty model must be rejected")

	_, err = New(Config{Provider: "carrier-pigeon", Model: "x"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestNew_Name(t *testing.T) {
	p, err := New(Config{Provider: "ollama", Model: "llama3"})
	assert.NoError(t, err)
	assert.Equal(t, "ollama/llama3", p.Name())
}

func TestNew_BaseURLAccepted(t *testing.T) {
	// Every backend takes an endpoint override.
	for _, cfg := range []Config{
		{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-test", BaseURL: "http://localhost:8080/v1"},
		{Provider: "anthropic", Model: "claude-haiku-4-5", APIKey: "sk-test", BaseURL: "http://localhost:8080"},
		{Provider: "ollama", Model: "llama3", BaseURL: "http://localhost:11434"},
	} {
		p, err := New(cfg)
		assert.NoError(t, err, cfg.Provider)
		assert.Contains(t, p.Name(), cfg.Provider)
	}
}
