// Package llm provides the model-request capability for the notes
// pipeline: a small provider interface over chat-completion backends, with
// structured (JSON) output support, per-request timeouts, and error
// classification into the pipeline taxonomy.
package llm

import (
	"context"
	"strings"
	"time"
)

// Provider defines the interface for model providers.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai/gpt-4o-mini").
	Name() string

	// Complete sends a completion request and returns the raw response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteStructured sends a request expecting JSON output and parses
	// it into target. A response that does not match the target shape is a
	// hard failure; no partial acceptance.
	CompleteStructured(ctx context.Context, req CompletionRequest, target interface{}) error
}

// CompletionRequest represents a request to the model.
type CompletionRequest struct {
	// Prompt is the full prompt text to send.
	Prompt string `json:"prompt"`

	// SystemPrompt is an optional system-level instruction.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// JSONMode enables structured JSON output.
	JSONMode bool `json:"json_mode"`

	// MaxTokens limits response length (0 = provider default).
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-1.0, 0 = provider default).
	Temperature float64 `json:"temperature,omitempty"`

	// Metadata for tracing/logging.
	TraceID string `json:"trace_id,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

// CompletionResponse represents a response from the model.
type CompletionResponse struct {
	// Content is the raw text response.
	Content string `json:"content"`

	// TokensUsed tracks token consumption when the provider reports it.
	TokensUsed TokenUsage `json:"tokens_used"`

	// LatencyMs is the response time in milliseconds.
	LatencyMs int `json:"latency_ms"`

	// Model is the model that produced the response.
	Model string `json:"model"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// Config configures a model provider.
type Config struct {
	// Provider selection ("openai", "anthropic", "ollama").
	Provider string
	Model    string

	// APIKey authenticates hosted providers. Ignored by ollama.
	APIKey string

	// BaseURL overrides the provider endpoint (ollama server, OpenAI
	// compatible gateways).
	BaseURL string

	// Timeout bounds every request. Each call is wrapped in a deadline
	// context so an overdue request is aborted cooperatively.
	Timeout time.Duration
}

// extractJSON pulls a JSON document out of a model response, tolerating
// markdown code fences and leading prose. Returns the input unchanged when
// no fence or brace is found so the JSON decoder produces the real error.
func extractJSON(content string) string {
	trimmed := strings.TrimSpace(content)

	// ```json ... ``` or ``` ... ```
	if idx := strings.Index(trimmed, "```"); idx >= 0 {
		rest := trimmed[idx+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		trimmed = strings.TrimSpace(rest)
	}

	// Fall back to the outermost brace pair.
	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}
