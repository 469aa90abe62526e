package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LangchainProvider implements Provider on top of langchaingo chat models.
type LangchainProvider struct {
	cfg   Config
	model llms.Model
	name  string
}

// New creates a provider for the configured backend.
func New(cfg Config) (*LangchainProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	var (
		model llms.Model
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		opts := []openai.Option{openai.WithModel(cfg.Model), openai.WithToken(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model), anthropic.WithToken(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		model, err = anthropic.New(opts...)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: openai, anthropic, ollama)", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return &LangchainProvider{
		cfg:   cfg,
		model: model,
		name:  fmt.Sprintf("%s/%s", strings.ToLower(cfg.Provider), cfg.Model),
	}, nil
}

// Name returns the provider identifier.
func (p *LangchainProvider) Name() string {
	return p.name
}

// Complete sends a completion request and returns the raw response. The
// request runs under the configured timeout; on expiry the in-flight call
// is cancelled and the context error is returned to the caller for
// classification.
func (p *LangchainProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()

	var messages []llms.MessageContent
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, req.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, req.Prompt))

	opts := []llms.CallOption{}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := p.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		// Prefer the context error so timeouts classify correctly even
		// when the transport wraps them.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("generating completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from %s", p.name)
	}

	choice := resp.Choices[0]
	out := &CompletionResponse{
		Content:   choice.Content,
		LatencyMs: int(time.Since(start).Milliseconds()),
		Model:     p.cfg.Model,
	}
	if choice.GenerationInfo != nil {
		out.TokensUsed = TokenUsage{
			Prompt:     intFromInfo(choice.GenerationInfo, "PromptTokens"),
			Completion: intFromInfo(choice.GenerationInfo, "CompletionTokens"),
			Total:      intFromInfo(choice.GenerationInfo, "TotalTokens"),
		}
		if out.TokensUsed.Total == 0 {
			out.TokensUsed.Total = out.TokensUsed.Prompt + out.TokensUsed.Completion
		}
	}
	return out, nil
}

// CompleteStructured sends a JSON-mode request and decodes the response
// into target.
func (p *LangchainProvider) CompleteStructured(ctx context.Context, req CompletionRequest, target interface{}) error {
	req.JSONMode = true

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return err
	}

	payload := extractJSON(resp.Content)
	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("parsing structured response from %s: %w", p.name, err)
	}
	return nil
}

// intFromInfo reads an int-ish value from a generation-info map.
func intFromInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
