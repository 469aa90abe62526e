package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a classified pipeline error.
type ErrorCode string

const (
	// ErrAPIKeyMissing indicates the required API key for the selected
	// provider is absent or rejected.
	ErrAPIKeyMissing ErrorCode = "api_key_missing"

	// ErrModelCompatibility indicates the selected model rejected a
	// parameter the pipeline sent (e.g., an unsupported token-limit
	// parameter).
	ErrModelCompatibility ErrorCode = "model_compatibility"

	// ErrTimeout indicates a model request exceeded the configured budget
	// or was cancelled while in flight.
	ErrTimeout ErrorCode = "timeout"

	// ErrRateLimit indicates the provider is throttling requests.
	ErrRateLimit ErrorCode = "rate_limit"

	// ErrTranscript indicates the input transcript is empty, too short,
	// or not text. Raised before any model call is attempted.
	ErrTranscript ErrorCode = "transcript_invalid"

	// ErrProcessing is the unclassified fallback for any other failure.
	ErrProcessing ErrorCode = "processing_error"
)

// Pipeline stage names, attached to every classified error.
const (
	StageChunking   = "chunking"
	StageExtraction = "extraction"
	StageRefinement = "refinement"
	StageGeneration = "generation"
	StageEditing    = "editing"
)

// PipelineError is a structured error for notes-pipeline failures. It
// carries enough context (stage, chunk position, provider/model) that a
// caller can render an actionable message without inspecting the cause.
type PipelineError struct {
	Code        ErrorCode
	Stage       string
	Chunk       int // 1-based chunk position, 0 when not applicable
	TotalChunks int
	Provider    string
	Model       string
	Message     string
	Suggestions []string // instance-specific additions to the registry suggestions
	Cause       error
}

func (e *PipelineError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Stage != "" {
		b.WriteString(": ")
		b.WriteString(e.Stage)
	}
	if e.Chunk > 0 && e.TotalChunks > 0 {
		fmt.Fprintf(&b, " (chunk %d/%d)", e.Chunk, e.TotalChunks)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// WithChunk records the chunk position the error occurred at.
func (e *PipelineError) WithChunk(chunk, total int) *PipelineError {
	e.Chunk = chunk
	e.TotalChunks = total
	return e
}

// WithModel records the provider and model the failing request targeted.
func (e *PipelineError) WithModel(provider, model string) *PipelineError {
	e.Provider = provider
	e.Model = model
	return e
}

// Remedies returns the combined remedy list for the error: the registry
// suggestions for its code followed by any instance-specific additions.
func (e *PipelineError) Remedies() []string {
	var out []string
	if info, ok := ErrorCodeRegistry[e.Code]; ok {
		out = append(out, info.Suggestions...)
	}
	out = append(out, e.Suggestions...)
	return out
}

// UserMessage renders a one-paragraph description of the failure plus a
// bulleted list of remedies, suitable for direct terminal output.
func (e *PipelineError) UserMessage() string {
	var b strings.Builder
	b.WriteString(GetDescription(e.Code))
	if e.Stage != "" {
		fmt.Fprintf(&b, " during the %s stage", e.Stage)
	}
	if e.Chunk > 0 && e.TotalChunks > 0 {
		fmt.Fprintf(&b, " (chunk %d of %d)", e.Chunk, e.TotalChunks)
	}
	if e.Model != "" {
		fmt.Fprintf(&b, " [%s/%s]", e.Provider, e.Model)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	remedies := e.Remedies()
	if len(remedies) > 0 {
		b.WriteString("\n")
		for _, r := range remedies {
			b.WriteString("\n  - ")
			b.WriteString(r)
		}
	}
	return b.String()
}

// Classify inspects an error and returns a *PipelineError with the
// appropriate code and the given stage attached. Already-classified errors
// pass through with their stage filled in if missing. Unmatched errors
// fall back to ErrProcessing with the original message preserved, plus a
// throttling suggestion when the message hints at rate limiting.
func Classify(err error, stage string) *PipelineError {
	if err == nil {
		return nil
	}

	var pe *PipelineError
	if errors.As(err, &pe) {
		if pe.Stage == "" {
			pe.Stage = stage
		}
		return pe
	}

	pe = &PipelineError{
		Stage: stage,
		Cause: err,
	}

	if errors.Is(err, context.DeadlineExceeded) {
		pe.Code = ErrTimeout
		pe.Message = "model request exceeded the configured time budget"
		return pe
	}
	if errors.Is(err, context.Canceled) {
		pe.Code = ErrTimeout
		pe.Message = "model request was cancelled before completing"
		return pe
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	// Authentication / missing key patterns.
	if strings.Contains(lower, "api key") || strings.Contains(lower, "api_key") ||
		strings.Contains(lower, "authentication") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "401") || strings.Contains(lower, "invalid x-api-key") {
		pe.Code = ErrAPIKeyMissing
		pe.Message = msg
		return pe
	}

	// Unsupported-parameter patterns.
	if strings.Contains(lower, "unsupported parameter") || strings.Contains(lower, "unsupported_parameter") ||
		strings.Contains(lower, "is not supported with this model") ||
		(strings.Contains(lower, "max_tokens") && strings.Contains(lower, "not supported")) ||
		strings.Contains(lower, "unsupported value") {
		pe.Code = ErrModelCompatibility
		pe.Message = msg
		return pe
	}

	// Timeout patterns not surfaced as context errors.
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") ||
		strings.Contains(lower, "deadline exceeded") {
		pe.Code = ErrTimeout
		pe.Message = msg
		return pe
	}

	// Rate limit patterns.
	if hintsRateLimit(lower) {
		pe.Code = ErrRateLimit
		pe.Message = msg
		return pe
	}

	// Transcript validation patterns.
	if strings.Contains(lower, "transcript") &&
		(strings.Contains(lower, "empty") || strings.Contains(lower, "too short") || strings.Contains(lower, "binary")) {
		pe.Code = ErrTranscript
		pe.Message = msg
		return pe
	}

	pe.Code = ErrProcessing
	pe.Message = msg
	return pe
}

// hintsRateLimit reports whether a lowercased error message looks like
// provider throttling.
func hintsRateLimit(lower string) bool {
	return strings.Contains(lower, "rate limit") || strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "429") || strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "quota") || strings.Contains(lower, "overloaded")
}

// HintsRateLimit reports whether an error's message looks like provider
// throttling. Used to append a wait/downgrade suggestion to otherwise
// unclassified errors.
func HintsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	return hintsRateLimit(strings.ToLower(err.Error()))
}

// IsTimeout reports whether the error chain contains a timeout-classified
// pipeline error.
func IsTimeout(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == ErrTimeout
	}
	return false
}

// IsCode reports whether the error chain contains a pipeline error with
// the given code.
func IsCode(err error, code ErrorCode) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IsErrorRetryable reports whether the error is likely transient per the
// code registry. Unknown codes default to non-retryable.
func IsErrorRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		if info, ok := ErrorCodeRegistry[pe.Code]; ok {
			return info.Retryable
		}
	}
	return false
}
