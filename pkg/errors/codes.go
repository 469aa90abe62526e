package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code        ErrorCode
	Retryable   bool
	Description string
	Suggestions []string
}

// ErrorCodeRegistry maps error codes to their metadata. The suggestions
// are rendered verbatim as the remedy list under UserMessage output.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrAPIKeyMissing: {
		Code:        ErrAPIKeyMissing,
		Retryable:   false,
		Description: "The selected provider rejected or is missing an API key",
		Suggestions: []string{
			"Store a key for the provider: minute auth set <provider>",
			"Or export it directly, e.g. OPENAI_API_KEY / ANTHROPIC_API_KEY",
			"Check which provider is selected: minute config show",
		},
	},
	ErrModelCompatibility: {
		Code:        ErrModelCompatibility,
		Retryable:   false,
		Description: "The selected model rejected a request parameter",
		Suggestions: []string{
			"Switch to another model: minute notes --model <name>",
			"List known-good presets: minute models",
		},
	},
	ErrTimeout: {
		Code:        ErrTimeout,
		Retryable:   true,
		Description: "A model request exceeded the configured time budget",
		Suggestions: []string{
			"Raise the budget: minute notes --timeout 5m",
			"Try a faster model: minute models",
			"Process a shorter transcript or split the input",
		},
	},
	ErrRateLimit: {
		Code:        ErrRateLimit,
		Retryable:   true,
		Description: "The provider is rate-limiting requests",
		Suggestions: []string{
			"Wait a minute and retry",
			"Switch to a lower-tier model: minute notes --model <name>",
		},
	},
	ErrTranscript: {
		Code:        ErrTranscript,
		Retryable:   false,
		Description: "The input transcript failed validation",
		Suggestions: []string{
			"Check the file is plain text and at least a few sentences long",
			"Inspect how it would be segmented: minute chunks <file>",
		},
	},
	ErrProcessing: {
		Code:        ErrProcessing,
		Retryable:   false,
		Description: "The pipeline hit an unclassified error",
		Suggestions: []string{
			"Re-run with --progress verbose for stage-level detail",
		},
	},
}

// IsRetryable reports whether the given error code represents a transient,
// retryable condition.
func IsRetryable(code ErrorCode) bool {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Retryable
	}
	return false
}

// GetDescription returns the human-readable description for the code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}
