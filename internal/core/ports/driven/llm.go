package driven

import "context"

// LLMService turns a grounded prompt into answer text.
//
// Backends: Ollama for local models, OpenAI and Anthropic for cloud.
// Transport failures surface as domain.ErrProviderUnavailable, rejected
// requests and empty completions as domain.ErrModelError, and a missing
// cloud key as domain.ErrMissingCredential at construction.
type LLMService interface {
	// Generate returns the model's completion of prompt. A blank
	// completion is an error, never an empty answer.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the configured model identifier.
	ModelName() string

	// Ping checks the backend is reachable without running inference.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes a single completion. Zero values use the
// backend's defaults.
type GenerateOptions struct {
	// System is sent as the system instruction where the backend has one.
	System string

	MaxTokens   int
	Temperature float64

	// StopWords end the completion when produced.
	StopWords []string
}
