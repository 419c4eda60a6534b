// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides text generation for answering and reranking.
// This is an optional service - when nil, features degrade gracefully to
// retrieval-only behaviour.
//
// Implementations may include:
//   - Ollama (local models)
//   - Anthropic (Claude)
type LLMService interface {
	// Generate produces a completion for a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces a completion incrementally. Tokens arrive
	// on the first channel; at most one error arrives on the second.
	// Both channels are closed when generation finishes. Cancelling the
	// context stops generation; the consumer must drain until close.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan string, <-chan error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// SystemPrompt sets the system role instructions, when non-empty.
	SystemPrompt string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
