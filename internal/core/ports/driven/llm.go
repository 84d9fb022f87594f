package driven

import "context"

// LLMService sends chat messages to a language model.
//
// Implementations may include:
//   - OpenAI (GPT-4o, GPT-4o mini)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Complete returns the full response text for the conversation.
	Complete(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// Stream starts a streamed response. The returned Stream must be
	// closed by the caller.
	Stream(ctx context.Context, messages []ChatMessage, opts ChatOptions) (Stream, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Stream is a forward-only sequence of text increments. It is consumed
// once and cannot be restarted.
//
//	for s.Next() {
//		fmt.Print(s.Delta())
//	}
//	if err := s.Err(); err != nil { ... }
type Stream interface {
	// Next advances to the next increment. It returns false when the
	// stream is exhausted or failed.
	Next() bool

	// Delta returns the current increment.
	Delta() string

	// Err returns the first error encountered, if any.
	Err() error

	// Close releases the underlying connection.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
