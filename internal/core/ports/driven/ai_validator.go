package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// AIConfigValidator checks provider settings against the live service.
// Settings for an unconfigured provider are not an error.
type AIConfigValidator interface {
	// ValidateEmbedding connects to the embedding provider.
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error

	// ValidateLLM connects to the LLM provider.
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
}
