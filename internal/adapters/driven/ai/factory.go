// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"

	embedcache "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docchat/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/docchat/internal/adapters/driven/llm/breaker"
	ollamallm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docchat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docchat/internal/adapters/driven/retry"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = domain.DefaultPingTimeout

// fixHint is appended to provider errors shown to the user.
const fixHint = "Run 'docchat settings' to fix"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	// EmbeddingService talks to the provider directly and is used for
	// ingestion, where every chunk is new text.
	EmbeddingService driven.EmbeddingService

	// QueryEmbedding embeds questions through an LRU cache. It shares the
	// provider client with EmbeddingService.
	QueryEmbedding driven.EmbeddingService

	LLMService driven.LLMService
	Warnings   []string // Non-fatal issues, such as an unreachable LLM.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.QueryEmbedding != nil {
		r.QueryEmbedding.Close()
	} else if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds both AI services from settings. The embedding service
// is required: a missing or unreachable embedding provider is an error.
// LLM problems are reported as warnings so retrieval keeps working.
// When validate is false no connectivity checks are made.
func Initialise(ctx context.Context, settings *domain.AppSettings, validate bool) (*InitResult, error) {
	if settings == nil {
		return nil, &domain.ConfigError{Field: "settings", Err: errors.New("no settings loaded")}
	}
	result := &InitResult{}

	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, &domain.ConfigError{Field: "embedding.provider", Err: err}
	}
	if embedding == nil {
		return nil, &domain.ConfigError{
			Field: "embedding.provider",
			Err:   fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider),
		}
	}
	if validate {
		if err := ping(ctx, embedding.Ping); err != nil {
			embedding.Close()
			return nil, &domain.EmbeddingError{
				Err: fmt.Errorf("service unreachable (%w). %s", err, fixHint),
			}
		}
	}
	result.QueryEmbedding, err = embedcache.New(embedding, settings.Retrieval.CacheSize)
	if err != nil {
		embedding.Close()
		return nil, err
	}
	result.EmbeddingService = embedding

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("LLM unavailable: %v", err))
	case llm == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("LLM provider %q is not configured; answers are disabled", settings.LLM.Provider))
	default:
		if validate {
			if err := ping(ctx, llm.Ping); err != nil {
				llm.Close()
				result.Warnings = append(result.Warnings, fmt.Sprintf("LLM unreachable: %v", err))
				break
			}
		}
		result.LLMService = llm
	}

	return result, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	return ping(ctx, svc.Ping)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	return ping(ctx, svc.Ping)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, errors.New("anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings,
// wrapped in a circuit breaker. Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaLLM(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		svc, err = createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return breaker.New(svc, breaker.Config{}), nil
}

func embeddingRetry(settings *domain.EmbeddingSettings) retry.Policy {
	return retry.DefaultPolicy().WithMaxRetries(settings.MaxRetries)
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:   settings.BaseURL,
		Model:     settings.Model,
		Retry:     embeddingRetry(settings),
		RateLimit: settings.RateLimit,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:    settings.APIKey,
		BaseURL:   settings.BaseURL,
		Model:     settings.Model,
		Retry:     embeddingRetry(settings),
		RateLimit: settings.RateLimit,
	})
}

// llmRetry only retries opening the request; partial streams are never replayed.
func llmRetry() retry.Policy {
	return retry.DefaultPolicy().WithMaxRetries(1)
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Retry:   llmRetry(),
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Retry:   llmRetry(),
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Retry:   llmRetry(),
	})
}
