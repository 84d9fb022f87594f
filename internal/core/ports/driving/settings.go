package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults and
	// environment overrides applied.
	Get() (*domain.AppSettings, error)

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetAPIKey stores the API key for a provider.
	SetAPIKey(provider domain.AIProvider, apiKey string) error

	// SetSourceDir updates the ingestion source directory.
	SetSourceDir(dir string) error

	// Validate returns a *domain.ConfigError describing the first missing
	// or invalid setting, or nil.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
	ValidateEmbeddingConfig(ctx context.Context) error

	// ValidateLLMConfig validates the LLM configuration by pinging the provider.
	ValidateLLMConfig(ctx context.Context) error
}
