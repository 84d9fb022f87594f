package ai

import (
	"context"
	"errors"
	"net/http"

	"github.com/custodia-labs/docchat/internal/adapters/driven/retry"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator pings providers and reports failures as
// *domain.ConfigError naming the setting most likely at fault.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the configured embedding provider.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	if err := ValidateEmbeddingConfig(ctx, settings); err != nil {
		return &domain.ConfigError{Field: "embedding." + faultyField(err), Err: err}
	}
	return nil
}

// ValidateLLM pings the configured LLM provider.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error {
	if err := ValidateLLMConfig(ctx, settings); err != nil {
		return &domain.ConfigError{Field: "llm." + faultyField(err), Err: err}
	}
	return nil
}

// faultyField maps a validation failure to the setting to fix.
func faultyField(err error) string {
	var status *retry.StatusError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "api_key"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.As(err, &status) && status.StatusCode == http.StatusNotFound:
		return "model"
	default:
		return "base_url"
	}
}
