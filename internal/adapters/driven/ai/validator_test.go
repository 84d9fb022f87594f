package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/adapters/driven/retry"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestConfigValidator_UnconfiguredIsValid(t *testing.T) {
	v := NewConfigValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateEmbedding(ctx, nil))
	assert.NoError(t, v.ValidateEmbedding(ctx, &domain.EmbeddingSettings{}))
	assert.NoError(t, v.ValidateLLM(ctx, nil))
	assert.NoError(t, v.ValidateLLM(ctx, &domain.LLMSettings{Model: "test-model"}))
}

func TestConfigValidator_ReachableOllama(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	err := NewConfigValidator().ValidateLLM(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
		BaseURL:  server.URL,
	})

	assert.NoError(t, err)
}

func TestConfigValidator_UnreachableNamesBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewConfigValidator().ValidateEmbedding(context.Background(), &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  url,
	})

	require.Error(t, err)
	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "embedding.base_url", cfgErr.Field)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestFaultyField(t *testing.T) {
	assert.Equal(t, "api_key", faultyField(&domain.GenerationError{Err: domain.ErrUnauthorized}))
	assert.Equal(t, "model", faultyField(domain.ErrInvalidInput))
	assert.Equal(t, "model", faultyField(&retry.StatusError{Provider: "ollama", StatusCode: http.StatusNotFound}))
	assert.Equal(t, "base_url", faultyField(errors.New("connection refused")))
}
