package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrConfig", ErrConfig},
		{"ErrExtraction", ErrExtraction},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrRetrieval", ErrRetrieval},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrFetch", ErrFetch},
		{"ErrNotReady", ErrNotReady},
		{"ErrModelMismatch", ErrModelMismatch},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrUnauthorized", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestTypedErrors_MatchSentinelAndCause(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "config",
			err:      &ConfigError{Field: "ingest.source_dir", Err: cause},
			sentinel: ErrConfig,
			message:  "configuration error: ingest.source_dir: boom",
		},
		{
			name:     "extraction",
			err:      &ExtractionError{DocumentID: "a.pdf", Err: cause},
			sentinel: ErrExtraction,
			message:  "extracting a.pdf: boom",
		},
		{
			name:     "embedding with document",
			err:      &EmbeddingError{DocumentID: "a.pdf", Err: cause},
			sentinel: ErrEmbeddingUnavailable,
			message:  "embedding a.pdf: boom",
		},
		{
			name:     "embedding for query",
			err:      &EmbeddingError{Err: cause},
			sentinel: ErrEmbeddingUnavailable,
			message:  "embedding: boom",
		},
		{
			name:     "retrieval",
			err:      &RetrievalError{Err: cause},
			sentinel: ErrRetrieval,
			message:  "retrieval: boom",
		},
		{
			name:     "generation",
			err:      &GenerationError{Err: cause},
			sentinel: ErrLLMUnavailable,
			message:  "generation: boom",
		},
		{
			name:     "fetch transport",
			err:      &FetchError{URL: "http://x", Err: cause},
			sentinel: ErrFetch,
			message:  "fetching http://x: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, tt.err, cause)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestConfigError_NilCause(t *testing.T) {
	err := &ConfigError{Field: "openai.api_key"}

	assert.Equal(t, "configuration error: openai.api_key", err.Error())
	assert.ErrorIs(t, err, ErrConfig)
}

func TestFetchError_StatusCode(t *testing.T) {
	err := &FetchError{URL: "http://example.com", StatusCode: 404}

	assert.Equal(t, "fetching http://example.com: status 404", err.Error())
	assert.ErrorIs(t, err, ErrFetch)
}

func TestTypedErrors_As(t *testing.T) {
	wrapped := fmt.Errorf("ingest: %w", &ConfigError{Field: "ingest.source_dir", Err: ErrNotFound})

	var cfgErr *ConfigError
	require.ErrorAs(t, wrapped, &cfgErr)
	assert.Equal(t, "ingest.source_dir", cfgErr.Field)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}
