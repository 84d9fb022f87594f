package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfig indicates missing or invalid configuration, such as an
	// absent source directory or API key.
	ErrConfig = errors.New("configuration error")

	// ErrExtraction indicates text could not be extracted from a document.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbeddingUnavailable indicates the embedding service failed or is
	// not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRetrieval indicates the similarity query could not be completed.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrLLMUnavailable indicates the LLM service failed or is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrFetch indicates a URL could not be fetched.
	ErrFetch = errors.New("fetch failed")

	// ErrNotReady indicates the document collection has not been built yet.
	ErrNotReady = errors.New("collection not ready")

	// ErrModelMismatch indicates an existing collection was built with a
	// different embedding model or dimensionality.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrDimensionMismatch indicates a vector has the wrong length for its
	// collection.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates the API rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// ConfigError reports a configuration problem. It is fatal to the
// affected feature and is not retried automatically.
type ConfigError struct {
	// Field is the configuration key or resource at fault.
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("configuration error: %s", e.Field)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

// Unwrap matches both ErrConfig and the cause.
func (e *ConfigError) Unwrap() []error { return []error{ErrConfig, e.Err} }

// ExtractionError reports a failure to extract text from one document.
type ExtractionError struct {
	DocumentID string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.DocumentID, e.Err)
}

// Unwrap matches both ErrExtraction and the cause.
func (e *ExtractionError) Unwrap() []error { return []error{ErrExtraction, e.Err} }

// EmbeddingError reports a failed embedding call. DocumentID is empty
// when the text being embedded was a query.
type EmbeddingError struct {
	DocumentID string
	Err        error
}

func (e *EmbeddingError) Error() string {
	if e.DocumentID == "" {
		return fmt.Sprintf("embedding: %v", e.Err)
	}
	return fmt.Sprintf("embedding %s: %v", e.DocumentID, e.Err)
}

// Unwrap matches both ErrEmbeddingUnavailable and the cause.
func (e *EmbeddingError) Unwrap() []error { return []error{ErrEmbeddingUnavailable, e.Err} }

// RetrievalError reports a failed similarity query.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval: %v", e.Err)
}

// Unwrap matches both ErrRetrieval and the cause.
func (e *RetrievalError) Unwrap() []error { return []error{ErrRetrieval, e.Err} }

// GenerationError reports a failed completion or stream.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: %v", e.Err)
}

// Unwrap matches both ErrLLMUnavailable and the cause.
func (e *GenerationError) Unwrap() []error { return []error{ErrLLMUnavailable, e.Err} }

// FetchError reports a failed URL fetch. StatusCode is zero for
// transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

// Unwrap matches both ErrFetch and the cause.
func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }
