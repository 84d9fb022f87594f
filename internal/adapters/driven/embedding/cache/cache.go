// Package cache wraps an EmbeddingService with an in-process LRU cache so
// repeated queries skip the provider round trip.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService caches embeddings of an inner service keyed by text.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// New wraps inner with a cache holding up to size entries.
// A size of zero or less returns inner unchanged.
func New(inner driven.EmbeddingService, size int) (driven.EmbeddingService, error) {
	if size <= 0 {
		return inner, nil
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &EmbeddingService{inner: inner, cache: c}, nil
}

func (s *EmbeddingService) key(text string) string {
	return s.inner.ModelName() + "\x00" + text
}

// Embed returns the cached vector for text or asks the inner service.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	k := s.key(text)
	if v, ok := s.cache.Get(k); ok {
		return clone(v), nil
	}
	v, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(k, clone(v))
	return v, nil
}

// EmbedBatch serves cached texts locally and sends the rest in one batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if v, ok := s.cache.Get(s.key(text)); ok {
			out[i] = clone(v)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := s.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missing) {
		return nil, fmt.Errorf("embedding cache: expected %d embeddings, got %d", len(missing), len(fetched))
	}
	for j, v := range fetched {
		out[missingIdx[j]] = v
		s.cache.Add(s.key(missing[j]), clone(v))
	}
	return out, nil
}

// Dimensions returns the inner service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the inner service's model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping checks the inner service.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close purges the cache and closes the inner service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.inner.Close()
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int { return s.cache.Len() }

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
