package services

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// CollectionSource exposes the collection built by ingestion.
type CollectionSource interface {
	// Collection returns the collection handle, or nil before READY.
	Collection() driven.VectorStore
}

// RetrievalService embeds questions and queries the collection.
type RetrievalService struct {
	source   CollectionSource
	embedder driven.EmbeddingService
	k        int
}

// NewRetrievalService creates a retrieval service. k <= 0 uses domain.DefaultK.
func NewRetrievalService(source CollectionSource, embedder driven.EmbeddingService, k int) *RetrievalService {
	if k <= 0 {
		k = domain.DefaultK
	}
	return &RetrievalService{
		source:   source,
		embedder: embedder,
		k:        k,
	}
}

// K returns the number of records retrieved per question.
func (s *RetrievalService) K() int {
	return s.k
}

// Retrieve returns the texts and source IDs of the top-k records.
func (s *RetrievalService) Retrieve(ctx context.Context, question string) ([]string, []string, error) {
	results, err := s.Results(ctx, question)
	if err != nil {
		return []string{}, []string{}, err
	}

	texts := make([]string, len(results))
	ids := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Record.Text
		ids[i] = r.Record.SourceID()
	}
	return texts, ids, nil
}

// Results returns the ranked records for a question.
func (s *RetrievalService) Results(ctx context.Context, question string) ([]domain.QueryResult, error) {
	col := s.source.Collection()
	if col == nil {
		return []domain.QueryResult{}, domain.ErrNotReady
	}
	if s.embedder == nil {
		return []domain.QueryResult{}, &domain.RetrievalError{Err: domain.ErrEmbeddingUnavailable}
	}

	defer logger.Timer("retrieval")()

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return []domain.QueryResult{}, &domain.RetrievalError{Err: &domain.EmbeddingError{Err: err}}
	}

	results, err := col.Query(ctx, embedding, s.k)
	if err != nil {
		return []domain.QueryResult{}, &domain.RetrievalError{Err: err}
	}

	for i, r := range results {
		logger.Debug("Hit %d: %s (similarity %.3f)", i+1, r.Record.SourceID(), r.Similarity)
	}
	return results, nil
}
