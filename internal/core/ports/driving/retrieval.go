package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// RetrievalService finds the stored documents closest to a question.
type RetrievalService interface {
	// Retrieve returns the texts and source IDs of the top-k records, in
	// matching order. On failure both slices are empty and the error is a
	// *domain.RetrievalError or domain.ErrNotReady.
	Retrieve(ctx context.Context, question string) (texts []string, sourceIDs []string, err error)

	// Results is like Retrieve but returns the ranked records.
	Results(ctx context.Context, question string) ([]domain.QueryResult, error)

	// K returns the number of records retrieved per question.
	K() int
}
