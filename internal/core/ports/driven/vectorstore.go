package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// VectorStore persists embedding records for one collection and answers
// nearest-neighbour queries over them.
type VectorStore interface {
	// Name returns the collection name.
	Name() string

	// Upsert writes or overwrites the record with the same ID.
	Upsert(ctx context.Context, record domain.Record) error

	// Query returns up to k records ranked by cosine similarity, highest
	// first. Fewer than k are returned only if the collection holds fewer.
	Query(ctx context.Context, embedding []float32, k int) ([]domain.QueryResult, error)

	// Get returns the record with the given ID or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)
}

// CollectionProvider opens named persistent collections.
type CollectionProvider interface {
	// GetOrCreate opens the named collection, creating it if absent.
	// It returns domain.ErrModelMismatch when an existing collection was
	// built with a different model or dimensionality.
	GetOrCreate(ctx context.Context, name string, spec domain.CollectionSpec) (VectorStore, error)

	// Collections lists the collections known to the provider.
	Collections(ctx context.Context) ([]domain.Collection, error)

	// Close releases resources.
	Close() error
}
