package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// ProgressFunc is called after each file is processed during ingestion.
type ProgressFunc func(done, total int, name string)

// IngestionService builds the document collection from the source directory.
type IngestionService interface {
	// Ingest runs the pipeline at most once per process. Once READY, later
	// calls return the cached report without touching the store.
	Ingest(ctx context.Context, progress ProgressFunc) (*domain.IngestReport, error)

	// State returns the readiness state.
	State() domain.ReadinessState

	// Ready reports whether State is READY.
	Ready() bool

	// Collection returns the collection handle, or nil before READY.
	Collection() driven.VectorStore

	// Report returns the report of the successful run, or nil before READY.
	Report() *domain.IngestReport
}
