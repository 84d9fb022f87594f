package driven

import "context"

// EmbeddingService turns document and question text into vectors.
// Records and queries must be embedded by the same model, which is why
// collections are keyed by ModelName and Dimensions.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the configured vector size, or 0 when unknown. Stores
	// then take the size from the first vector written.
	Dimensions() int
	ModelName() string

	// Ping makes a lightweight request to check reachability and credentials.
	Ping(ctx context.Context) error
	Close() error
}
