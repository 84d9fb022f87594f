package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Fetcher retrieves a remote document.
type Fetcher interface {
	// Fetch performs an HTTP GET. A non-2xx status or transport failure
	// returns a *domain.FetchError.
	Fetch(ctx context.Context, url string) (*domain.RawDocument, error)
}
