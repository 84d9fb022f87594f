package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// userMessage turns an error into a message for the terminal.
func userMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		cfgErr   *domain.ConfigError
		fetchErr *domain.FetchError
		genErr   *domain.GenerationError
		retErr   *domain.RetrievalError
	)
	switch {
	case errors.As(err, &cfgErr):
		if cfgErr.Field == "ingest.source_dir" {
			return fmt.Sprintf("%v. Set it with 'docchat settings set-source <dir>'", cfgErr.Err)
		}
		return fmt.Sprintf("configuration problem with %s: %v. Run 'docchat settings wizard' to fix", cfgErr.Field, cfgErr.Err)
	case errors.Is(err, domain.ErrNotReady):
		return "the document collection is not ready. Run 'docchat ingest' first"
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode != 0 {
			return fmt.Sprintf("could not fetch %s: server returned %d", fetchErr.URL, fetchErr.StatusCode)
		}
		return fmt.Sprintf("could not fetch %s: %v", fetchErr.URL, fetchErr.Err)
	case errors.Is(err, domain.ErrUnauthorized):
		return "the provider rejected the API key. Run 'docchat settings set-key <provider>'"
	case errors.Is(err, domain.ErrRateLimited):
		return "the provider is rate limiting requests. Try again shortly"
	case errors.As(err, &retErr):
		return fmt.Sprintf("could not search the documents: %v", retErr.Err)
	case errors.As(err, &genErr):
		return fmt.Sprintf("the language model failed: %v", genErr.Err)
	case errors.Is(err, domain.ErrModelMismatch):
		return fmt.Sprintf("%v. Change store.collection or remove the existing collection", err)
	default:
		return err.Error()
	}
}
