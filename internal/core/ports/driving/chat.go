package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// DeltaFunc receives streamed text increments in arrival order.
type DeltaFunc func(delta string)

// ChatService answers questions grounded in the document collection.
type ChatService interface {
	// Ask retrieves context, prompts the LLM and commits the exchange to
	// history on success. When opts.Stream is set, onDelta receives each
	// increment; the returned Answer text equals their concatenation.
	Ask(ctx context.Context, question string, opts domain.AskOptions, onDelta DeltaFunc) (*domain.Answer, error)

	// SummariseURL fetches a web page and answers the instruction using the
	// page text as context.
	SummariseURL(
		ctx context.Context, url, instruction string, opts domain.AskOptions, onDelta DeltaFunc,
	) (*domain.Answer, error)

	// History returns the session chat turns, oldest first.
	History() []domain.ChatTurn

	// ClearHistory removes all turns.
	ClearHistory()
}
