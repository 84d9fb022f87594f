package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Normaliser extracts text from one family of MIME types.
type Normaliser interface {
	SupportedMIMETypes() []string

	// Priority breaks ties when two normalisers claim a type. Format
	// specific ones use 50-89, catch-alls 1-9.
	Priority() int

	// Normalise returns a Document whose Content is the extracted text.
	// Input with no extractable text gives empty Content and no error;
	// ingestion decides whether to skip it.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult wraps the extracted document.
type NormaliseResult struct {
	Document domain.Document
}
