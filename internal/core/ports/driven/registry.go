package driven

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// NormaliserRegistry routes raw documents to the highest priority
// Normaliser for their MIME type, and decides which files in the source
// directory are ingestible at all.
type NormaliserRegistry interface {
	// Normalise fails with ErrUnsupportedType
	// when no normaliser claims raw.MIMEType.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
	Register(normaliser Normaliser)
	SupportedMIMETypes() []string

	// MIMETypeForFile maps a file name to a supported MIME type by
	// extension, or "" when the file should not be ingested.
	MIMETypeForFile(name string) string
}
