// Package plaintext decodes text documents, tolerating legacy encodings.
package plaintext

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Encodings recorded in document metadata.
const (
	EncodingUTF8      = "utf-8"
	EncodingLatin1    = "iso-8859-1"
	EncodingUTF8Lossy = "utf-8-lossy"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the raw bytes. Invalid encodings never fail: the
// decoder falls back from UTF-8 to ISO-8859-1 and finally drops bad bytes.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, encoding := Decode(raw.Content)

	doc := domain.Document{
		ID:       raw.ID,
		URI:      raw.URI,
		Title:    extractTitleFromMetadataOrURI(raw),
		Content:  content,
		Metadata: copyMetadata(raw.Metadata),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata[domain.MetadataMIMEType] = raw.MIMEType
	doc.Metadata[domain.MetadataEncoding] = encoding

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// Decode converts b to a string and reports the encoding that was used.
func Decode(b []byte) (string, string) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), EncodingUTF8
	}
	if s, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
		return string(s), EncodingLatin1
	}
	return strings.ToValidUTF8(string(b), ""), EncodingUTF8Lossy
}

// extractTitleFromMetadataOrURI checks metadata for title first, then falls back to URI.
func extractTitleFromMetadataOrURI(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return extractTitle(raw.URI)
}

// extractTitle extracts a human-readable title from a URI.
func extractTitle(uri string) string {
	filename := filepath.Base(uri)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
