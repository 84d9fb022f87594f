package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Filename(t *testing.T) {
	t.Run("uses metadata", func(t *testing.T) {
		doc := Document{ID: "id-1", Metadata: map[string]any{MetadataFilename: "policy.pdf"}}
		assert.Equal(t, "policy.pdf", doc.Filename())
	})

	t.Run("falls back to ID", func(t *testing.T) {
		doc := Document{ID: "https://example.com"}
		assert.Equal(t, "https://example.com", doc.Filename())
	})

	t.Run("ignores non-string metadata", func(t *testing.T) {
		doc := Document{ID: "id-2", Metadata: map[string]any{MetadataFilename: 42}}
		assert.Equal(t, "id-2", doc.Filename())
	})
}

func TestRecord_SourceID(t *testing.T) {
	rec := Record{ID: "policy.pdf", Metadata: map[string]any{MetadataFilename: "policy.pdf"}}
	assert.Equal(t, "policy.pdf", rec.SourceID())

	bare := Record{ID: "notes.txt"}
	assert.Equal(t, "notes.txt", bare.SourceID())
}
