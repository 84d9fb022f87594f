package domain

import "time"

// Document is the extracted text of one source document.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier within a collection.
	// Files use their base filename, URL mode uses the URL.
	ID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text. It may be empty when
	// nothing could be extracted.
	Content string

	// Metadata contains arbitrary key-value pairs. Documents loaded
	// from disk always carry "filename".
	Metadata map[string]any
}

// Filename returns the filename metadata value, falling back to the ID.
func (d *Document) Filename() string {
	if d.Metadata != nil {
		if name, ok := d.Metadata[MetadataFilename].(string); ok && name != "" {
			return name
		}
	}
	return d.ID
}

// Well-known metadata keys.
const (
	MetadataFilename = "filename"
	MetadataMIMEType = "mime_type"
	MetadataEncoding = "encoding"
	MetadataPages    = "pages"
	MetadataURL      = "url"
)

// Record is one embedding record in a collection.
// Documents are not sub-chunked: each whole document is one record
// and the record ID matches the document ID.
type Record struct {
	// ID is the document ID.
	ID string

	// Text is the document text that was embedded.
	Text string

	// Embedding is the vector produced by the collection's model.
	Embedding []float32

	// Metadata contains document metadata (at least "filename").
	Metadata map[string]any

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time
}

// SourceID returns the identifier shown to users as the origin of the text.
func (r *Record) SourceID() string {
	if r.Metadata != nil {
		if name, ok := r.Metadata[MetadataFilename].(string); ok && name != "" {
			return name
		}
	}
	return r.ID
}

// QueryResult is a record ranked by similarity to a query vector.
type QueryResult struct {
	Record Record

	// Similarity is the cosine similarity in [-1, 1], higher is closer.
	Similarity float64
}

// CollectionSpec pins the embedding space of a collection.
// All records in one collection must come from the same model
// and have the same dimensionality.
type CollectionSpec struct {
	// Model is the embedding model identifier.
	Model string

	// Dimensions is the vector length. Zero means "learn from the
	// first record written".
	Dimensions int
}

// Collection describes a persisted named collection.
type Collection struct {
	Name       string
	Model      string
	Dimensions int
	CreatedAt  time.Time
}
