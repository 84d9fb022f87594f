package domain

// RawDocument is a source file or fetched page before text extraction.
type RawDocument struct {
	// ID becomes the Document ID: the path relative to the source
	// directory, or the URL for fetched pages.
	ID       string
	URI      string
	MIMEType string
	Content  []byte
	Metadata map[string]any
}
