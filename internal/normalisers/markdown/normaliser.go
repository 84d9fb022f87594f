// Package markdown extracts readable text from Markdown documents.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	codeFence    = regexp.MustCompile("(?m)^[ \t]*```.*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	stars        = regexp.MustCompile(`\*{1,2}([^*\n]+)\*{1,2}`)
	underscores  = regexp.MustCompile(`(^|\W)_{1,2}([^_\n]+)_{1,2}(\W|$)`)
	blockquote   = regexp.MustCompile(`(?m)^>[ \t]?`)
	rule         = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	listMarker   = regexp.MustCompile(`(?m)^([ \t]*)[-*+][ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Higher than plaintext
}

// Normalise decodes the document like plain text and strips Markdown
// syntax. Code block contents are kept since they often hold the answer.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, encoding := plaintext.Decode(raw.Content)

	doc := domain.Document{
		ID:       raw.ID,
		URI:      raw.URI,
		Title:    extractTitle(text, raw),
		Content:  Strip(text),
		Metadata: make(map[string]any, len(raw.Metadata)+3),
	}
	for k, v := range raw.Metadata {
		doc.Metadata[k] = v
	}
	doc.Metadata[domain.MetadataMIMEType] = raw.MIMEType
	doc.Metadata[domain.MetadataEncoding] = encoding
	doc.Metadata["format"] = "markdown"

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// Strip removes common Markdown formatting and returns plain text.
func Strip(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = codeFence.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = rule.ReplaceAllString(content, "")
	content = listMarker.ReplaceAllString(content, "$1")
	content = stars.ReplaceAllString(content, "$1")
	content = underscores.ReplaceAllString(content, "$1$2$3")
	content = blockquote.ReplaceAllString(content, "")
	content = multiNewline.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// extractTitle returns the first level-one heading, falling back to the
// file name without extension.
func extractTitle(content string, raw *domain.RawDocument) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}

	name := raw.ID
	if name == "" {
		name = raw.URI
	}
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}
