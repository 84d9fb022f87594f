package html

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Elements whose content is never visible.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"svg":      true,
	"iframe":   true,
	"img":      true,
}

// Elements that start and end a line.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "nav": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"table": true, "tr": true, "blockquote": true, "pre": true,
	"figure": true, "figcaption": true, "form": true,
}

// Elements separated from their neighbours by a space.
var cellElements = map[string]bool{
	"td": true,
	"th": true,
}

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to its visible text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw.Content)))
	if err != nil {
		return nil, &domain.ExtractionError{DocumentID: raw.ID, Err: err}
	}

	doc := domain.Document{
		ID:       raw.ID,
		URI:      raw.URI,
		Title:    extractHTMLTitle(page, raw.URI),
		Content:  visibleText(page),
		Metadata: copyMetadata(raw.Metadata),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata[domain.MetadataMIMEType] = raw.MIMEType
	doc.Metadata["format"] = "html"

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// extractHTMLTitle uses <title>, then the first <h1>, then the filename.
func extractHTMLTitle(page *goquery.Document, uri string) string {
	for _, selector := range []string{"title", "h1"} {
		if title := collapse(page.Find(selector).First().Text()); title != "" {
			return title
		}
	}

	filename := filepath.Base(uri)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// stripHTML parses content and returns its visible text.
func stripHTML(content string) string {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return visibleText(page)
}

// visibleText renders the document's text, one line per block element,
// with whitespace collapsed within each line and blank lines dropped.
func visibleText(page *goquery.Document) string {
	var b strings.Builder
	for _, node := range page.Nodes {
		writeText(&b, node)
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = collapse(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if inPre(n) {
			b.WriteString(n.Data)
		} else {
			b.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if skipElements[n.Data] {
			return
		}
		if n.Data == "br" || n.Data == "hr" {
			b.WriteByte('\n')
			return
		}
	}

	isElement := n.Type == html.ElementNode
	block := isElement && blockElements[n.Data]
	cell := isElement && cellElements[n.Data]

	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte('\n')
	}
	if cell {
		b.WriteByte(' ')
	}
}

func inPre(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "pre" {
			return true
		}
	}
	return false
}

// collapse trims s and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
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
