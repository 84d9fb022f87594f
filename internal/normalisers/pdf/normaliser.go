// Package pdf extracts text from PDF documents using poppler's pdftotext.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// toolName is the external extractor binary.
const toolName = "pdftotext"

// maxTitleLength bounds a first line used as the title.
const maxTitleLength = 200

// pageSeparator is written by pdftotext between pages.
const pageSeparator = "\f"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner CommandRunner
	exec   bool
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}, exec: true}
}

// NewWithRunner creates a PDF normaliser with an injected command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext.
func InstallInstructions() string {
	return `PDF support requires pdftotext (part of poppler).

  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils`
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page, in page order. Pages with no
// extractable text contribute an empty string.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var pages []string
	if len(bytes.TrimSpace(raw.Content)) > 0 {
		var err error
		pages, err = n.extractPages(ctx, raw.Content)
		if err != nil {
			return nil, err
		}
	}
	content := strings.Join(pages, "\n")

	doc := domain.Document{
		ID:       raw.ID,
		URI:      raw.URI,
		Title:    extractTitle(content, raw.URI),
		Content:  content,
		Metadata: copyMetadata(raw.Metadata),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata[domain.MetadataMIMEType] = raw.MIMEType
	doc.Metadata[domain.MetadataPages] = len(pages)
	doc.Metadata["format"] = "pdf"

	return &driven.NormaliseResult{Document: doc}, nil
}

// extractPages writes content to a temp file and runs pdftotext on it.
func (n *Normaliser) extractPages(ctx context.Context, content []byte) ([]string, error) {
	if n.exec {
		if err := CheckAvailable(); err != nil {
			return nil, err
		}
	}

	tmp, err := os.CreateTemp("", "docchat-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	out, err := n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on form feeds. pdftotext terminates
// every page, including the last, with a form feed.
func splitPages(out string) []string {
	if out == "" {
		return nil
	}
	pages := strings.Split(out, pageSeparator)
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	for i, page := range pages {
		pages[i] = strings.TrimSpace(page)
	}
	return pages
}

// extractTitle uses the first short non-empty line, else the filename.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > maxTitleLength {
			continue
		}
		return line
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.ReplaceAll(filename, "_", " ")
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
