package pdf

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	calls  int
	args   []string
}

func (m *mockRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	m.calls++
	m.args = args
	return m.output, m.err
}

func TestSupportedMIMETypes(t *testing.T) {
	n := New()

	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	result, err := normaliser.Normalise(ctx, nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{
			name:     "first line as title",
			content:  "Document Title\n\nSome content here.",
			uri:      "/doc.pdf",
			expected: "Document Title",
		},
		{
			name:     "skip empty lines",
			content:  "\n\n\nActual Title\nContent",
			uri:      "/doc.pdf",
			expected: "Actual Title",
		},
		{
			name:     "fallback to filename",
			content:  "",
			uri:      "/path/to/my_document.pdf",
			expected: "my document",
		},
		{
			name:     "skip very long first line",
			content:  string(make([]byte, 250)) + "\nShort Title\nContent",
			uri:      "/doc.pdf",
			expected: "Short Title",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := extractTitle(tc.content, tc.uri)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected []string
	}{
		{name: "no output", output: "", expected: nil},
		{name: "single page", output: "Bedtime is 10pm.\n\f", expected: []string{"Bedtime is 10pm."}},
		{name: "empty middle page", output: "one\fno\f\fthree\f", expected: []string{"one", "no", "", "three"}},
		{name: "missing trailing separator", output: "a\fb", expected: []string{"a", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, splitPages(tc.output))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

// Integration test - only runs if pdftotext is available.
func TestNormalise_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}

	// A zero-byte file never reaches pdftotext.
	result, err := New().Normalise(context.Background(), &domain.RawDocument{ID: "empty.pdf"})
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
}

func TestNormalise_WithMockRunner(t *testing.T) {
	runner := &mockRunner{
		output: []byte("Policy\n\nBedtime is 10pm.\n\f\f"),
	}
	normaliser := NewWithRunner(runner)
	ctx := context.Background()

	raw := &domain.RawDocument{
		ID:       "policy.pdf",
		URI:      "/path/to/policy.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4 fake pdf content"),
		Metadata: map[string]any{domain.MetadataFilename: "policy.pdf"},
	}

	result, err := normaliser.Normalise(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, "policy.pdf", doc.ID)
	assert.Equal(t, "/path/to/policy.pdf", doc.URI)
	assert.Equal(t, "Policy", doc.Title)
	assert.Equal(t, "Policy\n\nBedtime is 10pm.\n", doc.Content)
	assert.Equal(t, "application/pdf", doc.Metadata[domain.MetadataMIMEType])
	assert.Equal(t, 2, doc.Metadata[domain.MetadataPages])
	assert.Equal(t, "policy.pdf", doc.Metadata[domain.MetadataFilename])
	assert.Equal(t, "pdf", doc.Metadata["format"])
	assert.Contains(t, runner.args, "-layout")
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
}

func TestNormalise_NoTextLayer(t *testing.T) {
	runner := &mockRunner{output: []byte("\f\f\f")}
	normaliser := NewWithRunner(runner)

	result, err := normaliser.Normalise(context.Background(), &domain.RawDocument{
		ID:       "scan.pdf",
		URI:      "scan.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4 scanned"),
	})
	require.NoError(t, err)

	assert.Equal(t, "\n\n", result.Document.Content)
	assert.Equal(t, 3, result.Document.Metadata[domain.MetadataPages])
	assert.Equal(t, "scan", result.Document.Title)
}

func TestNormalise_EmptyContentSkipsTool(t *testing.T) {
	runner := &mockRunner{}
	normaliser := NewWithRunner(runner)

	result, err := normaliser.Normalise(context.Background(), &domain.RawDocument{ID: "empty.pdf", URI: "empty.pdf"})
	require.NoError(t, err)

	assert.Empty(t, result.Document.Content)
	assert.Equal(t, 0, runner.calls)
	assert.Equal(t, 0, result.Document.Metadata[domain.MetadataPages])
}

func TestNormalise_RunnerError(t *testing.T) {
	runner := &mockRunner{
		output: nil,
		err:    errors.New("pdftotext crashed"),
	}
	normaliser := NewWithRunner(runner)
	ctx := context.Background()

	raw := &domain.RawDocument{
		ID:       "document.pdf",
		URI:      "/path/to/document.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4 fake pdf content"),
	}

	result, err := normaliser.Normalise(ctx, raw)
	assert.ErrorContains(t, err, "pdftotext failed: pdftotext crashed")
	assert.Nil(t, result)
}

func TestNormalise_ToolMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := New().Normalise(context.Background(), &domain.RawDocument{
		ID:      "policy.pdf",
		Content: []byte("%PDF-1.4"),
	})

	assert.ErrorIs(t, err, ErrPDFToolNotFound)
}

func TestExecRunner_IncludesStderr(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	_, err := execRunner{}.Run(context.Background(), "sh", "-c", "echo 'Syntax Error: bad xref' >&2; exit 1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Syntax Error: bad xref")
}
