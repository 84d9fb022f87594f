package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// --- Mock implementations ---

// vocab gives mockEmbedder a small, predictable embedding space.
var vocab = []string{"bedtime", "lunch", "sport", "uniform"}

// mockEmbeddingService embeds text as keyword counts over vocab.
type mockEmbeddingService struct {
	mu     sync.Mutex
	calls  int
	failOn map[string]error
	err    error
	model  string
}

func newMockEmbedder() *mockEmbeddingService {
	return &mockEmbeddingService{model: "mock-embed", failOn: map[string]error{}}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if err, ok := m.failOn[text]; ok {
		return nil, err
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(vocab)+1)
	for i, word := range vocab {
		vec[i] = float32(strings.Count(lower, word))
	}
	vec[len(vocab)] = 0.1
	return vec, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return len(vocab) + 1 }
func (m *mockEmbeddingService) ModelName() string          { return m.model }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRegistry treats every supported file as UTF-8 text.
type mockRegistry struct {
	failOn map[string]error
}

func (m *mockRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if err, ok := m.failOn[raw.ID]; ok {
		return nil, err
	}
	meta := map[string]any{domain.MetadataMIMEType: raw.MIMEType}
	for k, v := range raw.Metadata {
		meta[k] = v
	}
	return &driven.NormaliseResult{Document: domain.Document{
		ID:       raw.ID,
		URI:      raw.URI,
		Title:    raw.ID,
		Content:  strings.TrimSpace(string(raw.Content)),
		Metadata: meta,
	}}, nil
}

func (m *mockRegistry) Register(driven.Normaliser) {}

func (m *mockRegistry) SupportedMIMETypes() []string {
	return []string{"application/pdf", "text/html", "text/plain"}
}

func (m *mockRegistry) MIMETypeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".html":
		return "text/html"
	default:
		return ""
	}
}

// sliceStream replays fixed deltas, then an optional error.
type sliceStream struct {
	deltas []string
	err    error
	pos    int
	cur    string
	closed bool
}

func (s *sliceStream) Next() bool {
	if s.pos >= len(s.deltas) {
		return false
	}
	s.cur = s.deltas[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Delta() string { return s.cur }

func (s *sliceStream) Err() error {
	if s.pos >= len(s.deltas) {
		return s.err
	}
	return nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

// mockLLMService records the messages it receives.
type mockLLMService struct {
	response  string
	deltas    []string
	streamErr error
	err       error
	messages  [][]driven.ChatMessage
	opts      []driven.ChatOptions
	stream    *sliceStream
}

func (m *mockLLMService) Complete(_ context.Context, msgs []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.messages = append(m.messages, msgs)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) Stream(_ context.Context, msgs []driven.ChatMessage, opts driven.ChatOptions) (driven.Stream, error) {
	m.messages = append(m.messages, msgs)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	m.stream = &sliceStream{deltas: m.deltas, err: m.streamErr}
	return m.stream, nil
}

func (m *mockLLMService) ModelName() string          { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

func (m *mockLLMService) lastUserMessage() string {
	if len(m.messages) == 0 {
		return ""
	}
	msgs := m.messages[len(m.messages)-1]
	return msgs[len(msgs)-1].Content
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPrompts() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptSystem:       "You are helpful.",
		driven.PromptAnswer:       "Answer{{if .Format}} {{.Format}}{{end}} in {{.Language}}.\nDocuments:\n{{.Context}}",
		driven.PromptSummariseURL: "Summarise{{if .Format}} {{.Format}}{{end}} in {{.Language}}.\nPage:\n{{.Context}}",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("unknown prompt")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockRetrieval returns fixed results.
type mockRetrieval struct {
	texts []string
	ids   []string
	err   error
	calls int
}

func (m *mockRetrieval) Retrieve(context.Context, string) ([]string, []string, error) {
	m.calls++
	if m.err != nil {
		return []string{}, []string{}, m.err
	}
	return m.texts, m.ids, nil
}

func (m *mockRetrieval) Results(context.Context, string) ([]domain.QueryResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRetrieval) K() int { return 3 }

// mockFetcher serves one page.
type mockFetcher struct {
	doc *domain.RawDocument
	err error
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*domain.RawDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc := *m.doc
	doc.ID, doc.URI = url, url
	return &doc, nil
}

// mockValidator records validation calls.
type mockValidator struct {
	embedErr error
	llmErr   error
	embedCfg *domain.EmbeddingSettings
	llmCfg   *domain.LLMSettings
}

func (m *mockValidator) ValidateEmbedding(_ context.Context, cfg *domain.EmbeddingSettings) error {
	m.embedCfg = cfg
	return m.embedErr
}

func (m *mockValidator) ValidateLLM(_ context.Context, cfg *domain.LLMSettings) error {
	m.llmCfg = cfg
	return m.llmErr
}
