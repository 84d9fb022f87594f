// Package apptest builds in-memory sessions for tests of the driving
// adapters.
package apptest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/normalisers"
)

// Vocab is the embedding space of Embedder.
var Vocab = []string{"bedtime", "lunch", "sport", "uniform"}

// Embedder embeds text as keyword counts over Vocab plus a constant bias.
type Embedder struct {
	Err error
}

func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(Vocab)+1)
	for i, word := range Vocab {
		vec[i] = float32(strings.Count(lower, word))
	}
	vec[len(Vocab)] = 0.1
	return vec, nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *Embedder) Dimensions() int            { return len(Vocab) + 1 }
func (e *Embedder) ModelName() string          { return "test-embed" }
func (e *Embedder) Ping(context.Context) error { return nil }
func (e *Embedder) Close() error               { return nil }

// LLM answers with a fixed response, streamed as Deltas when set.
type LLM struct {
	Response string
	Deltas   []string
	Err      error

	mu       sync.Mutex
	messages [][]driven.ChatMessage
}

func (l *LLM) Complete(_ context.Context, msgs []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	l.record(msgs)
	if l.Err != nil {
		return "", l.Err
	}
	if l.Response == "" {
		return strings.Join(l.Deltas, ""), nil
	}
	return l.Response, nil
}

func (l *LLM) Stream(_ context.Context, msgs []driven.ChatMessage, _ driven.ChatOptions) (driven.Stream, error) {
	l.record(msgs)
	if l.Err != nil {
		return nil, l.Err
	}
	deltas := l.Deltas
	if len(deltas) == 0 {
		deltas = []string{l.Response}
	}
	return &stream{deltas: deltas}, nil
}

func (l *LLM) ModelName() string          { return "test-llm" }
func (l *LLM) Ping(context.Context) error { return nil }
func (l *LLM) Close() error               { return nil }

// Calls returns the number of requests made.
func (l *LLM) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// LastPrompt returns the final user message of the latest request.
func (l *LLM) LastPrompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.messages) == 0 {
		return ""
	}
	msgs := l.messages[len(l.messages)-1]
	return msgs[len(msgs)-1].Content
}

func (l *LLM) record(msgs []driven.ChatMessage) {
	l.mu.Lock()
	l.messages = append(l.messages, msgs)
	l.mu.Unlock()
}

type stream struct {
	deltas []string
	pos    int
	cur    string
}

func (s *stream) Next() bool {
	if s.pos >= len(s.deltas) {
		return false
	}
	s.cur = s.deltas[s.pos]
	s.pos++
	return true
}

func (s *stream) Delta() string { return s.cur }
func (s *stream) Err() error    { return nil }
func (s *stream) Close() error  { return nil }

// Settings returns settings for a memory-backed session over sourceDir.
func Settings(sourceDir string) domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.Ingest.SourceDir = sourceDir
	settings.Store.Backend = domain.StoreBackendMemory
	settings.Chat.Format = domain.SummaryFormatNone
	settings.Chat.Language = domain.DefaultLanguage
	settings.Chat.HistoryCapacity = domain.DefaultHistoryCapacity
	settings.Retrieval.K = domain.DefaultK
	return settings
}

// Config returns a session config with test adapters.
func Config(t testing.TB, sourceDir string, llm driven.LLMService) app.Config {
	t.Helper()
	prompts, err := file.NewPromptStore(filepath.Join(t.TempDir(), "prompts"))
	require.NoError(t, err)

	return app.Config{
		Settings:        Settings(sourceDir),
		SettingsService: services.NewSettingsService(memory.NewConfigStoreFrom(map[string]any{
			"ingest.source_dir": sourceDir,
			"store.backend":     string(domain.StoreBackendMemory),
		}), nil),
		Provider:        memory.NewCollectionProvider(),
		Embedding:       &Embedder{},
		LLM:             llm,
		Prompts:         prompts,
		Registry:        normalisers.NewDefaultRegistry(),
	}
}

// NewState builds a session over sourceDir.
func NewState(t testing.TB, sourceDir string, llm driven.LLMService) *app.State {
	t.Helper()
	s := app.New(Config(t, sourceDir, llm))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// WriteDocs writes text documents into a new temp directory and returns it.
func WriteDocs(t testing.TB, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	return dir
}

// PolicyDocs are the documents of the school policy scenario.
func PolicyDocs() map[string]string {
	return map[string]string{
		"bedtime.txt": "Bedtime is 8pm on school nights.",
		"lunch.txt":   "Lunch is served at noon in the hall.",
		"sport.txt":   "Sport kit and uniform are needed on Fridays.",
	}
}
