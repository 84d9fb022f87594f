package mcp

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	ready      bool
	calls      int
	report     *domain.IngestReport
	collection driven.VectorStore
	err        error
}

func (m *mockIngestionService) Ingest(_ context.Context, _ driving.ProgressFunc) (*domain.IngestReport, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	m.ready = true
	return m.report, nil
}

func (m *mockIngestionService) State() domain.ReadinessState {
	if m.ready {
		return domain.StateReady
	}
	return domain.StateNotReady
}

func (m *mockIngestionService) Ready() bool { return m.ready }

func (m *mockIngestionService) Collection() driven.VectorStore {
	if !m.ready {
		return nil
	}
	return m.collection
}

func (m *mockIngestionService) Report() *domain.IngestReport {
	if !m.ready {
		return nil
	}
	return m.report
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.QueryResult
	err     error
}

func (m *mockRetrievalService) Retrieve(ctx context.Context, question string) ([]string, []string, error) {
	results, err := m.Results(ctx, question)
	if err != nil {
		return []string{}, []string{}, err
	}
	texts := make([]string, len(results))
	ids := make([]string, len(results))
	for i := range results {
		texts[i] = results[i].Record.Text
		ids[i] = results[i].Record.SourceID()
	}
	return texts, ids, nil
}

func (m *mockRetrievalService) Results(_ context.Context, _ string) ([]domain.QueryResult, error) {
	return m.results, m.err
}

func (m *mockRetrievalService) K() int { return len(m.results) }

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer   *domain.Answer
	err      error
	question string
	opts     domain.AskOptions
}

func (m *mockChatService) Ask(
	_ context.Context, question string, opts domain.AskOptions, _ driving.DeltaFunc,
) (*domain.Answer, error) {
	m.question = question
	m.opts = opts
	return m.answer, m.err
}

func (m *mockChatService) SummariseURL(
	_ context.Context, _, _ string, _ domain.AskOptions, _ driving.DeltaFunc,
) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockChatService) History() []domain.ChatTurn { return nil }

func (m *mockChatService) ClearHistory() {}
