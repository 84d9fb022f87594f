package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// maxSnippet bounds the text returned per retrieved record.
const maxSnippet = 2000

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question string `json:"question" jsonschema:"the question to find relevant documents for"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []RetrieveResultOutput `json:"results"`
	Count   int                    `json:"count"`
}

// RetrieveResultOutput represents a single retrieved record.
type RetrieveResultOutput struct {
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the documents"`
	Format   string `json:"format,omitempty" jsonschema:"answer format: none, words100, paragraphs2 or bullets5"`
	Language string `json:"language,omitempty" jsonschema:"answer language (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Grounded bool     `json:"grounded"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the indexed documents most relevant to a question",
	}, s.handleRetrieve)

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using the indexed documents as context",
		}, s.handleAsk)
	}
}

// ensureReady builds the collection on first use.
func (s *Server) ensureReady(ctx context.Context) error {
	if s.ports.Ingestion.Ready() {
		return nil
	}
	_, err := s.ports.Ingestion.Ingest(ctx, nil)
	return err
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, RetrieveOutput{}, fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}
	if err := s.ensureReady(ctx); err != nil {
		return nil, RetrieveOutput{}, err
	}

	results, err := s.ports.Retrieval.Results(ctx, question)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: make([]RetrieveResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		record := &results[i].Record
		output.Results[i] = RetrieveResultOutput{
			DocumentID: record.ID,
			Source:     record.SourceID(),
			Similarity: results[i].Similarity,
			Content:    truncate(record.Text, maxSnippet),
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation. Answers are never streamed.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts := domain.AskOptions{
		Format:   domain.SummaryFormat(input.Format),
		Language: input.Language,
	}
	if input.Format != "" && !opts.Format.IsValid() {
		return nil, AskOutput{}, fmt.Errorf("unknown format %q: %w", input.Format, domain.ErrInvalidInput)
	}
	if err := s.ensureReady(ctx); err != nil {
		return nil, AskOutput{}, err
	}

	answer, err := s.ports.Chat.Ask(ctx, input.Question, opts, nil)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:   answer.Text,
		Sources:  answer.Sources,
		Grounded: answer.Grounded,
	}, nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
