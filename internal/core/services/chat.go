package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// NoContextMarker replaces the context block when nothing was retrieved.
const NoContextMarker = "(no context available)"

// questionSeparator divides the rendered prompt from the user's question.
const questionSeparator = "\n\n---\n\n"

// DefaultSummaryInstruction is used when SummariseURL gets no instruction.
const DefaultSummaryInstruction = "Summarise this page."

// ChatConfig configures prompt assembly.
type ChatConfig struct {
	// SystemPrompt overrides the system prompt template when set.
	SystemPrompt string

	// Format and Language are used when AskOptions leaves them empty.
	Format   domain.SummaryFormat
	Language string

	// RequireContext aborts a question when retrieval fails.
	RequireContext bool

	// HistoryCapacity bounds the session history.
	HistoryCapacity int

	MaxTokens   int
	Temperature float64
}

// ChatService assembles prompts from retrieved context and history and
// sends them to the LLM.
type ChatService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	fetcher   driven.Fetcher
	registry  driven.NormaliserRegistry
	cfg       ChatConfig
	history   *History
	now       func() time.Time
}

// NewChatService creates a chat service. The llm may be nil, in which
// case every exchange fails with a configuration error.
func NewChatService(
	retrieval driving.RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
	cfg ChatConfig,
) *ChatService {
	return &ChatService{
		retrieval: retrieval,
		llm:       llm,
		prompts:   prompts,
		cfg:       cfg,
		history:   NewHistory(cfg.HistoryCapacity),
		now:       time.Now,
	}
}

// SetURLSupport enables SummariseURL.
func (s *ChatService) SetURLSupport(fetcher driven.Fetcher, registry driven.NormaliserRegistry) {
	s.fetcher = fetcher
	s.registry = registry
}

// promptData is the template input for answer and summary prompts.
type promptData struct {
	Context  string
	Format   string
	Language string
}

// Ask answers a question using retrieved context.
func (s *ChatService) Ask(
	ctx context.Context, question string, opts domain.AskOptions, onDelta driving.DeltaFunc,
) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, &domain.ConfigError{Field: "llm.provider", Err: domain.ErrLLMUnavailable}
	}

	logger.Section("Ask")
	texts, sources, err := s.retrieval.Retrieve(ctx, question)
	if err != nil {
		// An unbuilt collection is never answered ungrounded.
		if errors.Is(err, domain.ErrNotReady) || s.cfg.RequireContext {
			return nil, err
		}
		logger.Warn("Retrieval failed, answering without context: %v", err)
		texts, sources = nil, []string{}
	}

	userPrompt, err := s.render(driven.PromptAnswer, strings.Join(texts, "\n\n"), opts)
	if err != nil {
		return nil, err
	}

	messages, err := s.baseMessages()
	if err != nil {
		return nil, err
	}
	for _, turn := range s.history.Turns() {
		messages = append(messages, driven.ChatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    string(domain.RoleUser),
		Content: userPrompt + questionSeparator + question,
	})

	text, err := s.generate(ctx, messages, opts, onDelta)
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.history.Append(
		domain.ChatTurn{ID: uuid.NewString(), Role: domain.RoleUser, Content: question, CreatedAt: now},
		domain.ChatTurn{ID: uuid.NewString(), Role: domain.RoleAssistant, Content: text, CreatedAt: now},
	)

	return &domain.Answer{Text: text, Sources: sources, Grounded: len(texts) > 0}, nil
}

// SummariseURL fetches a page and answers the instruction over its text.
// It neither reads nor writes the chat history.
func (s *ChatService) SummariseURL(
	ctx context.Context, url, instruction string, opts domain.AskOptions, onDelta driving.DeltaFunc,
) (*domain.Answer, error) {
	if s.fetcher == nil || s.registry == nil {
		return nil, fmt.Errorf("url summaries: %w", domain.ErrUnsupportedType)
	}
	if s.llm == nil {
		return nil, &domain.ConfigError{Field: "llm.provider", Err: domain.ErrLLMUnavailable}
	}

	logger.Section("Summarise URL")
	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, &domain.ExtractionError{DocumentID: url, Err: err}
	}
	content := strings.TrimSpace(result.Document.Content)
	logger.Debug("Extracted %d characters from %s", len(content), url)

	userPrompt, err := s.render(driven.PromptSummariseURL, content, opts)
	if err != nil {
		return nil, err
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		instruction = DefaultSummaryInstruction
	}

	messages, err := s.baseMessages()
	if err != nil {
		return nil, err
	}
	messages = append(messages, driven.ChatMessage{
		Role:    string(domain.RoleUser),
		Content: userPrompt + questionSeparator + instruction,
	})

	text, err := s.generate(ctx, messages, opts, onDelta)
	if err != nil {
		return nil, err
	}
	return &domain.Answer{Text: text, Sources: []string{url}, Grounded: content != ""}, nil
}

// History returns the session turns, oldest first.
func (s *ChatService) History() []domain.ChatTurn {
	return s.history.Turns()
}

// ClearHistory removes all turns.
func (s *ChatService) ClearHistory() {
	s.history.Clear()
}

func (s *ChatService) baseMessages() ([]driven.ChatMessage, error) {
	system := s.cfg.SystemPrompt
	if system == "" {
		var err error
		if system, err = s.prompts.Load(driven.PromptSystem); err != nil {
			return nil, fmt.Errorf("loading system prompt: %w", err)
		}
	}
	return []driven.ChatMessage{{Role: string(domain.RoleSystem), Content: system}}, nil
}

func (s *ChatService) render(name, contextText string, opts domain.AskOptions) (string, error) {
	raw, err := s.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("loading %s prompt: %w", name, err)
	}
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing %s prompt: %w", name, err)
	}

	if strings.TrimSpace(contextText) == "" {
		contextText = NoContextMarker
	}
	data := promptData{
		Context:  contextText,
		Format:   s.format(opts).Directive(),
		Language: s.language(opts),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", name, err)
	}
	return b.String(), nil
}

func (s *ChatService) format(opts domain.AskOptions) domain.SummaryFormat {
	if opts.Format.IsValid() {
		return opts.Format
	}
	if s.cfg.Format.IsValid() {
		return s.cfg.Format
	}
	return domain.SummaryFormatNone
}

func (s *ChatService) language(opts domain.AskOptions) string {
	if lang := strings.TrimSpace(opts.Language); lang != "" {
		return lang
	}
	if s.cfg.Language != "" {
		return s.cfg.Language
	}
	return domain.DefaultLanguage
}

// generate calls the LLM, streaming when requested. The returned text
// equals the concatenation of every delta passed to onDelta.
func (s *ChatService) generate(
	ctx context.Context, messages []driven.ChatMessage, opts domain.AskOptions, onDelta driving.DeltaFunc,
) (string, error) {
	chatOpts := driven.ChatOptions{MaxTokens: s.cfg.MaxTokens, Temperature: s.cfg.Temperature}
	logger.Debug("Generating with %s (%d messages, stream=%t)", s.llm.ModelName(), len(messages), opts.Stream)
	defer logger.Timer("generation")()

	if !opts.Stream {
		text, err := s.llm.Complete(ctx, messages, chatOpts)
		if err != nil {
			return "", wrapGeneration(err)
		}
		return text, nil
	}

	stream, err := s.llm.Stream(ctx, messages, chatOpts)
	if err != nil {
		return "", wrapGeneration(err)
	}
	defer stream.Close()

	var b strings.Builder
	for stream.Next() {
		delta := stream.Delta()
		b.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return "", wrapGeneration(err)
	}
	return b.String(), nil
}

func wrapGeneration(err error) error {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &domain.GenerationError{Err: err}
}
