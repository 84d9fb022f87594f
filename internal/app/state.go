package app

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Config carries the dependencies of one session. Nil adapters are
// allowed: the services report them as configuration errors when used.
type Config struct {
	Settings        domain.AppSettings
	SettingsService driving.SettingsService

	Provider  driven.CollectionProvider
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Prompts   driven.PromptStore
	Registry  driven.NormaliserRegistry
	Fetcher   driven.Fetcher

	// QueryEmbedding embeds questions. Nil falls back to Embedding.
	QueryEmbedding driven.EmbeddingService

	// SetupErr is the configuration problem that keeps the session in
	// setup mode, usually a missing API key.
	SetupErr error

	// Warnings are non-fatal problems found while loading.
	Warnings []string
}

// State is the session state shared by the CLI commands, the TUI and the
// MCP server.
type State struct {
	Settings        domain.AppSettings
	SettingsService driving.SettingsService

	Ingestion *services.IngestionService
	Retrieval *services.RetrievalService
	Chat      *services.ChatService

	// SessionID identifies this process's chat session.
	SessionID string

	provider  driven.CollectionProvider
	embedding driven.EmbeddingService
	llm       driven.LLMService

	mu       sync.RWMutex
	setupErr error
	warnings []string
	lastErr  error
}

// New wires the services for a session.
func New(cfg Config) *State {
	settings := cfg.Settings

	ingestion := services.NewIngestionService(cfg.Provider, cfg.Embedding, cfg.Registry, services.IngestionConfig{
		SourceDir:  settings.Ingest.SourceDir,
		Include:    settings.Ingest.Include,
		Collection: settings.Store.Collection,
	})
	query := cfg.QueryEmbedding
	if query == nil {
		query = cfg.Embedding
	}
	retrieval := services.NewRetrievalService(ingestion, query, settings.Retrieval.K)
	chat := services.NewChatService(retrieval, cfg.LLM, cfg.Prompts, services.ChatConfig{
		SystemPrompt:    settings.Chat.SystemPrompt,
		Format:          settings.Chat.Format,
		Language:        settings.Chat.Language,
		RequireContext:  settings.Retrieval.RequireContext,
		HistoryCapacity: settings.Chat.HistoryCapacity,
		MaxTokens:       settings.LLM.MaxTokens,
		Temperature:     settings.LLM.Temperature,
	})
	if cfg.Fetcher != nil {
		chat.SetURLSupport(cfg.Fetcher, cfg.Registry)
	}

	return &State{
		Settings:        settings,
		SettingsService: cfg.SettingsService,
		Ingestion:       ingestion,
		Retrieval:       retrieval,
		Chat:            chat,
		SessionID:       uuid.NewString(),
		provider:        cfg.Provider,
		embedding:       cfg.Embedding,
		llm:             cfg.LLM,
		setupErr:        cfg.SetupErr,
		warnings:        append([]string(nil), cfg.Warnings...),
	}
}

// NeedsSetup reports whether the session is missing required configuration.
func (s *State) NeedsSetup() bool {
	return s.SetupError() != nil
}

// SetupError returns the configuration problem blocking the session.
func (s *State) SetupError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.setupErr
}

// Warnings returns non-fatal problems found while loading.
func (s *State) Warnings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.warnings...)
}

// LastError returns the error of the most recent failed operation.
func (s *State) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SetLastError records the outcome of an operation for the status page.
func (s *State) SetLastError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// HasLLM reports whether answers can be generated.
func (s *State) HasLLM() bool {
	return s.llm != nil
}

// EnsureReady ingests the source directory if it has not been ingested
// in this process. Configuration errors move the session into setup mode.
func (s *State) EnsureReady(ctx context.Context, progress driving.ProgressFunc) (*domain.IngestReport, error) {
	if err := s.SetupError(); err != nil {
		return nil, err
	}
	report, err := s.Ingestion.Ingest(ctx, progress)
	s.SetLastError(err)
	if err != nil {
		var cfgErr *domain.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Field != "ingest.source_dir" {
			s.mu.Lock()
			s.setupErr = err
			s.mu.Unlock()
		}
		return nil, err
	}
	return report, nil
}

// Close releases the store and the AI clients.
func (s *State) Close() error {
	var errs []error
	if s.embedding != nil {
		if err := s.embedding.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.llm != nil {
		if err := s.llm.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		logger.Warn("Closing session: %v", errors.Join(errs...))
	}
	return errors.Join(errs...)
}
