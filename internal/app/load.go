package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/docchat/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat/internal/adapters/driven/fetch"
	"github.com/custodia-labs/docchat/internal/adapters/driven/retry"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/normalisers"
)

// PromptDirName is the prompt directory next to the config file.
const PromptDirName = "prompts"

// Options controls how a session is loaded.
type Options struct {
	// ConfigPath is an explicit config file. When empty, DOCCHAT_CONFIG
	// is consulted, then ~/.docchat/config.toml.
	ConfigPath string

	// Validate pings the AI providers before use.
	Validate bool

	// Getenv overrides the environment lookup. Nil uses the process
	// environment.
	Getenv env.Lookup
}

// Load reads configuration and builds a session. Missing keys and other
// configuration problems do not fail: the returned state is in setup
// mode instead. Only infrastructure failures, such as an unreadable
// config file or database, are returned as errors.
func Load(ctx context.Context, opts Options) (*State, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = env.OS()
	}

	configStore, err := openConfigStore(opts.ConfigPath, getenv)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using config %s", configStore.Path())

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService.SetEnv(getenv)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	cfg := Config{
		Settings:        *settings,
		SettingsService: settingsService,
		Registry:        normalisers.NewDefaultRegistry(),
		Fetcher: fetch.New(fetch.Config{
			Retry: retry.DefaultPolicy(),
		}),
	}

	prompts, err := file.NewPromptStore(filepath.Join(filepath.Dir(configStore.Path()), PromptDirName))
	if err != nil {
		return nil, err
	}
	cfg.Prompts = prompts

	if err := settingsService.Validate(); err != nil {
		logger.Warn("Configuration incomplete: %v", err)
		cfg.SetupErr = err
		return New(cfg), nil
	}

	provider, err := OpenStore(ctx, settings.Store)
	if err != nil {
		var cfgErr *domain.ConfigError
		if errors.As(err, &cfgErr) {
			cfg.SetupErr = err
			return New(cfg), nil
		}
		return nil, err
	}
	cfg.Provider = provider

	result, err := ai.Initialise(ctx, settings, opts.Validate)
	if err != nil {
		logger.Warn("AI services unavailable: %v", err)
		cfg.SetupErr = err
		return New(cfg), nil
	}
	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	cfg.Embedding = result.EmbeddingService
	cfg.QueryEmbedding = result.QueryEmbedding
	cfg.LLM = result.LLMService
	cfg.Warnings = result.Warnings

	return New(cfg), nil
}

func openConfigStore(path string, getenv env.Lookup) (*file.ConfigStore, error) {
	if path == "" {
		path = getenv(env.VarConfig)
	}
	if path != "" {
		return file.NewConfigStoreFile(path)
	}
	return file.NewConfigStore("")
}

// OpenStore opens the collection provider for the configured backend.
func OpenStore(ctx context.Context, cfg domain.StoreSettings) (driven.CollectionProvider, error) {
	switch cfg.Backend {
	case domain.StoreBackendSQLite, "":
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Debug("Vector store: sqlite at %s", store.Path())
		return store, nil
	case domain.StoreBackendPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logger.Debug("Vector store: postgres")
		return store, nil
	case domain.StoreBackendMemory:
		logger.Debug("Vector store: memory")
		return memory.NewCollectionProvider(), nil
	default:
		return nil, &domain.ConfigError{
			Field: "store.backend",
			Err:   fmt.Errorf("unknown backend %q", cfg.Backend),
		}
	}
}
