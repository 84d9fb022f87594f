package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySourceDir      = "ingest.source_dir"
	keyInclude        = "ingest.include"
	keyBackend        = "store.backend"
	keyDataDir        = "store.data_dir"
	keyCollection     = "store.collection"
	keyPostgresDSN    = "store.postgres_dsn"
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedRateLimit = "embedding.rate_limit"
	keyEmbedRetries   = "embedding.max_retries"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyK              = "retrieval.k"
	keyRequireContext = "retrieval.require_context"
	keyCacheSize      = "retrieval.cache_size"
	keySystemPrompt   = "chat.system_prompt"
	keyFormat         = "chat.format"
	keyLanguage       = "chat.language"
	keyStream         = "chat.stream"
	keyHistoryCap     = "history.capacity"
)

// Environment variables that override stored settings.
const (
	EnvOllamaHost = "OLLAMA_HOST"
	EnvSourceDir  = "DOCCHAT_SOURCE_DIR"
)

// DefaultOllamaURL is the base URL used for local providers.
const DefaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service that reads overrides
// from the process environment.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnv replaces the environment lookup.
func (s *SettingsService) SetEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	s.getenv = getenv
}

// Get retrieves current application settings with defaults and
// environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Ingest: domain.IngestSettings{
			SourceDir: s.getString(keySourceDir, d.Ingest.SourceDir),
			Include:   s.getStringSlice(keyInclude, d.Ingest.Include),
		},
		Store: domain.StoreSettings{
			Backend:     s.getBackend(d.Store.Backend),
			DataDir:     s.configStore.GetString(keyDataDir),
			Collection:  s.getString(keyCollection, d.Store.Collection),
			PostgresDSN: s.configStore.GetString(keyPostgresDSN),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			RateLimit:  s.configStore.GetFloat(keyEmbedRateLimit),
			MaxRetries: s.getInt(keyEmbedRetries, d.Embedding.MaxRetries),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			Temperature: s.configStore.GetFloat(keyLLMTemperature),
			MaxTokens:   s.configStore.GetInt(keyLLMMaxTokens),
		},
		Retrieval: domain.RetrievalSettings{
			K:              s.getInt(keyK, d.Retrieval.K),
			RequireContext: s.getBool(keyRequireContext, d.Retrieval.RequireContext),
			CacheSize:      s.getInt(keyCacheSize, d.Retrieval.CacheSize),
		},
		Chat: domain.ChatSettings{
			SystemPrompt:    s.configStore.GetString(keySystemPrompt),
			Format:          domain.SummaryFormat(s.getString(keyFormat, string(d.Chat.Format))),
			Language:        s.getString(keyLanguage, d.Chat.Language),
			Stream:          s.getBool(keyStream, d.Chat.Stream),
			HistoryCapacity: s.getInt(keyHistoryCap, d.Chat.HistoryCapacity),
		},
	}

	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])
	settings.Embedding.APIKey = s.apiKey(settings.Embedding.Provider, keyEmbedAPIKey)
	settings.LLM.APIKey = s.apiKey(settings.LLM.Provider, keyLLMAPIKey)

	if dir := s.getenv(EnvSourceDir); dir != "" {
		settings.Ingest.SourceDir = dir
	}
	if host := s.getenv(EnvOllamaHost); host != "" {
		if settings.Embedding.Provider.IsLocal() {
			settings.Embedding.BaseURL = host
		}
		if settings.LLM.Provider.IsLocal() {
			settings.LLM.BaseURL = host
		}
	}

	return settings, nil
}

// apiKey resolves a provider key: the provider's environment variable
// wins, then the role-specific key, then the shared per-provider key.
func (s *SettingsService) apiKey(provider domain.AIProvider, roleKey string) string {
	if env := provider.APIKeyEnv(); env != "" {
		if v := s.getenv(env); v != "" {
			return v
		}
	}
	if v := s.configStore.GetString(roleKey); v != "" {
		return v
	}
	return s.configStore.GetString(providerKey(provider))
}

// hasKey reports whether a key for provider is available without a new
// one. The role key only counts while it belongs to the current provider.
func (s *SettingsService) hasKey(provider, current domain.AIProvider, roleKey string) bool {
	if env := provider.APIKeyEnv(); env != "" && s.getenv(env) != "" {
		return true
	}
	if provider == current && s.configStore.GetString(roleKey) != "" {
		return true
	}
	return s.configStore.GetString(providerKey(provider)) != ""
}

// moveRoleKey clears the role key when the provider changes, keeping it
// as the old provider's shared key if that has none.
func (s *SettingsService) moveRoleKey(roleKey string, from, to domain.AIProvider) error {
	old := s.configStore.GetString(roleKey)
	if from == to || old == "" {
		return nil
	}
	if from.RequiresAPIKey() && s.configStore.GetString(providerKey(from)) == "" {
		if err := s.configStore.Set(providerKey(from), old); err != nil {
			return fmt.Errorf("save %s: %w", providerKey(from), err)
		}
	}
	if err := s.configStore.Set(roleKey, ""); err != nil {
		return fmt.Errorf("clear %s: %w", roleKey, err)
	}
	return nil
}

func providerKey(provider domain.AIProvider) string {
	return string(provider) + ".api_key"
}

// Save persists application settings. API keys are written only when set
// so environment-provided keys are not copied to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keySourceDir, settings.Ingest.SourceDir},
		{keyInclude, settings.Ingest.Include},
		{keyBackend, string(settings.Store.Backend)},
		{keyCollection, settings.Store.Collection},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyK, settings.Retrieval.K},
		{keyFormat, string(settings.Chat.Format)},
		{keyLanguage, settings.Chat.Language},
		{keyStream, settings.Chat.Stream},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if provider.RequiresAPIKey() && apiKey == "" && !s.hasKey(provider, settings.Embedding.Provider, keyEmbedAPIKey) {
		return fmt.Errorf("API key required for %s", provider)
	}
	if err := s.moveRoleKey(keyEmbedAPIKey, settings.Embedding.Provider, provider); err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)

	if apiKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if provider.RequiresAPIKey() && apiKey == "" && !s.hasKey(provider, settings.LLM.Provider, keyLLMAPIKey) {
		return fmt.Errorf("API key required for %s", provider)
	}
	if err := s.moveRoleKey(keyLLMAPIKey, settings.LLM.Provider, provider); err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)

	if apiKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	return s.Save(settings)
}

// SetAPIKey stores the shared API key for a provider.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("provider %s does not use an API key", provider)
	}
	if apiKey == "" {
		return fmt.Errorf("empty API key: %w", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(providerKey(provider), apiKey); err != nil {
		return fmt.Errorf("save %s api_key: %w", provider, err)
	}
	return s.configStore.Save()
}

// SetSourceDir updates the ingestion source directory.
func (s *SettingsService) SetSourceDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("empty source directory: %w", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keySourceDir, dir); err != nil {
		return fmt.Errorf("save source_dir: %w", err)
	}
	return s.configStore.Save()
}

// Validate returns a *domain.ConfigError for the first missing or invalid
// setting, or nil.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch {
	case !settings.Embedding.Provider.IsValid() || settings.Embedding.Provider == domain.AIProviderAnthropic:
		return &domain.ConfigError{
			Field: keyEmbedProvider,
			Err:   fmt.Errorf("%q does not support embeddings", settings.Embedding.Provider),
		}
	case !settings.Embedding.IsConfigured():
		return &domain.ConfigError{Field: keyEmbedAPIKey, Err: missingKey(settings.Embedding.Provider)}
	case !settings.LLM.Provider.IsValid():
		return &domain.ConfigError{Field: keyLLMProvider, Err: fmt.Errorf("unknown provider %q", settings.LLM.Provider)}
	case !settings.LLM.IsConfigured():
		return &domain.ConfigError{Field: keyLLMAPIKey, Err: missingKey(settings.LLM.Provider)}
	case !settings.Store.Backend.IsValid():
		return &domain.ConfigError{Field: keyBackend, Err: fmt.Errorf("unknown backend %q", settings.Store.Backend)}
	case settings.Store.Backend == domain.StoreBackendPostgres && settings.Store.PostgresDSN == "":
		return &domain.ConfigError{Field: keyPostgresDSN, Err: errors.New("required for the postgres backend")}
	case settings.Retrieval.K < 1:
		return &domain.ConfigError{Field: keyK, Err: fmt.Errorf("must be positive, got %d", settings.Retrieval.K)}
	case !settings.Chat.Format.IsValid():
		return &domain.ConfigError{Field: keyFormat, Err: fmt.Errorf("unknown format %q", settings.Chat.Format)}
	}
	return nil
}

func missingKey(provider domain.AIProvider) error {
	return fmt.Errorf("set %s or run 'docchat settings set-key %s'", provider.APIKeyEnv(), provider)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.LLM)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom URL for local providers and clears it for
// cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return DefaultOllamaURL
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	val := s.configStore.GetString(keyBackend)
	if val == "" {
		return defaultVal
	}
	return domain.StoreBackend(val)
}
