package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// APIKeyEnv returns the environment variable holding this provider's key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64

	// MaxRetries bounds retries of transient failures.
	MaxRetries int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature. Zero uses the provider default.
	Temperature float64

	// MaxTokens caps the response length. Zero uses the provider default.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StoreBackend identifies the vector store implementation.
type StoreBackend string

// Available store backends.
const (
	StoreBackendSQLite   StoreBackend = "sqlite"
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendMemory   StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendPostgres, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// IngestSettings controls the ingestion pipeline.
type IngestSettings struct {
	// SourceDir is scanned non-recursively for documents.
	SourceDir string

	// Include holds glob patterns matched against filenames.
	Include []string
}

// StoreSettings controls vector persistence.
type StoreSettings struct {
	Backend     StoreBackend
	DataDir     string
	Collection  string
	PostgresDSN string
}

// RetrievalSettings controls similarity queries.
type RetrievalSettings struct {
	// K is the number of records retrieved per question.
	K int

	// RequireContext aborts a question when retrieval fails instead of
	// asking the LLM without context.
	RequireContext bool

	// CacheSize bounds the query embedding cache. Zero disables it.
	CacheSize int
}

// ChatSettings controls prompt assembly and display.
type ChatSettings struct {
	SystemPrompt string
	Format       SummaryFormat
	Language     string
	Stream       bool

	// HistoryCapacity bounds the session chat history.
	HistoryCapacity int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Ingest    IngestSettings
	Store     StoreSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Chat      ChatSettings
}

// Defaults used when settings are absent.
const (
	DefaultSourceDir       = "documents"
	DefaultCollection      = "documents"
	DefaultK               = 3
	DefaultCacheSize       = 256
	DefaultHistoryCapacity = 50
	DefaultMaxRetries      = 3
	DefaultLanguage        = "English"
	DefaultPingTimeout     = 5 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the environment or config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Ingest: IngestSettings{
			SourceDir: DefaultSourceDir,
			Include:   []string{"*.pdf", "*.txt"},
		},
		Store: StoreSettings{
			Backend:    StoreBackendSQLite,
			Collection: DefaultCollection,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOpenAI,
			Model:      DefaultEmbeddingModels()[AIProviderOpenAI],
			MaxRetries: DefaultMaxRetries,
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Retrieval: RetrievalSettings{
			K:         DefaultK,
			CacheSize: DefaultCacheSize,
		},
		Chat: ChatSettings{
			Format:          SummaryFormatNone,
			Language:        DefaultLanguage,
			Stream:          true,
			HistoryCapacity: DefaultHistoryCapacity,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
