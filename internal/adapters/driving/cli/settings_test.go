package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/app/apptest"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func settingsState(t *testing.T) *app.State {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("DOCCHAT_SOURCE_DIR", "")
	s := apptest.NewState(t, t.TempDir(), &apptest.LLM{})
	withState(t, s)
	return s
}

func TestSettingsShow(t *testing.T) {
	s := settingsState(t)

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "[Ingest]")
	assert.Contains(t, out, "Source directory: "+s.Settings.Ingest.SourceDir)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Warning: configuration problem with embedding.api_key")
	assert.Equal(t, 1, strings.Count(out, "to fix"), out)
}

func TestSettingsSetKey(t *testing.T) {
	s := settingsState(t)

	out, err := execute(t, "settings", "set-key", "openai", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Contains(t, out, "API key stored for")
	assert.Contains(t, out, "sk-1...cdef")

	settings, err := s.SettingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-1234567890abcdef", settings.Embedding.APIKey)
	assert.Equal(t, "sk-1234567890abcdef", settings.LLM.APIKey)
	assert.NoError(t, s.SettingsService.Validate())

	out, err = execute(t, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsSetKey_Prompted(t *testing.T) {
	s := settingsState(t)

	_, err := executeWithInput(t, "sk-ant-0123456789\n", "settings", "set-key", "anthropic")

	require.NoError(t, err)
	require.NoError(t, s.SettingsService.SetLLMProvider(domain.AIProviderAnthropic, "", ""))
	settings, err := s.SettingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-0123456789", settings.LLM.APIKey)
}

func TestSettingsSetKey_LocalProvider(t *testing.T) {
	settingsState(t)

	_, err := execute(t, "settings", "set-key", "ollama", "abc")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsSetSource(t *testing.T) {
	s := settingsState(t)

	out, err := execute(t, "settings", "set-source", "/srv/policies")

	require.NoError(t, err)
	assert.Contains(t, out, "Source directory set to: /srv/policies")
	settings, err := s.SettingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, "/srv/policies", settings.Ingest.SourceDir)
}

func TestSettingsLLM_Interactive(t *testing.T) {
	s := settingsState(t)

	// Provider 1 is Ollama, which needs no key.
	out, err := executeWithInput(t, "1\n\n", "settings", "llm", "--no-validate")

	require.NoError(t, err)
	assert.Contains(t, out, "LLM provider configured")
	settings, err := s.SettingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderOllama], settings.LLM.Model)
}

func TestSettingsEmbedding_MissingKey(t *testing.T) {
	settingsState(t)

	_, err := executeWithInput(t, "2\n\n\n", "settings", "embedding", "--no-validate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsWizard(t *testing.T) {
	s := settingsState(t)

	input := strings.Join([]string{
		"/srv/docs",                // source directory
		"2", "", "sk-embed-123456", // embedding: openai, default model, key
		"1", "", // llm: ollama, default model
	}, "\n") + "\n"
	out, err := executeWithInput(t, input, "settings", "wizard", "--no-validate")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration Complete!")
	settings, err := s.SettingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", settings.Ingest.SourceDir)
	assert.Equal(t, "sk-embed-123456", settings.Embedding.APIKey)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
}
