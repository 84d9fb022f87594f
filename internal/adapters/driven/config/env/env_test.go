package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv_LoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCCHAT_TEST_LOADED=yes\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("DOCCHAT_TEST_LOADED") })

	loaded, err := LoadDotEnv(path)

	require.NoError(t, err)
	assert.Equal(t, []string{path}, loaded)
	assert.Equal(t, "yes", os.Getenv("DOCCHAT_TEST_LOADED"))
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCCHAT_TEST_KEEP=file\n"), 0600))
	t.Setenv("DOCCHAT_TEST_KEEP", "process")

	_, err := LoadDotEnv(path)

	require.NoError(t, err)
	assert.Equal(t, "process", os.Getenv("DOCCHAT_TEST_KEEP"))
}

func TestLoadDotEnv_SkipsMissingFiles(t *testing.T) {
	loaded, err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte("OPENAI_API_KEY=sk-abc\n# comment\nOLLAMA_HOST=http://gpu:11434\n"), 0600))

	values, err := ReadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "sk-abc", values[VarOpenAIKey])
	assert.Equal(t, "http://gpu:11434", values[VarOllamaHost])
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestMapLookup(t *testing.T) {
	lookup := Map(map[string]string{VarOpenAIKey: "sk"})
	assert.Equal(t, "sk", lookup(VarOpenAIKey))
	assert.Empty(t, lookup(VarAnthropic))
}
