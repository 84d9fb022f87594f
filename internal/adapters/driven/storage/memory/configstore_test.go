package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

func TestNewConfigStoreFrom_CopiesSeed(t *testing.T) {
	seed := map[string]any{"retrieval.k": int64(5), "llm.provider": "ollama"}
	var store driven.ConfigStore = NewConfigStoreFrom(seed)

	require.NoError(t, store.Set("retrieval.k", 2))

	assert.Equal(t, 2, store.GetInt("retrieval.k"))
	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, int64(5), seed["retrieval.k"], "seed map is not aliased")
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("ingest.source_dir", "docs"))
	require.NoError(t, store.Set("ingest.source_dir", "documents"))

	val, ok := store.Get("ingest.source_dir")
	assert.True(t, ok)
	assert.Equal(t, "documents", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("llm.model", "gpt-4o"))
	require.NoError(t, store.Set("retrieval.k", 3))
	require.NoError(t, store.Set("retrieval.k64", int64(4)))
	require.NoError(t, store.Set("retrieval.kf", float64(5)))
	require.NoError(t, store.Set("llm.temperature", 0.2))
	require.NoError(t, store.Set("chat.stream", true))
	require.NoError(t, store.Set("ingest.include", []any{"*.pdf", 7, "*.txt"}))

	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))
	assert.Equal(t, 3, store.GetInt("retrieval.k"))
	assert.Equal(t, 4, store.GetInt("retrieval.k64"))
	assert.Equal(t, 5, store.GetInt("retrieval.kf"))
	assert.InDelta(t, 0.2, store.GetFloat("llm.temperature"), 1e-9)
	assert.InDelta(t, 3.0, store.GetFloat("retrieval.k"), 1e-9)
	assert.True(t, store.GetBool("chat.stream"))
	assert.Equal(t, []string{"*.pdf", "*.txt"}, store.GetStringSlice("ingest.include"))
}

func TestConfigStore_WrongTypesReturnZero(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("key", struct{}{}))

	assert.Empty(t, store.GetString("key"))
	assert.Zero(t, store.GetInt("key"))
	assert.Zero(t, store.GetFloat("key"))
	assert.False(t, store.GetBool("key"))
	assert.Nil(t, store.GetStringSlice("key"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("key.%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("key.%d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, store.GetInt(fmt.Sprintf("key.%d", i)))
	}
}
