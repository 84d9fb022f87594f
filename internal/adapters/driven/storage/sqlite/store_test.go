package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "docchat-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	})

	return store, tempDir
}

func openCollection(t *testing.T, store *Store, spec domain.CollectionSpec) driven.VectorStore {
	t.Helper()
	col, err := store.GetOrCreate(context.Background(), "documents", spec)
	require.NoError(t, err)
	return col
}

func record(id string, emb ...float32) domain.Record {
	return domain.Record{
		ID:        id,
		Text:      "text of " + id,
		Embedding: emb,
		Metadata:  map[string]any{domain.MetadataFilename: id},
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, dir := setupTestStore(t)

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestGetOrCreate(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	col := openCollection(t, store, domain.CollectionSpec{Model: "m", Dimensions: 3})
	assert.Equal(t, "documents", col.Name())

	cols, err := store.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "documents", cols[0].Name)
	assert.Equal(t, "m", cols[0].Model)
	assert.Equal(t, 3, cols[0].Dimensions)
	assert.False(t, cols[0].CreatedAt.IsZero())

	// Reopening with the same model succeeds.
	_, err = store.GetOrCreate(ctx, "documents", domain.CollectionSpec{Model: "m", Dimensions: 3})
	assert.NoError(t, err)
}

func TestGetOrCreate_EmptyName(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.GetOrCreate(context.Background(), "", domain.CollectionSpec{Model: "m"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetOrCreate_ModelMismatch(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	openCollection(t, store, domain.CollectionSpec{Model: "m", Dimensions: 3})

	_, err := store.GetOrCreate(ctx, "documents", domain.CollectionSpec{Model: "other", Dimensions: 3})
	assert.ErrorIs(t, err, domain.ErrModelMismatch)

	_, err = store.GetOrCreate(ctx, "documents", domain.CollectionSpec{Model: "m", Dimensions: 4})
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}

func TestUpsert_LearnsDimensions(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	col := openCollection(t, store, domain.CollectionSpec{Model: "m"})

	require.NoError(t, col.Upsert(ctx, record("a.txt", 1, 0)))

	cols, err := store.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cols[0].Dimensions)

	err = col.Upsert(ctx, record("b.txt", 1, 0, 0))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestUpsert_InvalidRecord(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	col := openCollection(t, store, domain.CollectionSpec{Model: "m"})

	assert.ErrorIs(t, col.Upsert(ctx, record("", 1)), domain.ErrInvalidInput)
	assert.ErrorIs(t, col.Upsert(ctx, record("a.txt")), domain.ErrInvalidInput)
}

func TestUpsert_OverwritesSameID(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	col := openCollection(t, store, domain.CollectionSpec{Model: "m", Dimensions: 2})

	require.NoError(t, col.Upsert(ctx, record("policy.pdf", 1, 0)))
	updated := record("policy.pdf", 0, 1)
	updated.Text = "Bedtime is 10pm."
	require.NoError(t, col.Upsert(ctx, updated))

	n, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := col.Get(ctx, "policy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Bedtime is 10pm.", got.Text)
	assert.Equal(t, []float32{0, 1}, got.Embedding)
	assert.Equal(t, "policy.pdf", got.Metadata[domain.MetadataFilename])
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGet_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)
	col := openCollection(t, store, domain.CollectionSpec{Model: "m"})

	_, err := col.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuery_RanksByCosine(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	col := openCollection(t, store, domain.CollectionSpec{Model: "m", Dimensions: 2})

	require.NoError(t, col.Upsert(ctx, record("far", 0, 1)))
	require.NoError(t, col.Upsert(ctx, record("near", 1, 0.1)))
	require.NoError(t, col.Upsert(ctx, record("mid", 1, 1)))

	results, err := col.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Record.ID)
	assert.Equal(t, "mid", results[1].Record.ID)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestQuery_FewerThanK(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	col := openCollection(t, store, domain.CollectionSpec{Model: "m", Dimensions: 2})
	require.NoError(t, col.Upsert(ctx, record("a", 1, 0)))

	results, err := col.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQuery_EmptyCollectionAndZeroK(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	col := openCollection(t, store, domain.CollectionSpec{Model: "m"})

	results, err := col.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = col.Query(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestQuery_DimensionMismatch(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	col := openCollection(t, store, domain.CollectionSpec{Model: "m", Dimensions: 2})

	_, err := col.Query(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	spec := domain.CollectionSpec{Model: "m", Dimensions: 2}

	store, err := NewStore(dir)
	require.NoError(t, err)
	col, err := store.GetOrCreate(ctx, "documents", spec)
	require.NoError(t, err)
	require.NoError(t, col.Upsert(ctx, record("a.txt", 1, 0)))
	require.NoError(t, col.Upsert(ctx, record("b.txt", 0, 1)))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	col, err = reopened.GetOrCreate(ctx, "documents", spec)
	require.NoError(t, err)
	n, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollections_Isolated(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	a, err := store.GetOrCreate(ctx, "a", domain.CollectionSpec{Model: "m", Dimensions: 1})
	require.NoError(t, err)
	b, err := store.GetOrCreate(ctx, "b", domain.CollectionSpec{Model: "m", Dimensions: 1})
	require.NoError(t, err)

	require.NoError(t, a.Upsert(ctx, record("x", 1)))

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	cols, err := store.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "a", cols[0].Name)
	assert.Equal(t, "b", cols[1].Name)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.14159}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

func TestUpsert_PreservesExplicitTimestamp(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	col := openCollection(t, store, domain.CollectionSpec{Model: "m"})

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := record("a", 1)
	rec.UpdatedAt = ts
	require.NoError(t, col.Upsert(ctx, rec))

	got, err := col.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ts.Equal(got.UpdatedAt))
}
