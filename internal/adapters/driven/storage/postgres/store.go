// Package postgres provides a vector store backed by PostgreSQL with the
// pgvector extension. Similarity ranking runs in the database using the
// cosine distance operator.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// schema is applied in order when the store is opened. The embedding
// column has no fixed length so collections of different models can
// share the table; the per-collection length lives in docchat_collections.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS docchat_collections (
		name TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		dimensions INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS docchat_records (
		collection TEXT NOT NULL REFERENCES docchat_collections(name) ON DELETE CASCADE,
		id TEXT NOT NULL,
		text TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		embedding vector NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)`,
}

// Store is a PostgreSQL-backed collection provider.
type Store struct {
	db *sqlx.DB
}

var _ driven.CollectionProvider = (*Store)(nil)

// Open connects to the database at dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, &domain.ConfigError{Field: "store.postgres_dsn", Err: errors.New("not set")}
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection and ensures the schema exists.
func New(ctx context.Context, db *sqlx.DB) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type collectionRow struct {
	Name       string    `db:"name"`
	Model      string    `db:"model"`
	Dimensions int       `db:"dimensions"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r collectionRow) toDomain() domain.Collection {
	return domain.Collection{Name: r.Name, Model: r.Model, Dimensions: r.Dimensions, CreatedAt: r.CreatedAt}
}

type recordRow struct {
	ID         string    `db:"id"`
	Text       string    `db:"text"`
	Metadata   []byte    `db:"metadata"`
	Embedding  string    `db:"embedding"`
	UpdatedAt  time.Time `db:"updated_at"`
	Similarity float64   `db:"similarity"`
}

func (r recordRow) toDomain() (domain.Record, error) {
	rec := domain.Record{ID: r.ID, Text: r.Text, UpdatedAt: r.UpdatedAt}
	emb, err := parseVector(r.Embedding)
	if err != nil {
		return rec, err
	}
	rec.Embedding = emb
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &rec.Metadata); err != nil {
			return rec, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return rec, nil
}

// GetOrCreate opens the named collection, creating it if absent.
func (s *Store) GetOrCreate(ctx context.Context, name string, spec domain.CollectionSpec) (driven.VectorStore, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name: %w", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO docchat_collections (name, model, dimensions)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`, name, spec.Model, spec.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	var row collectionRow
	if err := s.db.GetContext(ctx, &row, `
		SELECT name, model, dimensions, created_at FROM docchat_collections WHERE name = $1
	`, name); err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}

	if row.Model != spec.Model {
		return nil, fmt.Errorf("collection %q uses %q, not %q: %w",
			name, row.Model, spec.Model, domain.ErrModelMismatch)
	}
	if spec.Dimensions > 0 && row.Dimensions > 0 && row.Dimensions != spec.Dimensions {
		return nil, fmt.Errorf("collection %q has %d dimensions, not %d: %w",
			name, row.Dimensions, spec.Dimensions, domain.ErrModelMismatch)
	}

	return &collectionStore{db: s.db, name: name}, nil
}

// Collections lists all collections ordered by name.
func (s *Store) Collections(ctx context.Context) ([]domain.Collection, error) {
	var rows []collectionRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT name, model, dimensions, created_at FROM docchat_collections ORDER BY name
	`); err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	cols := make([]domain.Collection, len(rows))
	for i, r := range rows {
		cols[i] = r.toDomain()
	}
	return cols, nil
}

// collectionStore implements driven.VectorStore for one collection.
type collectionStore struct {
	db   *sqlx.DB
	name string
}

var _ driven.VectorStore = (*collectionStore)(nil)

// Name returns the collection name.
func (c *collectionStore) Name() string {
	return c.name
}

// Upsert writes or overwrites a record.
func (c *collectionStore) Upsert(ctx context.Context, record domain.Record) error {
	if record.ID == "" {
		return fmt.Errorf("record id: %w", domain.ErrInvalidInput)
	}
	if len(record.Embedding) == 0 {
		return fmt.Errorf("record %s has no embedding: %w", record.ID, domain.ErrInvalidInput)
	}

	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	if record.Metadata == nil {
		metadataJSON = []byte("{}")
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var dims int
	if err := tx.GetContext(ctx, &dims,
		"SELECT dimensions FROM docchat_collections WHERE name = $1 FOR UPDATE", c.name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %q: %w", c.name, domain.ErrNotFound)
		}
		return fmt.Errorf("getting dimensions: %w", err)
	}
	switch {
	case dims == 0:
		if _, err := tx.ExecContext(ctx,
			"UPDATE docchat_collections SET dimensions = $1 WHERE name = $2",
			len(record.Embedding), c.name); err != nil {
			return fmt.Errorf("setting dimensions: %w", err)
		}
	case dims != len(record.Embedding):
		return fmt.Errorf("record %s has %d dimensions, collection has %d: %w",
			record.ID, len(record.Embedding), dims, domain.ErrDimensionMismatch)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO docchat_records (collection, id, text, metadata, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5::vector, $6)
		ON CONFLICT (collection, id) DO UPDATE SET
			text = EXCLUDED.text,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at
	`, c.name, record.ID, record.Text, metadataJSON, formatVector(record.Embedding), updatedAt); err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record: %w", err)
	}
	return nil
}

// Query returns the k records with the smallest cosine distance.
func (c *collectionStore) Query(ctx context.Context, embedding []float32, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		return []domain.QueryResult{}, nil
	}

	var rows []recordRow
	if err := c.db.SelectContext(ctx, &rows, `
		SELECT id, text, metadata, embedding::text AS embedding, updated_at,
			1 - (embedding <=> $2::vector) AS similarity
		FROM docchat_records
		WHERE collection = $1
		ORDER BY embedding <=> $2::vector, id
		LIMIT $3
	`, c.name, formatVector(embedding), k); err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}

	results := make([]domain.QueryResult, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		results = append(results, domain.QueryResult{Record: rec, Similarity: r.Similarity})
	}
	return results, nil
}

// Get returns a record by ID.
func (c *collectionStore) Get(ctx context.Context, id string) (*domain.Record, error) {
	var row recordRow
	err := c.db.GetContext(ctx, &row, `
		SELECT id, text, metadata, embedding::text AS embedding, updated_at
		FROM docchat_records WHERE collection = $1 AND id = $2
	`, c.name, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	rec, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Count returns the number of records in the collection.
func (c *collectionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM docchat_records WHERE collection = $1", c.name); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// formatVector renders v in pgvector text form: [1,2,3].
func formatVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// parseVector parses pgvector text form.
func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(strings.Trim(s, "[]"))
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parsing vector element %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
