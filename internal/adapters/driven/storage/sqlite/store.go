package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// DatabaseFile is the file name of the vector database inside the data directory.
const DatabaseFile = "vectors.db"

// Store is a SQLite-backed collection provider. Every collection it opens
// shares the single database connection pool.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.CollectionProvider = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docchat/data/vectors.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docchat", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// GetOrCreate opens the named collection, creating it if absent.
// A collection created with Dimensions == 0 learns its length from the
// first record written.
func (s *Store) GetOrCreate(ctx context.Context, name string, spec domain.CollectionSpec) (driven.VectorStore, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name: %w", domain.ErrInvalidInput)
	}

	existing, err := s.collection(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO collections (name, model, dimensions, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO NOTHING
		`, name, spec.Model, spec.Dimensions, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
		// Re-read so a concurrent creator's row wins consistently.
		if existing, err = s.collection(ctx, name); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if existing.Model != spec.Model {
		return nil, fmt.Errorf("collection %q uses %q, not %q: %w",
			name, existing.Model, spec.Model, domain.ErrModelMismatch)
	}
	if spec.Dimensions > 0 && existing.Dimensions > 0 && existing.Dimensions != spec.Dimensions {
		return nil, fmt.Errorf("collection %q has %d dimensions, not %d: %w",
			name, existing.Dimensions, spec.Dimensions, domain.ErrModelMismatch)
	}
	if spec.Dimensions > 0 && existing.Dimensions == 0 {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE collections SET dimensions = ? WHERE name = ? AND dimensions = 0",
			spec.Dimensions, name); err != nil {
			return nil, fmt.Errorf("setting dimensions: %w", err)
		}
	}

	return &collectionStore{store: s, name: name}, nil
}

// Collections lists all collections ordered by name.
func (s *Store) Collections(ctx context.Context) ([]domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, model, dimensions, created_at FROM collections ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var cols []domain.Collection //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.Name, &c.Model, &c.Dimensions, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return cols, nil
}

func (s *Store) collection(ctx context.Context, name string) (*domain.Collection, error) {
	var c domain.Collection
	err := s.db.QueryRowContext(ctx, `
		SELECT name, model, dimensions, created_at FROM collections WHERE name = ?
	`, name).Scan(&c.Name, &c.Model, &c.Dimensions, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	return &c, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Collection Store ====================

// collectionStore implements driven.VectorStore for one collection.
type collectionStore struct {
	store *Store
	name  string
}

var _ driven.VectorStore = (*collectionStore)(nil)

// Name returns the collection name.
func (c *collectionStore) Name() string {
	return c.name
}

// Upsert writes or overwrites a record. The first record written to a
// collection without dimensions fixes its vector length.
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
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var dims int
	if err := tx.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", c.name).Scan(&dims); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection %q: %w", c.name, domain.ErrNotFound)
		}
		return fmt.Errorf("getting dimensions: %w", err)
	}
	switch {
	case dims == 0:
		if _, err := tx.ExecContext(ctx,
			"UPDATE collections SET dimensions = ? WHERE name = ?",
			len(record.Embedding), c.name); err != nil {
			return fmt.Errorf("setting dimensions: %w", err)
		}
	case dims != len(record.Embedding):
		return fmt.Errorf("record %s has %d dimensions, collection has %d: %w",
			record.ID, len(record.Embedding), dims, domain.ErrDimensionMismatch)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (collection, id, text, metadata, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			text = excluded.text,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, c.name, record.ID, record.Text, string(metadataJSON),
		float32SliceToBytes(record.Embedding), updatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record: %w", err)
	}
	return nil
}

// Query scans the collection and returns the k most similar records.
func (c *collectionStore) Query(ctx context.Context, embedding []float32, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		return []domain.QueryResult{}, nil
	}

	col, err := c.store.collection(ctx, c.name)
	if err != nil {
		return nil, err
	}
	if col.Dimensions > 0 && col.Dimensions != len(embedding) {
		return nil, fmt.Errorf("query has %d dimensions, collection has %d: %w",
			len(embedding), col.Dimensions, domain.ErrDimensionMismatch)
	}

	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, text, metadata, embedding, updated_at
		FROM records WHERE collection = ? ORDER BY id
	`, c.name)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	ranker := vector.NewRanker(embedding)
	for rows.Next() {
		rec, err := scanRecordRows(rows)
		if err != nil {
			return nil, err
		}
		ranker.Add(*rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return ranker.Top(k), nil
}

// Get returns a record by ID.
func (c *collectionStore) Get(ctx context.Context, id string) (*domain.Record, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, text, metadata, embedding, updated_at
		FROM records WHERE collection = ? AND id = ?
	`, c.name, id)
	return scanRecord(row)
}

// Count returns the number of records in the collection.
func (c *collectionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ?", c.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanRecord scans a single record row.
func scanRecord(row *sql.Row) (*domain.Record, error) {
	var rec domain.Record
	var metadataJSON string
	var blob []byte

	if err := row.Scan(&rec.ID, &rec.Text, &metadataJSON, &blob, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	return finishRecord(&rec, metadataJSON, blob)
}

// scanRecordRows scans a record from *sql.Rows.
func scanRecordRows(rows *sql.Rows) (*domain.Record, error) {
	var rec domain.Record
	var metadataJSON string
	var blob []byte

	if err := rows.Scan(&rec.ID, &rec.Text, &metadataJSON, &blob, &rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	return finishRecord(&rec, metadataJSON, blob)
}

func finishRecord(rec *domain.Record, metadataJSON string, blob []byte) (*domain.Record, error) {
	rec.Embedding = bytesToFloat32Slice(blob)
	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return rec, nil
}
