package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.CollectionProvider = (*CollectionProvider)(nil)
	_ driven.VectorStore        = (*VectorStore)(nil)
)

// CollectionProvider is an in-memory implementation of driven.CollectionProvider.
// Collections live only as long as the process.
type CollectionProvider struct {
	mu          sync.Mutex
	collections map[string]*VectorStore
}

// NewCollectionProvider creates a new in-memory collection provider.
func NewCollectionProvider() *CollectionProvider {
	return &CollectionProvider{
		collections: make(map[string]*VectorStore),
	}
}

// GetOrCreate opens the named collection, creating it if absent.
func (p *CollectionProvider) GetOrCreate(
	_ context.Context, name string, spec domain.CollectionSpec,
) (driven.VectorStore, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name: %w", domain.ErrInvalidInput)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if vs, ok := p.collections[name]; ok {
		if err := vs.checkSpec(spec); err != nil {
			return nil, err
		}
		return vs, nil
	}

	vs := NewVectorStore(name, spec)
	p.collections[name] = vs
	return vs, nil
}

// Collections lists collections ordered by name.
func (p *CollectionProvider) Collections(_ context.Context) ([]domain.Collection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cols := make([]domain.Collection, 0, len(p.collections))
	for _, vs := range p.collections {
		cols = append(cols, vs.describe())
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return cols, nil
}

// Close is a no-op.
func (p *CollectionProvider) Close() error {
	return nil
}

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu        sync.RWMutex
	name      string
	model     string
	dims      int
	createdAt time.Time
	order     []string
	records   map[string]domain.Record
}

// NewVectorStore creates an empty collection.
func NewVectorStore(name string, spec domain.CollectionSpec) *VectorStore {
	return &VectorStore{
		name:      name,
		model:     spec.Model,
		dims:      spec.Dimensions,
		createdAt: time.Now(),
		records:   make(map[string]domain.Record),
	}
}

// Name returns the collection name.
func (s *VectorStore) Name() string {
	return s.name
}

// Upsert stores or replaces a record.
func (s *VectorStore) Upsert(_ context.Context, record domain.Record) error {
	if record.ID == "" {
		return fmt.Errorf("record id: %w", domain.ErrInvalidInput)
	}
	if len(record.Embedding) == 0 {
		return fmt.Errorf("record %s has no embedding: %w", record.ID, domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims == 0 {
		s.dims = len(record.Embedding)
	} else if s.dims != len(record.Embedding) {
		return fmt.Errorf("record %s has %d dimensions, collection has %d: %w",
			record.ID, len(record.Embedding), s.dims, domain.ErrDimensionMismatch)
	}

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}
	record.Embedding = vector.Clone(record.Embedding)
	record.Metadata = vector.CloneMetadata(record.Metadata)

	if _, ok := s.records[record.ID]; !ok {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = record
	return nil
}

// Query returns the k most similar records.
func (s *VectorStore) Query(_ context.Context, embedding []float32, k int) ([]domain.QueryResult, error) {
	if k <= 0 {
		return []domain.QueryResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dims > 0 && s.dims != len(embedding) {
		return nil, fmt.Errorf("query has %d dimensions, collection has %d: %w",
			len(embedding), s.dims, domain.ErrDimensionMismatch)
	}

	ranker := vector.NewRanker(embedding)
	for _, id := range s.order {
		ranker.Add(s.records[id])
	}
	return ranker.Top(k), nil
}

// Get returns a copy of the record with the given ID.
func (s *VectorStore) Get(_ context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec.Embedding = vector.Clone(rec.Embedding)
	rec.Metadata = vector.CloneMetadata(rec.Metadata)
	return &rec, nil
}

// Count returns the number of records.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *VectorStore) checkSpec(spec domain.CollectionSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != spec.Model {
		return fmt.Errorf("collection %q uses %q, not %q: %w",
			s.name, s.model, spec.Model, domain.ErrModelMismatch)
	}
	if spec.Dimensions > 0 && s.dims > 0 && s.dims != spec.Dimensions {
		return fmt.Errorf("collection %q has %d dimensions, not %d: %w",
			s.name, s.dims, spec.Dimensions, domain.ErrModelMismatch)
	}
	if s.dims == 0 {
		s.dims = spec.Dimensions
	}
	return nil
}

func (s *VectorStore) describe() domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Collection{Name: s.name, Model: s.model, Dimensions: s.dims, CreatedAt: s.createdAt}
}
