package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// errNoText marks documents that produced no extractable text.
var errNoText = errors.New("no extractable text")

// IngestionConfig configures the ingestion pipeline.
type IngestionConfig struct {
	// SourceDir is scanned non-recursively.
	SourceDir string

	// Include holds glob patterns matched against filenames.
	// Empty means every supported file.
	Include []string

	// Collection is the collection name.
	Collection string
}

// IngestionService builds the document collection once per process.
type IngestionService struct {
	provider driven.CollectionProvider
	embedder driven.EmbeddingService
	registry driven.NormaliserRegistry
	cfg      IngestionConfig

	// run serialises pipeline executions.
	run sync.Mutex

	mu         sync.RWMutex
	state      domain.ReadinessState
	collection driven.VectorStore
	report     *domain.IngestReport
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	provider driven.CollectionProvider,
	embedder driven.EmbeddingService,
	registry driven.NormaliserRegistry,
	cfg IngestionConfig,
) *IngestionService {
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	return &IngestionService{
		provider: provider,
		embedder: embedder,
		registry: registry,
		cfg:      cfg,
	}
}

// Ingest runs the pipeline. Once READY, later calls return the cached
// report without touching the store or the embedding service.
func (s *IngestionService) Ingest(ctx context.Context, progress driving.ProgressFunc) (*domain.IngestReport, error) {
	s.run.Lock()
	defer s.run.Unlock()

	if report := s.Report(); report != nil {
		logger.Debug("Collection %q already ready, skipping ingestion", s.cfg.Collection)
		return report, nil
	}

	logger.Section("Ingestion")
	start := time.Now()

	if err := s.checkSourceDir(); err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, &domain.ConfigError{Field: "embedding.provider", Err: domain.ErrEmbeddingUnavailable}
	}

	spec := domain.CollectionSpec{Model: s.embedder.ModelName(), Dimensions: s.embedder.Dimensions()}
	col, err := s.provider.GetOrCreate(ctx, s.cfg.Collection, spec)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", s.cfg.Collection, err)
	}
	logger.Debug("Collection %q open (model=%s, dims=%d)", s.cfg.Collection, spec.Model, spec.Dimensions)

	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}
	logger.Info("Found %d document(s) in %s", len(files), s.cfg.SourceDir)

	report := &domain.IngestReport{
		Collection: s.cfg.Collection,
		Indexed:    []string{},
		Skipped:    []domain.SkippedFile{},
	}
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.ingestFile(ctx, col, name); err != nil {
			logger.Warn("Skipping %s: %v", name, err)
			report.Skipped = append(report.Skipped, domain.SkippedFile{Name: name, Err: err})
		} else {
			logger.Debug("Indexed %s", name)
			report.Indexed = append(report.Indexed, name)
		}
		if progress != nil {
			progress(i+1, len(files), name)
		}
	}
	report.Duration = time.Since(start)

	s.mu.Lock()
	s.state = domain.StateReady
	s.collection = col
	s.report = report
	s.mu.Unlock()

	logger.Info("Ingestion complete: %d indexed, %d skipped in %s",
		len(report.Indexed), len(report.Skipped), report.Duration.Round(time.Millisecond))
	return report, nil
}

// State returns the readiness state.
func (s *IngestionService) State() domain.ReadinessState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether the collection has been built.
func (s *IngestionService) Ready() bool {
	return s.State() == domain.StateReady
}

// Collection returns the collection handle, or nil before READY.
func (s *IngestionService) Collection() driven.VectorStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection
}

// Report returns the report of the successful run, or nil before READY.
func (s *IngestionService) Report() *domain.IngestReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

func (s *IngestionService) checkSourceDir() error {
	if s.cfg.SourceDir == "" {
		return &domain.ConfigError{Field: "ingest.source_dir", Err: errors.New("not set")}
	}
	info, err := os.Stat(s.cfg.SourceDir)
	if err != nil {
		return &domain.ConfigError{Field: "ingest.source_dir", Err: err}
	}
	if !info.IsDir() {
		return &domain.ConfigError{
			Field: "ingest.source_dir",
			Err:   fmt.Errorf("%s is not a directory", s.cfg.SourceDir),
		}
	}
	return nil
}

// listFiles returns supported regular files matching the include
// patterns, sorted by name.
func (s *IngestionService) listFiles() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.SourceDir)
	if err != nil {
		return nil, &domain.ConfigError{Field: "ingest.source_dir", Err: err}
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if s.registry.MIMETypeForFile(name) == "" {
			continue
		}
		if !s.included(name) {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

func (s *IngestionService) included(name string) bool {
	if len(s.cfg.Include) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, pattern := range s.cfg.Include {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(strings.ToLower(pattern), lower); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *IngestionService) ingestFile(ctx context.Context, col driven.VectorStore, name string) error {
	path := filepath.Join(s.cfg.SourceDir, name)

	content, err := os.ReadFile(path)
	if err != nil {
		return &domain.ExtractionError{DocumentID: name, Err: err}
	}

	raw := &domain.RawDocument{
		ID:       name,
		URI:      path,
		MIMEType: s.registry.MIMETypeForFile(name),
		Content:  content,
		Metadata: map[string]any{domain.MetadataFilename: name},
	}
	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return &domain.ExtractionError{DocumentID: name, Err: err}
	}
	doc := result.Document
	if strings.TrimSpace(doc.Content) == "" {
		return &domain.ExtractionError{DocumentID: name, Err: errNoText}
	}

	embedding, err := s.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return &domain.EmbeddingError{DocumentID: name, Err: err}
	}

	metadata := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	metadata[domain.MetadataFilename] = name

	record := domain.Record{
		ID:        name,
		Text:      doc.Content,
		Embedding: embedding,
		Metadata:  metadata,
	}
	if err := col.Upsert(ctx, record); err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	return nil
}
