package normalisers

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// extensionTypes maps supported file extensions to MIME types.
var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".text": "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".html": "text/html",
	".htm":  "text/html",
}

// Registry dispatches raw documents to the highest priority normaliser
// registered for their MIME type.
type Registry struct {
	mu     sync.RWMutex
	byType map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[string][]driven.Normaliser),
	}
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mimeType := range n.SupportedMIMETypes() {
		list := append(r.byType[mimeType], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byType[mimeType] = list
	}
}

// Normalise selects a normaliser by the document's MIME type. Parameters
// such as charset are ignored.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := BaseMIMEType(raw.MIMEType)

	r.mu.RLock()
	candidates := r.byType[mimeType]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, raw.MIMEType)
	}
	return candidates[0].Normalise(ctx, raw)
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// MIMETypeForFile maps a filename to a registered MIME type, or "".
func (r *Registry) MIMETypeForFile(name string) string {
	mimeType, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return ""
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.byType[mimeType]) == 0 {
		return ""
	}
	return mimeType
}

// BaseMIMEType strips parameters and lowercases a Content-Type value.
func BaseMIMEType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		base, _, _ := strings.Cut(contentType, ";")
		return strings.ToLower(strings.TrimSpace(base))
	}
	return mediaType
}
