package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/coerce"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. It backs test sessions and the
// MCP and CLI tests, where nothing should be written to ~/.docchat.
// Values are coerced the same way as the TOML store.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty in-memory config store.
func NewConfigStore() *ConfigStore {
	return NewConfigStoreFrom(nil)
}

// NewConfigStoreFrom creates a store seeded with a copy of values, keyed
// in dot notation ("retrieval.k").
func NewConfigStoreFrom(values map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any, len(values))}
	maps.Copy(s.values, values)
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	return coerce.String(val)
}

func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	return coerce.Int(val)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	return coerce.Float(val)
}

func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	return coerce.Bool(val)
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	return coerce.Strings(val)
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save and Load are no-ops; there is nothing to persist.
func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
