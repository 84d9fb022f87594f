package driven

// ConfigStore is the persisted key/value layer beneath SettingsService.
// Keys use dot notation ("llm.model", "retrieval.k"). Typed getters
// return the zero value for missing keys and for values they cannot
// convert, so callers apply their own defaults.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value. File-backed stores persist it before returning.
	Set(key string, value any) error

	// Save writes all values; Load replaces them with what is stored.
	Save() error
	Load() error

	// Path identifies the backing file, or ":memory:".
	Path() string
}
