package driven

// ConfigStore holds settings under dotted keys such as "llm.provider" or
// "export.max_tokens_per_file". Getters coerce stored values and return the
// zero value for a missing or unconvertible key.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value and persists the store.
	Set(key string, value any) error

	// Save writes the current values to the backing file, if any.
	Save() error

	// Load re-reads the backing file, replacing unsaved values.
	Load() error

	// Path is the backing file, or a marker for stores without one.
	Path() string
}
