package driven

// ConfigStore persists user settings as dotted keys such as "llm.provider"
// or "index.top_k". Typed getters return the zero value when a key is
// missing or holds another type, so callers fall back to defaults.
type ConfigStore interface {
	// Get returns the raw value and whether the key is stored.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value under key. A nil value removes the key so the
	// built-in default applies again.
	Set(key string, value any) error

	// Save writes the settings file.
	Save() error

	// Load rereads the settings file, discarding unsaved changes.
	Load() error

	// Path returns the settings file location.
	Path() string
}
