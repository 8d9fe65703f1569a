package driven

// ConfigStore provides persistent configuration storage backed by a
// TOML file. Keys use dotted paths, e.g. "embedding.model".
type ConfigStore interface {
	// Get retrieves a raw value. Returns nil when the key is absent.
	Get(key string) any

	// GetString retrieves a string value, or the fallback when absent.
	GetString(key, fallback string) string

	// GetInt retrieves an integer value, or the fallback when absent.
	GetInt(key string, fallback int) int

	// GetBool retrieves a boolean value, or the fallback when absent.
	GetBool(key string, fallback bool) bool

	// GetStringSlice retrieves a string slice value, or nil when absent.
	GetStringSlice(key string) []string

	// Set stores a value in memory. Call Save to persist.
	Set(key string, value any)

	// Save writes the configuration to disk.
	Save() error

	// Load re-reads the configuration from disk.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
