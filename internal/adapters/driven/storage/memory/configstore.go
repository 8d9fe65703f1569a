package memory

import (
	"sync"

	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for
// testing.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		values: make(map[string]any),
	}
}

// Get retrieves a raw value. Returns nil when the key is absent.
func (s *ConfigStore) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// GetString retrieves a string value, or the fallback when absent.
func (s *ConfigStore) GetString(key, fallback string) string {
	if str, ok := s.Get(key).(string); ok {
		return str
	}
	return fallback
}

// GetInt retrieves an integer value, or the fallback when absent.
func (s *ConfigStore) GetInt(key string, fallback int) int {
	switch v := s.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// GetBool retrieves a boolean value, or the fallback when absent.
func (s *ConfigStore) GetBool(key string, fallback bool) bool {
	if b, ok := s.Get(key).(bool); ok {
		return b
	}
	return fallback
}

// GetStringSlice retrieves a string slice value, or nil when absent.
func (s *ConfigStore) GetStringSlice(key string) []string {
	switch v := s.Get(key).(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Save persists the current configuration (no-op for memory store).
func (s *ConfigStore) Save() error {
	return nil
}

// Load reads configuration from storage (no-op for memory store).
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
