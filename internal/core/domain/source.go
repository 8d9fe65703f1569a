package domain

import (
	"fmt"
	"time"
)

// Source represents a configured document source.
// Each source produces documents via a connector and feeds one
// collection.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Type identifies the connector type (e.g., "filesystem").
	Type string

	// Name is the human-readable name for this source.
	Name string

	// CollectionID is the collection documents from this source are
	// indexed into.
	CollectionID string

	// Config contains connector-specific configuration, e.g. "path"
	// and "extensions" for the filesystem connector.
	Config map[string]string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// DisplayName returns the source name with its path when the config
// has one. Used in CLI/TUI listings where the path disambiguates
// sources with similar names.
func (s *Source) DisplayName() string {
	if path := s.Config["path"]; path != "" {
		return fmt.Sprintf("%s (%s)", s.Name, path)
	}
	return s.Name
}

// SyncState tracks the synchronisation progress for a source.
type SyncState struct {
	// SourceID links to the Source being synced.
	SourceID string

	// Cursor is an opaque token for incremental sync. The filesystem
	// connector stores the last completed scan time.
	Cursor string

	// LastSync is when the last successful sync completed.
	LastSync time.Time
}

// SourceType describes a supported connector type for UI listings.
type SourceType struct {
	// ID is the unique identifier (e.g., "filesystem").
	ID string

	// Name is the human-readable display name.
	Name string

	// Description provides a brief explanation of the connector.
	Description string

	// ConfigKeys lists the configuration fields required by this
	// connector.
	ConfigKeys []ConfigKey
}

// ConfigKey describes a configuration field for a connector.
type ConfigKey struct {
	// Key is the configuration key name.
	Key string

	// Label is the human-readable label for UI display.
	Label string

	// Description explains what this field is for.
	Description string

	// Default is the default value for this field (shown as placeholder).
	Default string

	// Required indicates whether this field must be provided.
	Required bool
}
