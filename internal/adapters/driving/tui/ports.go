// Package tui provides an interactive terminal user interface for paragraf.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities over the indexed corpus.
	Search driving.SearchService

	// Ask answers questions grounded in the indexed corpus.
	Ask driving.AskService

	// Source manages source configurations.
	Source driving.SourceService

	// Sync orchestrates document synchronisation.
	Sync driving.SyncOrchestrator

	// Document manages documents within sources.
	Document driving.DocumentService

	// Settings manages application settings.
	Settings driving.SettingsService

	// Collection manages document collections.
	Collection driving.CollectionService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	source driving.SourceService,
	sync driving.SyncOrchestrator,
) *Ports {
	return &Ports{
		Search: search,
		Source: source,
		Sync:   sync,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Source == nil {
		return ErrMissingSourceService
	}
	if p.Sync == nil {
		return ErrMissingSyncOrchestrator
	}
	return nil
}
