package mcp

import (
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Ask answers questions grounded in the indexed corpus.
	Ask driving.AskService

	// Document manages documents within sources.
	Document driving.DocumentService

	// Collection manages document collections.
	Collection driving.CollectionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Ask, Document and Collection are optional; their tools and
	// resources degrade gracefully when absent.
	return nil
}
