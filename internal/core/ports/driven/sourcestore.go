package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// SourceStore persists configured sources.
type SourceStore interface {
	// Save persists a source. Creates or updates by ID.
	Save(ctx context.Context, source *domain.Source) error

	// Get retrieves a source by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// Delete removes a source.
	Delete(ctx context.Context, id string) error

	// List returns all sources ordered by name.
	List(ctx context.Context) ([]*domain.Source, error)
}
