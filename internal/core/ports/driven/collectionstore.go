package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// CollectionStore persists collections. A collection is a named bundle
// of sources, documents and a vector index, pinned to one embedding
// model.
type CollectionStore interface {
	// Save persists a collection. Creates or updates by ID.
	Save(ctx context.Context, collection *domain.Collection) error

	// GetByID retrieves a collection by ID.
	// Returns domain.ErrCollectionNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*domain.Collection, error)

	// GetByName retrieves a collection by its unique name.
	// Returns domain.ErrCollectionNotFound if it does not exist.
	GetByName(ctx context.Context, name string) (*domain.Collection, error)

	// List returns all collections ordered by name.
	List(ctx context.Context) ([]*domain.Collection, error)

	// Delete removes a collection. The caller is responsible for
	// removing its documents and vector index first.
	Delete(ctx context.Context, id string) error

	// Stats computes document and chunk counts for a collection.
	Stats(ctx context.Context, id string) (*domain.CollectionStats, error)
}
