package driving

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// CollectionService manages collections: named bundles of sources,
// documents and a vector index, each pinned to one embedding model.
type CollectionService interface {
	// Create makes a new empty collection pinned to the current
	// embedding settings. Returns domain.ErrAlreadyExists when the
	// name is taken.
	Create(ctx context.Context, name, description string) (*domain.Collection, error)

	// Get retrieves a collection by name.
	Get(ctx context.Context, name string) (*domain.Collection, error)

	// List returns all collections.
	List(ctx context.Context) ([]domain.Collection, error)

	// Delete removes a collection and all its documents, chunks and
	// vectors. The active collection cannot be deleted.
	Delete(ctx context.Context, name string) error

	// Rename changes a collection's name. Returns
	// domain.ErrAlreadyExists when the new name is taken.
	Rename(ctx context.Context, oldName, newName string) error

	// Merge moves every document of collection src into collection
	// dst and deletes src. Both collections must be pinned to the
	// same embedding model, and src cannot be active.
	Merge(ctx context.Context, src, dst string) error

	// Use switches the active collection.
	Use(ctx context.Context, name string) error

	// Active returns the currently active collection.
	Active(ctx context.Context) (*domain.Collection, error)

	// Stats returns document and chunk counts for a collection.
	Stats(ctx context.Context, name string) (*domain.CollectionStats, error)

	// ImportLegacy imports a pre-built index bundle from dir into a
	// new collection. The bundle's requirements manifest, when
	// present, is parsed and recorded as provenance.
	ImportLegacy(ctx context.Context, name, dir string) (*domain.Collection, error)
}
