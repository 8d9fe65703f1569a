package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// ExclusionStore persists per-source exclusion patterns. Excluded
// documents are skipped during sync and removed if already indexed.
type ExclusionStore interface {
	// Add stores an exclusion pattern for a source.
	Add(ctx context.Context, exclusion *domain.Exclusion) error

	// Remove deletes an exclusion by ID.
	Remove(ctx context.Context, id string) error

	// GetBySourceID returns all exclusions for a source.
	GetBySourceID(ctx context.Context, sourceID string) ([]*domain.Exclusion, error)

	// IsExcluded reports whether a URI matches any exclusion for the
	// source.
	IsExcluded(ctx context.Context, sourceID, uri string) (bool, error)

	// List returns all exclusions across sources.
	List(ctx context.Context) ([]*domain.Exclusion, error)
}
