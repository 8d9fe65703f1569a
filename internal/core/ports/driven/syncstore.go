package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// SyncStateStore persists per-source sync state: cursors for
// incremental sync and the outcome of the last run.
type SyncStateStore interface {
	// Save persists sync state for a source.
	Save(ctx context.Context, state *domain.SyncState) error

	// Get retrieves sync state for a source.
	// Returns domain.ErrNotFound if no state exists yet.
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)

	// Delete removes sync state for a source.
	Delete(ctx context.Context, sourceID string) error
}
