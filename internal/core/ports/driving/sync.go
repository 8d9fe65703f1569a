package driving

import "context"

// SyncOrchestrator coordinates document synchronisation from sources.
type SyncOrchestrator interface {
	// Sync triggers synchronisation for a source.
	Sync(ctx context.Context, sourceID string) error

	// SyncAll triggers synchronisation for all configured sources.
	SyncAll(ctx context.Context) error

	// Watch follows a source's change feed and indexes changes as they
	// happen. Blocks until the context is cancelled.
	Watch(ctx context.Context, sourceID string) error

	// Status returns sync status for a source.
	Status(ctx context.Context, sourceID string) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// SourceID identifies the source.
	SourceID string

	// Running indicates if sync is currently in progress.
	Running bool

	// Stage names the pipeline stage in progress, e.g. "indexing".
	Stage string

	// DocumentsProcessed is the count of documents processed.
	DocumentsProcessed int

	// ChunksCreated is the count of chunks produced so far.
	ChunksCreated int

	// ErrorCount is the number of errors encountered.
	ErrorCount int
}
