package driven

import (
	"context"
	"errors"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// Connector fetches documents from a data source. The built-in
// connector reads a local directory tree; the interface leaves room
// for remote corpora later.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// SourceID returns the configured source ID.
	SourceID() string

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks the connector is ready to sync. For the
	// filesystem connector this checks the path exists and is
	// readable. Returns nil if ready, an error describing the problem
	// otherwise.
	Validate(ctx context.Context) error

	// FullSync fetches all documents from the source.
	// Returns channels for documents and errors.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// IncrementalSync fetches only changes since the last sync.
	// Only available if SupportsIncremental is true.
	// Connectors that support cursor return send SyncComplete on the
	// error channel upon successful completion.
	IncrementalSync(ctx context.Context, state domain.SyncState) (<-chan domain.RawDocumentChange, <-chan error)

	// Watch listens for real-time changes.
	// Only available if SupportsWatch is true.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsIncremental indicates the connector can fetch only changes.
	SupportsIncremental bool

	// SupportsWatch indicates the connector can push real-time events.
	SupportsWatch bool

	// SupportsBinary indicates the connector handles binary content
	// such as PDF and DOCX.
	SupportsBinary bool

	// SupportsCursorReturn indicates IncrementalSync can return an
	// updated cursor via the SyncComplete sentinel on the error channel.
	SupportsCursorReturn bool
}

// SyncComplete is sent on the error channel when sync completes successfully.
// Carries the new cursor state for incremental sync.
type SyncComplete struct {
	NewCursor string
}

// Error implements the error interface.
// This allows SyncComplete to be sent on the error channel.
func (SyncComplete) Error() string {
	return "sync complete"
}

// IsSyncComplete checks if an error is actually a successful completion.
// Returns the SyncComplete and true if it is, nil and false otherwise.
func IsSyncComplete(err error) (*SyncComplete, bool) {
	var sc *SyncComplete
	if errors.As(err, &sc) {
		return sc, true
	}
	return nil, false
}
