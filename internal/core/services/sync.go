package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
	"github.com/lovbase/paragraf/internal/doctype"
	"github.com/lovbase/paragraf/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates document synchronisation: it pulls raw
// documents from a connector and runs each through the indexing
// pipeline (exclusion, normalisation, type detection, chunking,
// post-processing, embedding, persistence).
type SyncOrchestrator struct {
	sourceStore      driven.SourceStore
	syncStore        driven.SyncStateStore
	docStore         driven.DocumentStore
	exclusionStore   driven.ExclusionStore
	factory          driven.ConnectorFactory
	normalisers      driven.NormaliserRegistry
	indexers         driven.IndexerRegistry
	pipeline         driven.PostProcessorPipeline
	searchIndex      driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService

	// collectionID is stamped on every document this orchestrator
	// indexes. Set via SetCollection before syncing.
	collectionID string

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The vectorIndex and embeddingService are optional - if nil, chunks
// are indexed for keyword search only.
func NewSyncOrchestrator(
	sourceStore driven.SourceStore,
	syncStore driven.SyncStateStore,
	docStore driven.DocumentStore,
	exclusionStore driven.ExclusionStore,
	factory driven.ConnectorFactory,
	normalisers driven.NormaliserRegistry,
	indexers driven.IndexerRegistry,
	pipeline driven.PostProcessorPipeline,
	searchIndex driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		sourceStore:      sourceStore,
		syncStore:        syncStore,
		docStore:         docStore,
		exclusionStore:   exclusionStore,
		factory:          factory,
		normalisers:      normalisers,
		indexers:         indexers,
		pipeline:         pipeline,
		searchIndex:      searchIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		activeSyncs:      make(map[string]*driving.SyncStatus),
	}
}

// SetCollection sets the collection newly indexed documents belong to.
func (o *SyncOrchestrator) SetCollection(collectionID string) {
	o.collectionID = collectionID
}

// Sync triggers synchronisation for a source.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) Sync(ctx context.Context, sourceID string) error {
	// 1. Get source configuration
	source, err := o.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	// 2. Refuse concurrent syncs of the same source
	if o.isRunning(sourceID) {
		return fmt.Errorf("%w: source %s", domain.ErrSyncInProgress, sourceID)
	}

	// 3. Create connector from source
	if o.factory == nil {
		return fmt.Errorf("create connector: connector factory not configured")
	}
	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	// 4. Validate connector (path exists, readable)
	if err := connector.Validate(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnectorValidation, err)
	}

	// 5. Get sync state (for incremental sync)
	syncState, err := o.syncStore.Get(ctx, sourceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get sync state: %w", err)
	}

	// 6. Initialise status tracking
	status := &driving.SyncStatus{
		SourceID: sourceID,
		Running:  true,
		Stage:    "fetching",
	}
	o.setStatus(sourceID, status)
	defer o.clearStatus(sourceID)

	logger.Section("Synchronisation")
	logger.Info("Starting sync for source %s", sourceID)

	// 7. Choose sync strategy based on connector capabilities
	caps := connector.Capabilities()
	var newCursor string

	if caps.SupportsIncremental && syncState != nil && syncState.Cursor != "" {
		changesCh, errsCh := connector.IncrementalSync(ctx, *syncState)
		newCursor, err = o.processChanges(ctx, source, changesCh, errsCh, status)
	} else {
		docsCh, errsCh := connector.FullSync(ctx)
		newCursor, err = o.processDocuments(ctx, source, docsCh, errsCh, status)
		// For full sync, fall back to current time if no cursor was returned
		if err == nil && newCursor == "" && caps.SupportsCursorReturn {
			newCursor = strconv.FormatInt(time.Now().UnixNano(), 10)
		}
	}

	if err != nil {
		return err
	}

	// 8. Update sync state with new cursor
	newState := &domain.SyncState{
		SourceID: sourceID,
		Cursor:   newCursor,
		LastSync: time.Now(),
	}
	if err := o.syncStore.Save(ctx, newState); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	logger.Info("Sync complete: %d documents, %d chunks, %d errors",
		status.DocumentsProcessed, status.ChunksCreated, status.ErrorCount)
	status.Running = false
	return nil
}

// SyncAll triggers synchronisation for all configured sources.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) error {
	sources, err := o.sourceStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	var errs []error
	for _, source := range sources {
		if err := o.Sync(ctx, source.ID); err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", source.ID, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Watch follows a source's change feed and indexes changes as they
// arrive. Blocks until the context is cancelled or the connector stops.
func (o *SyncOrchestrator) Watch(ctx context.Context, sourceID string) error {
	source, err := o.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	if o.isRunning(sourceID) {
		return fmt.Errorf("%w: source %s", domain.ErrSyncInProgress, sourceID)
	}

	if o.factory == nil {
		return fmt.Errorf("create connector: connector factory not configured")
	}
	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	caps := connector.Capabilities()
	if !caps.SupportsWatch {
		return fmt.Errorf("%w: connector %s does not support watch", domain.ErrUnsupportedType, connector.Type())
	}

	changesCh, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("start watch: %w", err)
	}

	status := &driving.SyncStatus{
		SourceID: sourceID,
		Running:  true,
		Stage:    "watching",
	}
	o.setStatus(sourceID, status)
	defer o.clearStatus(sourceID)

	logger.Info("Watching source %s for changes", sourceID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case change, ok := <-changesCh:
			if !ok {
				return nil
			}
			if err := o.applyChange(ctx, source, &change, status); err != nil {
				status.ErrorCount++
				logger.Debug("Failed to apply change for %s: %v", change.Document.URI, err)
				continue
			}
			status.DocumentsProcessed++
		}
	}
}

// Status returns sync status for a source.
func (o *SyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeSyncs[sourceID]; ok {
		// Return a copy to avoid race conditions
		return &driving.SyncStatus{
			SourceID:           status.SourceID,
			Running:            status.Running,
			Stage:              status.Stage,
			DocumentsProcessed: status.DocumentsProcessed,
			ChunksCreated:      status.ChunksCreated,
			ErrorCount:         status.ErrorCount,
		}, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{
		SourceID: sourceID,
		Running:  false,
	}, nil
}

// processDocuments handles full sync - processes all documents from the connector.
// Returns the new cursor from SyncComplete if the connector provides one.
//
//nolint:gocognit // Orchestration function coordinating multiple async operations
func (o *SyncOrchestrator) processDocuments(
	ctx context.Context,
	source *domain.Source,
	docsCh <-chan domain.RawDocument,
	errsCh <-chan error,
	status *driving.SyncStatus,
) (string, error) {
	var newCursor string

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			// Check if this is a SyncComplete (successful completion with cursor)
			if sc, isSyncComplete := driven.IsSyncComplete(err); isSyncComplete {
				newCursor = sc.NewCursor
				continue
			}
			if err != nil {
				return "", fmt.Errorf("connector error: %w", err)
			}

		case rawDoc, ok := <-docsCh:
			if !ok {
				return newCursor, nil // Done - channel closed
			}

			logger.Debug("Processing: %s", rawDoc.URI)
			if err := o.processOneDocument(ctx, source, &rawDoc, status); err != nil {
				status.ErrorCount++
				if errors.Is(err, domain.ErrUnsupportedType) {
					logger.Debug("Skipping %s: %v", rawDoc.URI, err)
				} else {
					logger.Warn("Failed to process %s: %v", rawDoc.URI, err)
				}
				continue
			}
			status.DocumentsProcessed++
		}
	}
}

// processChanges handles incremental sync - processes document changes.
// Returns the new cursor from SyncComplete if the connector provides one.
//
//nolint:gocognit // Orchestration function coordinating multiple async operations
func (o *SyncOrchestrator) processChanges(
	ctx context.Context,
	source *domain.Source,
	changesCh <-chan domain.RawDocumentChange,
	errsCh <-chan error,
	status *driving.SyncStatus,
) (string, error) {
	var newCursor string

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			// Check if this is a SyncComplete (successful completion with cursor)
			if sc, isSyncComplete := driven.IsSyncComplete(err); isSyncComplete {
				newCursor = sc.NewCursor
				continue
			}
			if err != nil {
				return "", fmt.Errorf("connector error: %w", err)
			}

		case change, ok := <-changesCh:
			if !ok {
				return newCursor, nil // Done - channel closed
			}

			if err := o.applyChange(ctx, source, &change, status); err != nil {
				status.ErrorCount++
				if errors.Is(err, domain.ErrUnsupportedType) {
					logger.Debug("Skipping %s: %v", change.Document.URI, err)
				} else {
					logger.Warn("Failed to process %s: %v", change.Document.URI, err)
				}
				continue
			}
			status.DocumentsProcessed++
		}
	}
}

// applyChange dispatches a single change event to the right handler.
func (o *SyncOrchestrator) applyChange(
	ctx context.Context,
	source *domain.Source,
	change *domain.RawDocumentChange,
	status *driving.SyncStatus,
) error {
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		logger.Debug("Processing: %s", change.Document.URI)
		return o.processOneDocument(ctx, source, &change.Document, status)

	case domain.ChangeDeleted:
		logger.Debug("Deleting: %s", change.Document.URI)
		return o.deleteDocumentByURI(ctx, source.ID, change.Document.URI)

	default:
		return fmt.Errorf("%w: change type %d", domain.ErrUnsupportedType, change.Type)
	}
}

// processOneDocument runs one raw document through the indexing
// pipeline: exclusion check, normalisation, type detection, chunking,
// post-processing, embedding, persistence and index updates.
//
//nolint:gocognit,gocyclo // Pipeline orchestration with sequential steps
func (o *SyncOrchestrator) processOneDocument(
	ctx context.Context,
	source *domain.Source,
	raw *domain.RawDocument,
	status *driving.SyncStatus,
) error {
	// 1. CHECK EXCLUSION
	if o.exclusionStore != nil {
		excluded, err := o.exclusionStore.IsExcluded(ctx, source.ID, raw.URI)
		if err != nil {
			return fmt.Errorf("check exclusion: %w", err)
		}
		if excluded {
			return nil // Skip silently
		}
	}

	// 2. NORMALISE (produces Document with plain-text Content)
	status.Stage = "normalising"
	result, err := o.normalisers.Normalise(ctx, raw)
	if err != nil {
		return fmt.Errorf("normalise: %w", err)
	}
	doc := result.Document

	// Re-syncs replace the stored document rather than duplicating it.
	if existing, err := o.docStore.GetDocumentByURI(ctx, source.ID, raw.URI); err == nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	}
	doc.CollectionID = o.collectionID

	// 3. DETECT DOCUMENT TYPE
	doc.DocType = doctype.Detect(doc.URI, doc.Content)

	// 4. INDEX INTO TYPED CHUNKS
	status.Stage = "indexing"
	chunks, err := o.indexers.Index(ctx, doc)
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	// 5. RUN POST-PROCESSOR PIPELINE
	chunks, err = o.pipeline.Process(ctx, doc, chunks)
	if err != nil {
		return fmt.Errorf("post-process: %w", err)
	}

	// 6. GENERATE EMBEDDINGS (if service available)
	if o.embeddingService != nil && len(chunks) > 0 {
		status.Stage = "embedding"
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Content
		}
		embeddings, err := o.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
		}
	}

	// 7. SAVE TO DOCUMENT STORE
	status.Stage = "persisting"
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := o.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	// 8. UPDATE KEYWORD AND VECTOR INDEXES
	for i := range chunks {
		if err := o.searchIndex.Index(ctx, &chunks[i]); err != nil {
			return fmt.Errorf("index chunk: %w", err)
		}
	}
	if o.vectorIndex != nil {
		for i := range chunks {
			if chunks[i].Embedding != nil {
				if err := o.vectorIndex.Add(ctx, chunks[i].ID, chunks[i].Embedding); err != nil {
					return fmt.Errorf("add vector: %w", err)
				}
			}
		}
	}

	status.ChunksCreated += len(chunks)
	status.Stage = "fetching"
	return nil
}

// deleteDocumentByURI removes a document and its index entries by URI.
func (o *SyncOrchestrator) deleteDocumentByURI(ctx context.Context, sourceID, uri string) error {
	doc, err := o.docStore.GetDocumentByURI(ctx, sourceID, uri)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Might have been deleted already
			return nil
		}
		return fmt.Errorf("find document: %w", err)
	}

	// Delete vectors for the document's chunks
	if o.vectorIndex != nil {
		chunks, err := o.docStore.GetChunksByDocument(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("get chunks: %w", err)
		}
		for _, chunk := range chunks {
			if err := o.vectorIndex.Delete(ctx, chunk.ID); err != nil {
				logger.Debug("Failed to delete vector %s: %v", chunk.ID, err)
			}
		}
	}

	// Delete from keyword index (document level)
	if err := o.searchIndex.Delete(ctx, doc.ID); err != nil {
		logger.Debug("Failed to delete search index entries for %s: %v", doc.ID, err)
	}

	// Delete document and chunks from store
	if err := o.docStore.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	return nil
}

// isRunning reports whether a sync is active for the source.
func (o *SyncOrchestrator) isRunning(sourceID string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status, ok := o.activeSyncs[sourceID]
	return ok && status.Running
}

// setStatus sets the sync status for a source.
func (o *SyncOrchestrator) setStatus(sourceID string, status *driving.SyncStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeSyncs[sourceID] = status
}

// clearStatus removes the sync status for a source.
func (o *SyncOrchestrator) clearStatus(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, sourceID)
}
