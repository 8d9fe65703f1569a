package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
type DocumentStore interface {
	// SaveDocument persists a document. Existing documents with the
	// same ID are replaced.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks replaces the stored chunks of a document.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID, including its chunks.
	// Returns domain.ErrNotFound if the document does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByURI retrieves a document by source ID and URI.
	// Returns domain.ErrNotFound if no such document exists.
	GetDocumentByURI(ctx context.Context, sourceID, uri string) (*domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteBySourceID removes all documents belonging to a source and
	// returns the IDs of the removed documents.
	DeleteBySourceID(ctx context.Context, sourceID string) ([]string, error)

	// ListDocuments returns documents for a source, ordered by URI.
	ListDocuments(ctx context.Context, sourceID string) ([]*domain.Document, error)

	// ListDocumentsByCollection returns all documents in a collection,
	// ordered by URI.
	ListDocumentsByCollection(ctx context.Context, collectionID string) ([]*domain.Document, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns domain.ErrNotFound if the chunk does not exist.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves multiple chunks by ID. Missing IDs are
	// skipped, not errors; the result preserves the requested order.
	GetChunks(ctx context.Context, ids []string) ([]*domain.Chunk, error)

	// GetChunksByDocument returns all chunks of a document ordered by
	// position.
	GetChunksByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error)

	// GetChunksByCollection returns all chunks in a collection. Used
	// when rebuilding a vector index.
	GetChunksByCollection(ctx context.Context, collectionID string) ([]*domain.Chunk, error)

	// UpdateChunkEmbedding stores the embedding vector for a chunk.
	UpdateChunkEmbedding(ctx context.Context, chunkID string, embedding []float32) error

	// Close releases resources.
	Close() error
}
