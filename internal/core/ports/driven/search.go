package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// SearchEngine indexes chunks and retrieves them by keyword query.
// This is a required service with two implementations: SQLite FTS5
// (default, pure Go) and Xapian (optional, cgo, Danish stemming).
type SearchEngine interface {
	// Index adds or updates a chunk in the search index.
	Index(ctx context.Context, chunk *domain.Chunk) error

	// Delete removes all chunks belonging to a document from the index.
	Delete(ctx context.Context, documentID string) error

	// Search performs a keyword search and returns matching chunk IDs
	// ranked by relevance.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// Close releases resources.
	Close() error
}

// SearchHit is a single keyword search result.
type SearchHit struct {
	// ChunkID identifies the matching chunk.
	ChunkID string

	// Score is the engine's relevance score (BM25 or similar).
	// Higher is better.
	Score float64
}
