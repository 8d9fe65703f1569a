package driven

import "context"

// VectorIndex provides semantic similarity search operations.
// Implementations include the pure-Go flat and IVF indexes and the
// optional native HNSW backend.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID. Adding an existing
	// ID replaces its vector.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search finds the k nearest neighbours to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors in the index.
	Len() int

	// Save writes a snapshot of the index to its backing file.
	Save() error

	// Close releases resources. Implementations that buffer writes
	// persist them before returning.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
