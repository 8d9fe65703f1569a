package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks replaces the stored chunks of a document.
func (s *DocumentStore) SaveChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Position < stored[j].Position })
	s.chunks[documentID] = stored
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByURI retrieves a document by source ID and URI.
func (s *DocumentStore) GetDocumentByURI(_ context.Context, sourceID, uri string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.documents {
		doc := s.documents[id]
		if doc.SourceID == sourceID && doc.URI == uri {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// DeleteBySourceID removes all documents for a source and returns
// their IDs.
func (s *DocumentStore) DeleteBySourceID(_ context.Context, sourceID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, doc := range s.documents {
		if doc.SourceID == sourceID {
			removed = append(removed, id)
			delete(s.documents, id)
			delete(s.chunks, id)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

// ListDocuments returns documents for a source, ordered by URI.
func (s *DocumentStore) ListDocuments(_ context.Context, sourceID string) ([]*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.SourceID == sourceID {
			result = append(result, &doc)
		}
	}
	sortDocsByURI(result)
	return result, nil
}

// ListDocumentsByCollection returns all documents in a collection,
// ordered by URI.
func (s *DocumentStore) ListDocumentsByCollection(_ context.Context, collectionID string) ([]*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.CollectionID == collectionID {
			result = append(result, &doc)
		}
	}
	sortDocsByURI(result)
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunks := range s.chunks {
		for i := range chunks {
			if chunks[i].ID == id {
				chunk := chunks[i]
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves chunks by ID, preserving the requested order.
// Missing IDs are skipped.
func (s *DocumentStore) GetChunks(ctx context.Context, ids []string) ([]*domain.Chunk, error) {
	result := make([]*domain.Chunk, 0, len(ids))
	for _, id := range ids {
		chunk, err := s.GetChunk(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, chunk)
	}
	return result, nil
}

// GetChunksByDocument returns the chunks of a document ordered by
// position.
func (s *DocumentStore) GetChunksByDocument(_ context.Context, documentID string) ([]*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := s.chunks[documentID]
	result := make([]*domain.Chunk, 0, len(chunks))
	for i := range chunks {
		chunk := chunks[i]
		result = append(result, &chunk)
	}
	return result, nil
}

// GetChunksByCollection returns all chunks in a collection.
func (s *DocumentStore) GetChunksByCollection(_ context.Context, collectionID string) ([]*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Chunk
	for docID, chunks := range s.chunks {
		doc, ok := s.documents[docID]
		if !ok || doc.CollectionID != collectionID {
			continue
		}
		for i := range chunks {
			chunk := chunks[i]
			result = append(result, &chunk)
		}
	}
	return result, nil
}

// UpdateChunkEmbedding stores the embedding vector for a chunk.
func (s *DocumentStore) UpdateChunkEmbedding(_ context.Context, chunkID string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for docID, chunks := range s.chunks {
		for i := range chunks {
			if chunks[i].ID == chunkID {
				chunks[i].Embedding = embedding
				s.chunks[docID] = chunks
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

// Close releases resources. A no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}

func sortDocsByURI(docs []*domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
}
