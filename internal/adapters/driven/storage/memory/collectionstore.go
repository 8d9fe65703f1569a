package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of
// driven.CollectionStore. Stats are computed from an attached
// DocumentStore when one is set.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string]domain.Collection
	docs        *DocumentStore
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string]domain.Collection),
	}
}

// WithDocumentStore attaches a document store used for Stats.
func (s *CollectionStore) WithDocumentStore(docs *DocumentStore) *CollectionStore {
	s.docs = docs
	return s
}

// Save stores or updates a collection.
func (s *CollectionStore) Save(_ context.Context, collection *domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection.ID] = *collection
	return nil
}

// GetByID retrieves a collection by ID.
func (s *CollectionStore) GetByID(_ context.Context, id string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	collection, ok := s.collections[id]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}
	return &collection, nil
}

// GetByName retrieves a collection by name.
func (s *CollectionStore) GetByName(_ context.Context, name string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.collections {
		collection := s.collections[id]
		if collection.Name == name {
			return &collection, nil
		}
	}
	return nil, domain.ErrCollectionNotFound
}

// List returns all collections, ordered by name.
func (s *CollectionStore) List(_ context.Context) ([]*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*domain.Collection, 0, len(s.collections))
	for id := range s.collections {
		collection := s.collections[id]
		result = append(result, &collection)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Delete removes a collection.
func (s *CollectionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[id]; !ok {
		return domain.ErrCollectionNotFound
	}
	delete(s.collections, id)
	return nil
}

// Stats summarises the contents of a collection.
func (s *CollectionStore) Stats(ctx context.Context, id string) (*domain.CollectionStats, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	stats := &domain.CollectionStats{
		CollectionID:  id,
		ByDocType:     make(map[domain.DocType]int),
		ByChunkType:   make(map[domain.ChunkType]int),
		ByLegalStatus: make(map[domain.LegalStatus]int),
	}
	if s.docs == nil {
		return stats, nil
	}

	docs, err := s.docs.ListDocumentsByCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	stats.Documents = len(docs)
	for _, doc := range docs {
		stats.ByDocType[doc.DocType]++
	}

	chunks, err := s.docs.GetChunksByCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	stats.Chunks = len(chunks)
	for _, chunk := range chunks {
		stats.ByChunkType[chunk.Type]++
		stats.ByLegalStatus[chunk.LegalStatus]++
		if len(chunk.Embedding) > 0 {
			stats.Embedded++
		}
	}

	return stats, nil
}
