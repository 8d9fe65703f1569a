package indexers

import (
	"context"
	"fmt"
	"sync"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/logger"
)

// Registry routes documents to the indexer registered for their
// document type, falling back to the generic indexer.
type Registry struct {
	mu       sync.RWMutex
	indexers map[domain.DocType]driven.Indexer
	fallback driven.Indexer
}

var _ driven.IndexerRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry with the given fallback.
func NewRegistry(fallback driven.Indexer) *Registry {
	return &Registry{
		indexers: make(map[domain.DocType]driven.Indexer),
		fallback: fallback,
	}
}

// NewDefaultRegistry creates a registry with all built-in indexers
// registered. llm may be nil; only the guidance and generic indexers
// use it.
func NewDefaultRegistry(settings domain.IndexingSettings, llm driven.LLMService) *Registry {
	r := NewRegistry(NewGenerisk(settings, llm))
	r.Register(NewLovtekst(settings))
	r.Register(NewJuridisk(settings))
	r.Register(NewVejledning(settings, llm))
	r.Register(NewCirkulaere(settings))
	r.Register(NewAfgoerelse(settings))
	return r
}

// Register adds an indexer for its document type, replacing any
// previous registration.
func (r *Registry) Register(indexer driven.Indexer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexers[indexer.DocType()] = indexer
}

// Index routes the document to the indexer for its type.
func (r *Registry) Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil: %w", domain.ErrInvalidInput)
	}

	r.mu.RLock()
	indexer, ok := r.indexers[doc.DocType]
	r.mu.RUnlock()

	if !ok {
		indexer = r.fallback
		if indexer == nil {
			return nil, fmt.Errorf("no indexer for document type %q: %w", doc.DocType, domain.ErrUnsupportedType)
		}
		logger.Debug("ingen indekser for dokumenttype %q, bruger generisk", doc.DocType)
	}

	return indexer.Index(ctx, doc)
}
