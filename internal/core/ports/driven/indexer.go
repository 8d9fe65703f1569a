package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// Indexer turns a normalised document of one document type into typed
// chunks. Each indexer knows the structure of its type: how sections
// are delimited, which parts are rules versus notes, how retrievable
// each chunk kind should be.
type Indexer interface {
	// DocType returns the document type this indexer handles.
	DocType() domain.DocType

	// Index splits the document into chunks. The returned chunks carry
	// type, section, references and retrievability but no embeddings;
	// post-processors and the embedding stage run afterwards.
	Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}

// IndexerRegistry routes documents to the indexer registered for their
// document type.
type IndexerRegistry interface {
	// Register adds an indexer for its document type, replacing any
	// previous registration.
	Register(indexer Indexer)

	// Index routes the document to the indexer for doc.DocType. When
	// no indexer matches, the generic indexer handles it.
	Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
