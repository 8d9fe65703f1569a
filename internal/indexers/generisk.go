package indexers

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Generisk is the fallback indexer for documents no specific indexer
// claims. With LLM chunking enabled the model proposes typed chunks;
// otherwise content splits into plain afsnit chunks around the target
// size.
type Generisk struct {
	settings domain.IndexingSettings
	llm      driven.LLMService
}

var _ driven.Indexer = (*Generisk)(nil)

// NewGenerisk creates the fallback indexer. llm may be nil.
func NewGenerisk(settings domain.IndexingSettings, llm driven.LLMService) *Generisk {
	return &Generisk{settings: settings, llm: llm}
}

// DocType returns the document type this indexer handles.
func (ix *Generisk) DocType() domain.DocType {
	return domain.DocTypeGenerisk
}

// Index chunks the document.
func (ix *Generisk) Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if ix.llm != nil && ix.settings.LLMChunking {
		var chunks []domain.Chunk
		ok := true
		for _, segment := range packSegments(doc.Content, ix.settings.MaxSegmentSize) {
			chunks, ok = llmExtract(ctx, ix.llm, doc, segment, chunks)
			if !ok {
				break
			}
		}
		if ok && len(chunks) > 0 {
			return chunks, nil
		}
	}
	return segmentFallback(doc, ix.settings), nil
}
