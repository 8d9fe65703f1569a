package indexers

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/logger"
)

// llmExtract asks the model to chunk one segment. Returns the chunks
// appended to in, and false when the model is unavailable or the call
// fails so the caller can fall back to rule-based splitting. Proposed
// types outside the known set degrade to afsnit rather than erroring:
// model output is advisory.
func llmExtract(ctx context.Context, llm driven.LLMService, doc *domain.Document, segment string, in []domain.Chunk) ([]domain.Chunk, bool) {
	proposals, err := llm.ExtractChunks(ctx, string(doc.DocType), segment)
	if err != nil {
		logger.Warn("llm-chunking fejlede for %s: %v", doc.URI, err)
		return in, false
	}
	if len(proposals) == 0 {
		return in, false
	}

	for _, p := range proposals {
		if p.Content == "" {
			continue
		}
		chunkType := domain.ChunkType(p.Type)
		if !chunkType.IsValid() {
			chunkType = domain.ChunkTypeAfsnit
		}
		chunk := domain.Chunk{
			Content:   p.Content,
			Type:      chunkType,
			Section:   p.Section,
			Title:     p.Title,
			IsPrimary: chunkType == domain.ChunkTypeRegel,
		}
		if len(p.Concepts) > 0 {
			chunk.Concepts = dedupeStrings(p.Concepts)
		}
		finish(doc, len(in), &chunk)
		in = append(in, chunk)
	}
	return in, true
}
