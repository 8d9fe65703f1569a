package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// PostProcessor refines the chunks an indexer produced. Processors run
// in a configured order; each receives the chunks the previous one
// returned. A processor that has nothing to do returns its input
// unchanged.
type PostProcessor interface {
	// Name returns the processor's configuration name, e.g. "balancer".
	Name() string

	// Process transforms the chunks of one document.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs an ordered series of post-processors.
type PostProcessorPipeline interface {
	// Process runs all configured processors over the document and its
	// chunks in order. A processor error aborts the pipeline.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)

	// Names returns the configured processor names in execution order.
	Names() []string
}
