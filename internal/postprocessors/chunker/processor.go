// Package chunker provides a fixed-size fallback chunking processor.
package chunker

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits document content into fixed-size chunks when the
// indexer produced none. Documents that already have chunks pass
// through untouched, so the processor acts as a safety net for
// content no indexer could structure.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into plain afsnit chunks when
// no chunks exist yet. Existing chunks are returned unchanged.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) > 0 {
		return chunks, nil
	}
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	content := doc.Content
	contentLen := len(content)

	// Estimate number of chunks
	estimatedChunks := (contentLen / (p.chunkSize - p.overlap)) + 1
	out := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	start := 0

	for start < contentLen {
		end := start + p.chunkSize
		if end >= contentLen {
			end = contentLen
		} else {
			// never cut inside a UTF-8 sequence
			for end > start && !utf8.RuneStart(content[end]) {
				end--
			}
		}

		chunk := domain.Chunk{
			ID:             uuid.New().String(),
			DocumentID:     doc.ID,
			Content:        content[start:end],
			Position:       position,
			Type:           domain.ChunkTypeAfsnit,
			Retrievability: domain.ChunkTypeAfsnit.BaseRetrievability(),
			LegalStatus:    domain.LegalStatusGaeldende,
			Metadata:       make(map[string]any),
		}

		out = append(out, chunk)
		position++

		if end == contentLen {
			break
		}

		// Move start forward by (chunkSize - overlap)
		next := end - p.overlap
		for next > 0 && !utf8.RuneStart(content[next]) {
			next--
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return out, nil
}
