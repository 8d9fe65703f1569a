// Package validator provides the final pipeline processor. It drops
// empty chunks and repairs missing or invalid fields so nothing
// malformed reaches storage or the embedding step.
package validator

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/logger"
)

// Processor validates and repairs chunks at the end of the pipeline.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a new validator processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "validator"
}

// Process drops chunks without content, fills missing identity
// fields, replaces invalid types, statuses and scores with safe
// defaults and renumbers positions sequentially.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	repaired := 0
	dropped := 0

	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			dropped++
			continue
		}

		if c.ID == "" {
			c.ID = uuid.New().String()
			repaired++
		}
		if c.DocumentID == "" {
			c.DocumentID = doc.ID
			repaired++
		}
		if !c.Type.IsValid() {
			c.Type = domain.ChunkTypeAfsnit
			repaired++
		}
		if !c.LegalStatus.IsValid() {
			c.LegalStatus = domain.LegalStatusGaeldende
			repaired++
		}
		if c.Retrievability <= 0 || c.Retrievability > 1 {
			c.Retrievability = c.Type.BaseRetrievability()
			repaired++
		}
		if c.Metadata == nil {
			c.Metadata = make(map[string]any)
		}

		out = append(out, c)
	}

	for i := range out {
		out[i].Position = i
	}

	if repaired > 0 || dropped > 0 {
		logger.Debug("validator: %d felter udbedret, %d tomme chunks fjernet i %s", repaired, dropped, doc.ID)
	}

	return out, nil
}
