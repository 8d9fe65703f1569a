// Package legalstatus provides a processor that detects repealed and
// temporary rules from the chunk text and stamps the legal status
// search uses to rank current law above expired law.
package legalstatus

import (
	"context"
	"regexp"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
)

var (
	ophaevetRe = regexp.MustCompile(`(?i)\(ophævet\)|er ophævet|blev ophævet|ophæves`)

	historiskRe = regexp.MustCompile(`(?i)tidligere gældende|historisk affattelse|dagældende`)

	midlertidigRe = regexp.MustCompile(`(?i)midlertidig|tidsbegrænset|forsøgsordning|overgangsordning`)

	// "gælder til og med 31. december 2026" and the like.
	expiryRe = regexp.MustCompile(`(?i)(?:til og med|indtil|udløber|ophører)(?:\s+den)?\s+(\d{1,2}\.?\s*(?:januar|februar|marts|april|maj|juni|juli|august|september|oktober|november|december)\s+\d{4})`)

	// "gælder for indkomstårene 2020-2026" keeps the last year.
	yearRangeRe = regexp.MustCompile(`(?i)indkomstårene\s+\d{4}\s*-\s*(\d{4})`)
)

// Processor classifies the legal status of each chunk.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a new legalstatus processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "legalstatus"
}

// Process marks chunks whose text signals a repealed, historical or
// temporary rule. A status an indexer already set is never weakened,
// but temporary rules still get their expiry date extracted when it
// is missing.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		c := &chunks[i]

		if c.LegalStatus == "" {
			c.LegalStatus = domain.LegalStatusGaeldende
		}

		if c.LegalStatus == domain.LegalStatusGaeldende {
			switch {
			case ophaevetRe.MatchString(c.Content):
				c.LegalStatus = domain.LegalStatusOphaevet
			case historiskRe.MatchString(c.Content):
				c.LegalStatus = domain.LegalStatusHistorisk
			case midlertidigRe.MatchString(c.Content):
				c.LegalStatus = domain.LegalStatusMidlertidig
			}
		}

		if c.LegalStatus == domain.LegalStatusMidlertidig && c.ExpiryDate == "" {
			c.ExpiryDate = extractExpiry(c.Content)
		}
	}
	return chunks, nil
}

// extractExpiry pulls an expiry date out of the text, as written.
func extractExpiry(text string) string {
	if m := expiryRe.FindStringSubmatch(text); m != nil {
		return strings.Join(strings.Fields(m[1]), " ")
	}
	if m := yearRangeRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
