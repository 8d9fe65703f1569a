// Package refnorm provides a reference normalisation processor. It
// fills the normalised law and case reference fields that search
// filters and boosts match against.
package refnorm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// Processor writes canonical reference forms onto each chunk.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a new refnorm processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "refnorm"
}

// Process fills NormalisedLawRefs and NormalisedCaseRefs on every
// chunk. Law references use the display form of LawRef.String, case
// references the dotted form of Canonical. Both lists are deduped
// and overwrite whatever was there before.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		c := &chunks[i]

		if len(c.LawRefs) > 0 {
			laws := make([]string, 0, len(c.LawRefs))
			for _, r := range c.LawRefs {
				laws = append(laws, r.String())
			}
			c.NormalisedLawRefs = dedupe(laws)
		} else {
			c.NormalisedLawRefs = nil
		}

		if len(c.CaseRefs) > 0 {
			cases := make([]string, 0, len(c.CaseRefs))
			for _, r := range c.CaseRefs {
				cases = append(cases, Canonical(r))
			}
			c.NormalisedCaseRefs = dedupe(cases)
		} else {
			c.NormalisedCaseRefs = nil
		}
	}
	return chunks, nil
}

var (
	skmRe = regexp.MustCompile(`^SKM\.?\s?(\d{4})[.,]\s?(\d+)[.,]\s?([A-ZÆØÅ]{1,5})$`)
	tfsRe = regexp.MustCompile(`^TfS\.?\s?(\d{4})[.,]\s?(\d+)$`)
	ufrRe = regexp.MustCompile(`^(?:UfR|U)\.?\s?(\d{4})\.(\d+)(?:[.\s]([HØV]))?$`)
	lsrRe = regexp.MustCompile(`^LSRM\.?\s?(\d{4})[.,]\s?(\d+)$`)
)

// Canonical converts a case reference to its dotted canonical form,
// e.g. "SKM2023.123.SR" and "TfS 1999, 123" become "SKM.2023.123.SR"
// and "TfS.1999.123". Unrecognised references pass through trimmed,
// so queries can match stored values even for odd citations.
func Canonical(ref string) string {
	ref = strings.TrimSpace(ref)

	if m := skmRe.FindStringSubmatch(ref); m != nil {
		return fmt.Sprintf("SKM.%s.%s.%s", m[1], m[2], m[3])
	}
	if m := tfsRe.FindStringSubmatch(ref); m != nil {
		return fmt.Sprintf("TfS.%s.%s", m[1], m[2])
	}
	if m := ufrRe.FindStringSubmatch(ref); m != nil {
		if m[3] != "" {
			return fmt.Sprintf("U.%s.%s.%s", m[1], m[2], m[3])
		}
		return fmt.Sprintf("U.%s.%s", m[1], m[2])
	}
	if m := lsrRe.FindStringSubmatch(ref); m != nil {
		return fmt.Sprintf("LSRM.%s.%s", m[1], m[2])
	}
	return ref
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
