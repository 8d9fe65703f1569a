// Package crossref provides a cross-reference processor. It links
// chunks of one document that share legal context, so search can pull
// in related rules, examples and rulings alongside a hit.
package crossref

import (
	"context"
	"sort"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// DefaultMaxLinks is the default number of cross-references kept per
// chunk.
const DefaultMaxLinks = 5

// Processor computes weighted cross-references between the chunks of
// a document. It implements the PostProcessor interface.
type Processor struct {
	maxLinks int
}

// Option configures the crossref processor.
type Option func(*Processor)

// WithMaxLinks sets how many links each chunk keeps.
func WithMaxLinks(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxLinks = n
		}
	}
}

// New creates a new crossref processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxLinks: DefaultMaxLinks}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "crossref"
}

// chunkInfo caches the match keys of one chunk.
type chunkInfo struct {
	section    string
	isExample  bool
	primaryLaw string
	laws       map[string]struct{}
	cases      map[string]struct{}
	notes      map[string]struct{}
	concepts   map[string]struct{}
}

// Process links every chunk to the strongest related chunks in the
// same document. Each pair gets at most one relation, the strongest
// that applies, and each chunk keeps its top links by weight.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) < 2 {
		return chunks, nil
	}

	infos := make([]chunkInfo, len(chunks))
	for i := range chunks {
		infos[i] = buildInfo(&chunks[i])
	}

	type candidate struct {
		target   int
		relation domain.Relation
		weight   int
	}

	for i := range chunks {
		var cands []candidate
		for j := range chunks {
			if i == j {
				continue
			}
			rel, weight, ok := relate(&infos[i], &infos[j])
			if !ok {
				continue
			}
			cands = append(cands, candidate{target: j, relation: rel, weight: weight})
		}
		if len(cands) == 0 {
			chunks[i].CrossRefs = nil
			continue
		}

		sort.SliceStable(cands, func(a, b int) bool {
			if cands[a].weight != cands[b].weight {
				return cands[a].weight > cands[b].weight
			}
			return cands[a].target < cands[b].target
		})
		if len(cands) > p.maxLinks {
			cands = cands[:p.maxLinks]
		}

		refs := make([]domain.CrossRef, 0, len(cands))
		for _, c := range cands {
			refs = append(refs, domain.CrossRef{
				ChunkID:  chunks[c.target].ID,
				Relation: c.relation,
				Weight:   c.weight,
			})
		}
		chunks[i].CrossRefs = refs
	}

	return chunks, nil
}

func buildInfo(c *domain.Chunk) chunkInfo {
	info := chunkInfo{
		section:   c.Section,
		isExample: c.Type == domain.ChunkTypeEksempel,
		laws:      make(map[string]struct{}, len(c.LawRefs)),
		cases:     make(map[string]struct{}, len(c.CaseRefs)),
		notes:     make(map[string]struct{}, len(c.NoteRefs)),
		concepts:  make(map[string]struct{}, len(c.Concepts)),
	}

	// Law matching works at paragraph granularity: citing different
	// stykker of the same paragraph still relates the chunks.
	for _, r := range c.LawRefs {
		info.laws[lawKey(r)] = struct{}{}
	}
	if len(c.LawRefs) > 0 {
		info.primaryLaw = lawKey(c.LawRefs[0])
	}
	for _, r := range c.CaseRefs {
		info.cases[r] = struct{}{}
	}
	for _, n := range c.NoteRefs {
		info.notes[n] = struct{}{}
	}
	for _, k := range c.Concepts {
		info.concepts[k] = struct{}{}
	}
	return info
}

func lawKey(r domain.LawRef) string {
	return domain.LawRef{Law: r.Law, Paragraph: r.Paragraph}.String()
}

// relate picks the strongest relation from a toward b. Example links
// are tried first: within one law text every chunk cites the same
// paragraph, and the example label is the more useful signal there.
func relate(a, b *chunkInfo) (domain.Relation, int, bool) {
	if a.section != "" && a.section == b.section && a.isExample != b.isExample {
		if b.isExample {
			return domain.RelationHasExample, 5, true
		}
		return domain.RelationExampleOf, 5, true
	}

	if a.primaryLaw != "" && a.primaryLaw == b.primaryLaw {
		return domain.RelationCommonPrimaryLaw, 7, true
	}

	if intersects(a.cases, b.cases) {
		return domain.RelationCommonCaseRef, 5, true
	}
	if intersects(a.laws, b.laws) {
		return domain.RelationCommonLawRef, 5, true
	}
	if intersects(a.notes, b.notes) {
		return domain.RelationRelated, 4, true
	}
	if a.section != "" && a.section == b.section {
		return domain.RelationSameSection, 3, true
	}
	if intersects(a.concepts, b.concepts) {
		return domain.RelationCommonConcept, 2, true
	}

	return "", 0, false
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
