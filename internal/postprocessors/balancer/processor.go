// Package balancer provides a chunk size balancing processor. It
// merges undersized neighbours, splits oversized chunks at sentence
// boundaries and rescores retrievability afterwards.
package balancer

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// DefaultTargetSize is the default target chunk size in characters.
const DefaultTargetSize = 1000

// DefaultMinSize is the default size below which a chunk is merged
// into a neighbour from the same section.
const DefaultMinSize = 250

// Processor balances chunk sizes around a per-type target.
// It implements the PostProcessor interface.
type Processor struct {
	targetSize int
	minSize    int
}

// Option configures the balancer processor.
type Option func(*Processor)

// WithTargetSize sets the target chunk size in characters.
func WithTargetSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.targetSize = size
		}
	}
}

// WithMinSize sets the merge threshold in characters.
func WithMinSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.minSize = size
		}
	}
}

// New creates a new balancer processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		targetSize: DefaultTargetSize,
		minSize:    DefaultMinSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure the merge threshold stays below the target
	if p.minSize >= p.targetSize {
		p.minSize = p.targetSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "balancer"
}

// Process merges small chunks into same-section neighbours, splits
// chunks far above their type's target and renumbers positions. Every
// surviving chunk gets its retrievability recomputed, since merging
// and splitting change the signals the score depends on.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	out := p.splitLarge(p.mergeSmall(chunks))

	for i := range out {
		out[i].Position = i
		out[i].Retrievability = p.score(&out[i])
	}

	return out, nil
}

// typeFactor scales the target size per chunk type. Overview tables
// pack many short rows, references carry little text of their own,
// and rules lose meaning when cut short.
func typeFactor(t domain.ChunkType) float64 {
	switch t {
	case domain.ChunkTypeRegel:
		return 1.3
	case domain.ChunkTypeUndtagelse:
		return 1.2
	case domain.ChunkTypeOversigt:
		return 1.5
	case domain.ChunkTypeDefinition:
		return 0.8
	case domain.ChunkTypeEksempel:
		return 0.7
	case domain.ChunkTypeNote:
		return 0.6
	case domain.ChunkTypeReference:
		return 0.5
	default:
		return 1.0
	}
}

func (p *Processor) targetFor(t domain.ChunkType) int {
	return int(float64(p.targetSize) * typeFactor(t))
}

func (p *Processor) minFor(t domain.ChunkType) int {
	return int(float64(p.minSize) * typeFactor(t))
}

// mergeSmall folds undersized chunks into the preceding chunk when
// both sit in the same section and subsection and the merge stays
// under the target.
func (p *Processor) mergeSmall(chunks []domain.Chunk) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if len(out) > 0 && p.shouldMerge(&out[len(out)-1], &c) {
			mergeInto(&out[len(out)-1], &c)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (p *Processor) shouldMerge(prev, next *domain.Chunk) bool {
	if prev.Section != next.Section || prev.Subsection != next.Subsection {
		return false
	}
	small := len(next.Content) < p.minFor(next.Type) || len(prev.Content) < p.minFor(prev.Type)
	if !small {
		return false
	}
	merged := dominantType(prev.Type, next.Type)
	return len(prev.Content)+len(next.Content)+2 <= p.targetFor(merged)
}

// dominantType picks the type a merged chunk keeps. A typed chunk
// wins over plain afsnit; otherwise the earlier chunk wins.
func dominantType(a, b domain.ChunkType) domain.ChunkType {
	if a == domain.ChunkTypeAfsnit && b != domain.ChunkTypeAfsnit {
		return b
	}
	return a
}

// mergeInto absorbs next into prev. Reference and concept lists are
// unioned, the embedding is dropped because the content changed.
func mergeInto(prev, next *domain.Chunk) {
	prev.Content = prev.Content + "\n\n" + next.Content
	prev.Type = dominantType(prev.Type, next.Type)
	if prev.Title == "" {
		prev.Title = next.Title
	}
	prev.LawRefs = unionLawRefs(prev.LawRefs, next.LawRefs)
	prev.CaseRefs = unionStrings(prev.CaseRefs, next.CaseRefs)
	prev.NoteRefs = unionStrings(prev.NoteRefs, next.NoteRefs)
	prev.Concepts = unionStrings(prev.Concepts, next.Concepts)
	prev.Themes = unionStrings(prev.Themes, next.Themes)
	prev.NormalisedLawRefs = unionStrings(prev.NormalisedLawRefs, next.NormalisedLawRefs)
	prev.NormalisedCaseRefs = unionStrings(prev.NormalisedCaseRefs, next.NormalisedCaseRefs)
	prev.IsPrimary = prev.IsPrimary || next.IsPrimary
	if prev.LegalStatus == domain.LegalStatusGaeldende && next.LegalStatus != "" {
		prev.LegalStatus = next.LegalStatus
	}
	if prev.ExpiryDate == "" {
		prev.ExpiryDate = next.ExpiryDate
	}
	prev.Embedding = nil
	if prev.Metadata == nil {
		prev.Metadata = make(map[string]any)
	}
	for k, v := range next.Metadata {
		if _, ok := prev.Metadata[k]; !ok {
			prev.Metadata[k] = v
		}
	}
}

// splitLarge cuts chunks at more than twice their type's target into
// sentence-aligned pieces around the target. Pieces after the first
// get fresh IDs and a copy of the metadata.
func (p *Processor) splitLarge(chunks []domain.Chunk) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		target := p.targetFor(c.Type)
		if len(c.Content) <= 2*target {
			out = append(out, c)
			continue
		}

		parts := packSentences(c.Content, target)
		if len(parts) < 2 {
			out = append(out, c)
			continue
		}

		for i, part := range parts {
			piece := c
			piece.Content = part
			piece.Embedding = nil
			if i > 0 {
				piece.ID = uuid.New().String()
				piece.Metadata = copyMetadata(c.Metadata)
			}
			out = append(out, piece)
		}
	}
	return out
}

// abbrevRe masks the trailing dot of Danish abbreviations common in
// legal text so sentence splitting ignores them.
var abbrevRe = regexp.MustCompile(`(?i)\b(bl\.a|f\.eks|m\.v|t\.o\.m|jf|stk|nr|pkt|evt|ca|hhv|mv|inkl|kr|pr)\.`)

var sentenceEndRe = regexp.MustCompile(`[.!?]\s+`)

// splitSentences splits text into sentences, keeping terminators and
// protecting abbreviations like "jf." and "stk." from false splits.
func splitSentences(text string) []string {
	masked := abbrevRe.ReplaceAllString(text, "$1\x00")

	var out []string
	last := 0
	for _, m := range sentenceEndRe.FindAllStringIndex(masked, -1) {
		out = append(out, masked[last:m[0]+1])
		last = m[1]
	}
	if last < len(masked) {
		out = append(out, masked[last:])
	}

	for i := range out {
		out[i] = strings.ReplaceAll(out[i], "\x00", ".")
	}
	return out
}

// packSentences groups sentences into parts of at most target bytes.
// A single sentence above the target stays whole.
func packSentences(text string, target int) []string {
	sentences := splitSentences(text)

	var parts []string
	var b strings.Builder
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if b.Len() > 0 && b.Len()+len(s)+1 > target {
			parts = append(parts, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

var definitionRe = regexp.MustCompile(`(?i)\b(forstås ved|forstås|defineres som|betragtes som|anses for)\b`)

// score recomputes a chunk's retrievability from its balanced state.
// The base is 0.5; length near the type's target, references, tagged
// concepts, the chunk type and definition phrasing each add to it.
func (p *Processor) score(c *domain.Chunk) float64 {
	score := 0.5

	length := len(c.Content)
	optimal := p.targetFor(c.Type)
	switch {
	case length >= optimal/2 && length <= optimal*2:
		score += 0.2
	case length < optimal/4 || length > optimal*3:
		score -= 0.1
	}

	score += refBonus(len(c.LawRefs), 0.05, 0.2)
	score += refBonus(len(c.CaseRefs), 0.05, 0.15)
	score += refBonus(len(c.Concepts), 0.03, 0.15)

	switch c.Type {
	case domain.ChunkTypeRegel, domain.ChunkTypeDefinition:
		score += 0.15
	case domain.ChunkTypeEksempel, domain.ChunkTypeUndtagelse:
		score += 0.1
	}

	if definitionRe.MatchString(c.Content) {
		score += 0.1
	}

	if score < 0.1 {
		score = 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func refBonus(count int, per, limit float64) float64 {
	b := float64(count) * per
	if b > limit {
		return limit
	}
	return b
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func unionLawRefs(a, b []domain.LawRef) []domain.LawRef {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]domain.LawRef, 0, len(a)+len(b))
	for _, r := range a {
		if _, ok := seen[r.String()]; !ok {
			seen[r.String()] = struct{}{}
			out = append(out, r)
		}
	}
	for _, r := range b {
		if _, ok := seen[r.String()]; !ok {
			seen[r.String()] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
