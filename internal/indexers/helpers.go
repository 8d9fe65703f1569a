package indexers

import (
	"strings"

	"github.com/google/uuid"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/danish"
)

// finish fills the derived fields every indexer needs on a chunk:
// identity, references extracted from the content, concepts and the
// base retrievability for its type. Fields an indexer already set are
// left alone.
func finish(doc *domain.Document, position int, chunk *domain.Chunk) {
	chunk.ID = uuid.New().String()
	chunk.DocumentID = doc.ID
	chunk.Position = position
	if chunk.Type == "" {
		chunk.Type = domain.ChunkTypeAfsnit
	}
	if chunk.LawRefs == nil {
		chunk.LawRefs = danish.ExtractLawRefs(chunk.Content)
	}
	if chunk.CaseRefs == nil {
		chunk.CaseRefs = danish.ExtractCaseRefs(chunk.Content)
	}
	if chunk.Concepts == nil {
		chunk.Concepts = danish.DetectConcepts(chunk.Content)
	}
	if chunk.Retrievability == 0 {
		chunk.Retrievability = chunk.Type.BaseRetrievability()
	}
	if chunk.LegalStatus == "" {
		chunk.LegalStatus = domain.LegalStatusGaeldende
	}
	if chunk.Metadata == nil {
		chunk.Metadata = make(map[string]any)
	}
}

// segmentFallback chunks a document without recognisable structure
// into plain afsnit chunks around the target size.
func segmentFallback(doc *domain.Document, settings domain.IndexingSettings) []domain.Chunk {
	target := settings.TargetChunkSize
	if target <= 0 {
		target = 1000
	}
	var chunks []domain.Chunk
	for _, seg := range packSegments(doc.Content, target) {
		chunk := domain.Chunk{Content: seg, Type: domain.ChunkTypeAfsnit}
		finish(doc, len(chunks), &chunk)
		chunks = append(chunks, chunk)
	}
	return chunks
}

// packSegments splits text on blank lines and packs the blocks into
// segments of at most maxSize bytes. A single block larger than
// maxSize is hard-split, preferring a sentence boundary near the cut.
func packSegments(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = 8000
	}

	blocks := strings.Split(text, "\n\n")
	var segments []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			segments = append(segments, s)
		}
		current.Reset()
	}

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if len(block) > maxSize {
			flush()
			for _, part := range hardSplit(block, maxSize) {
				segments = append(segments, part)
			}
			continue
		}

		if current.Len() > 0 && current.Len()+len(block)+2 > maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(block)
	}
	flush()

	return segments
}

// hardSplit cuts text into pieces of at most maxSize bytes, looking
// back up to 200 bytes for a sentence end so cuts land between
// sentences when possible.
func hardSplit(text string, maxSize int) []string {
	var parts []string
	for len(text) > maxSize {
		cut := maxSize
		if idx := strings.LastIndex(text[:cut], ". "); idx > maxSize-200 && idx > 0 {
			cut = idx + 1
		}
		// never cut inside a UTF-8 sequence
		for cut > 0 && !utf8Start(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxSize
		}
		parts = append(parts, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
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

// mergeRefs prepends a self reference to extracted references,
// deduplicating on the canonical string form.
func mergeRefs(self domain.LawRef, extracted []domain.LawRef) []domain.LawRef {
	refs := make([]domain.LawRef, 0, len(extracted)+1)
	refs = append(refs, self)
	seen := map[string]struct{}{self.String(): {}}
	for _, r := range extracted {
		key := r.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, r)
	}
	return refs
}
