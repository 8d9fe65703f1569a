package indexers

import (
	"context"
	"regexp"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/danish"
)

var (
	// Numbered points at line starts: "12. Efter lovens § 9..."
	cirkPointRe = regexp.MustCompile(`(?m)^(\d{1,3})\.\s`)

	// "Til § 9" commentary headers tie points to the law they explain.
	cirkTilRe = regexp.MustCompile(`(?m)^Til\s+§\s*(\d+(?:\s?[A-Za-z])?)\s*$`)
)

// Cirkulaere indexes circulars: instructions from the ministry to the
// administration, structured as numbered points, often grouped under
// "Til § n" headers that tie the commentary to a law paragraph.
type Cirkulaere struct {
	settings domain.IndexingSettings
}

var _ driven.Indexer = (*Cirkulaere)(nil)

// NewCirkulaere creates a circular indexer.
func NewCirkulaere(settings domain.IndexingSettings) *Cirkulaere {
	return &Cirkulaere{settings: settings}
}

// DocType returns the document type this indexer handles.
func (ix *Cirkulaere) DocType() domain.DocType {
	return domain.DocTypeCirkulaere
}

// Index splits the circular into point chunks.
func (ix *Cirkulaere) Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	law := doc.PrimaryLaw()
	if law == "" {
		if laws := danish.DetectLaws(doc.Title + "\n" + head(doc.Content, 500)); len(laws) > 0 {
			law = laws[0]
		}
	}

	points := cirkPointRe.FindAllStringSubmatchIndex(doc.Content, -1)
	if len(points) == 0 {
		return segmentFallback(doc, ix.settings), nil
	}

	tilMarks := cirkTilRe.FindAllStringSubmatchIndex(doc.Content, -1)

	var chunks []domain.Chunk

	preEnd := points[0][0]
	if len(tilMarks) > 0 && tilMarks[0][0] < preEnd {
		preEnd = tilMarks[0][0]
	}
	if pre := strings.TrimSpace(doc.Content[:preEnd]); len(pre) >= 80 {
		chunk := domain.Chunk{
			Content: pre,
			Type:    domain.ChunkTypeNote,
			Section: "Indledning",
		}
		finish(doc, len(chunks), &chunk)
		chunks = append(chunks, chunk)
	}

	for i, p := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start, end := p[0], len(doc.Content)
		if i+1 < len(points) {
			end = points[i+1][0]
		}
		// A "Til §" header between two points belongs to the next
		// point's context, not this point's text.
		for _, m := range tilMarks {
			if m[0] > start && m[0] < end {
				end = m[0]
				break
			}
		}
		body := strings.TrimSpace(doc.Content[start:end])
		number := doc.Content[p[2]:p[3]]

		chunk := domain.Chunk{
			Content:   body,
			Type:      domain.ChunkTypeRegel,
			Section:   "pkt. " + number,
			IsPrimary: true,
		}
		if paragraph := tilParagraphFor(doc.Content, tilMarks, start); paragraph != "" {
			chunk.Subsection = "Til § " + paragraph
			self := domain.LawRef{Law: law, Paragraph: paragraph}
			chunk.LawRefs = mergeRefs(self, danish.ExtractLawRefs(body))
		}
		finish(doc, len(chunks), &chunk)
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// tilParagraphFor returns the paragraph of the closest "Til § n"
// header above pos, or "".
func tilParagraphFor(content string, marks [][]int, pos int) string {
	paragraph := ""
	for _, m := range marks {
		if m[0] > pos {
			break
		}
		paragraph = canonicalParagraph(content[m[2]:m[3]])
	}
	return paragraph
}
