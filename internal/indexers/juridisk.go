package indexers

import (
	"context"
	"regexp"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/danish"
	"github.com/lovbase/paragraf/internal/logger"
)

var (
	// "C.A.4.3.1.1 Normalfradraget" heading lines, with or without
	// markdown heading marks.
	jvSectionHeadRe = regexp.MustCompile(`(?m)^#{0,6}\s*([A-Z]\.[A-Z](?:\.\d+)*)\s+(\S.*)$`)

	// The standard block headers the juridiske vejledning uses inside
	// a section.
	jvBlockHeadRe = regexp.MustCompile(`(?mi)^#{0,6}\s*(Regel|Definition(?:er)?|Eksempler?|Undtagelser?|Se også|Bemærk|Indhold|Resumé|Oversigt over .+?)\s*:?\s*$`)
)

// jvThemes maps the two-letter part of a section identifier to the
// broad theme of that part of the vejledning.
var jvThemes = map[string]string{
	"A.A": "processuelle regler",
	"A.B": "angivelse og afregning",
	"A.C": "kontrol og straf",
	"A.D": "opkrævning",
	"C.A": "personbeskatning",
	"C.B": "kapitalgevinstbeskatning",
	"C.C": "erhvervsbeskatning",
	"C.D": "selskabs-, fonds- og foreningsbeskatning",
	"C.E": "dødsbobeskatning",
	"C.F": "international beskatning",
	"C.G": "pensionsafkastbeskatning",
	"C.H": "fast ejendom",
	"D.A": "moms",
	"D.B": "lønsumsafgift",
	"E.A": "punktafgifter",
	"G.A": "inddrivelse",
}

// Juridisk indexes sections of den juridiske vejledning. Sections
// split on their identifiers; inside a section the standard block
// headers (Regel, Eksempel, Se også, ...) type the chunks, and rows of
// the afgørelses-oversigt become individual reference chunks so a case
// number lookup hits the right row.
type Juridisk struct {
	settings domain.IndexingSettings
}

var _ driven.Indexer = (*Juridisk)(nil)

// NewJuridisk creates a juridisk vejledning indexer.
func NewJuridisk(settings domain.IndexingSettings) *Juridisk {
	return &Juridisk{settings: settings}
}

// DocType returns the document type this indexer handles.
func (ix *Juridisk) DocType() domain.DocType {
	return domain.DocTypeJuridiskVejledning
}

// Index splits the document into typed chunks per section block.
func (ix *Juridisk) Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	heads := jvSectionHeadRe.FindAllStringSubmatchIndex(doc.Content, -1)
	if len(heads) == 0 {
		logger.Info("juridisk vejledning uden sektions-id, falder tilbage til afsnit: %s", doc.URI)
		return segmentFallback(doc, ix.settings), nil
	}

	var chunks []domain.Chunk
	for i, h := range heads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := len(doc.Content)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		sectionID := doc.Content[h[2]:h[3]]
		title := strings.TrimSpace(doc.Content[h[4]:h[5]])
		body := strings.TrimSpace(doc.Content[h[1]:end])

		chunks = ix.indexSection(doc, chunks, sectionID, title, body)
	}
	return chunks, nil
}

// indexSection appends the chunks of one section.
func (ix *Juridisk) indexSection(doc *domain.Document, chunks []domain.Chunk, sectionID, title, body string) []domain.Chunk {
	theme := jvThemes[themeKey(sectionID)]
	parent := parentSection(sectionID)

	add := func(chunk domain.Chunk) []domain.Chunk {
		chunk.Section = sectionID
		chunk.Title = title
		if theme != "" {
			chunk.Themes = []string{theme}
		}
		finish(doc, len(chunks), &chunk)
		if parent != "" {
			chunk.Metadata["parent_section"] = parent
		}
		return append(chunks, chunk)
	}

	for _, block := range splitJVBlocks(body) {
		blockType := jvBlockType(block.header)

		if blockType == domain.ChunkTypeOversigt {
			intro, rows := splitCaseRows(block.text)
			if strings.TrimSpace(intro) != "" {
				chunks = add(domain.Chunk{Content: intro, Type: domain.ChunkTypeOversigt})
			}
			for _, row := range rows {
				chunks = add(domain.Chunk{Content: row, Type: domain.ChunkTypeReference})
			}
			continue
		}

		for _, seg := range packSegments(block.text, ix.maxBlockSize()) {
			chunks = add(domain.Chunk{
				Content:   seg,
				Type:      blockType,
				IsPrimary: blockType == domain.ChunkTypeRegel,
			})
		}
	}
	return chunks
}

func (ix *Juridisk) maxBlockSize() int {
	if ix.settings.TargetChunkSize > 0 {
		return ix.settings.TargetChunkSize * 2
	}
	return 2000
}

type jvBlock struct {
	header string
	text   string
}

// splitJVBlocks cuts a section body at the standard block headers. The
// text before the first header, usually the section intro, comes back
// with an empty header.
func splitJVBlocks(body string) []jvBlock {
	marks := jvBlockHeadRe.FindAllStringSubmatchIndex(body, -1)
	if len(marks) == 0 {
		return []jvBlock{{text: body}}
	}

	var blocks []jvBlock
	if intro := strings.TrimSpace(body[:marks[0][0]]); intro != "" {
		blocks = append(blocks, jvBlock{text: intro})
	}
	for i, m := range marks {
		end := len(body)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		text := strings.TrimSpace(body[m[1]:end])
		if text == "" {
			continue
		}
		blocks = append(blocks, jvBlock{
			header: strings.TrimSpace(body[m[2]:m[3]]),
			text:   text,
		})
	}
	return blocks
}

func jvBlockType(header string) domain.ChunkType {
	h := strings.ToLower(header)
	switch {
	case h == "regel":
		return domain.ChunkTypeRegel
	case strings.HasPrefix(h, "definition"):
		return domain.ChunkTypeDefinition
	case strings.HasPrefix(h, "eksempel"):
		return domain.ChunkTypeEksempel
	case strings.HasPrefix(h, "undtagelse"):
		return domain.ChunkTypeUndtagelse
	case h == "se også", h == "indhold":
		return domain.ChunkTypeReference
	case h == "bemærk":
		return domain.ChunkTypeNote
	case strings.HasPrefix(h, "oversigt over"), h == "resumé":
		return domain.ChunkTypeOversigt
	default:
		return domain.ChunkTypeAfsnit
	}
}

// splitCaseRows separates an afgørelses-oversigt into its intro (table
// caption and headers) and one row string per cited case. A row is any
// line carrying a case reference; pipe-separated cells flatten to
// readable text.
func splitCaseRows(text string) (intro string, rows []string) {
	var introLines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(danish.ExtractCaseRefs(trimmed)) == 0 {
			introLines = append(introLines, trimmed)
			continue
		}
		rows = append(rows, flattenTableRow(trimmed))
	}
	return strings.Join(introLines, "\n"), rows
}

func flattenTableRow(line string) string {
	if !strings.Contains(line, "|") {
		return line
	}
	cells := strings.Split(line, "|")
	var parts []string
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, ". ")
}

func themeKey(sectionID string) string {
	if len(sectionID) >= 3 {
		return sectionID[:3]
	}
	return sectionID
}

// parentSection drops the last component of a section identifier:
// C.A.4.3 parents C.A.4.3.1. The two-letter roots have no parent.
func parentSection(sectionID string) string {
	idx := strings.LastIndex(sectionID, ".")
	if idx <= 1 {
		return ""
	}
	parent := sectionID[:idx]
	if len(parent) < 3 {
		return ""
	}
	return parent
}
