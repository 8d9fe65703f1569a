package indexers

import (
	"context"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/danish"
)

// Headings rulings use as standalone lines. Matched whole or by
// suffix: "Skattestyrelsens indstilling og begrundelse" ends in
// "begrundelse", "Landsskatterettens afgørelse" in "afgørelse".
var (
	rulingHeadWords = []string{
		"resumé", "spørgsmål", "svar", "hjemmel", "lovgrundlag",
		"referencer", "henvisninger",
	}
	rulingHeadSuffixes = []string{
		"begrundelse", "afgørelse", "opfattelse", "indstilling",
		"faktiske forhold", "oplysninger", "bemærkninger",
	}
	rulingConclusionMarks = []string{"afgørelse", "svar", "indstilling"}
)

// courts recognised in ruling headers, mapped to display form.
var instanser = map[string]string{
	"skatterådet":         "Skatterådet",
	"landsskatteretten":   "Landsskatteretten",
	"højesteret":          "Højesteret",
	"østre landsret":      "Østre Landsret",
	"vestre landsret":     "Vestre Landsret",
	"byretten":            "Byretten",
	"skattestyrelsen":     "Skattestyrelsen",
	"skatteankestyrelsen": "Skatteankestyrelsen",
}

// Afgoerelse indexes rulings and decisions. The resumé becomes the
// primary overview chunk, the deciding sections become rule chunks,
// and every chunk carries the case's own reference so a citation
// lookup finds all of it.
type Afgoerelse struct {
	settings domain.IndexingSettings
}

var _ driven.Indexer = (*Afgoerelse)(nil)

// NewAfgoerelse creates a ruling indexer.
func NewAfgoerelse(settings domain.IndexingSettings) *Afgoerelse {
	return &Afgoerelse{settings: settings}
}

// DocType returns the document type this indexer handles.
func (ix *Afgoerelse) DocType() domain.DocType {
	return domain.DocTypeAfgoerelse
}

// Index splits the ruling into its standard sections.
func (ix *Afgoerelse) Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	selfRef := rulingSelfRef(doc)
	instans := detectInstans(head(doc.Content, 600))

	var chunks []domain.Chunk
	add := func(content string, chunkType domain.ChunkType, section string, primary bool) {
		chunk := domain.Chunk{
			Content:   content,
			Type:      chunkType,
			Section:   section,
			Title:     doc.Title,
			IsPrimary: primary,
			CaseRefs:  dedupeStrings(append([]string{selfRef}, danish.ExtractCaseRefs(content)...)),
		}
		if selfRef == "" {
			chunk.CaseRefs = danish.ExtractCaseRefs(content)
		}
		finish(doc, len(chunks), &chunk)
		if instans != "" {
			chunk.Metadata["instans"] = instans
		}
		chunks = append(chunks, chunk)
	}

	for _, block := range splitRulingBlocks(doc.Content) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		heading := strings.ToLower(block.header)
		switch {
		case block.header == "":
			add(block.text, domain.ChunkTypeNote, "Hoved", false)
		case heading == "resumé":
			add(block.text, domain.ChunkTypeOversigt, block.header, true)
		case isConclusionHeading(heading):
			for _, seg := range packSegments(block.text, ix.maxBlockSize()) {
				add(seg, domain.ChunkTypeRegel, block.header, true)
			}
		default:
			for _, seg := range packSegments(block.text, ix.maxBlockSize()) {
				add(seg, domain.ChunkTypeAfsnit, block.header, false)
			}
		}
	}

	return chunks, nil
}

func (ix *Afgoerelse) maxBlockSize() int {
	if ix.settings.TargetChunkSize > 0 {
		return ix.settings.TargetChunkSize * 2
	}
	return 2000
}

// rulingSelfRef finds the case's own reference, preferring the formal
// identifier over the opening text.
func rulingSelfRef(doc *domain.Document) string {
	if refs := danish.ExtractCaseRefs(doc.Identifier); len(refs) > 0 {
		return refs[0]
	}
	if refs := danish.ExtractCaseRefs(head(doc.Content, 300)); len(refs) > 0 {
		return refs[0]
	}
	return ""
}

func detectInstans(text string) string {
	lower := strings.ToLower(text)
	for key, display := range instanser {
		if strings.Contains(lower, key) {
			return display
		}
	}
	return ""
}

func isConclusionHeading(lower string) bool {
	for _, mark := range rulingConclusionMarks {
		if strings.Contains(lower, mark) {
			return true
		}
	}
	return false
}

type rulingBlock struct {
	header string
	text   string
}

// splitRulingBlocks walks the ruling line by line and cuts at heading
// lines. The text before the first heading (case number, date, court)
// comes back with an empty header.
func splitRulingBlocks(content string) []rulingBlock {
	var blocks []rulingBlock
	var header string
	var buf []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text != "" {
			blocks = append(blocks, rulingBlock{header: header, text: text})
		}
		buf = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if isRulingHeading(line) {
			flush()
			header = strings.TrimSpace(strings.TrimLeft(line, "# "))
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return blocks
}

func isRulingHeading(line string) bool {
	l := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "# ")))
	if l == "" || len(l) > 90 || strings.HasSuffix(l, ".") {
		return false
	}
	for _, w := range rulingHeadWords {
		if l == w {
			return true
		}
	}
	for _, s := range rulingHeadSuffixes {
		if strings.HasSuffix(l, s) {
			return true
		}
	}
	return false
}
