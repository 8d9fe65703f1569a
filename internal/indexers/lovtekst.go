package indexers

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/danish"
	"github.com/lovbase/paragraf/internal/logger"
)

var (
	// "§ 9." or "§ 9 C." or "§ 33 a." at the start of a line.
	paragraphHeadRe = regexp.MustCompile(`(?m)^§\s*(\d+(?:\s?[A-Za-z])?)\s*\.`)

	// "Stk. 2." at the start of a line. The text before the first
	// stykke marker is stk. 1.
	stykkeHeadRe = regexp.MustCompile(`(?m)^Stk\.\s*(\d+)\s*\.`)

	// Chapter headings; the following line carries the chapter title.
	chapterHeadRe = regexp.MustCompile(`(?m)^(?:Kapitel|Afsnit)\s+[0-9IVXLC]+\s*[A-Za-z]?\s*$`)

	// Endnote markers attach directly to the preceding word or
	// punctuation, which separates them from "1)" list items at line
	// starts.
	noteMarkerRe = regexp.MustCompile(`[\p{L}.,](\d{1,3})\)`)
)

// Markers that flag a stykke as stating an exception.
var undtagelseMarkers = []string{
	"finder ikke anvendelse",
	"gælder dog ikke",
	"gælder ikke for",
	"er undtaget",
	"undtages",
}

// Lovtekst indexes Danish statute text. One chunk per paragraph (§);
// paragraphs that outgrow the target size split per stykke, grouping
// small neighbouring stykker back together.
type Lovtekst struct {
	settings domain.IndexingSettings
}

var _ driven.Indexer = (*Lovtekst)(nil)

// NewLovtekst creates a statute indexer.
func NewLovtekst(settings domain.IndexingSettings) *Lovtekst {
	return &Lovtekst{settings: settings}
}

// DocType returns the document type this indexer handles.
func (ix *Lovtekst) DocType() domain.DocType {
	return domain.DocTypeLovtekst
}

// Index splits the statute into paragraph chunks.
func (ix *Lovtekst) Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	law := doc.PrimaryLaw()
	if law == "" {
		if laws := danish.DetectLaws(doc.Title + "\n" + head(doc.Content, 500)); len(laws) > 0 {
			law = laws[0]
		}
	}

	heads := paragraphHeadRe.FindAllStringSubmatchIndex(doc.Content, -1)
	if len(heads) == 0 {
		logger.Info("lovtekst uden paragraftegn, falder tilbage til afsnit: %s", doc.URI)
		return segmentFallback(doc, ix.settings), nil
	}

	chapters := chapterMarks(doc.Content)

	var chunks []domain.Chunk

	// Preamble before the first paragraph: title lines and the
	// bekendtgørelse formula. Kept as a note so the document metadata
	// stays searchable without outranking the rules.
	if pre := strings.TrimSpace(doc.Content[:heads[0][0]]); len(pre) >= 80 {
		chunk := domain.Chunk{
			Content: pre,
			Type:    domain.ChunkTypeNote,
			Section: "Indledning",
		}
		finish(doc, len(chunks), &chunk)
		chunks = append(chunks, chunk)
	}

	for i, h := range heads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start, end := h[0], len(doc.Content)
		if i+1 < len(heads) {
			end = heads[i+1][0]
		}
		// A chapter heading between two paragraphs belongs to the next
		// paragraph's context, not this paragraph's text.
		for _, cm := range chapters {
			if cm.pos > start && cm.pos < end {
				end = cm.pos
				break
			}
		}
		body := strings.TrimSpace(doc.Content[start:end])
		paragraph := canonicalParagraph(doc.Content[h[2]:h[3]])
		section := "§ " + paragraph
		title := chapterFor(chapters, start)

		if len(body) <= ix.maxParagraphSize() {
			chunk := ix.paragraphChunk(law, paragraph, body)
			chunk.Section = section
			chunk.Title = title
			finish(doc, len(chunks), &chunk)
			chunks = append(chunks, chunk)
			continue
		}

		for _, group := range groupStykker(splitStykker(body), ix.settings.TargetChunkSize) {
			chunk := ix.paragraphChunk(law, paragraph, group.text)
			chunk.Section = section
			chunk.Subsection = group.label
			chunk.Title = title
			if group.firstStk != "" {
				chunk.LawRefs[0].Stk = group.firstStk
			}
			finish(doc, len(chunks), &chunk)
			chunks = append(chunks, chunk)
		}
	}

	return chunks, nil
}

// paragraphChunk builds the common parts of a statute chunk: type
// classification, the self reference and endnote markers.
func (ix *Lovtekst) paragraphChunk(law, paragraph, body string) domain.Chunk {
	chunk := domain.Chunk{
		Content:   body,
		Type:      classifyLawText(body),
		IsPrimary: true,
		NoteRefs:  extractNoteRefs(body),
	}

	self := domain.LawRef{Law: law, Paragraph: paragraph}
	chunk.LawRefs = mergeRefs(self, danish.ExtractLawRefs(body))

	if strings.Contains(strings.ToLower(body), "(ophævet)") {
		chunk.LegalStatus = domain.LegalStatusOphaevet
	}
	return chunk
}

func (ix *Lovtekst) maxParagraphSize() int {
	size := ix.settings.TargetChunkSize
	if size <= 0 {
		size = 1000
	}
	return size * 2
}

// classifyLawText types a statute chunk. Only the opening counts: a
// chunk that leads with exception wording is an exception, while a
// marker buried in a later stykke of a pooled paragraph does not flip
// the whole paragraph.
func classifyLawText(body string) domain.ChunkType {
	lower := strings.ToLower(head(body, 250))
	for _, marker := range undtagelseMarkers {
		if strings.Contains(lower, marker) {
			return domain.ChunkTypeUndtagelse
		}
	}
	return domain.ChunkTypeRegel
}

func extractNoteRefs(text string) []string {
	var notes []string
	for _, m := range noteMarkerRe.FindAllStringSubmatch(text, -1) {
		notes = append(notes, m[1])
	}
	return dedupeStrings(notes)
}

// canonicalParagraph upper-cases a letter suffix and separates it from
// the number: "33 a" and "9C" both canonicalise the way the literature
// cites them, "33 A" and "9 C".
func canonicalParagraph(p string) string {
	p = strings.TrimSpace(p)
	runes := []rune(p)
	if len(runes) < 2 {
		return p
	}
	last := runes[len(runes)-1]
	if !unicode.IsLetter(last) {
		return p
	}
	num := strings.TrimSpace(string(runes[:len(runes)-1]))
	return num + " " + strings.ToUpper(string(last))
}

type chapterMark struct {
	pos   int
	title string
}

func chapterMarks(content string) []chapterMark {
	var marks []chapterMark
	for _, m := range chapterHeadRe.FindAllStringIndex(content, -1) {
		marks = append(marks, chapterMark{pos: m[0], title: firstLineAfter(content, m[1])})
	}
	return marks
}

func chapterFor(marks []chapterMark, pos int) string {
	title := ""
	for _, m := range marks {
		if m.pos > pos {
			break
		}
		title = m.title
	}
	return title
}

func firstLineAfter(content string, pos int) string {
	rest := content[pos:]
	for _, line := range strings.Split(rest, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type stykke struct {
	number string
	text   string
}

// splitStykker cuts a paragraph body into stykker. The part before the
// first "Stk. 2." marker is stk. 1 and carries the paragraph head.
func splitStykker(body string) []stykke {
	marks := stykkeHeadRe.FindAllStringSubmatchIndex(body, -1)
	if len(marks) == 0 {
		return []stykke{{number: "1", text: body}}
	}

	var out []stykke
	if first := strings.TrimSpace(body[:marks[0][0]]); first != "" {
		out = append(out, stykke{number: "1", text: first})
	}
	for i, m := range marks {
		end := len(body)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		out = append(out, stykke{
			number: body[m[2]:m[3]],
			text:   strings.TrimSpace(body[m[0]:end]),
		})
	}
	return out
}

type stykkeGroup struct {
	label    string
	firstStk string
	text     string
}

// groupStykker packs consecutive stykker into chunks of roughly
// targetSize, labelling each group with the stykke range it covers.
func groupStykker(stykker []stykke, targetSize int) []stykkeGroup {
	if targetSize <= 0 {
		targetSize = 1000
	}

	var groups []stykkeGroup
	var buf []stykke
	size := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		texts := make([]string, len(buf))
		for i, s := range buf {
			texts[i] = s.text
		}
		label := "Stk. " + buf[0].number
		if len(buf) > 1 {
			label += "-" + buf[len(buf)-1].number
		}
		groups = append(groups, stykkeGroup{
			label:    label,
			firstStk: buf[0].number,
			text:     strings.Join(texts, "\n"),
		})
		buf = buf[:0]
		size = 0
	}

	for _, s := range stykker {
		if size > 0 && size+len(s.text) > targetSize {
			flush()
		}
		buf = append(buf, s)
		size += len(s.text)
	}
	flush()

	return groups
}
