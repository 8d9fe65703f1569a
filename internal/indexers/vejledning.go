package indexers

import (
	"context"
	"regexp"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

var (
	// Markdown headings and "3.2 Overskrift" numbered headings.
	vejledningHeadRe = regexp.MustCompile(`(?m)^(?:#{1,6}\s+(.+)|(\d+(?:\.\d+)*)[.)]?\s+([A-ZÆØÅ].{0,80}))$`)

	eksempelStartRe = regexp.MustCompile(`(?i)^eksempel\b`)
)

// Vejledning indexes ordinary guidance documents. Headings delimit
// sections; blocks that open with "Eksempel" type as examples. When
// LLM chunking is enabled the model proposes the chunks instead, and
// heading-based splitting is the fallback.
type Vejledning struct {
	settings domain.IndexingSettings
	llm      driven.LLMService
}

var _ driven.Indexer = (*Vejledning)(nil)

// NewVejledning creates a guidance indexer. llm may be nil.
func NewVejledning(settings domain.IndexingSettings, llm driven.LLMService) *Vejledning {
	return &Vejledning{settings: settings, llm: llm}
}

// DocType returns the document type this indexer handles.
func (ix *Vejledning) DocType() domain.DocType {
	return domain.DocTypeVejledning
}

// Index splits the guidance document into section chunks.
func (ix *Vejledning) Index(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if ix.llm != nil && ix.settings.LLMChunking {
		if chunks, ok := ix.llmIndex(ctx, doc); ok {
			return chunks, nil
		}
	}
	return ix.ruleIndex(ctx, doc)
}

func (ix *Vejledning) llmIndex(ctx context.Context, doc *domain.Document) ([]domain.Chunk, bool) {
	var chunks []domain.Chunk
	for _, segment := range packSegments(doc.Content, ix.settings.MaxSegmentSize) {
		var ok bool
		chunks, ok = llmExtract(ctx, ix.llm, doc, segment, chunks)
		if !ok {
			return nil, false
		}
	}
	return chunks, len(chunks) > 0
}

func (ix *Vejledning) ruleIndex(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	target := ix.settings.TargetChunkSize
	if target <= 0 {
		target = 1000
	}

	var chunks []domain.Chunk
	for _, sec := range splitOnHeadings(doc.Content) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, seg := range packSegments(sec.text, target*2) {
			chunk := domain.Chunk{
				Content: seg,
				Type:    domain.ChunkTypeAfsnit,
				Section: sec.number,
				Title:   sec.title,
			}
			if eksempelStartRe.MatchString(seg) {
				chunk.Type = domain.ChunkTypeEksempel
			}
			finish(doc, len(chunks), &chunk)
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

type headingSection struct {
	number string
	title  string
	text   string
}

// splitOnHeadings cuts text at markdown or numbered headings. Text
// before the first heading comes back untitled.
func splitOnHeadings(content string) []headingSection {
	marks := vejledningHeadRe.FindAllStringSubmatchIndex(content, -1)
	if len(marks) == 0 {
		return []headingSection{{text: content}}
	}

	var sections []headingSection
	if intro := strings.TrimSpace(content[:marks[0][0]]); intro != "" {
		sections = append(sections, headingSection{text: intro})
	}

	for i, m := range marks {
		end := len(content)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		sec := headingSection{text: strings.TrimSpace(content[m[1]:end])}
		if m[2] >= 0 {
			sec.title = strings.TrimSpace(content[m[2]:m[3]])
		} else {
			sec.number = content[m[4]:m[5]]
			sec.title = strings.TrimSpace(content[m[6]:m[7]])
		}
		if sec.text == "" {
			continue
		}
		sections = append(sections, sec)
	}
	return sections
}
