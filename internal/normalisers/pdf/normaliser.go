// Package pdf provides the PDF normaliser. Danish legal PDFs come out
// of retsinformation.dk and Karnov with page furniture, hyphenated
// line breaks and inconsistent paragraph markers; all of that is
// cleaned up here so the indexers see plain legal text.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Above the plaintext fallback
}

// Normalise extracts text from a PDF document page by page.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable PDF: %v", domain.ErrInvalidInput, err)
	}

	content, pages := extractText(reader)

	doc := &domain.Document{
		ID:        uuid.New().String(),
		SourceID:  raw.SourceID,
		URI:       raw.URI,
		Title:     extractTitle(raw, content),
		Content:   content,
		Metadata:  copyMetadata(raw.Metadata),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "pdf"
	doc.Metadata["pages"] = pages

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// extractText pulls plain text from every page. Pages that fail to
// decode are skipped rather than failing the document; scanned pages
// without a text layer simply contribute nothing.
func extractText(reader *pdf.Reader) (string, int) {
	fonts := make(map[string]*pdf.Font)
	var b strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		text = CleanPageText(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	return NormaliseLegalText(b.String()), pages
}

// Pre-compiled regular expressions for PDF text cleanup.
var (
	// Page furniture: "Side 3 af 12", "- 3 -", bare page numbers on
	// their own line.
	pageOfPage  = regexp.MustCompile(`(?m)^\s*Side\s+\d+\s+af\s+\d+\s*$`)
	dashedPage  = regexp.MustCompile(`(?m)^\s*-\s*\d+\s*-\s*$`)
	barePageNum = regexp.MustCompile(`(?m)^\s*\d{1,4}\s*$`)

	// Hyphenation at a line break: "fradrags-\nberettiget".
	hyphenBreak = regexp.MustCompile(`([a-zæøåA-ZÆØÅ])-\n([a-zæøå])`)

	// Paragraph markers glued to their number: "§33" and "Stk.2".
	glueSection = regexp.MustCompile(`§(\d)`)
	glueStk     = regexp.MustCompile(`\bStk\.(\d)`)

	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// CleanPageText removes page furniture and trailing whitespace from a
// single page of extracted text.
func CleanPageText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageOfPage.ReplaceAllString(text, "")
	text = dashedPage.ReplaceAllString(text, "")
	text = barePageNum.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// NormaliseLegalText repairs hyphenated line breaks and unifies the
// spelling of paragraph markers across the whole document.
func NormaliseLegalText(text string) string {
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = glueSection.ReplaceAllString(text, "§ $1")
	text = glueStk.ReplaceAllString(text, "Stk. $1")
	text = multiSpaces.ReplaceAllString(text, " ")
	text = multiNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// extractTitle prefers a connector-provided title, then the first
// non-blank line of the text, then the filename.
func extractTitle(raw *domain.RawDocument, content string) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= 8 && len(line) <= 200 {
			return line
		}
		if line != "" {
			break
		}
	}

	filename := filepath.Base(raw.URI)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// copyMetadata creates a shallow copy of metadata.
func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
