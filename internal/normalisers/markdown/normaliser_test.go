package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovbase/paragraf/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_TitleFromHeading(t *testing.T) {
	raw := &domain.RawDocument{
		SourceID: "source-1",
		URI:      "/notes/befordring.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Befordringsfradrag efter LL § 9 C\n\nKørsel mellem hjem og arbejde..."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Befordringsfradrag efter LL § 9 C", doc.Title)
	assert.Equal(t, "source-1", doc.SourceID)
	assert.Equal(t, "markdown", doc.Metadata["format"])
}

func TestNormalise_TitleFromFilename(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "/notes/aktie-avance_notat.md",
		Content: []byte("Ingen overskrift her."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "aktie avance notat", result.Document.Title)
}

func TestNormalise_KeepsStructureStripsDecoration(t *testing.T) {
	content := `# Afsnit C.A.4.3.3

Reglen står i **ligningslovens** § 9 C, se [lovteksten](https://example.dk/ll).

- Fradrag kræver kørsel over 24 km
- Satsen fastsættes årligt

` + "```python\nignored = True\n```" + `

![diagram](befordring.png)
`

	raw := &domain.RawDocument{URI: "/notes/c_a_4_3_3.md", Content: []byte(content)}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	// Heading and list markers survive for the indexers.
	assert.Contains(t, doc.Content, "# Afsnit C.A.4.3.3")
	assert.Contains(t, doc.Content, "- Fradrag kræver kørsel over 24 km")
	// Decoration, links, code and images are cleaned away.
	assert.Contains(t, doc.Content, "ligningslovens § 9 C")
	assert.NotContains(t, doc.Content, "**")
	assert.NotContains(t, doc.Content, "https://example.dk/ll")
	assert.NotContains(t, doc.Content, "ignored = True")
	assert.NotContains(t, doc.Content, "![diagram]")
}

func TestNormalise_NormalisesLineEndings(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "/notes/notat.md",
		Content: []byte("\ufeff# Notat\r\nFørste linje.\r\n"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.NotContains(t, result.Document.Content, "\r")
	assert.NotContains(t, result.Document.Content, "\ufeff")
}
