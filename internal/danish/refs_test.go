package danish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// TestExtractLawRefs_Forms verifies the three reference forms parse
// into the same canonical structure.
func TestExtractLawRefs_Forms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []domain.LawRef
	}{
		{
			name: "abbreviated with stykke",
			text: "Fradraget følger LL § 9 C, stk. 4 om befordring.",
			want: []domain.LawRef{{Law: "LL", Paragraph: "9 C", Stk: "4"}},
		},
		{
			name: "named genitive with stykke and nummer",
			text: "Det fremgår af ligningslovens § 16, stk. 3, nr. 2.",
			want: []domain.LawRef{{Law: "LL", Paragraph: "16", Stk: "3", Nr: "2"}},
		},
		{
			name: "bare paragraph with letter suffix",
			text: "Lempelse efter § 33 A kræver ophold i udlandet.",
			want: []domain.LawRef{{Paragraph: "33 A"}},
		},
		{
			name: "unknown law name keeps paragraph",
			text: "Se retsplejelovens § 42 om habilitet.",
			want: []domain.LawRef{{Paragraph: "42"}},
		},
		{
			name: "double paragraph sign",
			text: "Beskatning efter kildeskattelovens §§ 48 E-F.",
			want: []domain.LawRef{{Law: "KSL", Paragraph: "48 E"}},
		},
		{
			name: "no references",
			text: "Almindelig tekst uden henvisninger.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLawRefs(tt.text))
		})
	}
}

// TestExtractLawRefs_TextOrder verifies mixed forms come back in the
// order they appear, deduplicated.
func TestExtractLawRefs_TextOrder(t *testing.T) {
	text := "Efter § 3 og personskattelovens § 7 gælder PSL § 7 fortsat, jf. § 3."

	refs := ExtractLawRefs(text)

	require.Len(t, refs, 2)
	assert.Equal(t, domain.LawRef{Paragraph: "3"}, refs[0])
	assert.Equal(t, domain.LawRef{Law: "PSL", Paragraph: "7"}, refs[1])
}

// TestExtractLawRefs_UnknownAbbrev verifies that an unrecognised
// uppercase token does not claim the reference; the bare form still
// parses.
func TestExtractLawRefs_UnknownAbbrev(t *testing.T) {
	refs := ExtractLawRefs("Se QQ § 4, stk. 1 for detaljer.")

	require.Len(t, refs, 1)
	assert.Equal(t, domain.LawRef{Paragraph: "4", Stk: "1"}, refs[0])
}

// TestExtractCaseRefs covers the four citation families and their
// canonical forms.
func TestExtractCaseRefs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "skm compact",
			text: "Afgjort ved SKM2023.123.SR i marts.",
			want: []string{"SKM2023.123.SR"},
		},
		{
			name: "skm spaced with landsret",
			text: "Jf. SKM 2010.123.ØLR om samme spørgsmål.",
			want: []string{"SKM2010.123.ØLR"},
		},
		{
			name: "tfs",
			text: "Se TfS 1999, 123 om rejsebegrebet.",
			want: []string{"TfS 1999, 123"},
		},
		{
			name: "ufr with court",
			text: "Højesteret fandt i U 2001.1474 H at betingelsen gjaldt.",
			want: []string{"U 2001.1474 H"},
		},
		{
			name: "ufr court letter is next word",
			text: "I U 2001.1474 Hvidovre-sagen blev resultatet stadfæstet.",
			want: []string{"U 2001.1474"},
		},
		{
			name: "lsrm",
			text: "Allerede LSRM 1975, 123 fastslog princippet.",
			want: []string{"LSRM 1975, 123"},
		},
		{
			name: "dedupe keeps first",
			text: "SKM2023.123.SR og igen SKM2023.123.SR.",
			want: []string{"SKM2023.123.SR"},
		},
		{
			name: "none",
			text: "Ingen afgørelser nævnt her.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCaseRefs(tt.text))
		})
	}
}

// TestExtractSectionIDs verifies guidance section identifiers of
// varying depth are found and deduplicated.
func TestExtractSectionIDs(t *testing.T) {
	text := "Se C.A.4.3.1.1 og A.B.4.1, samt C.A.4.3.1.1 igen."

	assert.Equal(t, []string{"C.A.4.3.1.1", "A.B.4.1"}, ExtractSectionIDs(text))
}

// TestExtractSectionIDs_IgnoresCaseRefs verifies SKM citations do not
// leak into section IDs.
func TestExtractSectionIDs_IgnoresCaseRefs(t *testing.T) {
	assert.Nil(t, ExtractSectionIDs("Jf. SKM2023.123.SR og U 2001.1474 H."))
}

// TestResolveLawName covers genitive and stem forms.
func TestResolveLawName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "definite", in: "ligningsloven", want: "LL"},
		{name: "genitive", in: "ligningslovens", want: "LL"},
		{name: "capitalised", in: "Ligningslovens", want: "LL"},
		{name: "stem", in: "momslov", want: "ML"},
		{name: "unknown", in: "færdselsloven", want: ""},
		{name: "not a law", in: "fradrag", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLawName(tt.in))
		})
	}
}

// TestLawName verifies the abbreviation table lookups.
func TestLawName(t *testing.T) {
	assert.Equal(t, "ligningsloven", LawName("LL"))
	assert.Equal(t, "", LawName("ZZ"))
	assert.True(t, KnownLawAbbrev("KSL"))
	assert.False(t, KnownLawAbbrev("KSLX"))
}
