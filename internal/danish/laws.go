package danish

import (
	"sort"
	"strings"
)

// lawAbbrevs maps the standard abbreviations used in Danish tax
// literature to the full law name. Abbreviation matching in running
// text only accepts entries from this table; arbitrary uppercase
// tokens before a paragraph sign are too noisy.
var lawAbbrevs = map[string]string{
	"ABL":  "aktieavancebeskatningsloven",
	"AL":   "afskrivningsloven",
	"AMBL": "arbejdsmarkedsbidragsloven",
	"BAL":  "boafgiftsloven",
	"DBSL": "dødsboskatteloven",
	"EBL":  "ejendomsavancebeskatningsloven",
	"EVSL": "ejendomsværdiskatteloven",
	"FBL":  "fondsbeskatningsloven",
	"KGL":  "kursgevinstloven",
	"KSL":  "kildeskatteloven",
	"LAL":  "lønsumsafgiftsloven",
	"LL":   "ligningsloven",
	"ML":   "momsloven",
	"OPKL": "opkrævningsloven",
	"PBL":  "pensionsbeskatningsloven",
	"PSL":  "personskatteloven",
	"SEL":  "selskabsskatteloven",
	"SFL":  "skatteforvaltningsloven",
	"SKL":  "skattekontrolloven",
	"SL":   "statsskatteloven",
	"VSL":  "virksomhedsskatteloven",
}

// lawNames is the inverse of lawAbbrevs, keyed by the definite form
// ("ligningsloven").
var lawNames = func() map[string]string {
	m := make(map[string]string, len(lawAbbrevs))
	for abbrev, name := range lawAbbrevs {
		m[name] = abbrev
	}
	return m
}()

// KnownLawAbbrev reports whether abbrev is a recognised law
// abbreviation.
func KnownLawAbbrev(abbrev string) bool {
	_, ok := lawAbbrevs[abbrev]
	return ok
}

// LawName returns the full name for a law abbreviation, or "" when
// unknown.
func LawName(abbrev string) string {
	return lawAbbrevs[abbrev]
}

// ResolveLawName maps a law name as written in text to its
// abbreviation. Handles the genitive ("ligningslovens") and the bare
// stem ("ligningslov"). Returns "" when the law is not in the table.
func ResolveLawName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, "s")
	if !strings.HasSuffix(n, "loven") {
		if strings.HasSuffix(n, "lov") {
			n += "en"
		} else {
			return ""
		}
	}
	return lawNames[n]
}

// lawNamesByLength lists known law names longest first, so
// "selskabsskatteloven" is tried before any shorter name it contains.
var lawNamesByLength = func() []string {
	names := make([]string, 0, len(lawNames))
	for name := range lawNames {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

// DetectLaws scans text for known law names and returns the matching
// abbreviations, deduplicated. Longer names are matched first and
// masked out, so a name embedded in a longer one does not
// double-report.
func DetectLaws(text string) []string {
	lower := strings.ToLower(text)
	var abbrevs []string
	for _, name := range lawNamesByLength {
		stem := strings.TrimSuffix(name, "en")
		if strings.Contains(lower, stem) {
			abbrevs = append(abbrevs, lawNames[name])
			lower = strings.ReplaceAll(lower, stem, " ")
		}
	}
	return dedupeStrings(abbrevs)
}
