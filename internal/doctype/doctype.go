// Package doctype detects the document type of a normalised document
// from its filename and the opening of its content. Detection is
// heuristic scoring: each signal adds points to a candidate type, the
// highest score above a small threshold wins, and anything
// inconclusive falls back to the generic type.
package doctype

import (
	"path"
	"regexp"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// sampleLimit caps how much content the detector reads. Type signals
// sit in the opening of Danish legal documents; reading more just
// inflates § counts on long laws.
const sampleLimit = 4000

// minScore is the lowest winning score; below it the document is
// classified generic.
const minScore = 3

var (
	paragraphSignRe = regexp.MustCompile(`§\s*\d+`)
	sectionIDRe     = regexp.MustCompile(`\b[A-Z]\.[A-Z](?:\.\d+)+\b`)
	skmNumberRe     = regexp.MustCompile(`\bSKM[\. ]?\d{4}\b`)
	lovNrRe         = regexp.MustCompile(`\b(?:lov|lbk)\s+nr\.?\s*\d+`)
)

// Detect classifies a document from its URI and content.
func Detect(uri, content string) domain.DocType {
	scores := map[domain.DocType]int{}

	scoreFilename(strings.ToLower(path.Base(uri)), scores)

	sample := content
	if len(sample) > sampleLimit {
		sample = sample[:sampleLimit]
	}
	scoreContent(sample, scores)

	// Tie-break order: the more specific types win. A juridisk
	// vejledning section quotes a lot of law text, so it must beat
	// lovtekst on equal score.
	order := []domain.DocType{
		domain.DocTypeJuridiskVejledning,
		domain.DocTypeAfgoerelse,
		domain.DocTypeCirkulaere,
		domain.DocTypeLovtekst,
		domain.DocTypeVejledning,
	}

	best := domain.DocTypeGenerisk
	bestScore := 0
	for _, dt := range order {
		if scores[dt] > bestScore {
			best = dt
			bestScore = scores[dt]
		}
	}
	if bestScore < minScore {
		return domain.DocTypeGenerisk
	}
	return best
}

func scoreFilename(name string, scores map[domain.DocType]int) {
	switch {
	case strings.Contains(name, "juridisk") || strings.HasPrefix(name, "jv_") || strings.HasPrefix(name, "jv-"):
		scores[domain.DocTypeJuridiskVejledning] += 3
	case strings.Contains(name, "lbk") || strings.HasPrefix(name, "lov"):
		scores[domain.DocTypeLovtekst] += 3
	case strings.Contains(name, "cirk"):
		scores[domain.DocTypeCirkulaere] += 3
	case strings.Contains(name, "skm") || strings.Contains(name, "afgoerelse") ||
		strings.Contains(name, "afgørelse") || strings.Contains(name, "kendelse"):
		scores[domain.DocTypeAfgoerelse] += 3
	case strings.Contains(name, "vejl"):
		scores[domain.DocTypeVejledning] += 2
	}
}

func scoreContent(sample string, scores map[domain.DocType]int) {
	lower := strings.ToLower(sample)

	switch n := len(paragraphSignRe.FindAllString(sample, -1)); {
	case n >= 10:
		scores[domain.DocTypeLovtekst] += 3
	case n >= 3:
		scores[domain.DocTypeLovtekst] += 2
	}
	if strings.Contains(lower, "lovbekendtgørelse") ||
		strings.Contains(lower, "bekendtgørelse af lov") ||
		lovNrRe.MatchString(lower) {
		scores[domain.DocTypeLovtekst] += 3
	}

	if strings.Contains(lower, "den juridiske vejledning") {
		scores[domain.DocTypeJuridiskVejledning] += 4
	}
	if len(sectionIDRe.FindAllString(sample, -1)) >= 3 {
		scores[domain.DocTypeJuridiskVejledning] += 2
	}

	if strings.Contains(lower, "cirkulære") {
		scores[domain.DocTypeCirkulaere] += 3
	}

	if skmNumberRe.MatchString(sample) {
		scores[domain.DocTypeAfgoerelse] += 2
	}
	for _, marker := range []string{"afsagt kendelse", "afsagt dom", "landsskatteretten", "skatterådet", "styresignal", "afgørelse af"} {
		if strings.Contains(lower, marker) {
			scores[domain.DocTypeAfgoerelse] += 2
			break
		}
	}

	if strings.Contains(lower, "vejledning") && !strings.Contains(lower, "juridiske vejledning") {
		scores[domain.DocTypeVejledning] += 2
	}
}
