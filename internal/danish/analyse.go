package danish

import (
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// Keyword groups for question classification. Checked in order: rate
// and deadline markers win over the generic "hvad er" opener, so
// "hvad er satsen for kørselsfradrag" classifies as a rate question.
var (
	rateMarkers = []string{
		"sats", "takst", "procent", "promille", "beløbsgrænse",
		"grundbeløb", "bundgrænse", "maksimum", "loft",
		"hvor meget", "hvor stor", "hvor høj",
	}
	deadlineMarkers = []string{
		"frist", "hvornår", "senest", "deadline", "rettidig",
	}
	definitionMarkers = []string{
		"hvad er", "hvad betyder", "hvad forstås", "hvad menes",
		"definition", "definer",
	}
	procedureMarkers = []string{
		"hvordan", "hvorledes", "fremgangsmåde", "procedure",
		"ansøg", "indberet", "indsend", "registrer", "tilmeld",
		"anmod", "klage",
	}
)

// ClassifyQuestion determines what kind of answer a query is after.
// The type drives answer generation temperature: rate and deadline
// lookups must not be creative.
func ClassifyQuestion(query string) domain.QuestionType {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, rateMarkers):
		return domain.QuestionRate
	case containsAny(q, deadlineMarkers):
		return domain.QuestionDeadline
	case containsAny(q, definitionMarkers):
		return domain.QuestionDefinition
	case containsAny(q, procedureMarkers):
		return domain.QuestionProcedure
	default:
		return domain.QuestionGeneral
	}
}

// Analyse extracts everything boostable from a query: law references,
// case references, guidance section IDs, concepts, and the question
// type.
func Analyse(query string) *domain.QueryAnalysis {
	analysis := &domain.QueryAnalysis{
		Query:        query,
		LawRefs:      ExtractLawRefs(query),
		CaseRefs:     ExtractCaseRefs(query),
		SectionIDs:   ExtractSectionIDs(query),
		QuestionType: ClassifyQuestion(query),
	}

	concepts := DetectConcepts(query)
	covered := strings.ToLower(strings.Join(concepts, " "))
	for _, w := range ContentWords(query) {
		if len([]rune(w)) < 4 || strings.Contains(covered, w) {
			continue
		}
		if strings.HasSuffix(w, "loven") || strings.HasSuffix(w, "lovens") {
			continue
		}
		concepts = append(concepts, w)
	}
	analysis.Concepts = dedupeStrings(concepts)

	return analysis
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
