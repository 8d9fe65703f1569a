package danish

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/lovbase/paragraf/internal/core/domain"
)

var (
	// "LL § 9 C" - a known abbreviation before the paragraph sign.
	abbrevRefRe = regexp.MustCompile(`\b([A-ZÆØÅ]{2,4})\s*§{1,2}\s*(\d+(?:\s?[A-Z])?)\b`)

	// "ligningslovens § 16" - a full law name, usually genitive.
	namedRefRe = regexp.MustCompile(`\b((?i:[a-zæøå]+lov(?:en)?s?))\s*§{1,2}\s*(\d+(?:\s?[A-Z])?)\b`)

	// "§ 33 A" with no law attached.
	bareRefRe = regexp.MustCompile(`§{1,2}\s*(\d+(?:\s?[A-Z])?)\b`)

	// ", stk. 4, nr. 2" directly after a paragraph reference.
	refTailRe = regexp.MustCompile(`^(?:,?\s*stk\.\s*(\d+))?(?:,?\s*nr\.\s*(\d+))?`)

	skmRe = regexp.MustCompile(`\bSKM\.?\s?(\d{4})[.,]\s?(\d+)\s?[.,]\s?([A-ZÆØÅ]{1,5})`)
	tfsRe = regexp.MustCompile(`\bTfS\.?\s?(\d{4})\s?[.,]\s?(\d+)\b`)
	ufrRe = regexp.MustCompile(`\b(?:UfR|U)\.?\s?(\d{4})\.(\d+)(?:\s([HØV]))?`)
	lsrRe = regexp.MustCompile(`\bLSRM\.?\s?(\d{4})\s?[.,]\s?(\d+)\b`)

	// Guidance section identifiers, e.g. "C.A.4.3.1.1".
	sectionIDRe = regexp.MustCompile(`\b[A-Z]\.[A-Z](?:\.\d+)+\b`)
)

type posRef struct {
	pos int
	ref domain.LawRef
}

// ExtractLawRefs finds law references in text. It recognises the
// abbreviated form ("LL § 9 C, stk. 4"), the named form
// ("ligningslovens § 16") and bare paragraph references ("§ 33 A").
// Results come back in text order, deduplicated.
func ExtractLawRefs(text string) []domain.LawRef {
	var found []posRef
	var spans [][2]int

	add := func(ref domain.LawRef, start, end int) {
		ref.Paragraph = normaliseParagraph(ref.Paragraph)
		if tail := refTailRe.FindStringSubmatch(text[end:]); tail != nil {
			ref.Stk = tail[1]
			ref.Nr = tail[2]
		}
		found = append(found, posRef{pos: start, ref: ref})
		spans = append(spans, [2]int{start, end})
	}

	for _, m := range abbrevRefRe.FindAllStringSubmatchIndex(text, -1) {
		abbrev := text[m[2]:m[3]]
		if !KnownLawAbbrev(abbrev) {
			continue
		}
		add(domain.LawRef{Law: abbrev, Paragraph: text[m[4]:m[5]]}, m[0], m[1])
	}

	for _, m := range namedRefRe.FindAllStringSubmatchIndex(text, -1) {
		ref := domain.LawRef{
			Law:       ResolveLawName(text[m[2]:m[3]]),
			Paragraph: text[m[4]:m[5]],
		}
		add(ref, m[0], m[1])
	}

	for _, m := range bareRefRe.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(spans, m[0]) {
			continue
		}
		add(domain.LawRef{Paragraph: text[m[2]:m[3]]}, m[0], m[1])
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	seen := make(map[string]struct{}, len(found))
	var refs []domain.LawRef
	for _, f := range found {
		key := f.ref.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, f.ref)
	}
	return refs
}

// ExtractCaseRefs finds case references (SKM, TfS, UfR, LSRM) and
// returns them in canonical form, in text order, deduplicated.
func ExtractCaseRefs(text string) []string {
	type posCase struct {
		pos int
		ref string
	}
	var found []posCase

	for _, m := range skmRe.FindAllStringSubmatchIndex(text, -1) {
		ref := fmt.Sprintf("SKM%s.%s.%s", text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]])
		found = append(found, posCase{m[0], ref})
	}
	for _, m := range tfsRe.FindAllStringSubmatchIndex(text, -1) {
		ref := fmt.Sprintf("TfS %s, %s", text[m[2]:m[3]], text[m[4]:m[5]])
		found = append(found, posCase{m[0], ref})
	}
	for _, m := range ufrRe.FindAllStringSubmatchIndex(text, -1) {
		ref := fmt.Sprintf("U %s.%s", text[m[2]:m[3]], text[m[4]:m[5]])
		if m[6] >= 0 && !letterFollows(text, m[7]) {
			ref += " " + text[m[6]:m[7]]
		}
		found = append(found, posCase{m[0], ref})
	}
	for _, m := range lsrRe.FindAllStringSubmatchIndex(text, -1) {
		ref := fmt.Sprintf("LSRM %s, %s", text[m[2]:m[3]], text[m[4]:m[5]])
		found = append(found, posCase{m[0], ref})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	refs := make([]string, 0, len(found))
	for _, f := range found {
		refs = append(refs, f.ref)
	}
	return dedupeStrings(refs)
}

// ExtractSectionIDs finds guidance section identifiers like
// "C.A.4.3.1.1", in text order, deduplicated.
func ExtractSectionIDs(text string) []string {
	return dedupeStrings(sectionIDRe.FindAllString(text, -1))
}

// normaliseParagraph makes sure a letter suffix is space-separated:
// "9C" becomes "9 C".
func normaliseParagraph(p string) string {
	p = strings.TrimSpace(p)
	runes := []rune(p)
	if len(runes) >= 2 {
		last, prev := runes[len(runes)-1], runes[len(runes)-2]
		if unicode.IsUpper(last) && unicode.IsDigit(prev) {
			return string(runes[:len(runes)-1]) + " " + string(last)
		}
	}
	return p
}

// letterFollows reports whether the rune at pos is a letter. Used to
// reject a court suffix that is really the start of the next word.
func letterFollows(text string, pos int) bool {
	for _, r := range text[pos:] {
		return unicode.IsLetter(r)
	}
	return false
}

func overlaps(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
