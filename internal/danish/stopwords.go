package danish

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords is the Danish stopword set, extended with filler common in
// legal prose (jf., mv., pkt. and friends).
var stopwords = map[string]struct{}{}

func init() {
	words := []string{
		"af", "alle", "alt", "anden", "andet", "andre", "at", "blev",
		"blive", "bliver", "da", "de", "dem", "den", "denne", "der",
		"deres", "det", "dette", "dig", "din", "disse", "dog", "du",
		"efter", "eller", "en", "end", "er", "et", "for", "fra", "ham",
		"han", "hans", "har", "havde", "have", "hende", "hendes", "her",
		"hos", "hun", "hvad", "hvis", "hvor", "hvordan", "hvornår", "i",
		"ikke", "ind", "jeg", "jer", "jo", "kan", "kunne", "man",
		"mange", "med", "meget", "men", "mig", "min", "mine", "mit",
		"mod", "må", "ned", "noget", "nogle", "nu", "når", "og", "også",
		"om", "op", "os", "over", "på", "samt", "se", "selv", "senere",
		"sig", "sin", "sine", "sit", "skal", "skulle", "som", "sådan",
		"til", "ud", "under", "var", "ved", "vi", "vil", "ville", "vor",
		"være", "været",
		// legal filler
		"bl.a", "fx", "herunder", "jf", "mv", "nr", "pkt", "stk",
	}
	for _, w := range words {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether the lowercased word is a stopword.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// ContentWords splits text into lowercased words and drops stopwords,
// pure numbers and words shorter than three runes.
func ContentWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, f := range fields {
		if len([]rune(f)) < 3 || isNumeric(f) {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// TopKeywords returns the n most frequent content words of text.
// Ties break on first appearance.
func TopKeywords(text string, n int) []string {
	words := ContentWords(text)
	counts := make(map[string]int, len(words))
	first := make(map[string]int, len(words))
	for i, w := range words {
		counts[w]++
		if _, ok := first[w]; !ok {
			first[w] = i
		}
	}

	unique := make([]string, 0, len(counts))
	for w := range counts {
		unique = append(unique, w)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return first[unique[i]] < first[unique[j]]
	})

	if n > 0 && len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
