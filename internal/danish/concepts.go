package danish

import "strings"

// conceptTerms lists tax-law concepts recognised in queries and chunk
// text. Terms are lowercase; multi-word terms match as phrases.
// Deliberately specific: short generic words like "skat" match inside
// too many compounds to be useful.
var conceptTerms = []string{
	// fradrag
	"befordringsfradrag", "beskæftigelsesfradrag", "håndværkerfradrag",
	"jobfradrag", "kørselsfradrag", "personfradrag", "rejsefradrag",
	"servicefradrag", "ligningsmæssigt fradrag", "momsfradrag",
	// skatter og bidrag
	"topskat", "bundskat", "kommuneskat", "kirkeskat", "udbytteskat",
	"ejendomsværdiskat", "grundskyld", "arbejdsmarkedsbidrag",
	"am-bidrag", "lønsumsafgift", "ekspertskat", "udligningsskat",
	// indkomstarter
	"aktieindkomst", "kapitalindkomst", "personlig indkomst",
	"skattepligtig indkomst", "a-indkomst", "b-indkomst", "honorar",
	// personalegoder
	"fri bil", "fri telefon", "fri bolig", "multimediebeskatning",
	"personalegoder", "bagatelgrænse",
	// skattepligt
	"fuld skattepligt", "begrænset skattepligt", "dobbeltbeskatning",
	"exemptionslempelse", "creditlempelse", "forskerskatteordning",
	"bruttoskatteordning",
	// årets gang
	"forskudsopgørelse", "årsopgørelse", "restskat",
	"overskydende skat", "skattekort", "frikort", "hovedkort", "bikort",
	"selvangivelse", "oplysningsskema",
	// erhverv
	"virksomhedsordning", "kapitalafkastordning", "etableringskonto",
	"iværksætterkonto", "afskrivning", "straksafskrivning",
	"genvundne afskrivninger", "driftsomkostninger",
	"repræsentationsudgifter", "sambeskatning", "transfer pricing",
	"armslængdeprincippet", "omvendt betalingspligt",
	// rejse og befordring
	"befordringsgodtgørelse", "rejsegodtgørelse", "kilometersats",
	"kost og logi", "dobbelt husførelse",
	// bolig og ejendom
	"forældrekøb", "andelsbolig", "ejendomsavance", "parcelhusreglen",
	"sommerhusreglen", "udlejning",
	// værdipapirer
	"aktieavance", "aktiesparekonto", "investeringsforening",
	"lagerbeskatning", "realisationsbeskatning", "kursgevinst",
	"kurstab",
	// pension
	"ratepension", "aldersopsparing", "livrente",
	"pensionsindbetaling",
	// afgifter
	"gaveafgift", "boafgift", "arveafgift",
	// forvaltning
	"bindende svar", "genoptagelse", "omgørelse", "skatteforbehold",
	"henstandssaldo",
}

// DetectConcepts returns the known concepts present in text, in table
// order. Matching is case-insensitive substring matching, so inflected
// forms ("befordringsfradraget") still hit.
func DetectConcepts(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, c := range conceptTerms {
		if strings.Contains(lower, c) {
			out = append(out, c)
		}
	}
	return out
}
