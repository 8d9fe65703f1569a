package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// CollectionID restricts the search to one collection. Empty means
	// the active collection.
	CollectionID string

	// SourceIDs filters to specific sources.
	SourceIDs []string

	// DocTypes filters to specific document types.
	DocTypes []DocType

	// ChunkTypes filters to specific chunk types.
	ChunkTypes []ChunkType

	// IncludeOphaevet includes chunks whose rules are repealed or
	// historical. They are filtered out by default.
	IncludeOphaevet bool

	// Semantic enables vector similarity search.
	Semantic bool

	// Hybrid enables combined keyword + semantic search.
	Hybrid bool

	// NoBoost disables legal-metadata boosting, returning raw
	// similarity order.
	NoBoost bool

	// WithRelated pulls in note chunks cross-referenced by the top
	// results.
	WithRelated bool
}

// Boost weights applied when query analysis matches chunk metadata.
// A chunk citing the exact law paragraph the user asked about is a
// far stronger signal than embedding distance alone.
const (
	BoostLawRef  = 10.0
	BoostCaseRef = 7.0
	BoostConcept = 5.0
	BoostSection = 3.0
)

// SearchResult represents a single search hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Chunk is the specific chunk that matched.
	Chunk Chunk

	// Score is the relevance score after fusion and boosting.
	Score float64

	// Boosts names the metadata boosts that fired for this hit, e.g.
	// "lovhenvisning: LL § 9 C".
	Boosts []string

	// Related is true when the hit was pulled in via a cross-reference
	// rather than matched directly.
	Related bool

	// Highlights contains snippets with matched terms.
	Highlights []string

	// SourceName is the display name of the source.
	SourceName string
}

// QueryAnalysis is the structured reading of a user query. The search
// service boosts chunks whose metadata matches the extracted
// references.
type QueryAnalysis struct {
	// Query is the original query text.
	Query string

	// LawRefs lists law references found in the query.
	LawRefs []LawRef

	// CaseRefs lists case references in canonical form.
	CaseRefs []string

	// SectionIDs lists guidance section identifiers, e.g. "C.C.2.1.1".
	SectionIDs []string

	// Concepts lists significant query terms after stopword removal.
	Concepts []string

	// QuestionType classifies the question for answer generation.
	QuestionType QuestionType
}

// QuestionType classifies what kind of answer a query is after.
type QuestionType string

// Available question types.
const (
	QuestionDefinition QuestionType = "definition"
	QuestionProcedure  QuestionType = "procedure"
	QuestionRate       QuestionType = "sats"
	QuestionDeadline   QuestionType = "frist"
	QuestionGeneral    QuestionType = "general"
)

// Temperature returns the LLM sampling temperature suited to the
// question type. Factual lookups want determinism.
func (q QuestionType) Temperature() float64 {
	switch q {
	case QuestionRate, QuestionDeadline:
		return 0.0
	case QuestionDefinition:
		return 0.1
	case QuestionProcedure:
		return 0.2
	default:
		return 0.3
	}
}
