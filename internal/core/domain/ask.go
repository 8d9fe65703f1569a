package domain

// Answer is the result of a question answered against the corpus.
type Answer struct {
	// Question is the question as asked.
	Question string

	// Text is the generated answer.
	Text string

	// Sources lists the chunks the answer was grounded on, in citation
	// order. Citation numbers in Text ([1], [2], ...) index into this
	// slice one-based.
	Sources []Citation

	// Model is the LLM model that produced the answer.
	Model string

	// QuestionType is the classification that drove generation.
	QuestionType QuestionType
}

// Citation points an answer at a supporting chunk.
type Citation struct {
	// ChunkID is the supporting chunk.
	ChunkID string

	// DocumentID is the chunk's document.
	DocumentID string

	// DocumentTitle is the document title for display.
	DocumentTitle string

	// Reference is the legal reference line shown to the user, e.g.
	// "LL § 9 C" or "C.C.2.1.1", falling back to the section heading.
	Reference string

	// Score is the retrieval score the chunk entered the context with.
	Score float64
}
