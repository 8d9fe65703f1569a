package driven

// Prompt names known to the prompt store. Each maps to a file under
// ~/.paragraf/prompts/ which users may edit to tune behaviour.
const (
	// PromptAnswerSystem is the system prompt for question answering.
	PromptAnswerSystem = "answer_system"

	// PromptAnswer is the user prompt template for question answering.
	// Takes the question and the numbered context block.
	PromptAnswer = "answer"

	// PromptQueryRewrite rewrites a question into a search query.
	PromptQueryRewrite = "query_rewrite"

	// PromptContextAnalysis asks the model to read a document opening
	// and return structured context as JSON.
	PromptContextAnalysis = "context_analysis"

	// PromptChunkExtract asks the model to split a text segment into
	// typed chunks as JSON.
	PromptChunkExtract = "chunk_extract"
)

// PromptStore loads prompt templates by name. Defaults ship embedded;
// a file on disk with the same name overrides the default.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns domain.ErrNotFound for unknown names.
	Load(name string) (string, error)

	// Reload discards cached templates and re-reads overrides from
	// disk.
	Reload() error
}

// PromptStoreAware is implemented by services that accept a prompt
// store after construction.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
