package driven

import "context"

// LLMService provides language model operations for document analysis
// and question answering. This is an optional service - when nil,
// indexing falls back to rule-based analysis and question answering is
// disabled.
//
// Implementations may include:
//   - OpenAI (GPT-4o and friends)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// RewriteQuery rewrites a question into a retrieval-friendly search
	// query: expanding abbreviations, normalising legal references.
	RewriteQuery(ctx context.Context, query string) (string, error)

	// AnalyseDocument reads the opening of a document and returns its
	// context: title, law area, key concepts, audience. Indexers call
	// this once per document and fall back to heuristics on error.
	AnalyseDocument(ctx context.Context, docType string, text string) (*DocumentAnalysis, error)

	// ExtractChunks splits a text segment into typed chunks. Used by
	// indexers when LLM chunking is enabled; rule-based extraction is
	// the fallback.
	ExtractChunks(ctx context.Context, docType string, segment string) ([]ExtractedChunk, error)

	// Answer generates an answer to a question grounded in the given
	// context block. The context block carries numbered excerpts; the
	// answer cites them as [1], [2], ...
	Answer(ctx context.Context, question, contextBlock string, opts AnswerOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// AnswerOptions configures answer generation.
type AnswerOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness. Callers derive it from the
	// question type: rate and deadline lookups run deterministic.
	Temperature float64
}

// DocumentAnalysis is the LLM's structured reading of a document's
// opening text.
type DocumentAnalysis struct {
	// Title is the document title as the model read it.
	Title string

	// LawArea is the area of law, e.g. "personbeskatning".
	LawArea string

	// DocTypeHint is the model's view of the document type, using the
	// domain.DocType values.
	DocTypeHint string

	// KeyConcepts lists central legal concepts.
	KeyConcepts []string

	// Audience describes who the document addresses, e.g. "borgere"
	// or "skatteforvaltningen".
	Audience string

	// Summary is a one-paragraph summary.
	Summary string
}

// ExtractedChunk is one chunk proposed by LLM chunk extraction.
type ExtractedChunk struct {
	// Content is the chunk text.
	Content string

	// Type is the proposed chunk type, using domain.ChunkType values.
	Type string

	// Section is the section identifier the chunk belongs to.
	Section string

	// Title is the section heading.
	Title string

	// Concepts lists legal concepts tagged on the chunk.
	Concepts []string
}
