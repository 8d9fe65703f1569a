package driving

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// AskService answers questions grounded in the indexed corpus. It
// retrieves relevant chunks, builds a numbered context block and has
// the LLM answer with citations.
type AskService interface {
	// Ask answers a question. Returns domain.ErrLLMUnavailable when no
	// LLM is configured.
	Ask(ctx context.Context, question string, opts AskOptions) (*domain.Answer, error)
}

// AskOptions configures question answering.
type AskOptions struct {
	// CollectionID restricts retrieval to one collection. Empty means
	// the active collection.
	CollectionID string

	// ContextLimit caps how many chunks go into the context block.
	// Zero means the default (8).
	ContextLimit int
}
