package driving

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// SearchService provides search over the indexed corpus.
type SearchService interface {
	// Search performs a search across the active collection. The mode
	// (keyword, semantic, hybrid) follows settings unless opts says
	// otherwise.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Analyse extracts legal references, concepts and the question
	// type from a query without running the search. Used to explain
	// why results ranked as they did.
	Analyse(ctx context.Context, query string) (*domain.QueryAnalysis, error)
}
