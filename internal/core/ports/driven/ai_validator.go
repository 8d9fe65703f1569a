package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// AIConfigValidator checks AI settings by constructing a throwaway
// client and pinging the provider. Used by settings flows before a
// configuration is saved.
type AIConfigValidator interface {
	// ValidateEmbedding verifies the embedding settings work: the
	// provider is reachable, the model exists, and the reported
	// dimensionality matches.
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error

	// ValidateLLM verifies the LLM settings work.
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
}
