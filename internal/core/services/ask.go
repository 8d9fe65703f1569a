package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
	"github.com/lovbase/paragraf/internal/danish"
	"github.com/lovbase/paragraf/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// defaultContextLimit is how many chunks enter the context block when
// the caller does not say.
const defaultContextLimit = 8

// contextCharBudget bounds the assembled context block. Roughly 6k
// tokens at 4 characters per token, leaving headroom for the prompt
// and the answer within an 8k window.
const contextCharBudget = 24000

// answerMaxTokens bounds the generated answer length.
const answerMaxTokens = 1024

// AskService answers questions grounded in the indexed corpus: it
// retrieves relevant chunks, assembles a numbered context block and
// has the LLM answer with citations.
type AskService struct {
	searchService driving.SearchService
	llmService    driven.LLMService
}

// NewAskService creates a new ask service. The LLM service may be nil;
// Ask then reports ErrLLMUnavailable.
func NewAskService(searchService driving.SearchService, llmService driven.LLMService) *AskService {
	return &AskService{
		searchService: searchService,
		llmService:    llmService,
	}
}

// Ask answers a question grounded in the corpus.
func (s *AskService) Ask(
	ctx context.Context, question string, opts driving.AskOptions,
) (*domain.Answer, error) {
	logger.Section("Question Answering")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.llmService == nil {
		return nil, fmt.Errorf("%w: configure an LLM provider with 'paragraf settings' to ask questions",
			domain.ErrLLMUnavailable)
	}

	contextLimit := opts.ContextLimit
	if contextLimit <= 0 {
		contextLimit = defaultContextLimit
	}

	questionType := danish.ClassifyQuestion(question)
	logger.Debug("Question type: %s (temperature %.1f)", questionType, questionType.Temperature())

	results, err := s.searchService.Search(ctx, question, domain.SearchOptions{
		Limit:        contextLimit,
		CollectionID: opts.CollectionID,
		WithRelated:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no indexed material matched the question", domain.ErrNotFound)
	}

	logger.Debug("Retrieved %d chunks for context", len(results))

	contextBlock, citations := s.assembleContext(results, contextLimit)
	logger.Debug("Context block: %d characters, %d citations", len(contextBlock), len(citations))

	text, err := s.llmService.Answer(ctx, question, contextBlock, driven.AnswerOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: questionType.Temperature(),
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Question:     question,
		Text:         strings.TrimSpace(text),
		Sources:      citations,
		Model:        s.llmService.ModelName(),
		QuestionType: questionType,
	}, nil
}

// assembleContext builds the numbered context block the LLM answers
// from, and the citation list the numbers index into. Entries past the
// character budget are dropped; the first always fits.
func (s *AskService) assembleContext(
	results []domain.SearchResult, limit int,
) (string, []domain.Citation) {
	var b strings.Builder
	var citations []domain.Citation

	for i := range results {
		if len(citations) >= limit {
			break
		}
		r := &results[i]

		reference := citationReference(&r.Chunk, &r.Document)
		entry := fmt.Sprintf("[%d] %s\n%s\n\n", len(citations)+1, reference, strings.TrimSpace(r.Chunk.Content))

		if len(citations) > 0 && b.Len()+len(entry) > contextCharBudget {
			logger.Debug("Context budget reached after %d entries", len(citations))
			break
		}

		b.WriteString(entry)
		citations = append(citations, domain.Citation{
			ChunkID:       r.Chunk.ID,
			DocumentID:    r.Document.ID,
			DocumentTitle: r.Document.Title,
			Reference:     reference,
			Score:         r.Score,
		})
	}

	return strings.TrimSpace(b.String()), citations
}

// citationReference picks the legal reference line shown for a chunk:
// its first canonical law reference, then its section, then its title,
// then the document title.
func citationReference(chunk *domain.Chunk, doc *domain.Document) string {
	if len(chunk.NormalisedLawRefs) > 0 {
		return chunk.NormalisedLawRefs[0]
	}
	if len(chunk.LawRefs) > 0 {
		ref := chunk.LawRefs[0]
		if ref.Law == "" {
			ref.Law = doc.PrimaryLaw()
		}
		return ref.String()
	}
	if chunk.Section != "" {
		return chunk.Section
	}
	if chunk.Title != "" {
		return chunk.Title
	}
	return doc.Title
}
