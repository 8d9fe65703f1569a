package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
	"github.com/lovbase/paragraf/internal/danish"
	"github.com/lovbase/paragraf/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// rrfK is the reciprocal rank fusion constant. Prevents the top ranks
// of one list from dominating the fused order.
const rrfK = 60

// boostScale maps metadata boost weights into the score range the
// fused results live in. RRF scores sit around 1/rrfK, so a law-ref
// boost of 10 contributes 0.1.
const boostScale = 0.01

// relatedLimit caps how many cross-referenced note chunks a result
// page pulls in.
const relatedLimit = 5

// scoredChunk holds intermediate search results before hydration.
type scoredChunk struct {
	chunkID string
	score   float64
	source  string // "keyword", "vector", or "merged"
}

// SearchService provides hybrid search over the indexed corpus.
type SearchService struct {
	docStore         driven.DocumentStore
	searchIndex      driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	sourceStore      driven.SourceStore

	// defaultMode is the configured search mode, used when options do
	// not force one.
	defaultMode domain.SearchMode
}

// NewSearchService creates a new search service. The vector index,
// embedding service and LLM service are optional (can be nil); the
// service degrades to the best mode the available services support.
func NewSearchService(
	docStore driven.DocumentStore,
	searchIndex driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	llmService driven.LLMService,
	defaultMode domain.SearchMode,
) *SearchService {
	if !defaultMode.IsValid() {
		defaultMode = domain.SearchModeHybrid
	}
	return &SearchService{
		docStore:         docStore,
		searchIndex:      searchIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		llmService:       llmService,
		defaultMode:      defaultMode,
	}
}

// SetSourceStore sets the source store for SourceName enrichment.
func (s *SearchService) SetSourceStore(store driven.SourceStore) {
	s.sourceStore = store
}

// Search performs a search across the active collection.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	logger.Debug("Limit: %d, Offset: %d", limit, opts.Offset)

	// Request more results internally to leave room for the filters.
	internalLimit := limit * 3
	logger.Debug("Internal limit: %d", internalLimit)

	analysis := danish.Analyse(query)
	logger.Debug("Query analysis: %d law refs, %d case refs, %d section ids, %d concepts",
		len(analysis.LawRefs), len(analysis.CaseRefs), len(analysis.SectionIDs), len(analysis.Concepts))

	mode := s.effectiveMode(opts)
	logger.Info("Effective search mode: %s", mode.Description())

	var chunks []scoredChunk
	var err error

	switch mode {
	case domain.SearchModeKeyword:
		chunks, err = s.keywordSearch(ctx, query, internalLimit)
	case domain.SearchModeSemantic:
		chunks, err = s.vectorSearch(ctx, query, internalLimit)
	case domain.SearchModeHybrid:
		chunks, err = s.hybridSearch(ctx, query, internalLimit)
	default:
		chunks, err = s.keywordSearch(ctx, query, internalLimit)
	}

	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Debug("Raw results: %d chunks", len(chunks))

	results, err := s.hydrateResults(ctx, chunks, query)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	results = s.applyFilters(results, opts)
	logger.Debug("After filters: %d results", len(results))

	if !opts.NoBoost {
		s.applyBoosts(results, analysis)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	results = s.applyPagination(results, opts.Offset, limit)

	if opts.WithRelated {
		results = s.appendRelatedNotes(ctx, results, query)
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// Analyse extracts legal references, concepts and the question type
// from a query without running the search.
func (s *SearchService) Analyse(_ context.Context, query string) (*domain.QueryAnalysis, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	return danish.Analyse(query), nil
}

// effectiveMode determines the search mode based on options, settings
// and available services. It degrades gracefully when a required
// service is unavailable.
func (s *SearchService) effectiveMode(opts domain.SearchOptions) domain.SearchMode {
	canVector := s.vectorIndex != nil && s.embeddingService != nil
	canKeyword := s.searchIndex != nil

	requested := s.defaultMode
	switch {
	case opts.Hybrid:
		requested = domain.SearchModeHybrid
	case opts.Semantic:
		requested = domain.SearchModeSemantic
	}

	switch requested {
	case domain.SearchModeSemantic:
		if canVector {
			return domain.SearchModeSemantic
		}
		logger.Warn("Semantic search unavailable, falling back to keyword")
		return domain.SearchModeKeyword

	case domain.SearchModeHybrid:
		if canVector && canKeyword {
			return domain.SearchModeHybrid
		}
		if canVector {
			logger.Warn("Keyword engine unavailable, falling back to semantic")
			return domain.SearchModeSemantic
		}
		logger.Warn("Vector search unavailable, falling back to keyword")
		return domain.SearchModeKeyword

	default:
		return domain.SearchModeKeyword
	}
}

// keywordSearch performs full-text search via the keyword engine.
func (s *SearchService) keywordSearch(ctx context.Context, query string, limit int) ([]scoredChunk, error) {
	if s.searchIndex == nil {
		logger.Warn("Keyword search unavailable: search engine is nil")
		return nil, domain.ErrSearchUnavailable
	}

	logger.Debug("Keyword search: query=%q, limit=%d", query, limit)

	hits, err := s.searchIndex.Search(ctx, query, limit)
	if err != nil {
		logger.Warn("Keyword search error: %v", err)
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	logger.Debug("Keyword search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{
			chunkID: hit.ChunkID,
			score:   hit.Score,
			source:  "keyword",
		}
	}

	return results, nil
}

// vectorSearch performs semantic similarity search.
func (s *SearchService) vectorSearch(ctx context.Context, query string, limit int) ([]scoredChunk, error) {
	if s.vectorIndex == nil {
		logger.Warn("Vector search unavailable: vector index is nil")
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.embeddingService == nil {
		logger.Warn("Vector search unavailable: embedding service is nil")
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Vector search: query=%q, limit=%d", query, limit)

	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.vectorIndex.Search(ctx, embedding, limit)
	if err != nil {
		logger.Warn("Vector index search failed: %v", err)
		return nil, fmt.Errorf("vector search: %w", err)
	}

	logger.Debug("Vector search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{
			chunkID: hit.ChunkID,
			score:   hit.Similarity,
			source:  "vector",
		}
	}

	return results, nil
}

// hybridSearch combines keyword and vector search using RRF.
func (s *SearchService) hybridSearch(ctx context.Context, query string, limit int) ([]scoredChunk, error) {
	logger.Debug("Hybrid search: running keyword and vector searches in parallel")

	var keywordResults, vectorResults []scoredChunk
	var keywordErr, vectorErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		keywordResults, keywordErr = s.keywordSearch(ctx, query, limit)
	}()

	go func() {
		defer wg.Done()
		vectorResults, vectorErr = s.vectorSearch(ctx, query, limit)
	}()

	wg.Wait()

	// Degrade to the surviving list if one leg fails.
	if keywordErr != nil && vectorErr != nil {
		logger.Warn("Hybrid search: both keyword and vector searches failed")
		return nil, fmt.Errorf("hybrid search: keyword=%w, vector=%w", keywordErr, vectorErr)
	}

	if keywordErr != nil {
		logger.Warn("Hybrid search: keyword search failed, using vector results only")
		return vectorResults, nil
	}

	if vectorErr != nil {
		logger.Warn("Hybrid search: vector search failed, using keyword results only")
		return keywordResults, nil
	}

	logger.Debug("Hybrid search: merging %d keyword + %d vector results with RRF",
		len(keywordResults), len(vectorResults))
	merged := s.reciprocalRankFusion(keywordResults, vectorResults, rrfK)
	logger.Debug("Hybrid search: merged to %d results", len(merged))

	return merged, nil
}

// Merges two ranked lists using Reciprocal Rank Fusion (RRF).
// k is the constant (typically 60) to prevent high ranks from dominating.
//
//nolint:godot // Private method - no exported name to start with.
func (s *SearchService) reciprocalRankFusion(list1, list2 []scoredChunk, k int) []scoredChunk {
	scores := make(map[string]float64)
	seen := make(map[string]bool)

	for rank, chunk := range list1 {
		scores[chunk.chunkID] += 1.0 / float64(k+rank+1)
		seen[chunk.chunkID] = true
	}

	for rank, chunk := range list2 {
		scores[chunk.chunkID] += 1.0 / float64(k+rank+1)
		seen[chunk.chunkID] = true
	}

	results := make([]scoredChunk, 0, len(seen))
	for id := range seen {
		results = append(results, scoredChunk{
			chunkID: id,
			score:   scores[id],
			source:  "merged",
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	return results
}

// hydrateResults converts chunk IDs to full SearchResult objects.
func (s *SearchService) hydrateResults(
	ctx context.Context, chunks []scoredChunk, query string,
) ([]domain.SearchResult, error) {
	if s.docStore == nil {
		return nil, errors.New("document store unavailable")
	}

	results := make([]domain.SearchResult, 0, len(chunks))

	for _, sc := range chunks {
		chunk, err := s.docStore.GetChunk(ctx, sc.chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Chunk was deleted, skip it
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", sc.chunkID, err)
		}

		doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
		}

		results = append(results, domain.SearchResult{
			Document:   *doc,
			Chunk:      *chunk,
			Score:      sc.score,
			Highlights: s.generateHighlights(chunk.Content, query),
			SourceName: s.getSourceName(ctx, doc.SourceID),
		})
	}

	return results, nil
}

// applyFilters drops results the options exclude: wrong collection,
// source, document type, chunk type, or repealed rules when those are
// not asked for.
func (s *SearchService) applyFilters(results []domain.SearchResult, opts domain.SearchOptions) []domain.SearchResult {
	sourceSet := make(map[string]bool, len(opts.SourceIDs))
	for _, id := range opts.SourceIDs {
		sourceSet[id] = true
	}
	docTypeSet := make(map[domain.DocType]bool, len(opts.DocTypes))
	for _, t := range opts.DocTypes {
		docTypeSet[t] = true
	}
	chunkTypeSet := make(map[domain.ChunkType]bool, len(opts.ChunkTypes))
	for _, t := range opts.ChunkTypes {
		chunkTypeSet[t] = true
	}

	filtered := make([]domain.SearchResult, 0, len(results))
	for i := range results {
		r := &results[i]

		if opts.CollectionID != "" && r.Document.CollectionID != opts.CollectionID {
			continue
		}
		if len(sourceSet) > 0 && !sourceSet[r.Document.SourceID] {
			continue
		}
		if len(docTypeSet) > 0 && !docTypeSet[r.Document.DocType] {
			continue
		}
		if len(chunkTypeSet) > 0 && !chunkTypeSet[r.Chunk.Type] {
			continue
		}
		// Repealed rules are noise for current-law questions unless
		// history was asked for.
		if !opts.IncludeOphaevet &&
			(r.Chunk.LegalStatus == domain.LegalStatusOphaevet ||
				r.Chunk.LegalStatus == domain.LegalStatusHistorisk) {
			continue
		}

		filtered = append(filtered, *r)
	}

	return filtered
}

// applyBoosts raises the score of results whose legal metadata matches
// the query analysis. A chunk citing the exact paragraph the user
// asked about outranks plain text similarity.
func (s *SearchService) applyBoosts(results []domain.SearchResult, analysis *domain.QueryAnalysis) {
	for i := range results {
		r := &results[i]
		var boost float64

		for _, ref := range analysis.LawRefs {
			if chunkCitesLaw(&r.Chunk, ref) {
				boost += domain.BoostLawRef
				r.Boosts = append(r.Boosts, "lovhenvisning: "+ref.String())
			}
		}

		for _, caseRef := range analysis.CaseRefs {
			if chunkCitesCase(&r.Chunk, caseRef) {
				boost += domain.BoostCaseRef
				r.Boosts = append(r.Boosts, "afgørelse: "+caseRef)
			}
		}

		for _, sectionID := range analysis.SectionIDs {
			if strings.EqualFold(r.Chunk.Section, sectionID) {
				boost += domain.BoostSection
				r.Boosts = append(r.Boosts, "afsnit: "+sectionID)
			}
		}

		for _, concept := range analysis.Concepts {
			if chunkHasConcept(&r.Chunk, concept) {
				boost += domain.BoostConcept
				r.Boosts = append(r.Boosts, "begreb: "+concept)
			}
		}

		r.Score += boost * boostScale
	}
}

// chunkCitesLaw reports whether the chunk cites the referenced law
// paragraph. Matching is on law + paragraph; stk/nr narrow the match
// when the query has them.
func chunkCitesLaw(chunk *domain.Chunk, ref domain.LawRef) bool {
	for _, cr := range chunk.LawRefs {
		if ref.Law != "" && !strings.EqualFold(cr.Law, ref.Law) {
			continue
		}
		if !strings.EqualFold(cr.Paragraph, ref.Paragraph) {
			continue
		}
		if ref.Stk != "" && cr.Stk != ref.Stk {
			continue
		}
		return true
	}
	canonical := ref.String()
	for _, nr := range chunk.NormalisedLawRefs {
		if strings.EqualFold(nr, canonical) {
			return true
		}
	}
	return false
}

// chunkCitesCase reports whether the chunk cites the case.
func chunkCitesCase(chunk *domain.Chunk, caseRef string) bool {
	for _, cr := range chunk.NormalisedCaseRefs {
		if strings.EqualFold(cr, caseRef) {
			return true
		}
	}
	for _, cr := range chunk.CaseRefs {
		if strings.EqualFold(cr, caseRef) {
			return true
		}
	}
	return false
}

// chunkHasConcept reports whether the chunk is tagged with the concept.
func chunkHasConcept(chunk *domain.Chunk, concept string) bool {
	for _, c := range chunk.Concepts {
		if strings.EqualFold(c, concept) {
			return true
		}
	}
	return false
}

// appendRelatedNotes pulls in note chunks cross-referenced by the page
// results, marked Related and ranked after the direct hits.
func (s *SearchService) appendRelatedNotes(
	ctx context.Context, results []domain.SearchResult, query string,
) []domain.SearchResult {
	present := make(map[string]bool, len(results))
	for i := range results {
		present[results[i].Chunk.ID] = true
	}

	var related []domain.SearchResult
	for i := range results {
		if len(related) >= relatedLimit {
			break
		}
		for _, ref := range results[i].Chunk.CrossRefs {
			if present[ref.ChunkID] {
				continue
			}

			chunk, err := s.docStore.GetChunk(ctx, ref.ChunkID)
			if err != nil || chunk.Type != domain.ChunkTypeNote {
				continue
			}
			doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
			if err != nil {
				continue
			}

			present[ref.ChunkID] = true
			related = append(related, domain.SearchResult{
				Document:   *doc,
				Chunk:      *chunk,
				Score:      results[i].Score / 2,
				Related:    true,
				Highlights: s.generateHighlights(chunk.Content, query),
				SourceName: s.getSourceName(ctx, doc.SourceID),
			})
			if len(related) >= relatedLimit {
				break
			}
		}
	}

	return append(results, related...)
}

// generateHighlights creates text snippets with matched terms.
func (s *SearchService) generateHighlights(content, query string) []string {
	queryTerms := strings.Fields(strings.ToLower(query))
	if len(queryTerms) == 0 {
		return nil
	}

	sentences := splitSentences(content)

	var highlights []string

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		sentenceLower := strings.ToLower(sentence)
		for _, term := range queryTerms {
			if strings.Contains(sentenceLower, term) {
				highlight := sentence
				if len(highlight) > 200 {
					highlight = highlight[:200] + "..."
				}
				highlights = append(highlights, highlight)
				break
			}
		}

		if len(highlights) >= 3 {
			break // Limit to 3 highlights
		}
	}

	return highlights
}

// splitSentences splits content into sentences.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	// Don't forget the last sentence
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// applyPagination applies offset and limit to results.
func (s *SearchService) applyPagination(results []domain.SearchResult, offset, limit int) []domain.SearchResult {
	if offset >= len(results) {
		return []domain.SearchResult{}
	}

	end := offset + limit
	if end > len(results) {
		end = len(results)
	}

	return results[offset:end]
}

// getSourceName resolves the display name for a source. Falls back to
// "" when the source store is absent or the source is gone.
func (s *SearchService) getSourceName(ctx context.Context, sourceID string) string {
	if s.sourceStore == nil {
		return ""
	}

	source, err := s.sourceStore.Get(ctx, sourceID)
	if err != nil || source == nil {
		return ""
	}

	return source.DisplayName()
}
