package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovbase/paragraf/internal/adapters/driven/storage/memory"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// --- Mock implementations (shared across service tests) ---

// mockSearchEngine implements driven.SearchEngine for testing.
type mockSearchEngine struct {
	hits      []driven.SearchHit
	searchErr error
	indexErr  error
	deleteErr error
	indexed   []string
	deleted   []string
}

func (m *mockSearchEngine) Index(_ context.Context, chunk *domain.Chunk) error {
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexed = append(m.indexed, chunk.ID)
	return nil
}

func (m *mockSearchEngine) Delete(_ context.Context, documentID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, documentID)
	return nil
}

func (m *mockSearchEngine) Search(_ context.Context, _ string, limit int) ([]driven.SearchHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:limit], nil
}

func (m *mockSearchEngine) Close() error {
	return nil
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	addErr    error
	deleteErr error
	added     []string
	deleted   []string
}

func (m *mockVectorIndex) Add(_ context.Context, chunkID string, _ []float32) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunkID)
	return nil
}

func (m *mockVectorIndex) Delete(_ context.Context, chunkID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, chunkID)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Len() int {
	return len(m.added)
}

func (m *mockVectorIndex) Save() error {
	return nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	dims      int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 384
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	rewriteResult string
	rewriteErr    error
	answerResult  string
	answerErr     error
	analysis      *driven.DocumentAnalysis
	analysisErr   error
	chunks        []driven.ExtractedChunk
	chunksErr     error

	// lastContextBlock records what Answer received, for assertions.
	lastContextBlock string
	lastAnswerOpts   driven.AnswerOptions
}

func (m *mockLLMService) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return "", nil
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "", nil
}

func (m *mockLLMService) RewriteQuery(_ context.Context, query string) (string, error) {
	if m.rewriteErr != nil {
		return "", m.rewriteErr
	}
	if m.rewriteResult != "" {
		return m.rewriteResult, nil
	}
	return query, nil
}

func (m *mockLLMService) AnalyseDocument(_ context.Context, _ string, _ string) (*driven.DocumentAnalysis, error) {
	if m.analysisErr != nil {
		return nil, m.analysisErr
	}
	if m.analysis != nil {
		return m.analysis, nil
	}
	return &driven.DocumentAnalysis{Title: "mock"}, nil
}

func (m *mockLLMService) ExtractChunks(_ context.Context, _ string, _ string) ([]driven.ExtractedChunk, error) {
	if m.chunksErr != nil {
		return nil, m.chunksErr
	}
	return m.chunks, nil
}

func (m *mockLLMService) Answer(_ context.Context, _, contextBlock string, opts driven.AnswerOptions) (string, error) {
	m.lastContextBlock = contextBlock
	m.lastAnswerOpts = opts
	if m.answerErr != nil {
		return "", m.answerErr
	}
	if m.answerResult != "" {
		return m.answerResult, nil
	}
	return "Svar baseret på [1].", nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// --- Test helpers ---

func setupTestDocStore(t *testing.T) *memory.DocumentStore {
	t.Helper()
	store := memory.NewDocumentStore()
	ctx := context.Background()
	now := time.Now()

	docs := []struct {
		id      string
		source  string
		title   string
		docType domain.DocType
		chunk   domain.Chunk
	}{
		{
			id: "doc-1", source: "src-1", title: "Ligningsloven", docType: domain.DocTypeLovtekst,
			chunk: domain.Chunk{
				Content:     "§ 9 C. Befordringsfradrag beregnes efter afstanden mellem hjem og arbejdsplads.",
				Type:        domain.ChunkTypeRegel,
				Section:     "§ 9 C",
				LawRefs:     []domain.LawRef{{Law: "LL", Paragraph: "9 C"}},
				Concepts:    []string{"befordringsfradrag"},
				LegalStatus: domain.LegalStatusGaeldende,
			},
		},
		{
			id: "doc-2", source: "src-1", title: "Den juridiske vejledning C.A.4.3", docType: domain.DocTypeJuridiskVejledning,
			chunk: domain.Chunk{
				Content:     "Befordringsfradrag gives for kørsel mellem sædvanlig bopæl og arbejdsplads.",
				Type:        domain.ChunkTypeAfsnit,
				Section:     "C.A.4.3",
				LegalStatus: domain.LegalStatusGaeldende,
			},
		},
		{
			id: "doc-3", source: "src-2", title: "Ophævet cirkulære", docType: domain.DocTypeCirkulaere,
			chunk: domain.Chunk{
				Content:     "Denne regel om befordringsfradrag er ophævet.",
				Type:        domain.ChunkTypeRegel,
				LegalStatus: domain.LegalStatusOphaevet,
			},
		},
	}

	for _, d := range docs {
		doc := &domain.Document{
			ID:        d.id,
			SourceID:  d.source,
			URI:       "/corpus/" + d.id + ".txt",
			Title:     d.title,
			DocType:   d.docType,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, store.SaveDocument(ctx, doc))

		chunk := d.chunk
		chunk.ID = "chunk-" + d.id
		chunk.DocumentID = d.id
		require.NoError(t, store.SaveChunks(ctx, d.id, []domain.Chunk{chunk}))
	}

	return store
}

func createTestHits() []driven.SearchHit {
	return []driven.SearchHit{
		{ChunkID: "chunk-doc-1", Score: 0.9},
		{ChunkID: "chunk-doc-2", Score: 0.8},
		{ChunkID: "chunk-doc-3", Score: 0.7},
	}
}

func createTestVectorHits() []driven.VectorHit {
	return []driven.VectorHit{
		{ChunkID: "chunk-doc-2", Similarity: 0.95},
		{ChunkID: "chunk-doc-1", Similarity: 0.85},
		{ChunkID: "chunk-doc-3", Similarity: 0.75},
	}
}

// --- Tests ---

func TestNewSearchService(t *testing.T) {
	docStore := memory.NewDocumentStore()
	service := NewSearchService(docStore, nil, nil, nil, nil, domain.SearchModeKeyword)

	require.NotNil(t, service)
	assert.NotNil(t, service.docStore)
}

func TestSearchService_Search_EmptyQuery(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_Search_WhitespaceQuery(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "   \t\n  ", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_Search_KeywordOnly(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "befordringsfradrag", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Len(t, results, 2) // doc-3 is ophaevet and filtered by default

	for _, r := range results {
		assert.NotEmpty(t, r.Document.ID)
		assert.NotEmpty(t, r.Document.Title)
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestSearchService_Search_HybridMode(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	vectorIndex := &mockVectorIndex{hits: createTestVectorHits()}
	embedService := &mockEmbeddingService{embedding: make([]float32, 384)}
	service := NewSearchService(docStore, searchEngine, vectorIndex, embedService, nil, domain.SearchModeHybrid)
	ctx := context.Background()

	results, err := service.Search(ctx, "befordringsfradrag", domain.SearchOptions{
		Hybrid: true,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchService_Search_SemanticMode(t *testing.T) {
	docStore := setupTestDocStore(t)
	vectorIndex := &mockVectorIndex{hits: createTestVectorHits()}
	embedService := &mockEmbeddingService{embedding: make([]float32, 384)}
	service := NewSearchService(docStore, nil, vectorIndex, embedService, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "kørsel mellem hjem og arbejde", domain.SearchOptions{
		Semantic: true,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchService_Search_LimitOption(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{
		Limit: 1,
	})

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchService_Search_OffsetOption(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	allResults, err := service.Search(ctx, "fradrag", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, allResults, 2)

	offsetResults, err := service.Search(ctx, "fradrag", domain.SearchOptions{
		Offset: 1,
	})
	require.NoError(t, err)
	assert.Len(t, offsetResults, 1)
}

func TestSearchService_Search_SourceIDFilter(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{
		SourceIDs: []string{"src-1"},
	})

	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "src-1", r.Document.SourceID)
	}
}

func TestSearchService_Search_DocTypeFilter(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{
		DocTypes: []domain.DocType{domain.DocTypeLovtekst},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.DocTypeLovtekst, results[0].Document.DocType)
}

func TestSearchService_Search_ChunkTypeFilter(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{
		ChunkTypes: []domain.ChunkType{domain.ChunkTypeRegel},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ChunkTypeRegel, results[0].Chunk.Type)
}

func TestSearchService_Search_OphaevetExcludedByDefault(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{})

	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, domain.LegalStatusOphaevet, r.Chunk.LegalStatus)
	}
}

func TestSearchService_Search_IncludeOphaevet(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{
		IncludeOphaevet: true,
	})

	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchService_Search_LawRefBoost(t *testing.T) {
	docStore := setupTestDocStore(t)
	// Keyword engine ranks the guidance chunk first; the law-ref boost
	// must lift the chunk that actually cites LL § 9 C above it.
	hits := []driven.SearchHit{
		{ChunkID: "chunk-doc-2", Score: 0.9},
		{ChunkID: "chunk-doc-1", Score: 0.8},
	}
	searchEngine := &mockSearchEngine{hits: hits}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "LL § 9 C befordringsfradrag", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "doc-1", results[0].Document.ID)
	assert.NotEmpty(t, results[0].Boosts)
}

func TestSearchService_Search_NoBoost(t *testing.T) {
	docStore := setupTestDocStore(t)
	hits := []driven.SearchHit{
		{ChunkID: "chunk-doc-2", Score: 0.9},
		{ChunkID: "chunk-doc-1", Score: 0.8},
	}
	searchEngine := &mockSearchEngine{hits: hits}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "LL § 9 C befordringsfradrag", domain.SearchOptions{
		NoBoost: true,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	// Raw engine order preserved.
	assert.Equal(t, "doc-2", results[0].Document.ID)
	assert.Empty(t, results[0].Boosts)
}

func TestSearchService_Search_WithRelated(t *testing.T) {
	docStore := setupTestDocStore(t)
	ctx := context.Background()

	// A note chunk cross-referenced from the § 9 C rule chunk.
	note := domain.Chunk{
		ID:          "chunk-note-1",
		DocumentID:  "doc-1",
		Content:     "Note 301: Se SKM2023.123.SR om afstandsberegning.",
		Position:    1,
		Type:        domain.ChunkTypeNote,
		LegalStatus: domain.LegalStatusGaeldende,
	}
	rule, err := docStore.GetChunk(ctx, "chunk-doc-1")
	require.NoError(t, err)
	linked := *rule
	linked.CrossRefs = []domain.CrossRef{{ChunkID: "chunk-note-1", Relation: domain.RelationSameSection, Weight: 3}}
	require.NoError(t, docStore.SaveChunks(ctx, "doc-1", []domain.Chunk{linked, note}))

	searchEngine := &mockSearchEngine{hits: []driven.SearchHit{{ChunkID: "chunk-doc-1", Score: 0.9}}}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)

	results, err := service.Search(ctx, "befordringsfradrag", domain.SearchOptions{
		WithRelated: true,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Related)
	assert.True(t, results[1].Related)
	assert.Equal(t, "chunk-note-1", results[1].Chunk.ID)
	assert.Less(t, results[1].Score, results[0].Score)
}

func TestSearchService_Search_NoSearchEngine(t *testing.T) {
	docStore := setupTestDocStore(t)
	service := NewSearchService(docStore, nil, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	_, err := service.Search(ctx, "test", domain.SearchOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}

func TestSearchService_Search_SearchEngineError(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{searchErr: errors.New("search failed")}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	_, err := service.Search(ctx, "test", domain.SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchService_Search_VectorSearchError_Degrades(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	vectorIndex := &mockVectorIndex{searchErr: errors.New("vector failed")}
	embedService := &mockEmbeddingService{embedding: make([]float32, 384)}
	service := NewSearchService(docStore, searchEngine, vectorIndex, embedService, nil, domain.SearchModeHybrid)
	ctx := context.Background()

	// Hybrid should degrade to keyword-only when vector fails.
	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{
		Hybrid: true,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchService_Search_EmbeddingError_Degrades(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	vectorIndex := &mockVectorIndex{hits: createTestVectorHits()}
	embedService := &mockEmbeddingService{embedErr: errors.New("embed failed")}
	service := NewSearchService(docStore, searchEngine, vectorIndex, embedService, nil, domain.SearchModeHybrid)
	ctx := context.Background()

	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{
		Hybrid: true,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestSearchService_Search_MissingChunk_Skipped(t *testing.T) {
	docStore := setupTestDocStore(t)
	hits := []driven.SearchHit{
		{ChunkID: "chunk-doc-1", Score: 0.9},
		{ChunkID: "non-existent-chunk", Score: 0.85},
		{ChunkID: "chunk-doc-2", Score: 0.8},
	}
	searchEngine := &mockSearchEngine{hits: hits}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "fradrag", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Len(t, results, 2) // Missing chunk should be skipped.
}

func TestSearchService_Search_Highlights(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(docStore, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	results, err := service.Search(ctx, "befordringsfradrag", domain.SearchOptions{})

	require.NoError(t, err)
	require.NotEmpty(t, results)

	foundHighlight := false
	for _, r := range results {
		if len(r.Highlights) > 0 {
			foundHighlight = true
		}
	}
	assert.True(t, foundHighlight, "should have generated highlights")
}

func TestSearchService_Analyse(t *testing.T) {
	service := NewSearchService(nil, nil, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	analysis, err := service.Analyse(ctx, "Hvad er satsen for befordringsfradrag efter LL § 9 C?")

	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, domain.QuestionRate, analysis.QuestionType)
	require.NotEmpty(t, analysis.LawRefs)
	assert.Equal(t, "LL", analysis.LawRefs[0].Law)
	assert.Equal(t, "9 C", analysis.LawRefs[0].Paragraph)
	assert.Contains(t, analysis.Concepts, "befordringsfradrag")
}

func TestSearchService_Analyse_EmptyQuery(t *testing.T) {
	service := NewSearchService(nil, nil, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	_, err := service.Analyse(ctx, "   ")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchService_effectiveMode(t *testing.T) {
	tests := []struct {
		name         string
		hasKeyword   bool
		hasVector    bool
		hasEmbedding bool
		defaultMode  domain.SearchMode
		opts         domain.SearchOptions
		expectedMode domain.SearchMode
	}{
		{
			name:         "keyword when nothing else available",
			hasKeyword:   true,
			defaultMode:  domain.SearchModeHybrid,
			expectedMode: domain.SearchModeKeyword,
		},
		{
			name:         "hybrid when everything available",
			hasKeyword:   true,
			hasVector:    true,
			hasEmbedding: true,
			defaultMode:  domain.SearchModeHybrid,
			expectedMode: domain.SearchModeHybrid,
		},
		{
			name:         "semantic default honoured",
			hasKeyword:   true,
			hasVector:    true,
			hasEmbedding: true,
			defaultMode:  domain.SearchModeSemantic,
			expectedMode: domain.SearchModeSemantic,
		},
		{
			name:         "semantic option forces semantic",
			hasKeyword:   true,
			hasVector:    true,
			hasEmbedding: true,
			defaultMode:  domain.SearchModeKeyword,
			opts:         domain.SearchOptions{Semantic: true},
			expectedMode: domain.SearchModeSemantic,
		},
		{
			name:         "hybrid option degrades to keyword without vector",
			hasKeyword:   true,
			defaultMode:  domain.SearchModeKeyword,
			opts:         domain.SearchOptions{Hybrid: true},
			expectedMode: domain.SearchModeKeyword,
		},
		{
			name:         "hybrid degrades to semantic without keyword engine",
			hasVector:    true,
			hasEmbedding: true,
			defaultMode:  domain.SearchModeHybrid,
			expectedMode: domain.SearchModeSemantic,
		},
		{
			name:         "semantic degrades to keyword without embedder",
			hasKeyword:   true,
			hasVector:    true,
			defaultMode:  domain.SearchModeSemantic,
			expectedMode: domain.SearchModeKeyword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var searchEngine driven.SearchEngine
			var vectorIndex driven.VectorIndex
			var embedService driven.EmbeddingService

			if tt.hasKeyword {
				searchEngine = &mockSearchEngine{}
			}
			if tt.hasVector {
				vectorIndex = &mockVectorIndex{}
			}
			if tt.hasEmbedding {
				embedService = &mockEmbeddingService{}
			}

			service := NewSearchService(nil, searchEngine, vectorIndex, embedService, nil, tt.defaultMode)
			mode := service.effectiveMode(tt.opts)

			assert.Equal(t, tt.expectedMode, mode)
		})
	}
}

func TestSearchService_reciprocalRankFusion(t *testing.T) {
	service := &SearchService{}

	list1 := []scoredChunk{
		{chunkID: "a", score: 1.0},
		{chunkID: "b", score: 0.9},
		{chunkID: "c", score: 0.8},
	}
	list2 := []scoredChunk{
		{chunkID: "b", score: 1.0},
		{chunkID: "d", score: 0.9},
		{chunkID: "a", score: 0.8},
	}

	merged := service.reciprocalRankFusion(list1, list2, 60)

	require.NotEmpty(t, merged)
	// "b" should be at top (appears in both lists with good ranks).
	assert.Equal(t, "b", merged[0].chunkID)
	ids := make(map[string]bool)
	for _, c := range merged {
		ids[c.chunkID] = true
	}
	assert.True(t, ids["a"])
	assert.True(t, ids["b"])
	assert.True(t, ids["c"])
	assert.True(t, ids["d"])
}

func TestSearchService_splitSentences(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected int
	}{
		{
			name:     "single sentence",
			content:  "This is a sentence.",
			expected: 1,
		},
		{
			name:     "multiple sentences",
			content:  "First sentence. Second sentence! Third sentence?",
			expected: 3,
		},
		{
			name:     "with newlines",
			content:  "Line one\nLine two\nLine three",
			expected: 3,
		},
		{
			name:     "empty content",
			content:  "",
			expected: 0,
		},
		{
			name:     "trailing content",
			content:  "Sentence one. Trailing content without terminator",
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentences := splitSentences(tt.content)
			assert.Len(t, sentences, tt.expected)
		})
	}
}

func TestSearchService_generateHighlights(t *testing.T) {
	service := &SearchService{}

	tests := []struct {
		name        string
		content     string
		query       string
		expectEmpty bool
	}{
		{
			name:        "matching query",
			content:     "Befordringsfradrag beregnes pr. kilometer. Satsen fastsættes årligt.",
			query:       "befordringsfradrag",
			expectEmpty: false,
		},
		{
			name:        "no match",
			content:     "This content has nothing relevant.",
			query:       "banana",
			expectEmpty: true,
		},
		{
			name:        "empty query",
			content:     "Some content here.",
			query:       "",
			expectEmpty: true,
		},
		{
			name:        "case insensitive",
			content:     "FRADRAG gives efter reglerne. Fradrag kræver dokumentation!",
			query:       "fradrag",
			expectEmpty: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			highlights := service.generateHighlights(tt.content, tt.query)
			if tt.expectEmpty {
				assert.Empty(t, highlights)
			} else {
				assert.NotEmpty(t, highlights)
			}
		})
	}
}

func TestSearchService_applyPagination(t *testing.T) {
	service := &SearchService{}

	results := make([]domain.SearchResult, 10)
	for i := range results {
		results[i] = domain.SearchResult{Score: float64(10 - i)}
	}

	tests := []struct {
		name     string
		offset   int
		limit    int
		expected int
	}{
		{"no pagination", 0, 20, 10},
		{"limit only", 0, 5, 5},
		{"offset only", 3, 20, 7},
		{"offset and limit", 2, 3, 3},
		{"offset beyond length", 15, 5, 0},
		{"partial end", 8, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paginated := service.applyPagination(results, tt.offset, tt.limit)
			assert.Len(t, paginated, tt.expected)
		})
	}
}

func TestSearchService_Search_BothSearchesFail(t *testing.T) {
	docStore := setupTestDocStore(t)
	searchEngine := &mockSearchEngine{searchErr: errors.New("keyword failed")}
	vectorIndex := &mockVectorIndex{searchErr: errors.New("vector failed")}
	embedService := &mockEmbeddingService{embedding: make([]float32, 384)}
	service := NewSearchService(docStore, searchEngine, vectorIndex, embedService, nil, domain.SearchModeHybrid)
	ctx := context.Background()

	_, err := service.Search(ctx, "test", domain.SearchOptions{Hybrid: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyword")
	assert.Contains(t, err.Error(), "vector")
}

func TestSearchService_Search_NilDocStore(t *testing.T) {
	searchEngine := &mockSearchEngine{hits: createTestHits()}
	service := NewSearchService(nil, searchEngine, nil, nil, nil, domain.SearchModeKeyword)
	ctx := context.Background()

	_, err := service.Search(ctx, "test", domain.SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document store unavailable")
}
