package cli

// Shared service doubles for the command tests. setupTestServices
// swaps every wired service for a happy-path mock and returns a
// cleanup that restores the previous wiring.

import (
	"context"
	"errors"
	"time"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

func setupTestServices() func() {
	oldSearch := searchService
	oldAsk := askService
	oldSync := syncOrchestrator
	oldSource := sourceService
	oldDocument := documentService
	oldCollection := collectionService

	searchService = &mockSearchService{}
	askService = &mockAskService{}
	syncOrchestrator = &mockSyncOrchestrator{}
	sourceService = &mockSourceService{}
	documentService = &mockDocumentService{}
	collectionService = &mockCollectionService{}

	return func() {
		searchService = oldSearch
		askService = oldAsk
		syncOrchestrator = oldSync
		sourceService = oldSource
		documentService = oldDocument
		collectionService = oldCollection
	}
}

// Search service doubles

type mockSearchService struct{}

func (m *mockSearchService) Search(
	_ context.Context, _ string, _ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return []domain.SearchResult{
		{
			Document:   domain.Document{ID: "doc-1", Title: "Ligningsloven"},
			Chunk:      domain.Chunk{ID: "chunk-1", Section: "§ 9 C"},
			Score:      0.92,
			SourceName: "Skattelove",
			Highlights: []string{"befordring mellem hjem og arbejdsplads"},
			Boosts:     []string{"lovhenvisning: LL § 9 C"},
		},
		{
			Document: domain.Document{ID: "doc-2", Title: "Den juridiske vejledning C.A.4.3"},
			Chunk:    domain.Chunk{ID: "chunk-2"},
			Score:    0.61,
		},
	}, nil
}

func (m *mockSearchService) Analyse(_ context.Context, query string) (*domain.QueryAnalysis, error) {
	return &domain.QueryAnalysis{
		Query:        query,
		Concepts:     []string{"befordringsfradrag"},
		QuestionType: domain.QuestionDefinition,
	}, nil
}

type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(
	_ context.Context, _ string, _ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return nil, errors.New("index unavailable")
}

func (m *mockSearchServiceError) Analyse(_ context.Context, _ string) (*domain.QueryAnalysis, error) {
	return nil, errors.New("index unavailable")
}

// Ask service doubles

type mockAskService struct{}

func (m *mockAskService) Ask(
	_ context.Context, question string, _ driving.AskOptions,
) (*domain.Answer, error) {
	return &domain.Answer{
		Question: question,
		Text:     "Befordringsfradrag er et fradrag for transport mellem hjem og arbejde [1].",
		Model:    "gpt-4o-mini",
		Sources: []domain.Citation{
			{
				ChunkID:       "chunk-1",
				DocumentID:    "doc-1",
				DocumentTitle: "Ligningsloven",
				Reference:     "LL § 9 C",
				Score:         0.92,
			},
		},
	}, nil
}

type mockAskServiceError struct{}

func (m *mockAskServiceError) Ask(
	_ context.Context, _ string, _ driving.AskOptions,
) (*domain.Answer, error) {
	return nil, errors.New("generation failed")
}

type mockAskServiceLLMUnavailable struct{}

func (m *mockAskServiceLLMUnavailable) Ask(
	_ context.Context, _ string, _ driving.AskOptions,
) (*domain.Answer, error) {
	return nil, domain.ErrLLMUnavailable
}

// Sync orchestrator doubles

type mockSyncOrchestrator struct{}

func (m *mockSyncOrchestrator) Sync(_ context.Context, _ string) error {
	return nil
}

func (m *mockSyncOrchestrator) SyncAll(_ context.Context) error {
	return nil
}

func (m *mockSyncOrchestrator) Watch(_ context.Context, _ string) error {
	return nil
}

func (m *mockSyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{
		SourceID:           sourceID,
		DocumentsProcessed: 3,
		ChunksCreated:      12,
	}, nil
}

type mockSyncOrchestratorError struct{}

func (m *mockSyncOrchestratorError) Sync(_ context.Context, _ string) error {
	return errors.New("connector failed")
}

func (m *mockSyncOrchestratorError) SyncAll(_ context.Context) error {
	return errors.New("connector failed")
}

func (m *mockSyncOrchestratorError) Watch(_ context.Context, _ string) error {
	return errors.New("connector failed")
}

func (m *mockSyncOrchestratorError) Status(_ context.Context, _ string) (*driving.SyncStatus, error) {
	return nil, nil
}

// Source service doubles

type mockSourceService struct{}

func (m *mockSourceService) Add(_ context.Context, _ domain.Source) error {
	return nil
}

func (m *mockSourceService) Get(_ context.Context, id string) (*domain.Source, error) {
	return &domain.Source{ID: id, Name: "Skattelove", Type: "filesystem"}, nil
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return []domain.Source{
		{
			ID:        "src-1",
			Name:      "Skattelove",
			Type:      "filesystem",
			Config:    map[string]string{"path": "/data/love"},
			CreatedAt: time.Now(),
		},
	}, nil
}

func (m *mockSourceService) Remove(_ context.Context, _ string) error {
	return nil
}

func (m *mockSourceService) Update(_ context.Context, _ domain.Source) error {
	return nil
}

func (m *mockSourceService) ValidateConfig(_ context.Context, _ string, _ map[string]string) error {
	return nil
}

type mockSourceServiceEmpty struct {
	mockSourceService
}

func (m *mockSourceServiceEmpty) List(_ context.Context) ([]domain.Source, error) {
	return []domain.Source{}, nil
}

type mockSourceServiceError struct{}

func (m *mockSourceServiceError) Add(_ context.Context, _ domain.Source) error {
	return errors.New("store unavailable")
}

func (m *mockSourceServiceError) Get(_ context.Context, _ string) (*domain.Source, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockSourceServiceError) List(_ context.Context) ([]domain.Source, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockSourceServiceError) Remove(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}

func (m *mockSourceServiceError) Update(_ context.Context, _ domain.Source) error {
	return errors.New("store unavailable")
}

func (m *mockSourceServiceError) ValidateConfig(_ context.Context, _ string, _ map[string]string) error {
	return errors.New("store unavailable")
}

// Document service doubles

type mockDocumentService struct{}

func (m *mockDocumentService) ListBySource(_ context.Context, _ string) ([]domain.Document, error) {
	return []domain.Document{
		{
			ID:      "doc-1",
			Title:   "Test Document 1",
			DocType: domain.DocTypeLovtekst,
			URI:     "/data/love/ligningsloven.md",
		},
		{
			ID:      "doc-2",
			Title:   "Test Document 2",
			DocType: domain.DocTypeJuridiskVejledning,
			URI:     "/data/vejledning/ca43.md",
		},
	}, nil
}

func (m *mockDocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	return &domain.Document{
		ID:        documentID,
		Title:     "Test Document 1",
		DocType:   domain.DocTypeLovtekst,
		SourceID:  "src-1",
		URI:       "/data/love/ligningsloven.md",
		Metadata:  map[string]any{"format": "markdown"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return "This is the content of the test document.", nil
}

func (m *mockDocumentService) GetDetails(_ context.Context, documentID string) (*driving.DocumentDetails, error) {
	return &driving.DocumentDetails{
		ID:          documentID,
		SourceID:    "src-1",
		SourceName:  "Skattelove",
		Title:       "Test Document 1",
		URI:         "/data/love/ligningsloven.md",
		DocType:     "lovtekst",
		Identifier:  "LBK nr 42",
		LegalStatus: "gaeldende",
		ChunkCount:  5,
		ChunksByType: map[string]int{
			"paragraf": 4,
			"stk":      1,
		},
		Metadata:  map[string]string{"format": "markdown"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

func (m *mockDocumentService) Exclude(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockDocumentService) Refresh(_ context.Context, _ string) error {
	return nil
}

func (m *mockDocumentService) Open(_ context.Context, _ string) error {
	return nil
}

type mockDocumentServiceEmpty struct {
	mockDocumentService
}

func (m *mockDocumentServiceEmpty) ListBySource(_ context.Context, _ string) ([]domain.Document, error) {
	return []domain.Document{}, nil
}

type mockDocumentServiceNoMetadata struct {
	mockDocumentService
}

func (m *mockDocumentServiceNoMetadata) Get(_ context.Context, documentID string) (*domain.Document, error) {
	return &domain.Document{
		ID:       documentID,
		Title:    "Test Document 1",
		SourceID: "src-1",
	}, nil
}

func (m *mockDocumentServiceNoMetadata) GetDetails(
	_ context.Context, documentID string,
) (*driving.DocumentDetails, error) {
	return &driving.DocumentDetails{
		ID:         documentID,
		SourceID:   "src-1",
		SourceName: "Skattelove",
		Title:      "Test Document 1",
		ChunkCount: 3,
	}, nil
}

type mockDocumentServiceNoURI struct {
	mockDocumentService
}

func (m *mockDocumentServiceNoURI) ListBySource(_ context.Context, _ string) ([]domain.Document, error) {
	return []domain.Document{
		{ID: "doc-1", Title: "Test Document 1"},
	}, nil
}

type mockDocumentServiceError struct{}

func (m *mockDocumentServiceError) ListBySource(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockDocumentServiceError) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockDocumentServiceError) GetContent(_ context.Context, _ string) (string, error) {
	return "", errors.New("store unavailable")
}

func (m *mockDocumentServiceError) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockDocumentServiceError) Exclude(_ context.Context, _, _ string) error {
	return errors.New("store unavailable")
}

func (m *mockDocumentServiceError) Refresh(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}

func (m *mockDocumentServiceError) Open(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}

// Collection service doubles

type mockCollectionService struct{}

func (m *mockCollectionService) Create(_ context.Context, name, description string) (*domain.Collection, error) {
	return &domain.Collection{
		ID:             "col-new",
		Name:           name,
		Description:    description,
		EmbeddingModel: "text-embedding-3-small",
		Dimensions:     1536,
	}, nil
}

func (m *mockCollectionService) Get(_ context.Context, name string) (*domain.Collection, error) {
	return &domain.Collection{ID: "col-1", Name: name}, nil
}

func (m *mockCollectionService) List(_ context.Context) ([]domain.Collection, error) {
	return []domain.Collection{
		{
			ID:             "col-1",
			Name:           "standard",
			EmbeddingModel: "text-embedding-3-small",
			Dimensions:     1536,
		},
		{
			ID:          "col-2",
			Name:        "2024",
			Description: "Regler gaeldende for indkomstaaret 2024",
		},
	}, nil
}

func (m *mockCollectionService) Delete(_ context.Context, _ string) error {
	return nil
}

func (m *mockCollectionService) Rename(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockCollectionService) Merge(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockCollectionService) Use(_ context.Context, _ string) error {
	return nil
}

func (m *mockCollectionService) Active(_ context.Context) (*domain.Collection, error) {
	return &domain.Collection{ID: "col-1", Name: "standard"}, nil
}

func (m *mockCollectionService) Stats(_ context.Context, name string) (*domain.CollectionStats, error) {
	return &domain.CollectionStats{
		CollectionID: "col-1",
		Documents:    12,
		Chunks:       340,
		Embedded:     340,
		ByDocType: map[domain.DocType]int{
			domain.DocTypeLovtekst: 12,
		},
	}, nil
}

func (m *mockCollectionService) ImportLegacy(_ context.Context, name, _ string) (*domain.Collection, error) {
	return &domain.Collection{
		ID:   "col-imported",
		Name: name,
		Provenance: map[string]string{
			"langchain": "==0.1.16",
		},
	}, nil
}

type mockCollectionServiceError struct{}

func (m *mockCollectionServiceError) Create(_ context.Context, _, _ string) (*domain.Collection, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockCollectionServiceError) Get(_ context.Context, _ string) (*domain.Collection, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockCollectionServiceError) List(_ context.Context) ([]domain.Collection, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockCollectionServiceError) Delete(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}

func (m *mockCollectionServiceError) Rename(_ context.Context, _, _ string) error {
	return errors.New("store unavailable")
}

func (m *mockCollectionServiceError) Merge(_ context.Context, _, _ string) error {
	return errors.New("store unavailable")
}

func (m *mockCollectionServiceError) Use(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}

func (m *mockCollectionServiceError) Active(_ context.Context) (*domain.Collection, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockCollectionServiceError) Stats(_ context.Context, _ string) (*domain.CollectionStats, error) {
	return nil, errors.New("store unavailable")
}

func (m *mockCollectionServiceError) ImportLegacy(_ context.Context, _, _ string) (*domain.Collection, error) {
	return nil, errors.New("store unavailable")
}
