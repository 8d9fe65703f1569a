package mcp

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	analysis *domain.QueryAnalysis
	err      error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return m.results, m.err
}

func (m *mockSearchService) Analyse(_ context.Context, _ string) (*domain.QueryAnalysis, error) {
	return m.analysis, m.err
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAskService) Ask(
	_ context.Context,
	_ string,
	_ driving.AskOptions,
) (*domain.Answer, error) {
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	details   *driving.DocumentDetails
	err       error
}

func (m *mockDocumentService) ListBySource(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return m.details, m.err
}

func (m *mockDocumentService) Exclude(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockDocumentService) Refresh(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) Open(_ context.Context, _ string) error {
	return m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	collections []domain.Collection
	collection  *domain.Collection
	active      *domain.Collection
	stats       *domain.CollectionStats
	err         error
}

func (m *mockCollectionService) Create(_ context.Context, _, _ string) (*domain.Collection, error) {
	return m.collection, m.err
}

func (m *mockCollectionService) Get(_ context.Context, _ string) (*domain.Collection, error) {
	return m.collection, m.err
}

func (m *mockCollectionService) List(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockCollectionService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCollectionService) Rename(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockCollectionService) Merge(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockCollectionService) Use(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCollectionService) Active(_ context.Context) (*domain.Collection, error) {
	if m.active != nil {
		return m.active, nil
	}
	return m.collection, m.err
}

func (m *mockCollectionService) Stats(_ context.Context, _ string) (*domain.CollectionStats, error) {
	return m.stats, m.err
}

func (m *mockCollectionService) ImportLegacy(_ context.Context, _, _ string) (*domain.Collection, error) {
	return m.collection, m.err
}
