package services

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/lovbase/paragraf/internal/connectors/filesystem"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// ErrRefreshNotImplemented is returned until single-document re-sync
// lands; use 'paragraf sync run' to refresh the whole source.
var ErrRefreshNotImplemented = errors.New("document refresh not yet implemented")

// DocumentService manages documents within sources.
type DocumentService struct {
	docStore       driven.DocumentStore
	sourceStore    driven.SourceStore
	exclusionStore driven.ExclusionStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	sourceStore driven.SourceStore,
	exclusionStore driven.ExclusionStore,
) *DocumentService {
	return &DocumentService{
		docStore:       docStore,
		sourceStore:    sourceStore,
		exclusionStore: exclusionStore,
	}
}

// ListBySource returns all documents for a source.
func (s *DocumentService) ListBySource(ctx context.Context, sourceID string) ([]domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}

	docs, err := s.docStore.ListDocuments(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Document, len(docs))
	for i, doc := range docs {
		result[i] = *doc
	}
	return result, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.GetDocument(ctx, documentID)
}

// GetContent returns the concatenated content of all chunks.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	if s.docStore == nil {
		return "", domain.ErrNotImplemented
	}

	// Verify document exists
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return "", err
	}

	// Chunks come back ordered by position.
	chunks, err := s.docStore.GetChunksByDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(chunk.Content)
	}

	return builder.String(), nil
}

// GetDetails returns metadata for display.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	var sourceName string
	if s.sourceStore != nil {
		source, err := s.sourceStore.Get(ctx, doc.SourceID)
		if err == nil && source != nil {
			sourceName = source.Name
		}
	}

	chunks, err := s.docStore.GetChunksByDocument(ctx, documentID)
	if err != nil {
		chunks = nil
	}

	chunksByType := make(map[string]int)
	for _, chunk := range chunks {
		chunksByType[chunk.Type.String()]++
	}

	// Flatten metadata to string map
	metadata := make(map[string]string)
	for key, value := range doc.Metadata {
		metadata[key] = fmt.Sprintf("%v", value)
	}

	return &driving.DocumentDetails{
		ID:           doc.ID,
		SourceID:     doc.SourceID,
		SourceName:   sourceName,
		Title:        doc.Title,
		URI:          doc.URI,
		DocType:      doc.DocType.String(),
		Identifier:   doc.Identifier,
		LegalStatus:  summariseLegalStatus(chunks),
		ChunkCount:   len(chunks),
		ChunksByType: chunksByType,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		Metadata:     metadata,
	}, nil
}

// summariseLegalStatus collapses per-chunk statuses into one line for
// display: gaeldende unless every chunk agrees on something else.
func summariseLegalStatus(chunks []*domain.Chunk) string {
	if len(chunks) == 0 {
		return domain.LegalStatusGaeldende.String()
	}

	first := chunks[0].LegalStatus
	for _, chunk := range chunks[1:] {
		if chunk.LegalStatus != first {
			return domain.LegalStatusGaeldende.String()
		}
	}
	if !first.IsValid() {
		return domain.LegalStatusGaeldende.String()
	}
	return first.String()
}

// Exclude removes a document and marks it to skip during re-sync.
func (s *DocumentService) Exclude(ctx context.Context, documentID, reason string) error {
	if s.docStore == nil {
		return domain.ErrNotImplemented
	}

	// Get document first to capture URI
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if s.exclusionStore != nil {
		exclusion := &domain.Exclusion{
			ID:         fmt.Sprintf("excl-%s", documentID),
			SourceID:   doc.SourceID,
			DocumentID: documentID,
			URI:        doc.URI,
			Reason:     reason,
			ExcludedAt: time.Now(),
		}
		if err := s.exclusionStore.Add(ctx, exclusion); err != nil {
			return fmt.Errorf("failed to add exclusion: %w", err)
		}
	}

	return s.docStore.DeleteDocument(ctx, documentID)
}

// Refresh re-syncs a single document from its source.
func (s *DocumentService) Refresh(_ context.Context, _ string) error {
	return ErrRefreshNotImplemented
}

// Open opens the document in the default application.
func (s *DocumentService) Open(ctx context.Context, documentID string) error {
	if s.docStore == nil {
		return domain.ErrNotImplemented
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	return openURL(filesystem.ResolveWebURL(doc.URI, doc.Metadata))
}

// openURL opens a URL/path using the system default handler.
func openURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
