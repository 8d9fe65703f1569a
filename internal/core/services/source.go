package services

import (
	"context"
	"fmt"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService manages source configurations.
type SourceService struct {
	sourceStore driven.SourceStore
	syncStore   driven.SyncStateStore
	docStore    driven.DocumentStore
}

// NewSourceService creates a new source service.
func NewSourceService(
	sourceStore driven.SourceStore,
	syncStore driven.SyncStateStore,
	docStore driven.DocumentStore,
) *SourceService {
	return &SourceService{
		sourceStore: sourceStore,
		syncStore:   syncStore,
		docStore:    docStore,
	}
}

// Add creates a new source configuration.
func (s *SourceService) Add(ctx context.Context, source domain.Source) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	if source.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := ValidateSourceConfig(source.Type, source.Config); err != nil {
		return err
	}
	// Check if already exists
	existing, err := s.sourceStore.Get(ctx, source.ID)
	if err == nil && existing != nil {
		return domain.ErrAlreadyExists
	}
	return s.sourceStore.Save(ctx, &source)
}

// Get retrieves a source by ID.
func (s *SourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.sourceStore.Get(ctx, id)
}

// List returns all configured sources.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}

	sources, err := s.sourceStore.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Source, len(sources))
	for i, source := range sources {
		result[i] = *source
	}
	return result, nil
}

// Update modifies an existing source configuration.
func (s *SourceService) Update(ctx context.Context, source domain.Source) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	if source.ID == "" {
		return domain.ErrInvalidInput
	}
	// Verify source exists
	if _, err := s.sourceStore.Get(ctx, source.ID); err != nil {
		return domain.ErrNotFound
	}
	return s.sourceStore.Save(ctx, &source)
}

// Remove deletes a source and its indexed data.
func (s *SourceService) Remove(ctx context.Context, id string) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	// Cleanup: delete documents, sync state, then source
	if s.docStore != nil {
		//nolint:errcheck // Intentionally ignore errors to continue cleanup
		_, _ = s.docStore.DeleteBySourceID(ctx, id)
	}
	if s.syncStore != nil {
		//nolint:errcheck // Intentionally ignore errors to continue cleanup
		_ = s.syncStore.Delete(ctx, id)
	}
	return s.sourceStore.Delete(ctx, id)
}

// ValidateConfig validates source configuration for a connector type.
func (s *SourceService) ValidateConfig(_ context.Context, connectorType string, config map[string]string) error {
	if err := ValidateSourceConfig(connectorType, config); err != nil {
		return fmt.Errorf("validate %s config: %w", connectorType, err)
	}
	return nil
}
