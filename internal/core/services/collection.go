package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
	"github.com/lovbase/paragraf/internal/logger"
	"github.com/lovbase/paragraf/internal/manifest"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService manages collections: named bundles of documents
// with their own indexes, each pinned to one embedding model.
type CollectionService struct {
	collectionStore driven.CollectionStore
	docStore        driven.DocumentStore
	configStore     driven.ConfigStore
	searchIndex     driven.SearchEngine
	vectorIndex     driven.VectorIndex
	settings        driving.SettingsService
}

// NewCollectionService creates a new collection service. The vector
// index may be nil when semantic search is disabled.
func NewCollectionService(
	collectionStore driven.CollectionStore,
	docStore driven.DocumentStore,
	configStore driven.ConfigStore,
	searchIndex driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	settings driving.SettingsService,
) *CollectionService {
	return &CollectionService{
		collectionStore: collectionStore,
		docStore:        docStore,
		configStore:     configStore,
		searchIndex:     searchIndex,
		vectorIndex:     vectorIndex,
		settings:        settings,
	}
}

// Create makes a new empty collection pinned to the current embedding
// settings.
func (s *CollectionService) Create(ctx context.Context, name, description string) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}

	if existing, err := s.collectionStore.GetByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: collection %q", domain.ErrAlreadyExists, name)
	}

	collection := &domain.Collection{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// Pin the collection to the embedding model in effect at creation.
	// Vectors from different models live in incompatible spaces.
	if s.settings != nil {
		if appSettings, err := s.settings.Get(); err == nil && appSettings.Embedding.IsConfigured() {
			collection.EmbeddingModel = appSettings.Embedding.Model
			collection.Dimensions = appSettings.VectorIndex.Dimensions
		}
	}

	if err := s.collectionStore.Save(ctx, collection); err != nil {
		return nil, fmt.Errorf("save collection: %w", err)
	}
	return collection, nil
}

// Get retrieves a collection by name.
func (s *CollectionService) Get(ctx context.Context, name string) (*domain.Collection, error) {
	return s.collectionStore.GetByName(ctx, name)
}

// List returns all collections.
func (s *CollectionService) List(ctx context.Context) ([]domain.Collection, error) {
	collections, err := s.collectionStore.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Collection, len(collections))
	for i, collection := range collections {
		result[i] = *collection
	}
	return result, nil
}

// Delete removes a collection and all its documents, chunks and
// vectors. The active collection cannot be deleted.
func (s *CollectionService) Delete(ctx context.Context, name string) error {
	collection, err := s.collectionStore.GetByName(ctx, name)
	if err != nil {
		return err
	}

	if name == s.activeName() {
		return fmt.Errorf("%w: collection %q is active, switch first with 'paragraf collection use'",
			domain.ErrInvalidInput, name)
	}

	// Remove vectors before the chunks they belong to disappear.
	if s.vectorIndex != nil {
		chunks, err := s.docStore.GetChunksByCollection(ctx, collection.ID)
		if err != nil {
			return fmt.Errorf("get chunks: %w", err)
		}
		for _, chunk := range chunks {
			if err := s.vectorIndex.Delete(ctx, chunk.ID); err != nil {
				logger.Debug("Failed to delete vector %s: %v", chunk.ID, err)
			}
		}
	}

	docs, err := s.docStore.ListDocumentsByCollection(ctx, collection.ID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, doc := range docs {
		if s.searchIndex != nil {
			if err := s.searchIndex.Delete(ctx, doc.ID); err != nil {
				logger.Debug("Failed to delete search index entries for %s: %v", doc.ID, err)
			}
		}
		if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete document %s: %w", doc.ID, err)
		}
	}

	return s.collectionStore.Delete(ctx, collection.ID)
}

// Rename changes a collection's name. The active-collection pointer
// follows the rename.
func (s *CollectionService) Rename(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}
	if newName == oldName {
		return nil
	}

	collection, err := s.collectionStore.GetByName(ctx, oldName)
	if err != nil {
		return err
	}
	if existing, err := s.collectionStore.GetByName(ctx, newName); err == nil && existing != nil {
		return fmt.Errorf("%w: collection %q", domain.ErrAlreadyExists, newName)
	}

	collection.Name = newName
	collection.UpdatedAt = time.Now()
	if err := s.collectionStore.Save(ctx, collection); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}

	if oldName == s.activeName() {
		s.configStore.Set(keyActiveCollection, newName)
		if err := s.configStore.Save(); err != nil {
			return fmt.Errorf("save active collection: %w", err)
		}
	}

	logger.Info("Renamed collection %q to %q", oldName, newName)
	return nil
}

// Merge moves every document of collection src into collection dst
// and deletes src. Chunks and their embeddings follow their documents,
// so the merge is only allowed between collections pinned to the same
// embedding model.
func (s *CollectionService) Merge(ctx context.Context, src, dst string) error {
	if src == dst {
		return fmt.Errorf("%w: cannot merge a collection into itself", domain.ErrInvalidInput)
	}

	source, err := s.collectionStore.GetByName(ctx, src)
	if err != nil {
		return err
	}
	target, err := s.collectionStore.GetByName(ctx, dst)
	if err != nil {
		return err
	}

	if source.EmbeddingModel != target.EmbeddingModel || source.Dimensions != target.Dimensions {
		return fmt.Errorf("%w: collections are pinned to different embedding models (%s/%d vs %s/%d)",
			domain.ErrInvalidInput,
			source.EmbeddingModel, source.Dimensions,
			target.EmbeddingModel, target.Dimensions)
	}
	if src == s.activeName() {
		return fmt.Errorf("%w: collection %q is active, switch first with 'paragraf collection use'",
			domain.ErrInvalidInput, src)
	}

	docs, err := s.docStore.ListDocumentsByCollection(ctx, source.ID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, doc := range docs {
		doc.CollectionID = target.ID
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return fmt.Errorf("move document %s: %w", doc.ID, err)
		}
	}

	target.UpdatedAt = time.Now()
	if err := s.collectionStore.Save(ctx, target); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	if err := s.collectionStore.Delete(ctx, source.ID); err != nil {
		return fmt.Errorf("delete merged collection: %w", err)
	}

	logger.Info("Merged collection %q into %q (%d documents)", src, dst, len(docs))
	return nil
}

// Use switches the active collection.
func (s *CollectionService) Use(ctx context.Context, name string) error {
	if _, err := s.collectionStore.GetByName(ctx, name); err != nil {
		return err
	}

	s.configStore.Set(keyActiveCollection, name)
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save active collection: %w", err)
	}
	return nil
}

// Active returns the currently active collection. The default
// collection is created on first use.
func (s *CollectionService) Active(ctx context.Context) (*domain.Collection, error) {
	name := s.activeName()

	collection, err := s.collectionStore.GetByName(ctx, name)
	if err == nil {
		return collection, nil
	}
	if !errors.Is(err, domain.ErrCollectionNotFound) {
		return nil, err
	}

	// Bootstrap the default collection; a renamed active collection
	// that no longer exists is an error.
	if name != domain.DefaultCollectionName {
		return nil, fmt.Errorf("active collection %q: %w", name, domain.ErrCollectionNotFound)
	}
	return s.Create(ctx, domain.DefaultCollectionName, "Standardsamling")
}

// Stats returns document and chunk counts for a collection.
func (s *CollectionService) Stats(ctx context.Context, name string) (*domain.CollectionStats, error) {
	collection, err := s.collectionStore.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.collectionStore.Stats(ctx, collection.ID)
}

// activeName resolves the configured active collection name.
func (s *CollectionService) activeName() string {
	return s.configStore.GetString(keyActiveCollection, domain.DefaultCollectionName)
}

// legacyChunk mirrors one entry of a legacy bundle's chunks.json.
type legacyChunk struct {
	Content  string `json:"content"`
	Metadata struct {
		ChunkID        string   `json:"chunk_id"`
		ChunkType      string   `json:"chunk_type"`
		Section        string   `json:"section"`
		SectionTitle   string   `json:"section_title"`
		Subsection     string   `json:"subsection"`
		Concepts       []string `json:"concepts"`
		Theme          string   `json:"theme"`
		Subtheme       string   `json:"subtheme"`
		LawReferences  []string `json:"law_references"`
		CaseReferences []string `json:"case_references"`
	} `json:"metadata"`
}

// ImportLegacy imports a pre-built index bundle into a new collection.
// A bundle is a directory of per-document subdirectories, each holding
// metadata.json and chunks.json; a requirements.txt at the root
// records the toolchain that built it. Embeddings are not imported,
// so imported chunks serve keyword search until the next re-embed.
func (s *CollectionService) ImportLegacy(ctx context.Context, name, dir string) (*domain.Collection, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	collection, err := s.Create(ctx, name, fmt.Sprintf("Importeret fra %s", filepath.Base(dir)))
	if err != nil {
		return nil, err
	}

	collection.Provenance = s.bundleProvenance(dir)

	logger.Section("Legacy Import")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		docDir := filepath.Join(dir, entry.Name())
		if err := s.importLegacyDocument(ctx, collection, entry.Name(), docDir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue // Not a document directory
			}
			return nil, fmt.Errorf("import %s: %w", entry.Name(), err)
		}
		imported++
	}

	if imported == 0 {
		// Clean up the empty collection rather than leaving a husk.
		_ = s.collectionStore.Delete(ctx, collection.ID)
		return nil, fmt.Errorf("%w: no documents found in %s", domain.ErrNotFound, dir)
	}

	collection.UpdatedAt = time.Now()
	if err := s.collectionStore.Save(ctx, collection); err != nil {
		return nil, fmt.Errorf("save collection: %w", err)
	}

	logger.Info("Imported %d documents into collection %s", imported, name)
	return collection, nil
}

// bundleProvenance records where a bundle came from and, when its
// requirements manifest parses, which toolchain built it.
func (s *CollectionService) bundleProvenance(dir string) map[string]string {
	provenance := map[string]string{
		"imported_from": dir,
		"imported_at":   time.Now().Format(time.RFC3339),
	}

	manifestPath := filepath.Join(dir, "requirements.txt")
	m, err := manifest.ParseFile(manifestPath)
	if err != nil {
		return provenance
	}

	provenance["manifest"] = manifestPath
	for _, req := range m.Requirements {
		var constraints []string
		for _, c := range req.Constraints {
			constraints = append(constraints, c.String())
		}
		provenance["dep:"+manifest.NormalizeName(req.Name)] = strings.Join(constraints, ",")
	}
	return provenance
}

// importLegacyDocument reads one per-document bundle directory and
// persists it into the collection.
func (s *CollectionService) importLegacyDocument(
	ctx context.Context, collection *domain.Collection, docID, docDir string,
) error {
	chunksData, err := os.ReadFile(filepath.Join(docDir, "chunks.json"))
	if err != nil {
		return err
	}

	var legacyChunks []legacyChunk
	if err := json.Unmarshal(chunksData, &legacyChunks); err != nil {
		return fmt.Errorf("parse chunks.json: %w", err)
	}

	doc := &domain.Document{
		ID:           uuid.New().String(),
		CollectionID: collection.ID,
		SourceID:     "import:" + collection.Name,
		URI:          docDir,
		Title:        docID,
		DocType:      domain.DocTypeGenerisk,
		Metadata:     map[string]any{"legacy_doc_id": docID},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// metadata.json is optional; bundles written by older toolchains
	// sometimes lack it.
	if metaData, err := os.ReadFile(filepath.Join(docDir, "metadata.json")); err == nil {
		var meta map[string]any
		if err := json.Unmarshal(metaData, &meta); err == nil {
			if title, ok := meta["title"].(string); ok && title != "" {
				doc.Title = title
			}
			if docType, ok := meta["doc_type"].(string); ok {
				if dt := domain.DocType(docType); dt.IsValid() {
					doc.DocType = dt
				}
			}
			for k, v := range meta {
				doc.Metadata[k] = v
			}
		}
	}

	chunks := make([]domain.Chunk, 0, len(legacyChunks))
	for i, lc := range legacyChunks {
		if strings.TrimSpace(lc.Content) == "" {
			continue
		}

		chunkType := domain.ChunkType(lc.Metadata.ChunkType)
		if !chunkType.IsValid() {
			chunkType = domain.ChunkTypeAfsnit
		}

		chunkID := lc.Metadata.ChunkID
		if chunkID == "" {
			chunkID = uuid.New().String()
		}

		var themes []string
		if lc.Metadata.Theme != "" {
			themes = append(themes, lc.Metadata.Theme)
		}
		if lc.Metadata.Subtheme != "" {
			themes = append(themes, lc.Metadata.Subtheme)
		}

		chunks = append(chunks, domain.Chunk{
			ID:                 chunkID,
			DocumentID:         doc.ID,
			Content:            lc.Content,
			Position:           i,
			Type:               chunkType,
			Section:            lc.Metadata.Section,
			Subsection:         lc.Metadata.Subsection,
			Title:              lc.Metadata.SectionTitle,
			NormalisedLawRefs:  lc.Metadata.LawReferences,
			NormalisedCaseRefs: lc.Metadata.CaseReferences,
			Concepts:           lc.Metadata.Concepts,
			Themes:             themes,
			Retrievability:     chunkType.BaseRetrievability(),
			LegalStatus:        domain.LegalStatusGaeldende,
		})
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	if s.searchIndex != nil {
		for i := range chunks {
			if err := s.searchIndex.Index(ctx, &chunks[i]); err != nil {
				return fmt.Errorf("index chunk: %w", err)
			}
		}
	}

	return nil
}
