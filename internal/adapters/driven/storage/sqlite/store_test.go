package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovbase/paragraf/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDocument(id, sourceID, collectionID, uri string) *domain.Document {
	return &domain.Document{
		ID:           id,
		SourceID:     sourceID,
		CollectionID: collectionID,
		URI:          uri,
		Title:        "Ligningsloven",
		Content:      "§ 9 C. Ved opgørelsen af den skattepligtige indkomst...",
		DocType:      domain.DocTypeLovtekst,
		Identifier:   "LBK nr 1284",
		LawAbbrevs:   []string{"LL"},
	}
}

// ==================== Store ====================

func TestNewStore_MigratesIdempotently(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-apply migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, store.Path())
	require.NoError(t, store.Close())
}

// ==================== SourceStore ====================

func TestSourceStore_CRUD(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	source := &domain.Source{
		ID:           "src-1",
		Type:         "filesystem",
		Name:         "Lovsamling",
		CollectionID: "col-1",
		Config:       map[string]string{"path": "/data/love"},
	}
	require.NoError(t, sources.Save(ctx, source))

	got, err := sources.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "Lovsamling", got.Name)
	assert.Equal(t, "/data/love", got.Config["path"])
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, sources.Save(ctx, &domain.Source{ID: "src-2", Type: "filesystem", Name: "Afgørelser"}))
	all, err := sources.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Ordered by name.
	assert.Equal(t, "Afgørelser", all[0].Name)

	require.NoError(t, sources.Delete(ctx, "src-1"))
	_, err = sources.Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== DocumentStore ====================

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1", "src-1", "col-1", "/docs/ll.pdf")
	doc.Metadata = map[string]any{"format": "pdf"}
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Ligningsloven", got.Title)
	assert.Equal(t, domain.DocTypeLovtekst, got.DocType)
	assert.Equal(t, []string{"LL"}, got.LawAbbrevs)
	assert.Equal(t, "pdf", got.Metadata["format"])

	_, err = docs.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byURI, err := docs.GetDocumentByURI(ctx, "src-1", "/docs/ll.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", byURI.ID)
}

func TestDocumentStore_ChunkRoundTrip(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "src-1", "col-1", "/a")))

	chunk := domain.Chunk{
		ID:                 "c-0",
		DocumentID:         "doc-1",
		Position:           0,
		Content:            "§ 9 C. Befordringsfradrag.",
		Type:               domain.ChunkTypeRegel,
		Section:            "§ 9 C",
		Subsection:         "Stk. 1",
		Title:              "Befordring",
		LawRefs:            []domain.LawRef{{Law: "LL", Paragraph: "9 C", Stk: "1"}},
		NormalisedLawRefs:  []string{"LL § 9 C, stk. 1"},
		NormalisedCaseRefs: []string{"SKM.2023.123.SR"},
		Concepts:           []string{"befordringsfradrag"},
		IsPrimary:          true,
		Retrievability:     0.9,
		LegalStatus:        domain.LegalStatusGaeldende,
		CrossRefs:          []domain.CrossRef{{ChunkID: "c-9", Relation: domain.RelationSameSection, Weight: 3}},
		Embedding:          []float32{0.25, -1.5, 3.75},
	}
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", []domain.Chunk{chunk}))

	got, err := docs.GetChunk(ctx, "c-0")
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkTypeRegel, got.Type)
	assert.Equal(t, "§ 9 C", got.Section)
	assert.Equal(t, chunk.LawRefs, got.LawRefs)
	assert.Equal(t, chunk.NormalisedLawRefs, got.NormalisedLawRefs)
	assert.Equal(t, chunk.CrossRefs, got.CrossRefs)
	assert.True(t, got.IsPrimary)
	assert.InDelta(t, 0.9, got.Retrievability, 1e-9)
	assert.Equal(t, []float32{0.25, -1.5, 3.75}, got.Embedding)
}

func TestDocumentStore_SaveChunksReplaces(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "src-1", "col-1", "/a")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "c-0", DocumentID: "doc-1", Position: 0, Content: "gammel"},
		{ID: "c-1", DocumentID: "doc-1", Position: 1, Content: "gammel"},
	}))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "c-2", DocumentID: "doc-1", Position: 0, Content: "ny"},
	}))

	chunks, err := docs.GetChunksByDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c-2", chunks[0].ID)

	_, err = docs.GetChunk(ctx, "c-0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetChunksPreservesRequestOrder(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "src-1", "col-1", "/a")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "c-0", DocumentID: "doc-1", Position: 0},
		{ID: "c-1", DocumentID: "doc-1", Position: 1},
	}))

	chunks, err := docs.GetChunks(ctx, []string{"c-1", "missing", "c-0"})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "c-1", chunks[0].ID)
	assert.Equal(t, "c-0", chunks[1].ID)
}

func TestDocumentStore_DeleteBySourceID(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "src-1", "col-1", "/a")))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-2", "src-1", "col-1", "/b")))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-3", "src-2", "col-1", "/c")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "c-0", DocumentID: "doc-1", Position: 0},
	}))

	removed, err := docs.DeleteBySourceID(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1", "doc-2"}, removed)

	_, err = docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = docs.GetChunk(ctx, "c-0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = docs.GetDocument(ctx, "doc-3")
	assert.NoError(t, err)
}

func TestDocumentStore_ListByCollectionOrderedByURI(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "src-1", "col-1", "/b")))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-2", "src-1", "col-2", "/a")))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-3", "src-2", "col-1", "/a")))

	list, err := docs.ListDocumentsByCollection(ctx, "col-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "doc-3", list[0].ID)
	assert.Equal(t, "doc-1", list[1].ID)
}

func TestDocumentStore_UpdateChunkEmbedding(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "src-1", "col-1", "/a")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "c-0", DocumentID: "doc-1", Position: 0},
	}))

	embedding := []float32{0.1, 0.2, 0.3}
	require.NoError(t, docs.UpdateChunkEmbedding(ctx, "c-0", embedding))

	chunk, err := docs.GetChunk(ctx, "c-0")
	require.NoError(t, err)
	assert.Equal(t, embedding, chunk.Embedding)

	assert.ErrorIs(t, docs.UpdateChunkEmbedding(ctx, "missing", embedding), domain.ErrNotFound)
}

// ==================== CollectionStore ====================

func TestCollectionStore_CRUD(t *testing.T) {
	store := newTestStore(t)
	collections := store.CollectionStore()
	ctx := context.Background()

	collection := &domain.Collection{
		ID:             "col-1",
		Name:           "standard",
		EmbeddingModel: "text-embedding-3-small",
		Dimensions:     1536,
		Provenance:     map[string]string{"openai": "1.12.0"},
	}
	require.NoError(t, collections.Save(ctx, collection))

	got, err := collections.GetByName(ctx, "standard")
	require.NoError(t, err)
	assert.Equal(t, "col-1", got.ID)
	assert.Equal(t, 1536, got.Dimensions)
	assert.Equal(t, "1.12.0", got.Provenance["openai"])

	_, err = collections.GetByName(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	require.NoError(t, collections.Delete(ctx, "col-1"))
	assert.ErrorIs(t, collections.Delete(ctx, "col-1"), domain.ErrCollectionNotFound)
}

func TestCollectionStore_Stats(t *testing.T) {
	store := newTestStore(t)
	collections := store.CollectionStore()
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, collections.Save(ctx, &domain.Collection{ID: "col-1", Name: "standard"}))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "src-1", "col-1", "/a")))
	require.NoError(t, docs.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{
			ID: "c-0", DocumentID: "doc-1", Position: 0,
			Type:        domain.ChunkTypeRegel,
			LegalStatus: domain.LegalStatusGaeldende,
			Embedding:   []float32{0.1},
		},
		{
			ID: "c-1", DocumentID: "doc-1", Position: 1,
			Type:        domain.ChunkTypeNote,
			LegalStatus: domain.LegalStatusGaeldende,
		},
	}))

	stats, err := collections.Stats(ctx, "col-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 1, stats.Embedded)
	assert.Equal(t, 1, stats.ByDocType[domain.DocTypeLovtekst])
	assert.Equal(t, 1, stats.ByChunkType[domain.ChunkTypeRegel])
	assert.Equal(t, 2, stats.ByLegalStatus[domain.LegalStatusGaeldende])

	_, err = collections.Stats(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

// ==================== SyncStateStore ====================

func TestSyncStateStore_CRUD(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	states := store.SyncStateStore()
	ctx := context.Background()

	require.NoError(t, sources.Save(ctx, &domain.Source{ID: "src-1", Type: "filesystem", Name: "Love"}))
	require.NoError(t, states.Save(ctx, &domain.SyncState{
		SourceID: "src-1",
		Cursor:   "2025-01-02T15:04:05Z",
		LastSync: time.Now(),
	}))

	got, err := states.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T15:04:05Z", got.Cursor)

	require.NoError(t, states.Delete(ctx, "src-1"))
	_, err = states.Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== ExclusionStore ====================

func TestExclusionStore_AddAndCheck(t *testing.T) {
	store := newTestStore(t)
	exclusions := store.ExclusionStore()
	ctx := context.Background()

	require.NoError(t, exclusions.Add(ctx, &domain.Exclusion{
		ID:       "ex-1",
		SourceID: "src-1",
		URI:      "/docs/udkast.pdf",
		Reason:   "udkast, ikke gældende",
	}))

	excluded, err := exclusions.IsExcluded(ctx, "src-1", "/docs/udkast.pdf")
	require.NoError(t, err)
	assert.True(t, excluded)

	excluded, err = exclusions.IsExcluded(ctx, "src-2", "/docs/udkast.pdf")
	require.NoError(t, err)
	assert.False(t, excluded)

	bySource, err := exclusions.GetBySourceID(ctx, "src-1")
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "udkast, ikke gældende", bySource[0].Reason)

	require.NoError(t, exclusions.Remove(ctx, "ex-1"))
	excluded, err = exclusions.IsExcluded(ctx, "src-1", "/docs/udkast.pdf")
	require.NoError(t, err)
	assert.False(t, excluded)
}

// ==================== SearchEngine ====================

func TestFTSEngine_IndexAndSearch(t *testing.T) {
	store := newTestStore(t)
	engine := store.SearchEngine()
	ctx := context.Background()

	require.NoError(t, engine.Index(ctx, &domain.Chunk{
		ID:         "c-0",
		DocumentID: "doc-1",
		Content:    "Befordringsfradrag efter ligningslovens § 9 C beregnes pr. arbejdsdag.",
	}))
	require.NoError(t, engine.Index(ctx, &domain.Chunk{
		ID:         "c-1",
		DocumentID: "doc-2",
		Content:    "Aktieavancebeskatning ved salg af unoterede aktier.",
	}))

	hits, err := engine.Search(ctx, "befordringsfradrag", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c-0", hits[0].ChunkID)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestFTSEngine_ReindexReplaces(t *testing.T) {
	store := newTestStore(t)
	engine := store.SearchEngine()
	ctx := context.Background()

	require.NoError(t, engine.Index(ctx, &domain.Chunk{
		ID: "c-0", DocumentID: "doc-1", Content: "gammelt indhold",
	}))
	require.NoError(t, engine.Index(ctx, &domain.Chunk{
		ID: "c-0", DocumentID: "doc-1", Content: "nyt indhold om befordring",
	}))

	hits, err := engine.Search(ctx, "gammelt", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = engine.Search(ctx, "befordring", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestFTSEngine_DeleteByDocument(t *testing.T) {
	store := newTestStore(t)
	engine := store.SearchEngine()
	ctx := context.Background()

	require.NoError(t, engine.Index(ctx, &domain.Chunk{
		ID: "c-0", DocumentID: "doc-1", Content: "fradrag for befordring",
	}))
	require.NoError(t, engine.Index(ctx, &domain.Chunk{
		ID: "c-1", DocumentID: "doc-1", Content: "fradrag for kost og logi",
	}))

	require.NoError(t, engine.Delete(ctx, "doc-1"))

	hits, err := engine.Search(ctx, "fradrag", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBuildMatchQuery(t *testing.T) {
	assert.Equal(t, `"befordring" OR "§" OR "9"`, buildMatchQuery(`befordring § 9,`))
	assert.Equal(t, "", buildMatchQuery("  "))
	// User input can never inject FTS5 syntax.
	assert.Equal(t, `"NEAR(x" OR "y"`, buildMatchQuery(`NEAR(x y)`))
}

// ==================== SchedulerStore ====================

func TestSchedulerStore_TaskRoundTrip(t *testing.T) {
	store := newTestStore(t)
	scheduler := store.SchedulerStore()
	ctx := context.Background()

	got, err := scheduler.GetTask(ctx, "source-rescan")
	require.NoError(t, err)
	assert.Nil(t, got)

	task := &domain.ScheduledTask{
		ID:       "source-rescan",
		Name:     "Re-scan sources",
		Interval: 6 * time.Hour,
		NextRun:  time.Now().Add(6 * time.Hour),
		Enabled:  true,
	}
	require.NoError(t, scheduler.SaveTask(ctx, task))

	got, err = scheduler.GetTask(ctx, "source-rescan")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 6*time.Hour, got.Interval)
	assert.True(t, got.Enabled)
	assert.True(t, got.LastRun.IsZero())

	tasks, err := scheduler.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.NoError(t, scheduler.DeleteTask(ctx, "source-rescan"))
	got, err = scheduler.GetTask(ctx, "source-rescan")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_HistoryAndPrune(t *testing.T) {
	store := newTestStore(t)
	scheduler := store.SchedulerStore()
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now().Add(-1 * time.Hour)

	require.NoError(t, scheduler.RecordResult(ctx, &domain.TaskResult{
		TaskID: "cache-prune", StartedAt: old, EndedAt: old.Add(time.Minute),
		Success: false, Error: "disk fuld",
	}))
	require.NoError(t, scheduler.RecordResult(ctx, &domain.TaskResult{
		TaskID: "cache-prune", StartedAt: recent, EndedAt: recent.Add(time.Minute),
		Success: true, ItemsProcessed: 12,
	}))

	history, err := scheduler.GetTaskHistory(ctx, "cache-prune", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first.
	assert.True(t, history[0].Success)
	assert.Equal(t, 12, history[0].ItemsProcessed)
	assert.Equal(t, "disk fuld", history[1].Error)

	pruned, err := scheduler.PruneHistory(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	history, err = scheduler.GetTaskHistory(ctx, "cache-prune", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

// ==================== Helpers ====================

func TestFloat32BlobRoundTrip(t *testing.T) {
	values := []float32{0, 1.5, -2.25, 3.14159}
	assert.Equal(t, values, bytesToFloat32Slice(float32SliceToBytes(values)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
