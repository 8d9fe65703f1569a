package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/lovbase/paragraf/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// DefaultDataDir returns the default directory for the metadata
// database: ~/.paragraf/data
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".paragraf", "data"), nil
}

// Store wraps a single SQLite database connection and hands out the
// individual store implementations that share it.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the metadata database under dataDir and
// applies any pending migrations. An empty dataDir selects the default
// location.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		var err error
		dataDir, err = DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, "metadata.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the filesystem path of the database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SourceStore returns the SQLite-backed driven.SourceStore.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// DocumentStore returns the SQLite-backed driven.DocumentStore.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// CollectionStore returns the SQLite-backed driven.CollectionStore.
func (s *Store) CollectionStore() driven.CollectionStore {
	return &collectionStore{store: s}
}

// SyncStateStore returns the SQLite-backed driven.SyncStateStore.
func (s *Store) SyncStateStore() driven.SyncStateStore {
	return &syncStateStore{store: s}
}

// ExclusionStore returns the SQLite-backed driven.ExclusionStore.
func (s *Store) ExclusionStore() driven.ExclusionStore {
	return &exclusionStore{store: s}
}

// SchedulerStore returns the SQLite-backed driven.SchedulerStore.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// SearchEngine returns the FTS5-backed driven.SearchEngine.
func (s *Store) SearchEngine() driven.SearchEngine {
	return &ftsEngine{store: s}
}

// ==================== Migrations ====================

// migrate applies all pending .up.sql migrations in version order.
// Applied versions are tracked in the schema_migrations table.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("querying applied migrations: %w", err)
	}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scanning migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterating migration versions: %w", err)
	}
	_ = rows.Close()

	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", name, err)
		}
		if applied[version] {
			continue
		}

		script, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration transaction: %w", err)
		}
		if _, err := tx.Exec(string(script)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Helpers ====================

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

// float32SliceToBytes encodes an embedding as little-endian float32s.
func float32SliceToBytes(values []float32) []byte {
	if len(values) == 0 {
		return nil
	}
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// bytesToFloat32Slice decodes a little-endian float32 embedding blob.
func bytesToFloat32Slice(buf []byte) []float32 {
	if len(buf) < 4 {
		return nil
	}
	values := make([]float32, len(buf)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return values
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullString converts an empty string to NULL for nullable columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// formatNullableTime converts a zero time to NULL.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseNullableTime parses an RFC 3339 column that may be NULL.
// Unparseable values yield the zero time.
func parseNullableTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// marshalJSON encodes a value for a JSON TEXT column. Nil maps and
// slices encode as their empty literal so columns never hold "null".
func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshalling JSON column: %w", err)
	}
	s := string(data)
	if s == "null" {
		return "{}", nil
	}
	return s, nil
}

// ==================== SourceStore ====================

type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

func (s *sourceStore) Save(ctx context.Context, source *domain.Source) error {
	if source == nil {
		return domain.ErrInvalidInput
	}

	config, err := marshalJSON(source.Config)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	createdAt := source.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, type, name, collection_id, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			collection_id = excluded.collection_id,
			config = excluded.config,
			updated_at = excluded.updated_at
	`, source.ID, source.Type, source.Name, source.CollectionID, config,
		createdAt.Format(time.RFC3339), now.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, type, name, collection_id, config, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)
	return scanSource(row)
}

func (s *sourceStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	return nil
}

func (s *sourceStore) List(ctx context.Context) ([]*domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, type, name, collection_id, config, created_at, updated_at
		FROM sources ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []*domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

func scanSource(sc scanner) (*domain.Source, error) {
	var (
		source             domain.Source
		config             string
		createdAt, updated string
	)
	err := sc.Scan(&source.ID, &source.Type, &source.Name, &source.CollectionID,
		&config, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if err := json.Unmarshal([]byte(config), &source.Config); err != nil {
		return nil, fmt.Errorf("unmarshalling source config: %w", err)
	}
	source.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	source.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &source, nil
}

// ==================== DocumentStore ====================

type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, collection_id, source_id, uri, title, content,
	doc_type, identifier, law_abbrevs, metadata, created_at, updated_at`

func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}

	lawAbbrevs, err := json.Marshal(doc.LawAbbrevs)
	if err != nil {
		return fmt.Errorf("marshalling law abbreviations: %w", err)
	}
	metadata, err := marshalJSON(doc.Metadata)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, collection_id, source_id, uri, title, content,
			doc_type, identifier, law_abbrevs, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection_id = excluded.collection_id,
			source_id = excluded.source_id,
			uri = excluded.uri,
			title = excluded.title,
			content = excluded.content,
			doc_type = excluded.doc_type,
			identifier = excluded.identifier,
			law_abbrevs = excluded.law_abbrevs,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, doc.ID, doc.CollectionID, doc.SourceID, doc.URI, doc.Title, doc.Content,
		string(doc.DocType), doc.Identifier, string(lawAbbrevs), metadata,
		createdAt.Format(time.RFC3339), now.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

func (s *documentStore) SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks_fts WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing keyword index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, type, section,
			subsection, title, is_primary, retrievability, legal_status,
			expiry_date, refs, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		chunk := &chunks[i]
		refs, err := marshalJSON(chunkRefs{
			LawRefs:            chunk.LawRefs,
			NormalisedLawRefs:  chunk.NormalisedLawRefs,
			CaseRefs:           chunk.CaseRefs,
			NormalisedCaseRefs: chunk.NormalisedCaseRefs,
			NoteRefs:           chunk.NoteRefs,
			Concepts:           chunk.Concepts,
			Themes:             chunk.Themes,
			CrossRefs:          chunk.CrossRefs,
		})
		if err != nil {
			return err
		}
		metadata, err := marshalJSON(chunk.Metadata)
		if err != nil {
			return err
		}

		var embedding any
		if len(chunk.Embedding) > 0 {
			embedding = float32SliceToBytes(chunk.Embedding)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Position,
			chunk.Content, string(chunk.Type), chunk.Section, chunk.Subsection,
			chunk.Title, boolToInt(chunk.IsPrimary), chunk.Retrievability,
			string(chunk.LegalStatus), chunk.ExpiryDate, refs, metadata, embedding); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

func (s *documentStore) GetDocumentByURI(ctx context.Context, sourceID, uri string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE source_id = ? AND uri = ?", sourceID, uri)
	return scanDocument(row)
}

func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks_fts WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("clearing keyword index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

func (s *documentStore) DeleteBySourceID(ctx context.Context, sourceID string) ([]string, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM documents WHERE source_id = ? ORDER BY id", sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying documents for source: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scanning document ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterating document IDs: %w", err)
	}
	_ = rows.Close()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks_fts WHERE document_id = ?", id); err != nil {
			return nil, fmt.Errorf("clearing keyword index: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", id); err != nil {
			return nil, fmt.Errorf("deleting chunks: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE source_id = ?", sourceID); err != nil {
		return nil, fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delete: %w", err)
	}
	return ids, nil
}

func (s *documentStore) ListDocuments(ctx context.Context, sourceID string) ([]*domain.Document, error) {
	return s.queryDocuments(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE source_id = ? ORDER BY uri", sourceID)
}

func (s *documentStore) ListDocumentsByCollection(ctx context.Context, collectionID string) ([]*domain.Document, error) {
	return s.queryDocuments(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE collection_id = ? ORDER BY uri", collectionID)
}

func (s *documentStore) queryDocuments(ctx context.Context, query string, args ...any) ([]*domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

const chunkColumns = `id, document_id, position, content, type, section,
	subsection, title, is_primary, retrievability, legal_status, expiry_date,
	refs, metadata, embedding`

func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)
	return scanChunk(row)
}

func (s *documentStore) GetChunks(ctx context.Context, ids []string) ([]*domain.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Chunk, len(ids))
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		byID[chunk.ID] = chunk
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	// Preserve request order, skipping IDs that no longer exist.
	chunks := make([]*domain.Chunk, 0, len(byID))
	for _, id := range ids {
		if chunk, ok := byID[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *documentStore) GetChunksByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	return s.queryChunks(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE document_id = ? ORDER BY position", documentID)
}

func (s *documentStore) GetChunksByCollection(ctx context.Context, collectionID string) ([]*domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT c.id, c.document_id, c.position, c.content, c.type, c.section,
			c.subsection, c.title, c.is_primary, c.retrievability, c.legal_status,
			c.expiry_date, c.refs, c.metadata, c.embedding
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.collection_id = ?
		ORDER BY d.uri, c.position
	`, collectionID)
}

func (s *documentStore) queryChunks(ctx context.Context, query string, args ...any) ([]*domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

func (s *documentStore) UpdateChunkEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	result, err := s.store.db.ExecContext(ctx,
		"UPDATE chunks SET embedding = ? WHERE id = ?",
		float32SliceToBytes(embedding), chunkID)
	if err != nil {
		return fmt.Errorf("updating chunk embedding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking embedding update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *documentStore) Close() error {
	// The shared connection is owned by Store.
	return nil
}

// chunkRefs bundles the reference metadata of a chunk into a single
// JSON column.
type chunkRefs struct {
	LawRefs            []domain.LawRef   `json:"law_refs,omitempty"`
	NormalisedLawRefs  []string          `json:"normalised_law_refs,omitempty"`
	CaseRefs           []string          `json:"case_refs,omitempty"`
	NormalisedCaseRefs []string          `json:"normalised_case_refs,omitempty"`
	NoteRefs           []string          `json:"note_refs,omitempty"`
	Concepts           []string          `json:"concepts,omitempty"`
	Themes             []string          `json:"themes,omitempty"`
	CrossRefs          []domain.CrossRef `json:"cross_refs,omitempty"`
}

func scanDocument(sc scanner) (*domain.Document, error) {
	var (
		doc                  domain.Document
		docType              string
		lawAbbrevs, metadata string
		createdAt, updatedAt string
	)
	err := sc.Scan(&doc.ID, &doc.CollectionID, &doc.SourceID, &doc.URI, &doc.Title,
		&doc.Content, &docType, &doc.Identifier, &lawAbbrevs, &metadata,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.DocType = domain.DocType(docType)
	if err := json.Unmarshal([]byte(lawAbbrevs), &doc.LawAbbrevs); err != nil {
		return nil, fmt.Errorf("unmarshalling law abbreviations: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling document metadata: %w", err)
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &doc, nil
}

func scanChunk(sc scanner) (*domain.Chunk, error) {
	var (
		chunk          domain.Chunk
		chunkType      string
		isPrimary      int
		legalStatus    string
		refs, metadata string
		embedding      []byte
	)
	err := sc.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position, &chunk.Content,
		&chunkType, &chunk.Section, &chunk.Subsection, &chunk.Title, &isPrimary,
		&chunk.Retrievability, &legalStatus, &chunk.ExpiryDate, &refs, &metadata,
		&embedding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Type = domain.ChunkType(chunkType)
	chunk.IsPrimary = isPrimary != 0
	chunk.LegalStatus = domain.LegalStatus(legalStatus)

	var r chunkRefs
	if err := json.Unmarshal([]byte(refs), &r); err != nil {
		return nil, fmt.Errorf("unmarshalling chunk references: %w", err)
	}
	chunk.LawRefs = r.LawRefs
	chunk.NormalisedLawRefs = r.NormalisedLawRefs
	chunk.CaseRefs = r.CaseRefs
	chunk.NormalisedCaseRefs = r.NormalisedCaseRefs
	chunk.NoteRefs = r.NoteRefs
	chunk.Concepts = r.Concepts
	chunk.Themes = r.Themes
	chunk.CrossRefs = r.CrossRefs

	if err := json.Unmarshal([]byte(metadata), &chunk.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embedding)
	return &chunk, nil
}

// ==================== CollectionStore ====================

type collectionStore struct {
	store *Store
}

var _ driven.CollectionStore = (*collectionStore)(nil)

const collectionColumns = `id, name, description, embedding_model, dimensions,
	provenance, created_at, updated_at`

func (s *collectionStore) Save(ctx context.Context, collection *domain.Collection) error {
	if collection == nil {
		return domain.ErrInvalidInput
	}

	provenance, err := marshalJSON(collection.Provenance)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	createdAt := collection.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO collections (id, name, description, embedding_model, dimensions,
			provenance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			embedding_model = excluded.embedding_model,
			dimensions = excluded.dimensions,
			provenance = excluded.provenance,
			updated_at = excluded.updated_at
	`, collection.ID, collection.Name, collection.Description,
		collection.EmbeddingModel, collection.Dimensions, provenance,
		createdAt.Format(time.RFC3339), now.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}
	return nil
}

func (s *collectionStore) GetByID(ctx context.Context, id string) (*domain.Collection, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+collectionColumns+" FROM collections WHERE id = ?", id)
	return scanCollection(row)
}

func (s *collectionStore) GetByName(ctx context.Context, name string) (*domain.Collection, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+collectionColumns+" FROM collections WHERE name = ?", name)
	return scanCollection(row)
}

func (s *collectionStore) List(ctx context.Context) ([]*domain.Collection, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+collectionColumns+" FROM collections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var collections []*domain.Collection //nolint:prealloc // size unknown from query
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return collections, nil
}

func (s *collectionStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking collection delete: %w", err)
	}
	if affected == 0 {
		return domain.ErrCollectionNotFound
	}
	return nil
}

func (s *collectionStore) Stats(ctx context.Context, id string) (*domain.CollectionStats, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	stats := &domain.CollectionStats{
		CollectionID:  id,
		ByDocType:     make(map[domain.DocType]int),
		ByChunkType:   make(map[domain.ChunkType]int),
		ByLegalStatus: make(map[domain.LegalStatus]int),
	}

	row := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection_id = ?", id)
	if err := row.Scan(&stats.Documents); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	row = s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN c.embedding IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.collection_id = ?
	`, id)
	if err := row.Scan(&stats.Chunks, &stats.Embedded); err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	if err := s.countInto(ctx,
		"SELECT doc_type, COUNT(*) FROM documents WHERE collection_id = ? GROUP BY doc_type",
		id, func(key string, n int) { stats.ByDocType[domain.DocType(key)] = n }); err != nil {
		return nil, err
	}
	if err := s.countInto(ctx, `
		SELECT c.type, COUNT(*) FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.collection_id = ? GROUP BY c.type
	`, id, func(key string, n int) { stats.ByChunkType[domain.ChunkType(key)] = n }); err != nil {
		return nil, err
	}
	if err := s.countInto(ctx, `
		SELECT c.legal_status, COUNT(*) FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.collection_id = ? GROUP BY c.legal_status
	`, id, func(key string, n int) { stats.ByLegalStatus[domain.LegalStatus(key)] = n }); err != nil {
		return nil, err
	}

	return stats, nil
}

// countInto runs a (key, count) aggregate query and feeds each row to
// the collector.
func (s *collectionStore) countInto(ctx context.Context, query, id string, collect func(string, int)) error {
	rows, err := s.store.db.QueryContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("querying collection stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scanning collection stats: %w", err)
		}
		collect(key, n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating collection stats: %w", err)
	}
	return nil
}

func scanCollection(sc scanner) (*domain.Collection, error) {
	var (
		collection           domain.Collection
		provenance           string
		createdAt, updatedAt string
	)
	err := sc.Scan(&collection.ID, &collection.Name, &collection.Description,
		&collection.EmbeddingModel, &collection.Dimensions, &provenance,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning collection: %w", err)
	}

	if err := json.Unmarshal([]byte(provenance), &collection.Provenance); err != nil {
		return nil, fmt.Errorf("unmarshalling collection provenance: %w", err)
	}
	collection.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	collection.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &collection, nil
}

// ==================== SyncStateStore ====================

type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

func (s *syncStateStore) Save(ctx context.Context, state *domain.SyncState) error {
	if state == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_states (source_id, cursor, last_sync)
		VALUES (?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			cursor = excluded.cursor,
			last_sync = excluded.last_sync
	`, state.SourceID, state.Cursor, state.LastSync.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

func (s *syncStateStore) Get(ctx context.Context, sourceID string) (*domain.SyncState, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT source_id, cursor, last_sync FROM sync_states WHERE source_id = ?", sourceID)

	var (
		state    domain.SyncState
		lastSync string
	)
	err := row.Scan(&state.SourceID, &state.Cursor, &lastSync)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}
	state.LastSync, _ = time.Parse(time.RFC3339, lastSync)
	return &state, nil
}

func (s *syncStateStore) Delete(ctx context.Context, sourceID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM sync_states WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("deleting sync state: %w", err)
	}
	return nil
}

// ==================== ExclusionStore ====================

type exclusionStore struct {
	store *Store
}

var _ driven.ExclusionStore = (*exclusionStore)(nil)

func (s *exclusionStore) Add(ctx context.Context, exclusion *domain.Exclusion) error {
	if exclusion == nil {
		return domain.ErrInvalidInput
	}

	excludedAt := exclusion.ExcludedAt
	if excludedAt.IsZero() {
		excludedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO exclusions (id, source_id, document_id, uri, reason, excluded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			reason = excluded.reason
	`, exclusion.ID, exclusion.SourceID, exclusion.DocumentID, exclusion.URI,
		exclusion.Reason, excludedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("adding exclusion: %w", err)
	}
	return nil
}

func (s *exclusionStore) Remove(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM exclusions WHERE id = ?", id); err != nil {
		return fmt.Errorf("removing exclusion: %w", err)
	}
	return nil
}

func (s *exclusionStore) GetBySourceID(ctx context.Context, sourceID string) ([]*domain.Exclusion, error) {
	return s.queryExclusions(ctx, `
		SELECT id, source_id, document_id, uri, reason, excluded_at
		FROM exclusions WHERE source_id = ? ORDER BY excluded_at
	`, sourceID)
}

func (s *exclusionStore) IsExcluded(ctx context.Context, sourceID, uri string) (bool, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM exclusions WHERE source_id = ? AND uri = ?", sourceID, uri)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("checking exclusion: %w", err)
	}
	return n > 0, nil
}

func (s *exclusionStore) List(ctx context.Context) ([]*domain.Exclusion, error) {
	return s.queryExclusions(ctx, `
		SELECT id, source_id, document_id, uri, reason, excluded_at
		FROM exclusions ORDER BY excluded_at
	`)
}

func (s *exclusionStore) queryExclusions(ctx context.Context, query string, args ...any) ([]*domain.Exclusion, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exclusions: %w", err)
	}
	defer rows.Close()

	var exclusions []*domain.Exclusion //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			exclusion  domain.Exclusion
			excludedAt string
		)
		if err := rows.Scan(&exclusion.ID, &exclusion.SourceID, &exclusion.DocumentID,
			&exclusion.URI, &exclusion.Reason, &excludedAt); err != nil {
			return nil, fmt.Errorf("scanning exclusion: %w", err)
		}
		exclusion.ExcludedAt, _ = time.Parse(time.RFC3339, excludedAt)
		exclusions = append(exclusions, &exclusion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exclusions: %w", err)
	}
	return exclusions, nil
}
