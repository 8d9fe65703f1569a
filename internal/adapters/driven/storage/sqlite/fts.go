package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// ftsEngine implements driven.SearchEngine on the chunks_fts FTS5
// table. It shares the Store connection, so indexed chunks live in the
// same database file as their metadata.
type ftsEngine struct {
	store *Store
}

var _ driven.SearchEngine = (*ftsEngine)(nil)

// Index adds or updates a chunk in the keyword index.
func (e *ftsEngine) Index(ctx context.Context, chunk *domain.Chunk) error {
	if chunk == nil {
		return domain.ErrInvalidInput
	}

	tx, err := e.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks_fts WHERE chunk_id = ?", chunk.ID); err != nil {
		return fmt.Errorf("clearing indexed chunk: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO chunks_fts (content, chunk_id, document_id) VALUES (?, ?, ?)",
		chunk.Content, chunk.ID, chunk.DocumentID); err != nil {
		return fmt.Errorf("indexing chunk: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// Delete removes all chunks of a document from the keyword index.
func (e *ftsEngine) Delete(ctx context.Context, documentID string) error {
	if _, err := e.store.db.ExecContext(ctx,
		"DELETE FROM chunks_fts WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting indexed document: %w", err)
	}
	return nil
}

// Search runs a BM25-ranked keyword query and returns chunk IDs in
// relevance order.
func (e *ftsEngine) Search(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := e.store.db.QueryContext(ctx, `
		SELECT chunk_id, rank FROM chunks_fts
		WHERE chunks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("searching keyword index: %w", err)
	}
	defer rows.Close()

	var hits []driven.SearchHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			chunkID string
			rank    float64
		)
		if err := rows.Scan(&chunkID, &rank); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		// FTS5 rank is negative BM25; negate so higher is better.
		hits = append(hits, driven.SearchHit{ChunkID: chunkID, Score: -rank})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search hits: %w", err)
	}
	return hits, nil
}

// Close releases engine resources. The shared connection is owned by
// Store.
func (e *ftsEngine) Close() error {
	return nil
}

// buildMatchQuery converts free text into an FTS5 MATCH expression.
// Each token is quoted so user input can never be parsed as FTS5
// syntax, and tokens are OR-ed for recall; BM25 still ranks chunks
// matching more tokens higher.
func buildMatchQuery(query string) string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.ReplaceAll(field, `"`, "")
		field = strings.Trim(field, ".,;:()[]")
		if field == "" {
			continue
		}
		tokens = append(tokens, `"`+field+`"`)
	}
	return strings.Join(tokens, " OR ")
}
