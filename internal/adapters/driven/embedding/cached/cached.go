// Package cached wraps an embedding service with a content-addressed
// disk cache. Re-indexing unchanged documents then costs no API calls.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService caches embeddings on disk, keyed by a hash of the
// model name and the text. Cache files hold little-endian float32s,
// the same layout the SQLite store uses for embedding blobs.
type EmbeddingService struct {
	inner    driven.EmbeddingService
	cacheDir string
}

// DefaultCacheDir returns the default embedding cache directory:
// ~/.paragraf/cache/llm
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".paragraf", "cache", "llm"), nil
}

// New wraps an embedding service with a disk cache under cacheDir.
// An empty cacheDir selects the default location.
func New(inner driven.EmbeddingService, cacheDir string) (*EmbeddingService, error) {
	if cacheDir == "" {
		var err error
		cacheDir, err = DefaultCacheDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &EmbeddingService{inner: inner, cacheDir: cacheDir}, nil
}

// Embed returns the cached embedding for the text, or generates and
// caches one.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if embedding, ok := s.read(text); ok {
		return embedding, nil
	}

	embedding, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.write(text, embedding)
	return embedding, nil
}

// EmbedBatch embeds multiple texts, serving cached entries locally and
// sending only cache misses to the inner service in one batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	var (
		missing        []string
		missingIndices []int
	)
	for i, text := range texts {
		if embedding, ok := s.read(text); ok {
			embeddings[i] = embedding
			continue
		}
		missing = append(missing, text)
		missingIndices = append(missingIndices, i)
	}

	if len(missing) == 0 {
		return embeddings, nil
	}

	fresh, err := s.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(fresh), len(missing))
	}

	for i, embedding := range fresh {
		embeddings[missingIndices[i]] = embedding
		s.write(missing[i], embedding)
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping validates the inner service is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases resources held by the inner service.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}

// Prune removes cache entries not accessed since the cutoff and
// returns the number removed.
func (s *EmbeddingService) Prune(olderThan time.Time) (int, error) {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(olderThan) {
			if err := os.Remove(filepath.Join(s.cacheDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// key derives the cache filename for a text. The model name is part of
// the key so switching models never serves stale vectors.
func (s *EmbeddingService) key(text string) string {
	h := sha256.New()
	h.Write([]byte(s.inner.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)) + ".vec"
}

func (s *EmbeddingService) read(text string) ([]float32, bool) {
	data, err := os.ReadFile(filepath.Join(s.cacheDir, s.key(text)))
	if err != nil || len(data) < 4 || len(data)%4 != 0 {
		return nil, false
	}
	embedding := make([]float32, len(data)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return embedding, true
}

// write stores an embedding in the cache. Failures are ignored; the
// cache is an optimisation, not a store of record.
func (s *EmbeddingService) write(text string, embedding []float32) {
	if len(embedding) == 0 {
		return
	}
	data := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	_ = os.WriteFile(filepath.Join(s.cacheDir, s.key(text)), data, 0o600)
}
