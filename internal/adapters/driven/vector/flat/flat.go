// Package flat provides an exact brute-force vector index.
//
// Vectors are unit-normalised on insert so cosine similarity reduces to
// a dot product. The index lives in memory and persists to a snapshot
// file per collection (data/vectors/<collection>.vec).
package flat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/lovbase/paragraf/internal/adapters/driven/vector/vecfile"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// parallelThreshold is the vector count above which search fans out
// across CPU shards.
const parallelThreshold = 4096

// Index is an exact cosine-similarity index.
type Index struct {
	mu    sync.RWMutex
	path  string
	dims  int
	ids   []string
	vecs  [][]float32 // unit-normalised, parallel to ids
	byID  map[string]int
	dirty bool
}

// NewIndex opens a flat index backed by the given snapshot file,
// loading the snapshot if it exists.
func NewIndex(path string, dims int) (*Index, error) {
	ix := &Index{
		path: path,
		dims: dims,
		byID: make(map[string]int),
	}

	snap, err := vecfile.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ix, nil
		}
		return nil, err
	}
	if snap.Dims != dims {
		return nil, fmt.Errorf("snapshot %s has %d dimensions, want %d", path, snap.Dims, dims)
	}

	ix.ids = snap.IDs
	ix.vecs = snap.Vectors
	for i, id := range snap.IDs {
		ix.byID[id] = i
	}
	return ix, nil
}

// Add inserts a vector, replacing any existing vector for the chunk ID.
func (ix *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) != ix.dims {
		return fmt.Errorf("vector has %d dimensions, want %d", len(embedding), ix.dims)
	}

	vec := normalise(embedding)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if i, ok := ix.byID[chunkID]; ok {
		ix.vecs[i] = vec
	} else {
		ix.byID[chunkID] = len(ix.ids)
		ix.ids = append(ix.ids, chunkID)
		ix.vecs = append(ix.vecs, vec)
	}
	ix.dirty = true
	return nil
}

// Delete removes a vector. Deleting an unknown chunk ID is a no-op.
func (ix *Index) Delete(_ context.Context, chunkID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	i, ok := ix.byID[chunkID]
	if !ok {
		return nil
	}

	// Swap-remove to keep the slices dense.
	last := len(ix.ids) - 1
	if i != last {
		ix.ids[i] = ix.ids[last]
		ix.vecs[i] = ix.vecs[last]
		ix.byID[ix.ids[i]] = i
	}
	ix.ids = ix.ids[:last]
	ix.vecs = ix.vecs[:last]
	delete(ix.byID, chunkID)
	ix.dirty = true
	return nil
}

// Search returns the k most similar vectors to the query.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != ix.dims {
		return nil, fmt.Errorf("query has %d dimensions, want %d", len(query), ix.dims)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalise(query)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	scores := scoreAll(q, ix.vecs)
	return topK(ix.ids, scores, k), nil
}

// Len returns the number of vectors in the index.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Save writes a snapshot to the backing file.
func (ix *Index) Save() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	err := vecfile.Write(ix.path, &vecfile.Snapshot{
		Dims:    ix.dims,
		IDs:     ix.ids,
		Vectors: ix.vecs,
	})
	if err != nil {
		return err
	}
	ix.dirty = false
	return nil
}

// Close persists pending changes.
func (ix *Index) Close() error {
	ix.mu.RLock()
	dirty := ix.dirty
	ix.mu.RUnlock()

	if dirty {
		return ix.Save()
	}
	return nil
}

// scoreAll computes the dot product of q against every vector,
// sharding across CPUs for large indexes.
func scoreAll(q []float32, vecs [][]float32) []float64 {
	n := len(vecs)
	scores := make([]float64, n)

	if n < parallelThreshold {
		for i, v := range vecs {
			scores[i] = dot(q, v)
		}
		return scores
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > 8 {
		workers = 8
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				scores[i] = dot(q, vecs[i])
			}
		}(lo, hi)
	}
	wg.Wait()
	return scores
}

// topK selects the k best-scoring entries, sorted by similarity.
func topK(ids []string, scores []float64, k int) []driven.VectorHit {
	hits := make([]driven.VectorHit, len(ids))
	for i, id := range ids {
		hits[i] = driven.VectorHit{ChunkID: id, Similarity: similarity(scores[i])}
	}
	sort.Slice(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// similarity maps a cosine in [-1, 1] into the 0-1 range.
func similarity(cos float64) float64 {
	return (cos + 1) / 2
}

// normalise returns a unit-length copy of the vector.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// dot computes the dot product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
