// Package ivf provides an approximate vector index using an
// inverted-file layout with a k-means coarse quantizer.
//
// Below the training threshold the index scans exhaustively, matching
// the flat index exactly. Past the threshold it trains centroids
// lazily on first search and probes only the nearest partitions.
// Snapshots share the flat format plus a trailing centroid block.
package ivf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"sync"

	"github.com/lovbase/paragraf/internal/adapters/driven/vector/vecfile"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default tuning parameters.
const (
	// DefaultNProbe is the number of partitions scanned per search.
	DefaultNProbe = 8

	// DefaultTrainThreshold is the vector count below which the index
	// scans exhaustively instead of training a quantizer.
	DefaultTrainThreshold = 1024

	// maxNList caps the partition count regardless of index size.
	maxNList = 256

	// minNList is the smallest useful partition count.
	minNList = 4

	// kmeansIterations bounds the Lloyd refinement passes.
	kmeansIterations = 10
)

// Config holds IVF index configuration.
type Config struct {
	// Path is the snapshot file location.
	Path string

	// Dims is the embedding vector size.
	Dims int

	// NList is the partition count. Zero derives sqrt(n), capped.
	NList int

	// NProbe is the number of partitions scanned per search.
	NProbe int

	// TrainThreshold is the vector count that triggers quantizer
	// training. Zero uses the default.
	TrainThreshold int
}

// Index is an approximate cosine-similarity index.
type Index struct {
	mu  sync.Mutex
	cfg Config

	ids  []string
	vecs [][]float32 // unit-normalised, parallel to ids
	byID map[string]int

	centroids   [][]float32
	lists       [][]int // vector offsets per partition
	assignStale bool    // lists must be rebuilt before probing
	trainedAt   int     // index size when centroids were trained
	dirty       bool
}

// NewIndex opens an IVF index backed by the given snapshot file,
// loading the snapshot (including trained centroids) if it exists.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.NProbe <= 0 {
		cfg.NProbe = DefaultNProbe
	}
	if cfg.TrainThreshold <= 0 {
		cfg.TrainThreshold = DefaultTrainThreshold
	}

	ix := &Index{
		cfg:  cfg,
		byID: make(map[string]int),
	}

	snap, err := vecfile.Read(cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ix, nil
		}
		return nil, err
	}
	if snap.Dims != cfg.Dims {
		return nil, fmt.Errorf("snapshot %s has %d dimensions, want %d", cfg.Path, snap.Dims, cfg.Dims)
	}

	ix.ids = snap.IDs
	ix.vecs = snap.Vectors
	for i, id := range snap.IDs {
		ix.byID[id] = i
	}
	if len(snap.Centroids) > 0 {
		ix.centroids = snap.Centroids
		ix.trainedAt = len(snap.IDs)
		ix.assignStale = true
	}
	return ix, nil
}

// Add inserts a vector, replacing any existing vector for the chunk ID.
func (ix *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) != ix.cfg.Dims {
		return fmt.Errorf("vector has %d dimensions, want %d", len(embedding), ix.cfg.Dims)
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
	ix.assignStale = true
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

	last := len(ix.ids) - 1
	if i != last {
		ix.ids[i] = ix.ids[last]
		ix.vecs[i] = ix.vecs[last]
		ix.byID[ix.ids[i]] = i
	}
	ix.ids = ix.ids[:last]
	ix.vecs = ix.vecs[:last]
	delete(ix.byID, chunkID)
	ix.assignStale = true
	ix.dirty = true
	return nil
}

// Search returns the k most similar vectors to the query.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != ix.cfg.Dims {
		return nil, fmt.Errorf("query has %d dimensions, want %d", len(query), ix.cfg.Dims)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalise(query)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Small indexes are scanned exhaustively; the quantizer would only
	// add error without saving meaningful work.
	if len(ix.vecs) < ix.cfg.TrainThreshold {
		return ix.scanAll(q, k), nil
	}

	ix.ensureTrained()
	ix.ensureAssigned()

	return ix.probe(q, k), nil
}

// Len returns the number of vectors in the index.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.ids)
}

// Save writes a snapshot, including trained centroids, to the backing file.
func (ix *Index) Save() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	err := vecfile.Write(ix.cfg.Path, &vecfile.Snapshot{
		Dims:      ix.cfg.Dims,
		IDs:       ix.ids,
		Vectors:   ix.vecs,
		Centroids: ix.centroids,
	})
	if err != nil {
		return err
	}
	ix.dirty = false
	return nil
}

// Close persists pending changes.
func (ix *Index) Close() error {
	ix.mu.Lock()
	dirty := ix.dirty
	ix.mu.Unlock()

	if dirty {
		return ix.Save()
	}
	return nil
}

// scanAll is the exact fallback path.
func (ix *Index) scanAll(q []float32, k int) []driven.VectorHit {
	hits := make([]driven.VectorHit, len(ix.ids))
	for i, id := range ix.ids {
		hits[i] = driven.VectorHit{ChunkID: id, Similarity: similarity(dot(q, ix.vecs[i]))}
	}
	return takeTop(hits, k)
}

// ensureTrained trains the coarse quantizer when missing or when the
// index has grown to double its size at training time.
func (ix *Index) ensureTrained() {
	if ix.centroids != nil && len(ix.vecs) < 2*ix.trainedAt {
		return
	}

	nlist := ix.cfg.NList
	if nlist <= 0 {
		nlist = int(math.Sqrt(float64(len(ix.vecs))))
	}
	if nlist > maxNList {
		nlist = maxNList
	}
	if nlist < minNList {
		nlist = minNList
	}
	if nlist > len(ix.vecs) {
		nlist = len(ix.vecs)
	}

	ix.centroids = kmeans(ix.vecs, nlist)
	ix.trainedAt = len(ix.vecs)
	ix.assignStale = true
	ix.dirty = true
}

// ensureAssigned rebuilds the inverted lists after mutations.
func (ix *Index) ensureAssigned() {
	if !ix.assignStale {
		return
	}

	ix.lists = make([][]int, len(ix.centroids))
	for i, v := range ix.vecs {
		c := nearestCentroid(v, ix.centroids)
		ix.lists[c] = append(ix.lists[c], i)
	}
	ix.assignStale = false
}

// probe scans the nprobe nearest partitions, expanding the probe set
// when they hold fewer than k candidates.
func (ix *Index) probe(q []float32, k int) []driven.VectorHit {
	order := centroidsByDistance(q, ix.centroids)

	nprobe := ix.cfg.NProbe
	if nprobe > len(order) {
		nprobe = len(order)
	}

	var hits []driven.VectorHit
	probed := 0
	for _, c := range order {
		if probed >= nprobe && len(hits) >= k {
			break
		}
		for _, i := range ix.lists[c] {
			hits = append(hits, driven.VectorHit{
				ChunkID:    ix.ids[i],
				Similarity: similarity(dot(q, ix.vecs[i])),
			})
		}
		probed++
	}
	return takeTop(hits, k)
}

// kmeans runs Lloyd's algorithm over unit vectors. Centroids are
// re-normalised each pass so assignment stays a dot product.
func kmeans(vecs [][]float32, nlist int) [][]float32 {
	dims := len(vecs[0])

	// Deterministic init: evenly spaced sample vectors.
	centroids := make([][]float32, nlist)
	step := len(vecs) / nlist
	for c := 0; c < nlist; c++ {
		src := vecs[c*step]
		centroids[c] = append([]float32(nil), src...)
	}

	assign := make([]int, len(vecs))
	for iter := 0; iter < kmeansIterations; iter++ {
		changed := false
		for i, v := range vecs {
			c := nearestCentroid(v, centroids)
			if assign[i] != c {
				assign[i] = c
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, nlist)
		counts := make([]int, nlist)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, v := range vecs {
			c := assign[i]
			counts[c]++
			for d, x := range v {
				sums[c][d] += float64(x)
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			mean := make([]float32, dims)
			for d := range mean {
				mean[d] = float32(sums[c][d] / float64(counts[c]))
			}
			centroids[c] = normalise(mean)
		}
	}
	return centroids
}

// nearestCentroid returns the index of the closest centroid.
func nearestCentroid(v []float32, centroids [][]float32) int {
	best := 0
	bestDot := math.Inf(-1)
	for c, cent := range centroids {
		if d := dot(v, cent); d > bestDot {
			bestDot = d
			best = c
		}
	}
	return best
}

// centroidsByDistance orders centroid indexes by similarity to q.
func centroidsByDistance(q []float32, centroids [][]float32) []int {
	order := make([]int, len(centroids))
	dots := make([]float64, len(centroids))
	for c := range centroids {
		order[c] = c
		dots[c] = dot(q, centroids[c])
	}
	sort.Slice(order, func(a, b int) bool {
		return dots[order[a]] > dots[order[b]]
	})
	return order
}

// takeTop sorts hits by similarity and truncates to k.
func takeTop(hits []driven.VectorHit, k int) []driven.VectorHit {
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
