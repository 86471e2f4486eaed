// Package index implements the vector index over article embeddings.
//
// Two structures back the same Search contract: an exhaustive flat index for
// small corpora and an IVF (inverted file) clustered index for large ones.
// Build picks the structure from corpus size alone, so two builds over the
// same corpus always choose the same shape.
//
// Distances are squared Euclidean; smaller is more similar. Results are
// positions into the vector set given to Build, paired positionally with the
// article id array the caller maintains.
package index

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyBuild is returned when Build is given no vectors.
	ErrEmptyBuild = errors.New("index: no vectors to build from")
	// ErrDimensionMismatch is returned when a query or build vector does not
	// match the index dimensionality.
	ErrDimensionMismatch = errors.New("index: vector dimension mismatch")
)

// flatThreshold is the corpus size below which the exhaustive flat index is
// used. Training IVF centroids on fewer vectors than this costs more than it
// saves.
const flatThreshold = 1000

// Hit is one search result: a position into the built vector set and its
// squared Euclidean distance to the query.
type Hit struct {
	Pos      int
	Distance float32
}

// Index is a queryable nearest-neighbor structure. Implementations are
// immutable after construction and safe for concurrent searches.
type Index interface {
	// Search returns up to k hits ordered by ascending distance.
	Search(query []float32, k int) ([]Hit, error)
	// Len returns the number of indexed vectors.
	Len() int
	// Dimensions returns the vector dimensionality.
	Dimensions() int
}

// Build constructs an index over vectors, choosing the structure by corpus
// size: fewer than 1000 vectors gets an exact flat index, anything larger an
// IVF index with nlist = max(1, min(⌊4√n⌋, ⌊n/39⌋)) centroids. The n/39 cap
// keeps at least 39 vectors per centroid on average for stable clustering.
//
// Build validates its input up front and never returns a partial index.
func Build(vectors [][]float32) (Index, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyBuild
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-dimension vector at position 0", ErrDimensionMismatch)
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: position %d has %d dimensions, want %d",
				ErrDimensionMismatch, i, len(vec), dim)
		}
	}

	if len(vectors) < flatThreshold {
		return newFlat(dim, vectors), nil
	}
	return buildIVF(dim, vectors, nlistFor(len(vectors)))
}

// nlistFor returns the centroid count for a corpus of n vectors.
func nlistFor(n int) int {
	nlist := int(4 * math.Sqrt(float64(n)))
	if limit := n / 39; limit < nlist {
		nlist = limit
	}
	if nlist < 1 {
		nlist = 1
	}
	return nlist
}

// nprobeFor returns the probe count for an IVF index with nlist centroids:
// a quarter of the lists, at most 10, at least 1. A fixed recall/latency
// trade-off; it does not adapt to observed recall.
func nprobeFor(nlist int) int {
	nprobe := nlist / 4
	if nprobe > 10 {
		nprobe = 10
	}
	if nprobe < 1 {
		nprobe = 1
	}
	return nprobe
}
