package index

import (
	"sort"

	"github.com/orneryd/newsvec/pkg/vector"
)

// Flat is the exhaustive exact index: every query scans every vector.
// O(n·d) per search, which is the right trade below the flat threshold.
type Flat struct {
	dim     int
	vectors [][]float32
}

var _ Index = (*Flat)(nil)

func newFlat(dim int, vectors [][]float32) *Flat {
	return &Flat{dim: dim, vectors: vectors}
}

// Search scans all vectors and returns the k nearest by squared L2 distance.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil
	}
	hits := make([]Hit, len(f.vectors))
	for i, vec := range f.vectors {
		hits[i] = Hit{Pos: i, Distance: vector.SquaredL2(query, vec)}
	}
	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.vectors) }

// Dimensions returns the vector dimensionality.
func (f *Flat) Dimensions() int { return f.dim }

// sortHits orders hits by ascending distance, breaking ties by position so
// identical corpora always rank identically.
func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Pos < hits[j].Pos
	})
}
