package index

import (
	"fmt"
	"math/rand"

	"github.com/orneryd/newsvec/pkg/vector"
)

// trainSeed fixes centroid initialization so rebuilds over an unchanged
// corpus produce search-equivalent indexes.
const trainSeed = 42

// kmeansMaxIterations bounds centroid training. Assignment convergence
// normally ends training well before this.
const kmeansMaxIterations = 25

// IVFFlat is the clustered approximate index. Vectors are partitioned into
// nlist centroids at build time; a query scans only the nprobe lists whose
// centroids are nearest to it.
type IVFFlat struct {
	dim     int
	nlist   int
	nprobe  int
	vectors [][]float32
	// centroids[c] is the mean of the vectors assigned to list c.
	centroids [][]float32
	// lists[c] holds the positions assigned to centroid c.
	lists [][]int32
}

var _ Index = (*IVFFlat)(nil)

// buildIVF trains centroids on the full vector set and assigns every vector
// to its nearest list.
func buildIVF(dim int, vectors [][]float32, nlist int) (*IVFFlat, error) {
	rng := rand.New(rand.NewSource(trainSeed))
	centroids, err := trainKMeans(vectors, nlist, kmeansMaxIterations, rng)
	if err != nil {
		return nil, fmt.Errorf("ivf training: %w", err)
	}

	lists := make([][]int32, len(centroids))
	for i, vec := range vectors {
		c := vector.NearestCentroid(vec, centroids)
		lists[c] = append(lists[c], int32(i))
	}

	return &IVFFlat{
		dim:       dim,
		nlist:     len(centroids),
		nprobe:    nprobeFor(len(centroids)),
		vectors:   vectors,
		centroids: centroids,
		lists:     lists,
	}, nil
}

// Search probes the nprobe nearest lists and ranks their members by exact
// squared L2 distance. Vectors outside the probed lists are never scored,
// which is the approximation this structure trades for speed.
func (ix *IVFFlat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil
	}

	var hits []Hit
	for _, c := range nearestCentroids(query, ix.centroids, ix.nprobe) {
		for _, pos := range ix.lists[c] {
			hits = append(hits, Hit{Pos: int(pos), Distance: vector.SquaredL2(query, ix.vectors[pos])})
		}
	}
	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (ix *IVFFlat) Len() int { return len(ix.vectors) }

// Dimensions returns the vector dimensionality.
func (ix *IVFFlat) Dimensions() int { return ix.dim }

// Nlist returns the centroid count.
func (ix *IVFFlat) Nlist() int { return ix.nlist }

// Nprobe returns the number of lists scanned per query.
func (ix *IVFFlat) Nprobe() int { return ix.nprobe }

// trainKMeans runs bounded Lloyd iterations over vectors. Empty clusters are
// reseeded with a random vector so every centroid stays meaningful.
func trainKMeans(vectors [][]float32, k, maxIter int, rng *rand.Rand) ([][]float32, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyBuild
	}
	if k <= 0 {
		return nil, fmt.Errorf("invalid centroid count %d", k)
	}
	if k > len(vectors) {
		k = len(vectors)
	}
	dim := len(vectors[0])

	// Initialize with k distinct vectors.
	centroids := make([][]float32, k)
	chosen := make(map[int]struct{}, k)
	for i := 0; i < k; i++ {
		for {
			idx := rng.Intn(len(vectors))
			if _, ok := chosen[idx]; ok {
				continue
			}
			chosen[idx] = struct{}{}
			centroids[i] = append([]float32(nil), vectors[idx]...)
			break
		}
	}

	assign := make([]int, len(vectors))
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, vec := range vectors {
			best := vector.NearestCentroid(vec, centroids)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := 0; c < k; c++ {
			sums[c] = make([]float64, dim)
		}
		for i, vec := range vectors {
			c := assign[i]
			counts[c]++
			for d := 0; d < dim; d++ {
				sums[c][d] += float64(vec[d])
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				centroids[c] = append([]float32(nil), vectors[rng.Intn(len(vectors))]...)
				continue
			}
			for d := 0; d < dim; d++ {
				centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
			}
		}
	}
	return centroids, nil
}

// nearestCentroids returns the nprobe closest centroid positions using an
// allocation-light insertion top-k.
func nearestCentroids(query []float32, centroids [][]float32, nprobe int) []int {
	if nprobe > len(centroids) {
		nprobe = len(centroids)
	}
	if nprobe <= 0 {
		return nil
	}
	bestIdx := make([]int, nprobe)
	bestDist := make([]float32, nprobe)
	for i := range bestIdx {
		bestIdx[i] = -1
	}
	for i, c := range centroids {
		dist := vector.SquaredL2(query, c)
		last := nprobe - 1
		if bestIdx[last] >= 0 && dist >= bestDist[last] {
			continue
		}
		pos := last
		for pos > 0 && (bestIdx[pos-1] < 0 || dist < bestDist[pos-1]) {
			bestIdx[pos] = bestIdx[pos-1]
			bestDist[pos] = bestDist[pos-1]
			pos--
		}
		bestIdx[pos] = i
		bestDist[pos] = dist
	}
	out := make([]int, 0, nprobe)
	for i := 0; i < nprobe; i++ {
		if bestIdx[i] >= 0 {
			out = append(out, bestIdx[i])
		}
	}
	return out
}
