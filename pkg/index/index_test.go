package index

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testVectors produces n deterministic dim-dimensional vectors.
func testVectors(n, dim int) [][]float32 {
	rng := rand.New(rand.NewSource(7))
	out := make([][]float32, n)
	for i := range out {
		vec := make([]float32, dim)
		for d := range vec {
			vec[d] = rng.Float32()
		}
		out[i] = vec
	}
	return out
}

func TestBuildChoosesFlatBelowThreshold(t *testing.T) {
	for _, n := range []int{1, 10, 999} {
		idx, err := Build(testVectors(n, 4))
		require.NoError(t, err)
		assert.IsType(t, &Flat{}, idx, "n=%d", n)
		assert.Equal(t, n, idx.Len())
	}
}

func TestBuildChoosesIVFAtThreshold(t *testing.T) {
	idx, err := Build(testVectors(1000, 4))
	require.NoError(t, err)
	ivf, ok := idx.(*IVFFlat)
	require.True(t, ok, "expected clustered index for n=1000")
	assert.Equal(t, nlistFor(1000), ivf.Nlist())
	assert.Equal(t, 1000, ivf.Len())
}

func TestNlistFormula(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1000, 25},   // min(floor(4*31.62)=126, floor(1000/39)=25)
		{2000, 51},   // min(178, 51)
		{10000, 256}, // min(400, 256)
		{39, 1},      // floor(39/39) = 1
		{20, 1},      // clamped to at least 1
	}
	for _, tt := range tests {
		got := nlistFor(tt.n)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
		// Invariant form of the formula.
		expected := int(4 * math.Sqrt(float64(tt.n)))
		if limit := tt.n / 39; limit < expected {
			expected = limit
		}
		if expected < 1 {
			expected = 1
		}
		assert.Equal(t, expected, got, "n=%d", tt.n)
	}
}

func TestNprobeFormula(t *testing.T) {
	assert.Equal(t, 1, nprobeFor(1))
	assert.Equal(t, 1, nprobeFor(3))
	assert.Equal(t, 6, nprobeFor(25))
	assert.Equal(t, 10, nprobeFor(40))
	assert.Equal(t, 10, nprobeFor(1000))
}

func TestBuildRejectsBadInput(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrEmptyBuild)

	_, err = Build([][]float32{{1, 2}, {1, 2, 3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Build([][]float32{{}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFlatSearchOrdersByDistance(t *testing.T) {
	idx, err := Build([][]float32{
		{0, 0}, // pos 0
		{5, 0}, // pos 1
		{1, 0}, // pos 2
		{3, 0}, // pos 3
	})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, 0, hits[0].Pos)
	assert.Equal(t, 2, hits[1].Pos)
	assert.Equal(t, 3, hits[2].Pos)
	assert.Equal(t, float32(0), hits[0].Distance)
	assert.Equal(t, float32(1), hits[1].Distance)
}

func TestFlatSearchDimensionMismatch(t *testing.T) {
	idx, err := Build([][]float32{{0, 0}})
	require.NoError(t, err)
	_, err = idx.Search([]float32{1, 2, 3}, 5)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIVFSearchFindsNearNeighbors(t *testing.T) {
	// Two well-separated clouds; a query inside one cloud must return members
	// of that cloud first.
	vectors := make([][]float32, 0, 1200)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 600; i++ {
		vectors = append(vectors, []float32{rng.Float32() * 0.1, rng.Float32() * 0.1})
	}
	for i := 0; i < 600; i++ {
		vectors = append(vectors, []float32{10 + rng.Float32()*0.1, 10 + rng.Float32()*0.1})
	}

	idx, err := Build(vectors)
	require.NoError(t, err)
	require.IsType(t, &IVFFlat{}, idx)

	hits, err := idx.Search([]float32{10, 10}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, hit := range hits {
		assert.GreaterOrEqual(t, hit.Pos, 600, "near-origin vector ranked for far query")
	}
}

func TestIVFSearchTopKBound(t *testing.T) {
	idx, err := Build(testVectors(1500, 4))
	require.NoError(t, err)

	hits, err := idx.Search(testVectors(1, 4)[0], 30)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(hits), 30)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestBuildIdempotentForSearch(t *testing.T) {
	vectors := testVectors(1200, 8)
	a, err := Build(vectors)
	require.NoError(t, err)
	b, err := Build(vectors)
	require.NoError(t, err)

	query := testVectors(1, 8)[0]
	hitsA, err := a.Search(query, 10)
	require.NoError(t, err)
	hitsB, err := b.Search(query, 10)
	require.NoError(t, err)
	assert.Equal(t, hitsA, hitsB, "rebuilding an unchanged corpus must be search-equivalent")
}
