// Package vector provides float32 vector math primitives for similarity search.
//
// All distances are squared Euclidean (L2²). Skipping the square root preserves
// ordering and avoids a sqrt per comparison, matching the on-disk index format's
// distance convention.
package vector

// SquaredL2 returns the squared Euclidean distance between a and b.
// The slices must have equal length; this is the caller's responsibility.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// NearestCentroid returns the position of the centroid closest to vec by
// squared Euclidean distance, or -1 when centroids is empty.
func NearestCentroid(vec []float32, centroids [][]float32) int {
	best := -1
	var bestDist float32
	for i := range centroids {
		dist := SquaredL2(vec, centroids[i])
		if best < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}
