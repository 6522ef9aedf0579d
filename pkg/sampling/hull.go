package sampling

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/manifold-geometry-service/pkg/graph"
)

// SampleFromConvexHull draws n random convex combinations of the input
// points: barycentric weights are drawn uniformly per vertex and normalized
// to sum to one. The samples are uniformly weighted, not uniform in volume,
// which is what the neighbourhood synthesizer expects.
func SampleFromConvexHull(rng *rand.Rand, points mat.Matrix, n int) (*mat.Dense, error) {
	m, d := points.Dims()
	if m == 0 {
		return nil, fmt.Errorf("sample from convex hull: empty point set")
	}
	if n <= 0 {
		return nil, fmt.Errorf("sample from convex hull: n must be positive, got %d", n)
	}

	out := mat.NewDense(n, d, nil)
	weights := make([]float64, m)
	for s := 0; s < n; s++ {
		var sum float64
		for i := range weights {
			weights[i] = rng.Float64()
			sum += weights[i]
		}
		if sum == 0 {
			sum = 1 // all-zero draw; keeps the combination finite
		}
		row := out.RawRowView(s)
		for i := 0; i < m; i++ {
			w := weights[i] / sum
			for j := 0; j < d; j++ {
				row[j] += w * points.At(i, j)
			}
		}
	}

	return out, nil
}

// SampleFromNeighbourhoods draws, for every point, n convex-hull samples
// from the hull of its k nearest neighbours (the point itself included, as
// it is its own nearest neighbour) and concatenates the results, giving
// n * len(points) samples in point order.
func SampleFromNeighbourhoods(rng *rand.Rand, points mat.Matrix, n, k int) (*mat.Dense, error) {
	total, d := points.Dims()
	if total == 0 {
		return nil, fmt.Errorf("sample from neighbourhoods: empty point set")
	}
	if k <= 0 {
		return nil, fmt.Errorf("sample from neighbourhoods: k must be positive, got %d", k)
	}

	neighbors := graph.NearestNeighbors(points, k)

	out := mat.NewDense(total*n, d, nil)
	for i := 0; i < total; i++ {
		hull := mat.NewDense(len(neighbors[i]), d, nil)
		for r, idx := range neighbors[i] {
			for j := 0; j < d; j++ {
				hull.Set(r, j, points.At(idx, j))
			}
		}
		samples, err := SampleFromConvexHull(rng, hull, n)
		if err != nil {
			return nil, fmt.Errorf("sample from neighbourhoods: point %d: %w", i, err)
		}
		for r := 0; r < n; r++ {
			for j := 0; j < d; j++ {
				out.Set(i*n+r, j, samples.At(r, j))
			}
		}
	}

	return out, nil
}
