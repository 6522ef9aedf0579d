// Package sampling provides subsampling utilities over metric point sets:
// greedy furthest-point sampling and random convex-combination samplers used
// to synthesize test data. All randomized samplers take an explicit
// *rand.Rand so reproducibility is the caller's choice, never hidden
// process-wide state.
package sampling

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/manifold-geometry-service/pkg/graph"
)

// FPSResult is an ordered furthest-point sample: the selected point indices
// and, aligned with them, the coverage distance recorded when each point was
// chosen. Distances[0] is always zero (the seed point); from index 1 on the
// sequence is non-increasing. Distances is nil in the degenerate
// no-subsampling mode.
type FPSResult struct {
	Indices   []int
	Distances []float64
}

// FurthestPointSampling greedily selects points maximizing the minimum
// distance to the already-selected set. The full pairwise distance matrix is
// computed up front, so memory is O(n^2); downstream consumers depend on the
// exact distances, which rules out approximate variants.
//
// n is the number of points to select; n <= 0 means "sample until the
// recorded distance drops below stopCrit times the point set's diameter",
// truncating the output at that step. stopCrit == 0 is the degenerate
// no-subsampling mode: all indices in natural order, no distances.
// startIdx picks the seed point. Argmax ties resolve to the first index, so
// the output is deterministic for a fixed input order.
func FurthestPointSampling(points mat.Matrix, n int, stopCrit float64, startIdx int) (*FPSResult, error) {
	total, _ := points.Dims()
	if total == 0 {
		return nil, fmt.Errorf("furthest point sampling: empty point set")
	}

	if stopCrit == 0 {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return &FPSResult{Indices: indices}, nil
	}

	if startIdx < 0 || startIdx >= total {
		return nil, fmt.Errorf("furthest point sampling: start index %d out of range [0,%d)", startIdx, total)
	}
	if n > total {
		return nil, fmt.Errorf("furthest point sampling: requested %d of %d points", n, total)
	}

	dist := graph.PairwiseDistances(points)
	diam := mat.Max(dist)

	target := n
	if target <= 0 {
		target = total
	}

	indices := make([]int, 1, target)
	distances := make([]float64, 1, target)
	indices[0] = startIdx

	// Running minimum distance from every point to the selected set.
	ds := make([]float64, total)
	copy(ds, dist.RawRowView(startIdx))

	for i := 1; i < target; i++ {
		idx, far := argmax(ds)
		if far == 0 {
			// Every remaining point coincides with a selected one; selecting
			// further would only repeat indices.
			break
		}
		if n <= 0 && far/diam < stopCrit {
			break
		}
		indices = append(indices, idx)
		distances = append(distances, far)

		row := dist.RawRowView(idx)
		for j := 0; j < total; j++ {
			if row[j] < ds[j] {
				ds[j] = row[j]
			}
		}
	}

	return &FPSResult{Indices: indices, Distances: distances}, nil
}

// argmax returns the first index achieving the maximum value.
func argmax(xs []float64) (int, float64) {
	idx, max := 0, xs[0]
	for i, x := range xs {
		if x > max {
			idx, max = i, x
		}
	}
	return idx, max
}
