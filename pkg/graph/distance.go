package graph

import (
	"math"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"
)

// PairwiseDistances computes the full n x n Euclidean distance matrix of a
// point set. Memory is O(n^2), which is the binding scaling limit of the
// furthest-point sampler and the affinity graph builder; callers working
// with very large clouds should subsample first. Rows are filled in
// parallel with a bounded worker pool.
func PairwiseDistances(points mat.Matrix) *mat.Dense {
	n, d := points.Dims()
	dist := mat.NewDense(n, n, nil)

	p := pool.New().WithMaxGoroutines(runtime.NumCPU())
	for i := 0; i < n; i++ {
		i := i
		p.Go(func() {
			row := dist.RawRowView(i)
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				var sq float64
				for k := 0; k < d; k++ {
					diff := points.At(i, k) - points.At(j, k)
					sq += diff * diff
				}
				row[j] = math.Sqrt(sq)
			}
		})
	}
	p.Wait()

	return dist
}
