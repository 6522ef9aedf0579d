package graph

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// kdPoint wraps a kdtree.Point with its row index so neighbour queries can
// report which point was found, not just where it is.
type kdPoint struct {
	point kdtree.Point
	index int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	return p.point[d] - q.point[d]
}

func (p kdPoint) Dims() int { return len(p.point) }

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	return p.point.Distance(q.point)
}

type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable          { return p[i] }
func (p kdPoints) Len() int                               { return len(p) }
func (p kdPoints) Pivot(d kdtree.Dim) int                 { return kdPlane{kdPoints: p, Dim: d}.Pivot() }
func (p kdPoints) Slice(start, end int) kdtree.Interface  { return p[start:end] }

type kdPlane struct {
	kdtree.Dim
	kdPoints
}

func (p kdPlane) Less(i, j int) bool { return p.kdPoints[i].point[p.Dim] < p.kdPoints[j].point[p.Dim] }
func (p kdPlane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.kdPoints = p.kdPoints[start:end]
	return p
}
func (p kdPlane) Swap(i, j int) { p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i] }

// NearestNeighbors returns, for every point, the indices of its k nearest
// neighbours in ascending distance order. The query point is part of the
// index, so it appears as its own first neighbour; callers that want strict
// neighbours ask for k+1 and drop the self entry. k is clipped to the number
// of points.
func NearestNeighbors(points mat.Matrix, k int) [][]int {
	n, d := points.Dims()
	if k > n {
		k = n
	}

	pts := make(kdPoints, n)
	for i := 0; i < n; i++ {
		row := make(kdtree.Point, d)
		for j := 0; j < d; j++ {
			row[j] = points.At(i, j)
		}
		pts[i] = kdPoint{point: row, index: i}
	}
	// The tree permutes its backing slice during construction, so keep an
	// unshuffled copy for the queries below.
	queries := make(kdPoints, n)
	copy(queries, pts)

	tree := kdtree.New(pts, false)

	type hit struct {
		index int
		dist  float64
	}

	out := make([][]int, n)
	for i, q := range queries {
		keeper := kdtree.NewNKeeper(k)
		tree.NearestSet(keeper, q)

		hits := make([]hit, 0, k)
		for _, cd := range keeper.Heap {
			if cd.Comparable == nil {
				continue
			}
			hits = append(hits, hit{index: cd.Comparable.(kdPoint).index, dist: cd.Dist})
		}
		sort.Slice(hits, func(a, b int) bool {
			if hits[a].dist != hits[b].dist {
				return hits[a].dist < hits[b].dist
			}
			return hits[a].index < hits[b].index
		})

		indices := make([]int, len(hits))
		for j, h := range hits {
			indices[j] = h.index
		}
		out[i] = indices
	}

	return out
}
