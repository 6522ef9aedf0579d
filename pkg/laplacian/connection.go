package laplacian

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/gilchrisn/manifold-geometry-service/pkg/graph"
)

// Connection holds pairwise parallel-transport matrices in block-sparse
// form. Block (i,j) is the d x d orthogonal matrix mapping the tangent
// frame at j into the frame at i; diagonal blocks are implicitly the
// identity and never stored. Only blocks at graph edges should be set.
type Connection struct {
	n, d   int
	blocks map[[2]int]*mat.Dense
}

// NewConnection creates an empty connection over n points with d-dimensional
// tangent spaces. Until off-diagonal blocks are set it represents the
// trivial global frame restricted to the diagonal.
func NewConnection(n, d int) *Connection {
	return &Connection{n: n, d: d, blocks: make(map[[2]int]*mat.Dense)}
}

// Order returns the number of points n.
func (c *Connection) Order() int { return c.n }

// Dim returns the tangent dimension d.
func (c *Connection) Dim() int { return c.d }

// SetBlock stores the transport matrix for block (i,j). The matrix is
// copied. Setting a diagonal block is rejected: R(i,i) is always the
// identity.
func (c *Connection) SetBlock(i, j int, r mat.Matrix) error {
	if i < 0 || i >= c.n || j < 0 || j >= c.n {
		return fmt.Errorf("connection block (%d,%d) out of range for %d points", i, j, c.n)
	}
	if i == j {
		return fmt.Errorf("connection block (%d,%d): diagonal blocks are fixed to the identity", i, j)
	}
	rows, cols := r.Dims()
	if rows != c.d || cols != c.d {
		return fmt.Errorf("connection block (%d,%d) is %dx%d, want %dx%d: %w", i, j, rows, cols, c.d, c.d, ErrDimensionMismatch)
	}
	c.blocks[[2]int{i, j}] = mat.DenseCopyOf(r)
	return nil
}

// Block returns the transport matrix for block (i,j): the identity on the
// diagonal, the stored matrix at set off-diagonal blocks, nil elsewhere.
func (c *Connection) Block(i, j int) mat.Matrix {
	if i == j && i >= 0 && i < c.n {
		return identity(c.d)
	}
	if b, ok := c.blocks[[2]int{i, j}]; ok {
		return b
	}
	return nil
}

// Matrix materializes the connection as an (n*d) x (n*d) sparse matrix with
// identity diagonal blocks, suitable as the R argument of ComputeConnection.
func (c *Connection) Matrix() *sparse.CSR {
	size := c.n * c.d
	dok := sparse.NewDOK(size, size)
	for i := 0; i < c.n; i++ {
		for a := 0; a < c.d; a++ {
			dok.Set(i*c.d+a, i*c.d+a, 1)
		}
	}
	for key, b := range c.blocks {
		i, j := key[0], key[1]
		for a := 0; a < c.d; a++ {
			for bb := 0; bb < c.d; bb++ {
				v := b.At(a, bb)
				if v == 0 {
					continue
				}
				dok.Set(i*c.d+a, j*c.d+bb, v)
			}
		}
	}
	return dok.ToCSR()
}

// TrivialConnection builds the connection with identity transport along
// every edge of g, i.e. a globally consistent frame. Useful for flat point
// sets and as the baseline in tests.
func TrivialConnection(g *graph.Graph, d int) (*Connection, error) {
	c := NewConnection(g.NumNodes, d)
	eye := identity(d)
	for u := 0; u < g.NumNodes; u++ {
		neighbors, _ := g.Neighbors(u)
		for _, v := range neighbors {
			if v == u {
				continue
			}
			if err := c.SetBlock(u, v, eye); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func identity(d int) *mat.Dense {
	eye := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		eye.Set(i, i, 1)
	}
	return eye
}
