// Package sheaf implements cellular sheaves as block-sparse linear
// operators with the algebra downstream consumers need: coboundary and
// Laplacian application, and projection onto the nearest global section
// by an iterative solve that never materializes the composed operator.
//
// A CellularSheaf is the coboundary δ partitioned by two dimension
// lists: one block row per edge stalk, one block column per vertex
// stalk. Only the per-edge restriction map blocks are stored; cumulative
// offset tables locate every block inside the flat edge and vertex
// coordinate spaces. The Laplacian δᵗδ is symmetric positive
// semi-definite and its kernel is exactly the space of global sections.
//
// Construction is single-writer: allocate with New, assign each edge
// with SetEdgeMaps, then treat the sheaf as read-only for algebra.
// Operations on a partially specified sheaf are well defined — unset
// blocks are zero — but callers wanting meaningful projections must
// assign every edge first.
//
// PotentialSheaf generalizes the quadratic form to a sum of per-edge
// scalar potentials; see potential.go.
package sheaf

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ShapeError reports a restriction map whose shape does not match the
// block it is assigned to.
type ShapeError struct {
	Block    string
	GotRows  int
	GotCols  int
	WantRows int
	WantCols int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: map is %d×%d, want %d×%d",
		e.Block, e.GotRows, e.GotCols, e.WantRows, e.WantCols)
}

// CellularSheaf is a block-sparse coboundary operator together with the
// stalk dimensions that partition it. Vertices are indexed 0-based in
// declaration order; edges 1-based in equation order.
type CellularSheaf struct {
	vertexDims []int
	edgeDims   []int
	vertexOff  []int // cumulative vertex offsets, len(vertexDims)+1
	edgeOff    []int // cumulative edge offsets, len(edgeDims)+1
	blocks     []map[int]*mat.Dense
}

// New allocates a zero coboundary partitioned by the given stalk
// dimensions. All dimensions must be positive.
func New(vertexDims, edgeDims []int) (*CellularSheaf, error) {
	for i, d := range vertexDims {
		if d <= 0 {
			return nil, fmt.Errorf("vertex stalk %d has non-positive dimension %d", i, d)
		}
	}
	for i, d := range edgeDims {
		if d <= 0 {
			return nil, fmt.Errorf("edge stalk %d has non-positive dimension %d", i+1, d)
		}
	}

	s := &CellularSheaf{
		vertexDims: append([]int(nil), vertexDims...),
		edgeDims:   append([]int(nil), edgeDims...),
		vertexOff:  offsets(vertexDims),
		edgeOff:    offsets(edgeDims),
		blocks:     make([]map[int]*mat.Dense, len(edgeDims)),
	}
	for e := range s.blocks {
		s.blocks[e] = make(map[int]*mat.Dense, 2)
	}
	return s, nil
}

// offsets builds the cumulative offset table for a dimension list.
func offsets(dims []int) []int {
	off := make([]int, len(dims)+1)
	for i, d := range dims {
		off[i+1] = off[i] + d
	}
	return off
}

// VertexStalks returns the vertex stalk dimensions in declaration order.
func (s *CellularSheaf) VertexStalks() []int {
	return append([]int(nil), s.vertexDims...)
}

// EdgeStalks returns the edge stalk dimensions in equation order.
func (s *CellularSheaf) EdgeStalks() []int {
	return append([]int(nil), s.edgeDims...)
}

// TotalVertexDim is the coboundary column count: the sum of vertex stalk
// dimensions.
func (s *CellularSheaf) TotalVertexDim() int { return s.vertexOff[len(s.vertexDims)] }

// TotalEdgeDim is the coboundary row count: the sum of edge stalk
// dimensions.
func (s *CellularSheaf) TotalEdgeDim() int { return s.edgeOff[len(s.edgeDims)] }

// SetEdgeMaps assigns the two restriction maps of edge e between
// vertices v1 and v2: block(e,v1) = m1 and block(e,v2) = −m2, the
// cochain sign convention. m1 must be edgeDims[e]×vertexDims[v1] and m2
// edgeDims[e]×vertexDims[v2]. Blocks are assigned, not accumulated; when
// v1 == v2 the negated m2 write wins. Not safe under concurrent writers.
func (s *CellularSheaf) SetEdgeMaps(v1, v2, e int, m1, m2 mat.Matrix) error {
	if e < 1 || e > len(s.edgeDims) {
		return fmt.Errorf("edge index %d out of range [1, %d]", e, len(s.edgeDims))
	}
	if v1 < 0 || v1 >= len(s.vertexDims) {
		return fmt.Errorf("vertex index %d out of range [0, %d)", v1, len(s.vertexDims))
	}
	if v2 < 0 || v2 >= len(s.vertexDims) {
		return fmt.Errorf("vertex index %d out of range [0, %d)", v2, len(s.vertexDims))
	}

	ed := s.edgeDims[e-1]
	if r, c := m1.Dims(); r != ed || c != s.vertexDims[v1] {
		return &ShapeError{
			Block:   fmt.Sprintf("edge %d, vertex %d", e, v1),
			GotRows: r, GotCols: c, WantRows: ed, WantCols: s.vertexDims[v1],
		}
	}
	if r, c := m2.Dims(); r != ed || c != s.vertexDims[v2] {
		return &ShapeError{
			Block:   fmt.Sprintf("edge %d, vertex %d", e, v2),
			GotRows: r, GotCols: c, WantRows: ed, WantCols: s.vertexDims[v2],
		}
	}

	neg := mat.NewDense(ed, s.vertexDims[v2], nil)
	neg.Scale(-1, m2)
	s.blocks[e-1][v1] = mat.DenseCopyOf(m1)
	s.blocks[e-1][v2] = neg
	return nil
}

// ApplyCoboundary computes δx for a vertex assignment x of length
// TotalVertexDim. Unset blocks contribute zero. Panics on a wrong-length
// assignment, following the mat convention for shape misuse.
func (s *CellularSheaf) ApplyCoboundary(x []float64) []float64 {
	if len(x) != s.TotalVertexDim() {
		panic(fmt.Sprintf("sheaf: assignment has length %d, want %d", len(x), s.TotalVertexDim()))
	}

	y := make([]float64, s.TotalEdgeDim())
	for e, blocks := range s.blocks {
		ye := y[s.edgeOff[e]:s.edgeOff[e+1]]
		for v, m := range blocks {
			addMulVec(ye, m, x[s.vertexOff[v]:s.vertexOff[v+1]])
		}
	}
	return y
}

// ApplyCoboundaryT computes δᵗy for an edge vector y of length
// TotalEdgeDim.
func (s *CellularSheaf) ApplyCoboundaryT(y []float64) []float64 {
	if len(y) != s.TotalEdgeDim() {
		panic(fmt.Sprintf("sheaf: edge vector has length %d, want %d", len(y), s.TotalEdgeDim()))
	}

	x := make([]float64, s.TotalVertexDim())
	for e, blocks := range s.blocks {
		ye := y[s.edgeOff[e]:s.edgeOff[e+1]]
		for v, m := range blocks {
			xv := x[s.vertexOff[v]:s.vertexOff[v+1]]
			rows, _ := m.Dims()
			for i := 0; i < rows; i++ {
				floats.AddScaled(xv, ye[i], m.RawRowView(i))
			}
		}
	}
	return x
}

// ApplyLaplacian computes δᵗδx, the sheaf Laplacian applied to a vertex
// assignment.
func (s *CellularSheaf) ApplyLaplacian(x []float64) []float64 {
	return s.ApplyCoboundaryT(s.ApplyCoboundary(x))
}

// Coboundary materializes δ as a TotalEdgeDim×TotalVertexDim dense
// matrix, or nil when either dimension is zero. The sheaf itself keeps
// only the blocks; materialize for consumers wanting the full operator.
func (s *CellularSheaf) Coboundary() *mat.Dense {
	rows, cols := s.TotalEdgeDim(), s.TotalVertexDim()
	if rows == 0 || cols == 0 {
		return nil
	}

	d := mat.NewDense(rows, cols, nil)
	for e, blocks := range s.blocks {
		for v, m := range blocks {
			d.Slice(s.edgeOff[e], s.edgeOff[e+1], s.vertexOff[v], s.vertexOff[v+1]).(*mat.Dense).Copy(m)
		}
	}
	return d
}

// Laplacian materializes δᵗδ, or nil when the sheaf has no vertices. The
// result is symmetric positive semi-definite.
func (s *CellularSheaf) Laplacian() *mat.SymDense {
	n := s.TotalVertexDim()
	if n == 0 {
		return nil
	}

	l := mat.NewSymDense(n, nil)
	d := s.Coboundary()
	if d == nil {
		return l
	}

	var full mat.Dense
	full.Mul(d.T(), d)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			l.SetSym(i, j, full.At(i, j))
		}
	}
	return l
}

// addMulVec accumulates dst += m·x.
func addMulVec(dst []float64, m *mat.Dense, x []float64) {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		dst[i] += floats.Dot(m.RawRowView(i), x)
	}
}
