package sheaf

import (
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Potential is a differentiable scalar energy on one edge stalk. Value
// is required; Grad may be nil, in which case the gradient is taken by
// central finite differences.
type Potential struct {
	Value func(y []float64) float64
	Grad  func(dst, y []float64)
}

// gradient writes ∇Value(y) into dst.
func (p Potential) gradient(dst, y []float64) {
	if p.Grad != nil {
		p.Grad(dst, y)
		return
	}
	fd.Gradient(dst, p.Value, y, &fd.Settings{Formula: fd.Central})
}

// PotentialSheaf generalizes a cellular sheaf by replacing the quadratic
// Laplacian form xᵗδᵗδx with a sum of per-edge potentials evaluated on
// coboundary coordinates. It deliberately carries no plain Laplacian:
// the linear operator of a nonlinear potential is undefined without a
// linearization point the caller never chose.
type PotentialSheaf struct {
	cells      *CellularSheaf
	potentials []Potential // zero-value Potential means unset
}

// NewPotential allocates a potential sheaf over a zero coboundary
// partitioned by the given stalk dimensions.
func NewPotential(vertexDims, edgeDims []int) (*PotentialSheaf, error) {
	s, err := New(vertexDims, edgeDims)
	if err != nil {
		return nil, err
	}
	return FromCellular(s), nil
}

// FromCellular wraps an already assembled cellular sheaf. The wrapped
// sheaf is shared, not copied.
func FromCellular(s *CellularSheaf) *PotentialSheaf {
	return &PotentialSheaf{
		cells:      s,
		potentials: make([]Potential, len(s.edgeDims)),
	}
}

// SetEdgeMaps assigns the restriction maps of edge e; see
// CellularSheaf.SetEdgeMaps.
func (ps *PotentialSheaf) SetEdgeMaps(v1, v2, e int, m1, m2 mat.Matrix) error {
	return ps.cells.SetEdgeMaps(v1, v2, e, m1, m2)
}

// SetPotential attaches the scalar potential of edge e (1-based). Unset
// potentials contribute zero energy and zero gradient.
func (ps *PotentialSheaf) SetPotential(e int, p Potential) error {
	if e < 1 || e > len(ps.potentials) {
		return fmt.Errorf("edge index %d out of range [1, %d]", e, len(ps.potentials))
	}
	ps.potentials[e-1] = p
	return nil
}

// VertexStalks returns the vertex stalk dimensions in declaration order.
func (ps *PotentialSheaf) VertexStalks() []int { return ps.cells.VertexStalks() }

// EdgeStalks returns the edge stalk dimensions in equation order.
func (ps *PotentialSheaf) EdgeStalks() []int { return ps.cells.EdgeStalks() }

// ApplyCoboundary computes δx; see CellularSheaf.ApplyCoboundary.
func (ps *PotentialSheaf) ApplyCoboundary(x []float64) []float64 {
	return ps.cells.ApplyCoboundary(x)
}

// Coboundary materializes δ; see CellularSheaf.Coboundary.
func (ps *PotentialSheaf) Coboundary() *mat.Dense { return ps.cells.Coboundary() }

// Value evaluates the total potential Φ(δx): the sum over edges of each
// potential applied to its block of the coboundary image.
func (ps *PotentialSheaf) Value(x []float64) float64 {
	y := ps.cells.ApplyCoboundary(x)

	total := 0.0
	for e, p := range ps.potentials {
		if p.Value == nil {
			continue
		}
		total += p.Value(y[ps.cells.edgeOff[e]:ps.cells.edgeOff[e+1]])
	}
	return total
}

// Objective exposes x ↦ Φ(δx) as a scalar objective for external
// optimizers.
func (ps *PotentialSheaf) Objective() func(x []float64) float64 {
	return ps.Value
}

// ApplyLaplacian computes δᵗ∇Φ(δx), the gradient of the total potential
// composed with the coboundary. With every potential the quadratic
// ½‖y‖² this coincides with the linear sheaf Laplacian.
func (ps *PotentialSheaf) ApplyLaplacian(x []float64) []float64 {
	y := ps.cells.ApplyCoboundary(x)

	g := make([]float64, len(y))
	for e, p := range ps.potentials {
		if p.Value == nil {
			continue
		}
		lo, hi := ps.cells.edgeOff[e], ps.cells.edgeOff[e+1]
		p.gradient(g[lo:hi], y[lo:hi])
	}
	return ps.cells.ApplyCoboundaryT(g)
}
