package sheaf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrNotConverged reports that the conjugate gradient solve exhausted
// its iteration budget before reaching tolerance.
var ErrNotConverged = errors.New("conjugate gradient did not converge")

const defaultTol = 1e-10

// SolveOptions bound the iterative solve behind the nearest-section
// projections. The zero value selects the defaults.
type SolveOptions struct {
	Tol     float64 // relative residual tolerance; <= 0 means 1e-10
	MaxIter int     // iteration cap; <= 0 means 10× the edge dimension
}

// NearestSection projects x onto the space of global sections, the
// kernel of δ: it solves δδᵗy = δx by conjugate gradient on the
// composed operator (δδᵗ is never materialized) and returns x − δᵗy.
// The result satisfies δ(result) ≈ 0 to solver tolerance.
func (s *CellularSheaf) NearestSection(x []float64) ([]float64, error) {
	return s.NearestSectionOpts(x, nil, SolveOptions{})
}

// NearestSectionWith projects x onto {v : δv = b} by solving
// δδᵗy = δx − b. A nil or all-zero b reduces to NearestSection. b must
// be reachable, i.e. lie in the range of δ.
func (s *CellularSheaf) NearestSectionWith(x, b []float64) ([]float64, error) {
	return s.NearestSectionOpts(x, b, SolveOptions{})
}

// NearestSectionOpts is NearestSectionWith under explicit solver bounds.
func (s *CellularSheaf) NearestSectionOpts(x, b []float64, opts SolveOptions) ([]float64, error) {
	if len(x) != s.TotalVertexDim() {
		return nil, fmt.Errorf("assignment has length %d, want %d", len(x), s.TotalVertexDim())
	}

	rhs := s.ApplyCoboundary(x)
	if b != nil {
		if len(b) != s.TotalEdgeDim() {
			return nil, fmt.Errorf("constraint has length %d, want %d", len(b), s.TotalEdgeDim())
		}
		floats.Sub(rhs, b)
	}

	y, err := cg(func(v []float64) []float64 {
		return s.ApplyCoboundary(s.ApplyCoboundaryT(v))
	}, rhs, opts)
	if err != nil {
		return nil, err
	}

	out := append([]float64(nil), x...)
	floats.Sub(out, s.ApplyCoboundaryT(y))
	return out, nil
}

// cg solves A·y = rhs for a symmetric positive semi-definite operator A.
// The right-hand side must lie in the range of A, which holds for δδᵗ
// applied to δx − b with reachable b. Convergence is measured by the
// residual norm relative to the right-hand side norm.
func cg(apply func([]float64) []float64, rhs []float64, opts SolveOptions) ([]float64, error) {
	tol := opts.Tol
	if tol <= 0 {
		tol = defaultTol
	}
	maxIter := opts.MaxIter
	if maxIter <= 0 {
		maxIter = 10 * len(rhs)
	}

	y := make([]float64, len(rhs))
	bnorm := floats.Norm(rhs, 2)
	if bnorm == 0 {
		return y, nil
	}

	r := append([]float64(nil), rhs...)
	p := append([]float64(nil), rhs...)
	rs := floats.Dot(r, r)

	for k := 0; k < maxIter; k++ {
		if math.Sqrt(rs) <= tol*bnorm {
			return y, nil
		}

		ap := apply(p)
		pap := floats.Dot(p, ap)
		if pap == 0 {
			// search direction fell into the null space; the residual
			// cannot shrink further
			break
		}

		alpha := rs / pap
		floats.AddScaled(y, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		rsNext := floats.Dot(r, r)
		beta := rsNext / rs
		rs = rsNext
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
	}

	if math.Sqrt(rs) <= tol*bnorm {
		return y, nil
	}
	return nil, fmt.Errorf("%w: relative residual %.3e after %d iterations",
		ErrNotConverged, math.Sqrt(rs)/bnorm, maxIter)
}
