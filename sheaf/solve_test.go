package sheaf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestNearestSectionKernelProperty(t *testing.T) {
	s := triangle(t)
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8}

	sec, err := s.NearestSection(x)
	require.NoError(t, err)

	residual := s.ApplyCoboundary(sec)
	assert.InDelta(t, 0, floats.Norm(residual, 2), 1e-8,
		"projected assignment must lie in ker δ")
}

func TestNearestSectionIdempotent(t *testing.T) {
	s := triangle(t)
	x := []float64{1, -2, 3, -4, 5, -6, 7, -8, 9, -10, 11, -12}

	once, err := s.NearestSection(x)
	require.NoError(t, err)
	twice, err := s.NearestSection(once)
	require.NoError(t, err)

	assert.True(t, floats.EqualApprox(once, twice, 1e-8))
}

func TestNearestSectionAveragesSharedCoordinate(t *testing.T) {
	// Identical [1 0 0 0] maps on a triangle force the first coordinate
	// of every stalk to the common mean; the rest is untouched.
	s := triangle(t)
	x := []float64{3, 7, 7, 7, 6, 8, 8, 8, 9, 9, 9, 9}

	sec, err := s.NearestSection(x)
	require.NoError(t, err)

	assert.InDelta(t, 6, sec[0], 1e-8)
	assert.InDelta(t, 6, sec[4], 1e-8)
	assert.InDelta(t, 6, sec[8], 1e-8)
	assert.Equal(t, 7.0, sec[1])
	assert.Equal(t, 8.0, sec[5])
	assert.Equal(t, 9.0, sec[9])
}

func TestNearestSectionZeroConstraintMatchesUnconstrained(t *testing.T) {
	s := triangle(t)
	x := []float64{2, 0, 0, 0, -2, 0, 0, 0, 5, 0, 0, 0}

	plain, err := s.NearestSection(x)
	require.NoError(t, err)
	zero, err := s.NearestSectionWith(x, make([]float64, s.TotalEdgeDim()))
	require.NoError(t, err)

	assert.True(t, floats.EqualApprox(plain, zero, 1e-10))
}

func TestNearestSectionWithReachableConstraint(t *testing.T) {
	s := triangle(t)

	v := []float64{4, 0, 0, 0, 1, 0, 0, 0, -3, 0, 0, 0}
	b := s.ApplyCoboundary(v) // reachable by construction

	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	sec, err := s.NearestSectionWith(x, b)
	require.NoError(t, err)

	got := s.ApplyCoboundary(sec)
	assert.True(t, floats.EqualApprox(b, got, 1e-8),
		"projection must satisfy δv = b")
}

func TestNearestSectionDegenerateSheaf(t *testing.T) {
	// no edge maps assigned: δ is zero, everything is already a section
	s, err := New([]int{2, 3}, []int{1})
	require.NoError(t, err)

	x := []float64{1, 2, 3, 4, 5}
	sec, err := s.NearestSection(x)
	require.NoError(t, err)
	assert.Equal(t, x, sec)
}

func TestNearestSectionInputLengths(t *testing.T) {
	s := triangle(t)

	_, err := s.NearestSection([]float64{1, 2, 3})
	assert.Error(t, err)

	_, err = s.NearestSectionWith(make([]float64, 12), []float64{1})
	assert.Error(t, err)
}

func TestNearestSectionNotConverged(t *testing.T) {
	// A path with unequal scalings gives δδᵗ two distinct nonzero
	// eigenvalues, so one CG iteration cannot reach a tight tolerance.
	s, err := New([]int{1, 1, 1}, []int{1, 1})
	require.NoError(t, err)
	one := mat.NewDense(1, 1, []float64{1})
	two := mat.NewDense(1, 1, []float64{2})
	require.NoError(t, s.SetEdgeMaps(0, 1, 1, one, one))
	require.NoError(t, s.SetEdgeMaps(1, 2, 2, two, one))

	x := []float64{1, 2, 3}
	_, err = s.NearestSectionOpts(x, nil, SolveOptions{Tol: 1e-14, MaxIter: 1})
	require.ErrorIs(t, err, ErrNotConverged)

	// the same solve converges with an adequate budget
	sec, err := s.NearestSectionOpts(x, nil, SolveOptions{Tol: 1e-14, MaxIter: 100})
	require.NoError(t, err)
	assert.InDelta(t, 0, floats.Norm(s.ApplyCoboundary(sec), 2), 1e-10)
}

func TestCGSolvesKnownSystem(t *testing.T) {
	// 2x2 SPD system solved exactly within two iterations:
	// [[4,1],[1,3]] y = [1,2] has y = (1/11)·[1, 7]
	a := mat.NewDense(2, 2, []float64{4, 1, 1, 3})
	apply := func(v []float64) []float64 {
		out := make([]float64, 2)
		var res mat.VecDense
		res.MulVec(a, mat.NewVecDense(2, v))
		copy(out, res.RawVector().Data)
		return out
	}

	y, err := cg(apply, []float64{1, 2}, SolveOptions{Tol: 1e-12})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/11.0, y[0], 1e-10)
	assert.InDelta(t, 7.0/11.0, y[1], 1e-10)
}
