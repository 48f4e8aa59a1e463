package sheaf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// triangle builds three 4-dimensional vertex stalks joined pairwise by
// 1-dimensional edges, all restriction maps [1 0 0 0].
func triangle(t *testing.T) *CellularSheaf {
	t.Helper()
	s, err := New([]int{4, 4, 4}, []int{1, 1, 1})
	require.NoError(t, err)

	m := mat.NewDense(1, 4, []float64{1, 0, 0, 0})
	require.NoError(t, s.SetEdgeMaps(0, 1, 1, m, m))
	require.NoError(t, s.SetEdgeMaps(0, 2, 2, m, m))
	require.NoError(t, s.SetEdgeMaps(1, 2, 3, m, m))
	return s
}

func TestNewRejectsNonPositiveDims(t *testing.T) {
	_, err := New([]int{4, 0}, []int{1})
	assert.Error(t, err)

	_, err = New([]int{4}, []int{-1})
	assert.Error(t, err)
}

func TestStalkAccessors(t *testing.T) {
	s := triangle(t)

	assert.Equal(t, []int{4, 4, 4}, s.VertexStalks())
	assert.Equal(t, []int{1, 1, 1}, s.EdgeStalks())
	assert.Equal(t, 12, s.TotalVertexDim())
	assert.Equal(t, 3, s.TotalEdgeDim())

	// accessors return copies, not views
	s.VertexStalks()[0] = 99
	assert.Equal(t, []int{4, 4, 4}, s.VertexStalks())
}

func TestSetEdgeMapsShapeChecks(t *testing.T) {
	s, err := New([]int{4, 3}, []int{2})
	require.NoError(t, err)

	good1 := mat.NewDense(2, 4, nil)
	good2 := mat.NewDense(2, 3, nil)

	var serr *ShapeError
	require.ErrorAs(t, s.SetEdgeMaps(0, 1, 1, mat.NewDense(1, 4, nil), good2), &serr)
	assert.Equal(t, 1, serr.GotRows)
	assert.Equal(t, 2, serr.WantRows)

	require.ErrorAs(t, s.SetEdgeMaps(0, 1, 1, good1, mat.NewDense(2, 4, nil)), &serr)
	assert.Equal(t, 4, serr.GotCols)
	assert.Equal(t, 3, serr.WantCols)

	assert.Error(t, s.SetEdgeMaps(0, 1, 0, good1, good2), "edge indices are 1-based")
	assert.Error(t, s.SetEdgeMaps(0, 2, 1, good1, good2))

	require.NoError(t, s.SetEdgeMaps(0, 1, 1, good1, good2))
}

func TestCoboundaryBlocks(t *testing.T) {
	s := triangle(t)

	want := mat.NewDense(3, 12, []float64{
		1, 0, 0, 0, -1, 0, 0, 0, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0, 0, 0, -1, 0, 0, 0,
		0, 0, 0, 0, 1, 0, 0, 0, -1, 0, 0, 0,
	})
	if !mat.Equal(want, s.Coboundary()) {
		t.Errorf("coboundary mismatch:\ngot:\n%v\nwant:\n%v",
			mat.Formatted(s.Coboundary()), mat.Formatted(want))
	}
}

func TestSetEdgeMapsCopiesInput(t *testing.T) {
	s, err := New([]int{1, 1}, []int{1})
	require.NoError(t, err)

	m := mat.NewDense(1, 1, []float64{2})
	require.NoError(t, s.SetEdgeMaps(0, 1, 1, m, m))
	m.Set(0, 0, 7)

	assert.Equal(t, 2.0, s.Coboundary().At(0, 0))
	assert.Equal(t, -2.0, s.Coboundary().At(0, 1))
}

func TestApplyCoboundaryMatchesMaterialized(t *testing.T) {
	s := triangle(t)
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8}

	got := s.ApplyCoboundary(x)

	var want mat.VecDense
	want.MulVec(s.Coboundary(), mat.NewVecDense(len(x), x))
	assert.True(t, floats.EqualApprox(want.RawVector().Data, got, 1e-12))
}

func TestApplyCoboundaryTMatchesMaterialized(t *testing.T) {
	s := triangle(t)
	y := []float64{2, -3, 5}

	got := s.ApplyCoboundaryT(y)

	var want mat.VecDense
	want.MulVec(s.Coboundary().T(), mat.NewVecDense(len(y), y))
	assert.True(t, floats.EqualApprox(want.RawVector().Data, got, 1e-12))
}

func TestLaplacianIsCoboundaryComposition(t *testing.T) {
	s := triangle(t)

	d := s.Coboundary()
	var want mat.Dense
	want.Mul(d.T(), d)

	l := s.Laplacian()
	assert.True(t, mat.EqualApprox(&want, l, 1e-12))

	// operator form agrees with the materialized Laplacian
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	var wantVec mat.VecDense
	wantVec.MulVec(l, mat.NewVecDense(len(x), x))
	assert.True(t, floats.EqualApprox(wantVec.RawVector().Data, s.ApplyLaplacian(x), 1e-12))
}

func TestUnsetEdgesAreZeroBlocks(t *testing.T) {
	s, err := New([]int{2, 2}, []int{1, 1})
	require.NoError(t, err)
	require.NoError(t, s.SetEdgeMaps(0, 1, 1, mat.NewDense(1, 2, []float64{1, 0}), mat.NewDense(1, 2, []float64{1, 0})))

	// edge 2 never assigned: its coboundary row stays zero
	y := s.ApplyCoboundary([]float64{1, 2, 3, 4})
	assert.Equal(t, []float64{-2, 0}, y)
}
