package compiler

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/sbl8/cellular/expr"
	"github.com/sbl8/cellular/sheaf"
)

// symbol is one resolved context entry. vertex is the stalk index in
// typed-declaration order, -1 for restriction map names.
type symbol struct {
	decl   expr.Declaration
	vertex int
}

// resolvedSide decorates one side of an equation after name resolution:
// the restriction map value, the vertex it applies to, and the row count
// the map contributes to edge dimension inference.
type resolvedSide struct {
	mapName string
	value   *mat.Dense
	vertex  int
	rows    int
}

// resolvedEquation pairs two decorated sides with the inferred edge.
type resolvedEquation struct {
	lhs, rhs resolvedSide
	edgeDim  int
	edge     int // 1-based equation position
}

// Compile parses a sheaf program and realizes the resulting sheaf.
func Compile(src string, bindings ...Binding) (*sheaf.CellularSheaf, error) {
	se, err := Parse(src, bindings...)
	if err != nil {
		return nil, err
	}
	return Analyze(se)
}

// Analyze validates a sheaf expression and constructs its cellular
// sheaf. Every check is eager and per-equation; the first failure aborts
// construction.
func Analyze(se *expr.SheafExpression) (*sheaf.CellularSheaf, error) {
	syms, vertexDims, err := buildSymbols(se)
	if err != nil {
		return nil, err
	}

	resolved := make([]resolvedEquation, 0, len(se.Equations))
	edgeDims := make([]int, 0, len(se.Equations))
	for i, eq := range se.Equations {
		req, err := resolveEquation(syms, eq, i+1)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, req)
		edgeDims = append(edgeDims, req.edgeDim)
	}

	s, err := sheaf.New(vertexDims, edgeDims)
	if err != nil {
		return nil, err
	}
	for _, req := range resolved {
		if err := s.SetEdgeMaps(req.lhs.vertex, req.rhs.vertex, req.edge, req.lhs.value, req.rhs.value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// buildSymbols folds the context into a symbol table, collecting vertex
// stalk dimensions in declaration order.
func buildSymbols(se *expr.SheafExpression) (map[string]symbol, []int, error) {
	syms := make(map[string]symbol, len(se.Context))
	var vertexDims []int

	for _, d := range se.Context {
		if _, ok := syms[d.Name]; ok {
			return nil, nil, &DuplicateDeclarationError{Name: d.Name}
		}
		if d.IsStalk() && d.Type != "Stalk" {
			return nil, nil, &UnsupportedTypeError{Name: d.Name, Type: d.Type}
		}

		vertex := -1
		if d.IsStalk() {
			vertex = len(vertexDims)
			vertexDims = append(vertexDims, d.Dim)
		}
		syms[d.Name] = symbol{decl: d, vertex: vertex}
	}
	return syms, vertexDims, nil
}

// resolveEquation decorates both sides of an equation and infers the
// edge dimension from the agreeing row counts.
func resolveEquation(syms map[string]symbol, eq expr.Equation, edge int) (resolvedEquation, error) {
	lhs, err := resolveSide(syms, eq.LHS, eq, "left")
	if err != nil {
		return resolvedEquation{}, err
	}
	rhs, err := resolveSide(syms, eq.RHS, eq, "right")
	if err != nil {
		return resolvedEquation{}, err
	}

	if lhs.rows != rhs.rows {
		return resolvedEquation{}, &DimensionMismatchError{
			Equation: eq.Text,
			Detail:   fmt.Sprintf("maps %q and %q infer different edge dimensions", lhs.mapName, rhs.mapName),
			Left:     lhs.rows,
			Right:    rhs.rows,
		}
	}
	return resolvedEquation{lhs: lhs, rhs: rhs, edgeDim: lhs.rows, edge: edge}, nil
}

// resolveSide resolves one product against the symbol table and checks
// the map's column count against its vertex stalk.
func resolveSide(syms map[string]symbol, p expr.Product, eq expr.Equation, side string) (resolvedSide, error) {
	ms, ok := syms[p.Map]
	if !ok {
		return resolvedSide{}, &UndefinedReferenceError{Name: p.Map, Equation: eq.Text}
	}
	if ms.decl.IsStalk() || ms.decl.Value == nil {
		return resolvedSide{}, &UndefinedReferenceError{
			Name:     p.Map,
			Equation: eq.Text,
			Msg:      "is not bound to a restriction map value",
		}
	}

	vs, ok := syms[p.Arg]
	if !ok {
		return resolvedSide{}, &UndefinedReferenceError{Name: p.Arg, Equation: eq.Text}
	}
	if !vs.decl.IsStalk() {
		return resolvedSide{}, &UndefinedReferenceError{
			Name:     p.Arg,
			Equation: eq.Text,
			Msg:      "is not declared as a Stalk",
		}
	}

	rows, cols := ms.decl.Value.Dims()
	if cols != vs.decl.Dim {
		return resolvedSide{}, &DimensionMismatchError{
			Equation: eq.Text,
			Detail: fmt.Sprintf("%s side: map %q has %d columns but vertex %q has dimension %d",
				side, p.Map, cols, p.Arg, vs.decl.Dim),
			Left:  cols,
			Right: vs.decl.Dim,
		}
	}

	return resolvedSide{mapName: p.Map, value: ms.decl.Value, vertex: vs.vertex, rows: rows}, nil
}
