// Package expr defines the term model for sheaf programs.
//
// A sheaf program parses into a SheafExpression: an ordered context of
// declarations followed by ordered equations. Declarations either
// introduce a vertex stalk (typed, with a dimension) or reserve a name
// for a restriction map value bound later. Each equation asserts that
// two restriction maps agree on a shared edge stalk.
//
// Term is a closed sum over the node kinds; each compilation phase
// (parse, resolve, infer) matches exhaustively on it. Nodes are plain
// values and are never mutated after parsing — the semantic analyzer
// produces its own decorated records instead of writing back into the
// tree.
package expr

import "gonum.org/v1/gonum/mat"

// Term is the closed set of AST node kinds a sheaf program reduces to.
type Term interface {
	isTerm()
}

// Declaration binds one name in the context. A typed declaration
// (Type != "") introduces a vertex stalk of dimension Dim; an untyped
// declaration reserves a restriction map name, with Value supplied
// externally.
type Declaration struct {
	Name  string
	Type  string     // "" for untyped; "Stalk" is the only supported type
	Dim   int        // stalk dimension, meaningful only when typed
	Value *mat.Dense // bound restriction map, nil until supplied
}

func (Declaration) isTerm() {}

// IsStalk reports whether the declaration introduces a vertex stalk.
func (d Declaration) IsStalk() bool { return d.Type != "" }

// Product is the application of a restriction map to a vertex variable.
// Both surface forms, f(x) and f*x, normalize to the same node.
type Product struct {
	Map string
	Arg string
}

func (Product) isTerm() {}

func (p Product) String() string { return p.Map + "(" + p.Arg + ")" }

// Equation asserts two products equal; one equation realizes one edge
// stalk. Text preserves the original statement for error reporting.
type Equation struct {
	LHS  Product
	RHS  Product
	Text string
}

func (Equation) isTerm() {}

// SheafExpression is a whole parsed program: the declaration context in
// source order followed by the equations in source order. It is
// immutable once parsed.
type SheafExpression struct {
	Context   []Declaration
	Equations []Equation
}

func (SheafExpression) isTerm() {}
