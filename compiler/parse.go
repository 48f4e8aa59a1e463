// Package compiler turns sheaf programs into realized cellular sheaves.
//
// Compilation is two passes over the program text. The parser classifies
// statements line by line and builds the expr term model; the semantic
// analyzer resolves every name, infers every edge dimension from the
// incident restriction maps, and assembles the block-sparse coboundary.
// Any inconsistency aborts compilation — a partial sheaf never escapes.
//
// Grammar:
//
//	program          := statement*
//	statement        := declaration-list | equation
//	declaration-list := declaration (',' declaration)*
//	declaration      := name | name '::' type '{' dim '}'
//	equation         := product '==' product
//	product          := name '(' name ')' | name '*' name
//
// Blank lines and lines starting with '#' are discarded. Restriction map
// values cannot be written inline; they are supplied as Bindings and
// appended to the context as untyped bound declarations, in argument
// order, after the source declarations.
//
// Errors carry the offending statement, name, or equation text and are
// matchable with errors.As: SyntaxError, DuplicateDeclarationError,
// UnsupportedTypeError, UndefinedReferenceError, DimensionMismatchError.
package compiler

import (
	"strconv"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/mat"

	"github.com/sbl8/cellular/expr"
)

// Binding supplies an externally built restriction map value to a
// program under the given name.
type Binding struct {
	Name  string
	Value *mat.Dense
}

// Parse reads a sheaf program and returns its term representation.
// Statements are classified top to bottom: a line containing "==" is an
// equation, anything else is a comma-separated declaration list. No name
// resolution happens here; that is Analyze's job.
func Parse(src string, bindings ...Binding) (*expr.SheafExpression, error) {
	se := &expr.SheafExpression{}

	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var err error
		if strings.Contains(line, "==") {
			err = parseEquation(se, line)
		} else {
			err = parseDeclarations(se, line)
		}
		if err != nil {
			if serr, ok := err.(*SyntaxError); ok && serr.Line == 0 {
				serr.Line = i + 1
			}
			return nil, err
		}
	}

	for _, b := range bindings {
		se.Context = append(se.Context, expr.Declaration{Name: b.Name, Value: b.Value})
	}
	return se, nil
}

// parseDeclarations parses one comma-separated declaration list.
func parseDeclarations(se *expr.SheafExpression, line string) error {
	for _, field := range strings.Split(line, ",") {
		d, err := parseDeclaration(strings.TrimSpace(field), line)
		if err != nil {
			return err
		}
		se.Context = append(se.Context, d)
	}
	return nil
}

// parseDeclaration parses a single declaration: either a bare name or
// the typed form name::type{dim}.
func parseDeclaration(field, stmt string) (expr.Declaration, error) {
	name, typ, typed := strings.Cut(field, "::")
	name = strings.TrimSpace(name)

	if !typed {
		if !isName(name) {
			return expr.Declaration{}, &SyntaxError{Stmt: stmt, Msg: "malformed statement"}
		}
		return expr.Declaration{Name: name}, nil
	}

	typ = strings.TrimSpace(typ)
	open := strings.IndexByte(typ, '{')
	if !isName(name) || open < 0 || !strings.HasSuffix(typ, "}") {
		return expr.Declaration{}, &SyntaxError{Stmt: stmt, Msg: "malformed statement"}
	}

	typeName := strings.TrimSpace(typ[:open])
	dim, err := strconv.Atoi(strings.TrimSpace(typ[open+1 : len(typ)-1]))
	if !isName(typeName) || err != nil || dim <= 0 {
		return expr.Declaration{}, &SyntaxError{Stmt: stmt, Msg: "malformed statement"}
	}
	return expr.Declaration{Name: name, Type: typeName, Dim: dim}, nil
}

// parseEquation parses one product == product statement.
func parseEquation(se *expr.SheafExpression, line string) error {
	parts := strings.Split(line, "==")
	if len(parts) != 2 {
		return &SyntaxError{Stmt: line, Msg: "malformed statement"}
	}

	lhs, err := parseProduct(strings.TrimSpace(parts[0]))
	if err != nil {
		return err
	}
	rhs, err := parseProduct(strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}

	se.Equations = append(se.Equations, expr.Equation{LHS: lhs, RHS: rhs, Text: line})
	return nil
}

// parseProduct accepts the call form f(x) and the star form f*x.
func parseProduct(s string) (expr.Product, error) {
	if open := strings.IndexByte(s, '('); open >= 0 && strings.HasSuffix(s, ")") {
		m := strings.TrimSpace(s[:open])
		arg := strings.TrimSpace(s[open+1 : len(s)-1])
		if isName(m) && isName(arg) {
			return expr.Product{Map: m, Arg: arg}, nil
		}
	} else if m, arg, ok := strings.Cut(s, "*"); ok {
		m, arg = strings.TrimSpace(m), strings.TrimSpace(arg)
		if isName(m) && isName(arg) {
			return expr.Product{Map: m, Arg: arg}, nil
		}
	}
	return expr.Product{}, &SyntaxError{Stmt: s, Msg: "invalid product"}
}

// isName reports whether s is an identifier: a letter or underscore
// followed by letters, digits, or underscores.
func isName(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
