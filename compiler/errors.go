package compiler

import "fmt"

// SyntaxError reports a statement that matches no grammar form, or a
// product of unrecognized shape. Line is the 1-based source line, 0 when
// the error is not tied to one.
type SyntaxError struct {
	Line int
	Stmt string
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Stmt)
	}
	return fmt.Sprintf("%s: %q", e.Msg, e.Stmt)
}

// DuplicateDeclarationError reports a name declared twice in the context.
type DuplicateDeclarationError struct {
	Name string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("name %q declared twice", e.Name)
}

// UnsupportedTypeError reports a typed declaration whose type is not
// Stalk.
type UnsupportedTypeError struct {
	Name string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("declaration %q has unsupported type %q, only Stalk is supported", e.Name, e.Type)
}

// UndefinedReferenceError reports an equation referencing a name that is
// missing from the context, or bound to the wrong kind of entity for its
// position.
type UndefinedReferenceError struct {
	Name     string
	Equation string
	Msg      string // optional detail when the name exists but is wrongly kinded
}

func (e *UndefinedReferenceError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "is not declared"
	}
	return fmt.Sprintf("name %q %s in equation %q", e.Name, msg, e.Equation)
}

// DimensionMismatchError reports an equation whose resolved shapes are
// inconsistent: a map whose column count disagrees with its vertex
// stalk, or two maps inferring different edge dimensions. Left and Right
// carry the two conflicting sizes.
type DimensionMismatchError struct {
	Equation string
	Detail   string
	Left     int
	Right    int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s (%d vs %d) in equation %q", e.Detail, e.Left, e.Right, e.Equation)
}
