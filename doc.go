// Package cellular implements cellular sheaves over graphs: local data
// spaces attached to vertices, glued along edges by linear restriction
// maps, and realized as a block-sparse coboundary operator.
//
// A cellular sheaf assigns a vector space (stalk) to every vertex and
// every edge of a graph, plus a linear restriction map from each vertex
// stalk into each incident edge stalk. An assignment of data to the
// vertices is globally consistent exactly when every pair of incident
// restriction maps agrees; the coboundary operator measures the failure
// of that agreement, and its kernel is the space of global sections.
//
// # Architecture Overview
//
// The engine consists of three layers:
//
//   - expr: tagged term model produced by parsing sheaf programs
//   - compiler: parser and semantic analyzer turning programs into sheaves
//   - sheaf: block-sparse coboundary, Laplacian, and section projection
//
// # Sheaf programs
//
// Structure is authored in a small declarative language: comma-separated
// declaration lists introduce vertex stalks and restriction map names,
// and equations assert that two maps agree on a shared edge:
//
//	x::Stalk{4}, y::Stalk{4}, z::Stalk{4}
//	A, B, C
//	A(x) == B(y)
//	A(x) == C(z)
//	B(y) == C(z)
//
// Matrix values are supplied externally and bound to the untyped names
// positionally. The compiler resolves names, infers every edge dimension
// from the incident maps, and rejects inconsistent programs before any
// numeric object is built.
//
// # Basic Usage
//
//	s, err := compiler.Compile(program,
//	    compiler.Binding{Name: "A", Value: a},
//	    compiler.Binding{Name: "B", Value: b},
//	    compiler.Binding{Name: "C", Value: c},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	section, err := s.NearestSection(x)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Package Structure
//
//   - expr: term model for parsed sheaf programs
//   - compiler: parsing, name resolution, dimension inference
//   - sheaf: CellularSheaf and PotentialSheaf algebra engines
//   - cmd/sheafc: command-line checker and projection tool
//
// Downstream optimization layers (MPC, ADMM, open-system composition)
// consume the sheaf as an opaque operator plus projection oracle through
// the sheaf package API; nothing here persists to disk or the network.
package cellular
