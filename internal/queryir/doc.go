// Package queryir provides an abstract pattern-query representation for
// matching statements in the store.
//
// QueryIR is the boundary between the engine (identification, merge
// validation) and the backend that executes matches. The engine never writes
// SQL; it builds quad patterns and hands them to the store, which compiles
// them with package querysql.
//
//	[identifier / merger] → [Query IR] → [SQL backend]
//	                                   → [SPARQL backend] (possible)
//
// QUERY SHAPE:
//
// A Select is a basic graph pattern:
//   - Where: required quad patterns (inner join on shared variables)
//   - Optional: scoring patterns; each one satisfied adds 1 to the score
//   - Filter: Equals, NotEquals, In, And over bound variables
//   - Project: explicit variable list (no SELECT *)
//   - ScoreVar / Distinct / Limit
//
// Optional patterns are evaluated as existence checks against the bindings
// of the required patterns, so they never multiply solutions. Variables
// that appear only inside one optional pattern are existential.
//
// SEALED INTERFACES:
//
// Term, Query and Predicate are sealed interfaces using the marker method
// pattern. Backend compilers can switch over them exhaustively.
//
// DETERMINISM:
//
// Backends must return solutions in a stable order: by projected variables
// in the order given, using binary comparison of the term encodings.
package queryir
