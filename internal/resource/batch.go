package resource

import (
	"github.com/roach88/semstore/internal/rdf"
)

// Batch maps subjects to their staged descriptions.
type Batch map[rdf.Node]Resource

// FromStatements groups statements by subject. Identical (predicate, value)
// pairs of one subject collapse into one; graphs are ignored.
func FromStatements(stmts []rdf.Statement) Batch {
	b := Batch{}
	for _, s := range stmts {
		b.Add(s)
	}
	return b
}

// Add records one statement.
func (b Batch) Add(s rdf.Statement) {
	r, ok := b[s.Subject]
	if !ok {
		r = New(s.Subject)
		b[s.Subject] = r
	}
	r.Props.Add(s.Predicate, s.Object)
}

// ToStatements flattens the batch into statements ordered by subject, then
// predicate, then value.
func (b Batch) ToStatements() []rdf.Statement {
	var out []rdf.Statement
	for _, subj := range b.Subjects() {
		out = append(out, b[subj].Statements()...)
	}
	return out
}

// Subjects returns the subjects in N3 order.
func (b Batch) Subjects() []rdf.Node {
	out := make([]rdf.Node, 0, len(b))
	for s := range b {
		out = append(out, s)
	}
	rdf.SortNodes(out)
	return out
}

// Clone returns a deep copy.
func (b Batch) Clone() Batch {
	out := make(Batch, len(b))
	for k, r := range b {
		out[k] = r.Clone()
	}
	return out
}

// Unite returns a new batch holding every resource of a and b. Resources
// present in both get the union of their values.
func Unite(a, b Batch) Batch {
	out := a.Clone()
	for subj, r := range b {
		existing, ok := out[subj]
		if !ok {
			out[subj] = r.Clone()
			continue
		}
		existing.Props.Merge(r.Props)
	}
	return out
}

// Len returns the number of statements in the batch.
func (b Batch) Len() int {
	n := 0
	for _, r := range b {
		n += r.Props.Len()
	}
	return n
}
