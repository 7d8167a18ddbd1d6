package engine

import "github.com/roach88/semstore/internal/rdf"

// resolving tracks the subjects currently being identified along one call
// tree of Identify.
//
// Identification recurses into the resources referenced by identifying
// properties. Mutually referencing blank nodes would otherwise recurse
// forever:
//
//	_:a nco:hasEmailAddress _:b
//	_:b nao:creator _:a
//
// Identify(_:a) enters _:a, recurses into _:b, which recurses into _:a.
// The second visit finds _:a already entered and fails locally, so _:b drops
// that value and is matched on its remaining properties.
//
// A resolving set belongs to a single top-level Identify call and is empty
// again once that call returns.
type resolving struct {
	active map[rdf.Node]struct{}
}

func newResolving() *resolving {
	return &resolving{active: make(map[rdf.Node]struct{})}
}

// enter marks subject as being resolved. Returns false if it already is,
// which means identification of subject would cycle.
func (r *resolving) enter(subject rdf.Node) bool {
	if _, ok := r.active[subject]; ok {
		return false
	}
	r.active[subject] = struct{}{}
	return true
}

// leave removes subject from the set.
func (r *resolving) leave(subject rdf.Node) {
	delete(r.active, subject)
}

// size returns the number of subjects being resolved.
func (r *resolving) size() int {
	return len(r.active)
}
