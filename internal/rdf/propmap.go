package rdf

// PropertyMap is a multi-map from predicate to values. Values are kept in
// insertion order without duplicates.
type PropertyMap map[IRI][]Node

// Add appends v to p unless it is already present. Reports whether the map
// changed.
func (m PropertyMap) Add(p IRI, v Node) bool {
	if m.Contains(p, v) {
		return false
	}
	m[p] = append(m[p], v)
	return true
}

// Contains reports whether p holds v.
func (m PropertyMap) Contains(p IRI, v Node) bool {
	for _, existing := range m[p] {
		if Equal(existing, v) {
			return true
		}
	}
	return false
}

// Values returns the values of p. The slice must not be modified.
func (m PropertyMap) Values(p IRI) []Node {
	return m[p]
}

// First returns the first value of p.
func (m PropertyMap) First(p IRI) (Node, bool) {
	vs := m[p]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// Remove deletes v from p. Reports whether it was present.
func (m PropertyMap) Remove(p IRI, v Node) bool {
	vs := m[p]
	for i, existing := range vs {
		if !Equal(existing, v) {
			continue
		}
		out := make([]Node, 0, len(vs)-1)
		out = append(out, vs[:i]...)
		out = append(out, vs[i+1:]...)
		if len(out) == 0 {
			delete(m, p)
		} else {
			m[p] = out
		}
		return true
	}
	return false
}

// RemoveValue deletes v from every predicate and returns how many values were
// removed.
func (m PropertyMap) RemoveValue(v Node) int {
	n := 0
	for p := range m {
		if m.Remove(p, v) {
			n++
		}
	}
	return n
}

// Set replaces every value of p.
func (m PropertyMap) Set(p IRI, vs ...Node) {
	delete(m, p)
	for _, v := range vs {
		m.Add(p, v)
	}
}

// Predicates returns the predicates in sorted order.
func (m PropertyMap) Predicates() []IRI {
	ps := make([]IRI, 0, len(m))
	for p := range m {
		ps = append(ps, p)
	}
	SortIRIs(ps)
	return ps
}

// Len returns the number of (predicate, value) pairs.
func (m PropertyMap) Len() int {
	n := 0
	for _, vs := range m {
		n += len(vs)
	}
	return n
}

// Clone returns a deep copy.
func (m PropertyMap) Clone() PropertyMap {
	out := make(PropertyMap, len(m))
	for p, vs := range m {
		out[p] = append([]Node(nil), vs...)
	}
	return out
}

// Merge adds every value of other. Reports whether the map changed.
func (m PropertyMap) Merge(other PropertyMap) bool {
	changed := false
	for p, vs := range other {
		for _, v := range vs {
			if m.Add(p, v) {
				changed = true
			}
		}
	}
	return changed
}

// Statements expands the map into statements about subject, ordered by
// predicate and then value.
func (m PropertyMap) Statements(subject Node) []Statement {
	out := make([]Statement, 0, m.Len())
	for _, p := range m.Predicates() {
		vs := append([]Node(nil), m[p]...)
		SortNodes(vs)
		for _, v := range vs {
			out = append(out, NewStatement(subject, p, v))
		}
	}
	return out
}

// Types returns the rdf:type values that are IRIs.
func (m PropertyMap) Types() []IRI {
	var out []IRI
	for _, v := range m[RDFType] {
		if iri, ok := v.(IRI); ok {
			out = append(out, iri)
		}
	}
	return out
}
