package resource

import (
	"github.com/roach88/semstore/internal/rdf"
)

// Resource is the staged description of one subject.
type Resource struct {
	ID    rdf.Node
	Props rdf.PropertyMap
}

// New creates an empty resource for id.
func New(id rdf.Node) Resource {
	return Resource{ID: id, Props: rdf.PropertyMap{}}
}

// HasType reports whether the resource asserts rdf:type t.
func (r Resource) HasType(t rdf.IRI) bool {
	return r.Props.Contains(rdf.RDFType, t)
}

// Types returns the asserted types.
func (r Resource) Types() []rdf.IRI {
	return r.Props.Types()
}

// Values returns the values of predicate p.
func (r Resource) Values(p rdf.IRI) []rdf.Node {
	return r.Props.Values(p)
}

// PrimaryLocation returns the resource's nie:url value as a string.
func (r Resource) PrimaryLocation() (string, bool) {
	v, ok := r.Props.First(rdf.NIEURL)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case rdf.IRI:
		return string(t), true
	case rdf.Literal:
		return t.Lexical, true
	}
	return "", false
}

// WithPrimaryLocation returns a clone whose nie:url is loc. The value keeps
// the kind (IRI or literal) of the value it replaces.
func (r Resource) WithPrimaryLocation(loc string) Resource {
	out := r.Clone()
	var v rdf.Node = rdf.IRI(loc)
	if old, ok := r.Props.First(rdf.NIEURL); ok {
		if lit, isLit := old.(rdf.Literal); isLit {
			v = rdf.NewTyped(loc, lit.Datatype)
		}
	}
	out.Props.Set(rdf.NIEURL, v)
	return out
}

// Hierarchy answers subclass questions. ontology.Tree implements it.
type Hierarchy interface {
	IsSubclassOf(sub, super rdf.IRI) bool
}

// IsContainer reports whether the resource is a folder-like object whose
// location prefixes the locations of its children. Subclasses of nfo:Folder
// are recognised through h, which may be nil.
func (r Resource) IsContainer(h Hierarchy) bool {
	for _, t := range r.Types() {
		if t == rdf.NFOFolder || (h != nil && h.IsSubclassOf(t, rdf.NFOFolder)) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (r Resource) Clone() Resource {
	return Resource{ID: r.ID, Props: r.Props.Clone()}
}

// Statements expands the resource into sorted statements.
func (r Resource) Statements() []rdf.Statement {
	return r.Props.Statements(r.ID)
}

// References returns the distinct reference values (IRIs and blanks) of the
// resource, excluding rdf:type classes.
func (r Resource) References() []rdf.Node {
	seen := map[rdf.Node]bool{}
	var out []rdf.Node
	for _, p := range r.Props.Predicates() {
		if p == rdf.RDFType {
			continue
		}
		for _, v := range r.Props[p] {
			if rdf.IsReference(v) && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
