package ontology

import "github.com/roach88/semstore/internal/rdf"

// Tree answers schema questions about classes and properties.
type Tree interface {
	// MaxCardinality returns the maximum number of distinct values a
	// property may hold per subject.
	MaxCardinality(p rdf.IRI) (int, bool)

	// PropertyDomain returns the declared domain of p.
	PropertyDomain(p rdf.IRI) (rdf.IRI, bool)

	// PropertyRange returns the declared range of p.
	PropertyRange(p rdf.IRI) (rdf.IRI, bool)

	// IsSubclassOf reports whether sub is a strict descendant of super.
	IsSubclassOf(sub, super rdf.IRI) bool

	// IsIdentifyingProperty reports whether values of p may be used to
	// recognise an existing resource.
	IsIdentifyingProperty(p rdf.IRI) bool

	// IsLiteralType reports whether t is a literal datatype.
	IsLiteralType(t rdf.IRI) bool
}

// IsOfType reports whether any of types is t or a descendant of t.
// Every resource is implicitly an rdfs:Resource.
func IsOfType(tree Tree, types []rdf.IRI, t rdf.IRI) bool {
	if t == rdf.RDFSResource {
		return true
	}
	for _, have := range types {
		if have == t || tree.IsSubclassOf(have, t) {
			return true
		}
	}
	return false
}
