package ontology

import (
	"sync"

	"github.com/roach88/semstore/internal/rdf"
)

// Class is a class declaration.
type Class struct {
	IRI     rdf.IRI
	Parents []rdf.IRI
	Label   string
}

// Property is a property declaration. A zero MaxCardinality means unbounded.
// A nil Identifying means the identifying flag is derived from the range.
type Property struct {
	IRI            rdf.IRI
	Domain         rdf.IRI
	Range          rdf.IRI
	MaxCardinality int
	Identifying    *bool
	Label          string
}

// Schema is an in-memory Tree.
//
// Thread-safety: reads are safe for concurrent use; declarations must not
// race with reads.
type Schema struct {
	classes    map[rdf.IRI]*Class
	properties map[rdf.IRI]*Property

	mu        sync.Mutex
	ancestors map[rdf.IRI]map[rdf.IRI]bool
}

var _ Tree = (*Schema)(nil)

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{
		classes:    map[rdf.IRI]*Class{},
		properties: map[rdf.IRI]*Property{},
	}
}

// AddClass declares or redeclares a class. Parents accumulate.
func (s *Schema) AddClass(c Class) {
	if existing, ok := s.classes[c.IRI]; ok {
		for _, p := range c.Parents {
			if !containsIRI(existing.Parents, p) {
				existing.Parents = append(existing.Parents, p)
			}
		}
		if c.Label != "" {
			existing.Label = c.Label
		}
	} else {
		cp := c
		cp.Parents = append([]rdf.IRI(nil), c.Parents...)
		s.classes[c.IRI] = &cp
	}
	s.invalidate()
}

// AddProperty declares or replaces a property.
func (s *Schema) AddProperty(p Property) {
	cp := p
	s.properties[p.IRI] = &cp
}

// Class returns a class declaration.
func (s *Schema) Class(iri rdf.IRI) (Class, bool) {
	c, ok := s.classes[iri]
	if !ok {
		return Class{}, false
	}
	return *c, true
}

// Property returns a property declaration.
func (s *Schema) Property(iri rdf.IRI) (Property, bool) {
	p, ok := s.properties[iri]
	if !ok {
		return Property{}, false
	}
	return *p, true
}

// Classes returns every declared class IRI in sorted order.
func (s *Schema) Classes() []rdf.IRI {
	out := make([]rdf.IRI, 0, len(s.classes))
	for iri := range s.classes {
		out = append(out, iri)
	}
	rdf.SortIRIs(out)
	return out
}

// Properties returns every declared property IRI in sorted order.
func (s *Schema) Properties() []rdf.IRI {
	out := make([]rdf.IRI, 0, len(s.properties))
	for iri := range s.properties {
		out = append(out, iri)
	}
	rdf.SortIRIs(out)
	return out
}

// MaxCardinality implements Tree.
func (s *Schema) MaxCardinality(p rdf.IRI) (int, bool) {
	prop, ok := s.properties[p]
	if !ok || prop.MaxCardinality <= 0 {
		return 0, false
	}
	return prop.MaxCardinality, true
}

// PropertyDomain implements Tree.
func (s *Schema) PropertyDomain(p rdf.IRI) (rdf.IRI, bool) {
	prop, ok := s.properties[p]
	if !ok || prop.Domain == "" {
		return "", false
	}
	return prop.Domain, true
}

// PropertyRange implements Tree.
func (s *Schema) PropertyRange(p rdf.IRI) (rdf.IRI, bool) {
	prop, ok := s.properties[p]
	if !ok || prop.Range == "" {
		return "", false
	}
	return prop.Range, true
}

// IsIdentifyingProperty implements Tree.
func (s *Schema) IsIdentifyingProperty(p rdf.IRI) bool {
	prop, ok := s.properties[p]
	if !ok {
		return false
	}
	if prop.Identifying != nil {
		return *prop.Identifying
	}
	if prop.Range == "" || prop.Range == rdf.RDFSResource {
		return true
	}
	return s.IsLiteralType(prop.Range)
}

// IsLiteralType implements Tree.
func (s *Schema) IsLiteralType(t rdf.IRI) bool {
	if t == rdf.RDFSLiteral || isXSD(t) {
		return true
	}
	return s.IsSubclassOf(t, rdf.RDFSLiteral)
}

// IsSubclassOf implements Tree. Every declared class other than rdfs:Resource
// descends from rdfs:Resource.
func (s *Schema) IsSubclassOf(sub, super rdf.IRI) bool {
	if sub == super {
		return false
	}
	if super == rdf.RDFSResource {
		_, declared := s.classes[sub]
		return declared
	}
	return s.AllParents(sub)[super]
}

// AllParents returns every strict ancestor of class c.
func (s *Schema) AllParents(c rdf.IRI) map[rdf.IRI]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ancestors == nil {
		s.ancestors = map[rdf.IRI]map[rdf.IRI]bool{}
	}
	if cached, ok := s.ancestors[c]; ok {
		return cached
	}

	out := map[rdf.IRI]bool{}
	stack := []rdf.IRI{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cls, ok := s.classes[cur]
		if !ok {
			continue
		}
		for _, parent := range cls.Parents {
			if parent == c || out[parent] {
				continue
			}
			out[parent] = true
			stack = append(stack, parent)
		}
	}
	s.ancestors[c] = out
	return out
}

func (s *Schema) invalidate() {
	s.mu.Lock()
	s.ancestors = nil
	s.mu.Unlock()
}

func isXSD(t rdf.IRI) bool {
	return len(t) > len(rdf.NSXSD) && string(t[:len(rdf.NSXSD)]) == rdf.NSXSD
}

func containsIRI(list []rdf.IRI, iri rdf.IRI) bool {
	for _, x := range list {
		if x == iri {
			return true
		}
	}
	return false
}

// Bool returns a pointer to b, for Property.Identifying.
func Bool(b bool) *bool { return &b }
