package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/semstore/internal/rdf"
)

func TestDefault_Hierarchy(t *testing.T) {
	s := Default()

	assert.True(t, s.IsSubclassOf(rdf.NRLDiscardableInstanceBase, rdf.NRLGraph))
	assert.True(t, s.IsSubclassOf(rdf.NCOPersonContact, rdf.NCOContact))
	assert.True(t, s.IsSubclassOf(rdf.NCOPersonContact, rdf.RDFSResource))
	assert.False(t, s.IsSubclassOf(rdf.NCOContact, rdf.NCOContact), "not reflexive")
	assert.False(t, s.IsSubclassOf(rdf.NCOContact, rdf.NCOPersonContact))
	assert.False(t, s.IsSubclassOf("http://example.org/Unknown", rdf.RDFSResource))
}

func TestDefault_PropertyFacts(t *testing.T) {
	s := Default()

	max, ok := s.MaxCardinality(rdf.NCOFullname)
	assert.True(t, ok)
	assert.Equal(t, 1, max)

	_, ok = s.MaxCardinality(rdf.NCONickname)
	assert.False(t, ok)

	domain, ok := s.PropertyDomain(rdf.NCOFullname)
	assert.True(t, ok)
	assert.Equal(t, rdf.NCOContact, domain)

	rng, ok := s.PropertyRange(rdf.NAOHasTag)
	assert.True(t, ok)
	assert.Equal(t, rdf.NAOTag, rng)

	_, ok = s.PropertyRange("http://example.org/undeclared")
	assert.False(t, ok)
}

func TestIsIdentifyingProperty(t *testing.T) {
	s := Default()

	assert.True(t, s.IsIdentifyingProperty(rdf.NCOFullname), "literal range")
	assert.True(t, s.IsIdentifyingProperty(rdf.NIEURL), "generic range")
	assert.True(t, s.IsIdentifyingProperty(rdf.NCOHasEmailAddress), "explicit flag")
	assert.False(t, s.IsIdentifyingProperty(rdf.NAOHasTag), "class range")
	assert.False(t, s.IsIdentifyingProperty(rdf.RDFType), "explicitly excluded")
	assert.False(t, s.IsIdentifyingProperty("http://example.org/undeclared"))

	s.AddProperty(Property{IRI: "http://example.org/free"})
	assert.True(t, s.IsIdentifyingProperty("http://example.org/free"), "no range")
}

func TestIsLiteralType(t *testing.T) {
	s := Default()

	assert.True(t, s.IsLiteralType(rdf.RDFSLiteral))
	assert.True(t, s.IsLiteralType(rdf.XSDDuration))
	assert.False(t, s.IsLiteralType(rdf.NCOContact))

	s.AddClass(Class{IRI: "http://example.org/Money", Parents: []rdf.IRI{rdf.RDFSLiteral}})
	assert.True(t, s.IsLiteralType("http://example.org/Money"))
}

func TestIsOfType(t *testing.T) {
	s := Default()

	assert.True(t, IsOfType(s, nil, rdf.RDFSResource))
	assert.True(t, IsOfType(s, []rdf.IRI{rdf.NCOPersonContact}, rdf.NCOContact))
	assert.True(t, IsOfType(s, []rdf.IRI{rdf.NFOFolder}, rdf.NIEDataObject))
	assert.False(t, IsOfType(s, []rdf.IRI{rdf.NAOTag}, rdf.NCOContact))
}

func TestAddClass_AccumulatesParentsAndInvalidatesCache(t *testing.T) {
	s := Default()
	ex := rdf.IRI("http://example.org/Thing")
	s.AddClass(Class{IRI: ex, Parents: []rdf.IRI{rdf.RDFSResource}})
	assert.False(t, s.IsSubclassOf(ex, rdf.NCOContact))

	s.AddClass(Class{IRI: ex, Parents: []rdf.IRI{rdf.NCOContact}})
	assert.True(t, s.IsSubclassOf(ex, rdf.NCOContact))
	assert.True(t, s.IsSubclassOf(ex, rdf.NIEInformationElement))
}

func TestValidate_DefaultIsClean(t *testing.T) {
	assert.Empty(t, Validate(Default()))
}

func TestValidate_ReportsProblems(t *testing.T) {
	s := Default()
	a := rdf.IRI("http://example.org/A")
	b := rdf.IRI("http://example.org/B")
	s.AddClass(Class{IRI: a, Parents: []rdf.IRI{b}})
	s.AddClass(Class{IRI: b, Parents: []rdf.IRI{a}})
	s.AddClass(Class{IRI: "http://example.org/C", Parents: []rdf.IRI{"http://example.org/Missing"}})
	s.AddProperty(Property{IRI: "http://example.org/p", Domain: "http://example.org/Nowhere", Range: "http://example.org/Nothing"})
	s.AddProperty(Property{IRI: "http://example.org/q", Domain: rdf.XSDString})

	codes := map[string]int{}
	for _, e := range Validate(s) {
		codes[e.Code]++
	}

	assert.Equal(t, 2, codes[ErrHierarchyCycle])
	assert.Equal(t, 1, codes[ErrUnknownParent])
	assert.Equal(t, 1, codes[ErrUnknownDomain])
	assert.Equal(t, 1, codes[ErrUnknownRange])
	assert.Equal(t, 1, codes[ErrLiteralDomain])
}
