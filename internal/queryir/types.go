package queryir

import "github.com/roach88/semstore/internal/rdf"

// Term is a position in a quad pattern.
//
// This is a sealed interface - only Var and Const implement it.
type Term interface {
	term()
}

// Var is a named variable, written ?name in SPARQL.
type Var string

func (Var) term() {}

// Const is a fixed term.
type Const struct {
	Node rdf.Node
}

func (Const) term() {}

// C wraps a node as a pattern constant.
func C(n rdf.Node) Const { return Const{Node: n} }

// Pattern is one quad pattern. A nil Graph matches statements in any graph.
//
// SPARQL MAPPING:
//
//	Pattern{Subject: Var("r"), Predicate: C(rdf.RDFType), Object: C(nfo:Folder)}
//
// becomes:
//
//	?r a nfo:Folder .
//
// and with Graph set to Var("g"):
//
//	GRAPH ?g { ?r a nfo:Folder . }
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// Triple is a shorthand for a pattern with no graph restriction.
func Triple(s, p, o Term) Pattern {
	return Pattern{Subject: s, Predicate: p, Object: o}
}

// Vars returns the variables used by the pattern in S, P, O, G order.
func (p Pattern) Vars() []Var {
	var out []Var
	for _, t := range []Term{p.Subject, p.Predicate, p.Object, p.Graph} {
		if v, ok := t.(Var); ok {
			out = append(out, v)
		}
	}
	return out
}

// Query represents an abstract query.
//
// This is a sealed interface - only Select implements it today.
type Query interface {
	queryNode()
}

// Select is a basic graph pattern query.
//
// Semantics:
//
//	SELECT [DISTINCT] <project> [(<score>) AS ?score]
//	WHERE { <where> FILTER(<filter>) }
//	ORDER BY <project>
//	LIMIT <limit>
//
// Example - identify a contact by its name and email:
//
//	Select{
//	  Where: []Pattern{
//	    Triple(Var("r"), C(rdf.RDFType), C(nco:PersonContact)),
//	  },
//	  Optional: []Pattern{
//	    Triple(Var("r"), C(nco:fullname), C(rdf.NewString("Alice"))),
//	    Triple(Var("r"), C(nco:hasEmailAddress), C(rdf.IRI("nepomuk:/res/e1"))),
//	  },
//	  Project:  []Var{"r"},
//	  Distinct: true,
//	  ScoreVar: "score",
//	}
//
// Produces one solution per candidate with Score = number of optional
// patterns the candidate satisfies.
type Select struct {
	Where    []Pattern
	Optional []Pattern
	Filter   Predicate
	Project  []Var
	Distinct bool
	ScoreVar Var
	Limit    int
}

func (Select) queryNode() {}

// Predicate represents a filter condition over bound variables.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Equals holds when Var is bound to Value.
//
// SPARQL MAPPING:
//
//	FILTER(?v = <value>)
type Equals struct {
	Var   Var
	Value rdf.Node
}

func (Equals) predicateNode() {}

// NotEquals holds when Var is bound to anything but Value. Used by the
// cardinality check to count existing values distinct from the new one.
//
// SPARQL MAPPING:
//
//	FILTER(?v != <value>)
type NotEquals struct {
	Var   Var
	Value rdf.Node
}

func (NotEquals) predicateNode() {}

// In holds when Var is bound to one of Values. An empty list never holds.
//
// SPARQL MAPPING:
//
//	FILTER(?v IN (<v1>, <v2>))
type In struct {
	Var    Var
	Values []rdf.Node
}

func (In) predicateNode() {}

// And is a conjunction. An empty And always holds.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Solution is one row of a Select result.
type Solution struct {
	Bindings map[Var]rdf.Node
	Score    int
}

// Get returns the binding of v.
func (s Solution) Get(v Var) rdf.Node {
	return s.Bindings[v]
}
