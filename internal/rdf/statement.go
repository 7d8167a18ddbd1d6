package rdf

import (
	"errors"
	"fmt"
	"sort"
)

// Statement is a fact. Graph is empty for statements that have not been
// written yet.
type Statement struct {
	Subject   Node
	Predicate IRI
	Object    Node
	Graph     IRI
}

// NewStatement creates a statement with no graph.
func NewStatement(s Node, p IRI, o Node) Statement {
	return Statement{Subject: s, Predicate: p, Object: o}
}

// ErrInvalidStatement is returned by Validate for malformed statements.
var ErrInvalidStatement = errors.New("invalid statement")

// Validate checks that the statement is a well-formed triple: the subject is
// a non-empty IRI or blank, the predicate is non-empty and the object is set.
func (s Statement) Validate() error {
	switch subj := s.Subject.(type) {
	case IRI:
		if subj == "" {
			return fmt.Errorf("%w: empty subject", ErrInvalidStatement)
		}
	case Blank:
		if subj == "" {
			return fmt.Errorf("%w: empty blank subject", ErrInvalidStatement)
		}
	case nil:
		return fmt.Errorf("%w: missing subject", ErrInvalidStatement)
	default:
		return fmt.Errorf("%w: literal subject %s", ErrInvalidStatement, subj.N3())
	}
	if s.Predicate == "" {
		return fmt.Errorf("%w: empty predicate", ErrInvalidStatement)
	}
	switch obj := s.Object.(type) {
	case nil:
		return fmt.Errorf("%w: missing object", ErrInvalidStatement)
	case IRI:
		if obj == "" {
			return fmt.Errorf("%w: empty object", ErrInvalidStatement)
		}
	case Blank:
		if obj == "" {
			return fmt.Errorf("%w: empty blank object", ErrInvalidStatement)
		}
	}
	return nil
}

// Triple returns the statement without its graph.
func (s Statement) Triple() Statement {
	s.Graph = ""
	return s
}

func (s Statement) String() string {
	subj, obj := "<nil>", "<nil>"
	if s.Subject != nil {
		subj = s.Subject.N3()
	}
	if s.Object != nil {
		obj = s.Object.N3()
	}
	if s.Graph == "" {
		return fmt.Sprintf("%s %s %s .", subj, s.Predicate.N3(), obj)
	}
	return fmt.Sprintf("%s %s %s %s .", subj, s.Predicate.N3(), obj, s.Graph.N3())
}

// SortStatements orders statements by subject, predicate, object and graph
// encodings.
func SortStatements(stmts []Statement) {
	sort.Slice(stmts, func(i, j int) bool {
		return compareStatements(stmts[i], stmts[j]) < 0
	})
}

func compareStatements(a, b Statement) int {
	if c := Compare(a.Subject, b.Subject); c != 0 {
		return c
	}
	if c := Compare(a.Predicate, b.Predicate); c != 0 {
		return c
	}
	if c := Compare(a.Object, b.Object); c != 0 {
		return c
	}
	return Compare(a.Graph, b.Graph)
}
