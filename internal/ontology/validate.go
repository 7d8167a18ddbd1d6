package ontology

import (
	"fmt"

	"github.com/roach88/semstore/internal/rdf"
)

// Validation error codes (E210-E219)
const (
	ErrUnknownParent   = "E210" // class parent is not declared
	ErrUnknownDomain   = "E211" // property domain is not a declared class
	ErrUnknownRange    = "E212" // property range is neither a class nor a literal type
	ErrHierarchyCycle  = "E213" // class is its own ancestor
	ErrLiteralDomain   = "E214" // property domain is a literal type
	ErrIdentifyingType = "E215" // rdf:type flagged as identifying
)

// ValidationError represents a schema consistency problem.
type ValidationError struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Subject, e.Message)
}

// Validate checks the schema for dangling references and hierarchy cycles.
// Returns all problems found (does not fail-fast), ordered by IRI.
func Validate(s *Schema) []ValidationError {
	var errs []ValidationError

	for _, iri := range s.Classes() {
		c, _ := s.Class(iri)
		for _, parent := range c.Parents {
			if _, ok := s.Class(parent); !ok {
				errs = append(errs, ValidationError{
					Subject: string(iri),
					Message: fmt.Sprintf("parent %s is not declared", parent),
					Code:    ErrUnknownParent,
				})
			}
		}
		if reachesSelf(s, iri) {
			errs = append(errs, ValidationError{
				Subject: string(iri),
				Message: "class is its own ancestor",
				Code:    ErrHierarchyCycle,
			})
		}
	}

	for _, iri := range s.Properties() {
		p, _ := s.Property(iri)
		if p.Domain != "" {
			if s.IsLiteralType(p.Domain) {
				errs = append(errs, ValidationError{
					Subject: string(iri),
					Message: fmt.Sprintf("domain %s is a literal type", p.Domain),
					Code:    ErrLiteralDomain,
				})
			} else if _, ok := s.Class(p.Domain); !ok {
				errs = append(errs, ValidationError{
					Subject: string(iri),
					Message: fmt.Sprintf("domain %s is not declared", p.Domain),
					Code:    ErrUnknownDomain,
				})
			}
		}
		if p.Range != "" && !s.IsLiteralType(p.Range) {
			if _, ok := s.Class(p.Range); !ok {
				errs = append(errs, ValidationError{
					Subject: string(iri),
					Message: fmt.Sprintf("range %s is not declared", p.Range),
					Code:    ErrUnknownRange,
				})
			}
		}
		if p.IRI == rdf.RDFType && p.Identifying != nil && *p.Identifying {
			errs = append(errs, ValidationError{
				Subject: string(iri),
				Message: "rdf:type is matched as a hard requirement and cannot be identifying",
				Code:    ErrIdentifyingType,
			})
		}
	}

	return errs
}

// reachesSelf reports whether following parent links from class c leads
// back to c.
func reachesSelf(s *Schema, c rdf.IRI) bool {
	seen := map[rdf.IRI]bool{}
	stack := []rdf.IRI{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cls, ok := s.classes[cur]
		if !ok {
			continue
		}
		for _, parent := range cls.Parents {
			if parent == c {
				return true
			}
			if !seen[parent] {
				seen[parent] = true
				stack = append(stack, parent)
			}
		}
	}
	return false
}
