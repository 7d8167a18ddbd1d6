package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		switch event.Type {
		case TraceWatch:
			fmt.Fprintf(&buf, "  [%d] step %d %s %s %s\n", i+1, event.Step, event.Watch, event.Kind, event.Resource)
		default:
			fmt.Fprintf(&buf, "  [%d] step %d %s graph=%q created=%v error=%q\n", i+1, event.Step, event.Type, event.Graph, event.Created, event.Error)
		}
	}

	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Ctx        context.Context
	Store      *store.Store
	Namespaces rdf.Namespaces
	Bind       Binder
}

func (a *AssertionContext) term(s string) (rdf.Node, error) {
	if strings.TrimSpace(s) == "*" {
		return nil, nil
	}
	ns := a.Namespaces
	if ns == nil {
		ns = rdf.DefaultNamespaces()
	}
	return parseTerm(ns, a.Bind, s)
}

func (a *AssertionContext) predicate(s string) (rdf.IRI, error) {
	n, err := a.term(s)
	if err != nil || n == nil {
		return "", err
	}
	iri, ok := n.(rdf.IRI)
	if !ok {
		return "", fmt.Errorf("predicate %q is not an IRI", s)
	}
	return iri, nil
}

// assertCount checks the number of stored statements matching a pattern
// across all graphs.
func assertCount(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	if len(assertion.Pattern) != 3 {
		return fmt.Errorf("count: pattern must have three terms, got %d", len(assertion.Pattern))
	}
	subject, err := actx.term(assertion.Pattern[0])
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	predicate, err := actx.predicate(assertion.Pattern[1])
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	object, err := actx.term(assertion.Pattern[2])
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	n, err := actx.Store.Count(actx.Ctx, subject, predicate, object, "")
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	if int(n) != assertion.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d statements matching %v", assertion.Count, assertion.Pattern),
			Actual:   fmt.Sprintf("%d statements", n),
			Trace:    trace,
		}
	}
	return nil
}

// assertEvents checks how many events a watch received.
func assertEvents(result *Result, assertion Assertion) error {
	got := len(result.Events(assertion.Watch, assertion.Kind))
	if got == assertion.Count {
		return nil
	}
	what := "events"
	if assertion.Kind != "" {
		what = assertion.Kind + " events"
	}
	return &AssertionError{
		Type:     AssertEvents,
		Expected: fmt.Sprintf("%d %s on watch %s", assertion.Count, what, assertion.Watch),
		Actual:   fmt.Sprintf("%d %s", got, what),
		Trace:    result.Trace,
	}
}

// assertValues checks that a property holds exactly the listed values.
func assertValues(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	subject, err := actx.term(assertion.Subject)
	if err != nil {
		return fmt.Errorf("values: %w", err)
	}
	predicate, err := actx.predicate(assertion.Property)
	if err != nil {
		return fmt.Errorf("values: %w", err)
	}
	if subject == nil || predicate == "" {
		return fmt.Errorf("values: subject and property must not be wildcards")
	}

	total, err := actx.Store.Count(actx.Ctx, subject, predicate, nil, "")
	if err != nil {
		return fmt.Errorf("values: %w", err)
	}
	var missing []string
	for _, raw := range assertion.Values {
		v, err := actx.term(raw)
		if err != nil {
			return fmt.Errorf("values: %w", err)
		}
		found, err := actx.Store.Contains(actx.Ctx, subject, predicate, v, "")
		if err != nil {
			return fmt.Errorf("values: %w", err)
		}
		if !found {
			missing = append(missing, raw)
		}
	}

	if len(missing) == 0 && int(total) == len(assertion.Values) {
		return nil
	}
	return &AssertionError{
		Type:     AssertValues,
		Expected: fmt.Sprintf("%s %s = %v", assertion.Subject, assertion.Property, assertion.Values),
		Actual:   fmt.Sprintf("%d values, missing %v", total, missing),
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides store access for count and values assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertEvents:
			err = assertEvents(result, assertion)
		case AssertCount, AssertValues:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: %s requires store context", i, assertion.Type)
			} else if assertion.Type == AssertCount {
				err = assertCount(actx, result.Trace, assertion)
			} else {
				err = assertValues(actx, result.Trace, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
