package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/semstore/internal/rdf"
)

// Error represents a failure detected while identifying or merging.
//
// Validation errors (INVALID_GRAPH_METADATA through RANGE_VIOLATION) are
// detected before any write, so a merge that returns one leaves the store
// untouched.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Subject and Predicate locate the offending statement, when there is one.
	Subject   rdf.Node
	Predicate rdf.IRI

	// Values holds the offending values or the ambiguous candidates.
	Values []rdf.Node

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeInvalidStatement indicates a malformed triple.
	ErrCodeInvalidStatement ErrorCode = "INVALID_STATEMENT"

	// ErrCodeUnresolvableReference indicates a store identifier that is
	// neither mapped nor present in the store.
	ErrCodeUnresolvableReference ErrorCode = "UNRESOLVABLE_REFERENCE"

	// ErrCodeInvalidGraphMetadata indicates graph metadata failing ontology checks.
	ErrCodeInvalidGraphMetadata ErrorCode = "INVALID_GRAPH_METADATA"

	// ErrCodeCardinalityViolation indicates too many values for a property.
	ErrCodeCardinalityViolation ErrorCode = "CARDINALITY_VIOLATION"

	// ErrCodeDomainViolation indicates a subject outside the property domain.
	ErrCodeDomainViolation ErrorCode = "DOMAIN_VIOLATION"

	// ErrCodeRangeViolation indicates an object outside the property range.
	ErrCodeRangeViolation ErrorCode = "RANGE_VIOLATION"

	// ErrCodeAmbiguousIdentification indicates several equally scored
	// candidates and no tie-break.
	ErrCodeAmbiguousIdentification ErrorCode = "AMBIGUOUS_IDENTIFICATION"

	// ErrCodeStoreError indicates a failure surfaced from the store.
	ErrCodeStoreError ErrorCode = "STORE_ERROR"
)

// ErrNoMatch is the identification failure reason when no stored resource
// matches.
var ErrNoMatch = errors.New("no matching resource")

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Subject != nil && e.Predicate != "" {
		fmt.Fprintf(&b, " (subject=%s, predicate=%s)", e.Subject.N3(), e.Predicate.N3())
	} else if e.Subject != nil {
		fmt.Fprintf(&b, " (subject=%s)", e.Subject.N3())
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsInvalidStatementError returns true if err is an INVALID_STATEMENT error.
// Uses errors.As to handle wrapped errors.
func IsInvalidStatementError(err error) bool {
	return hasCode(err, ErrCodeInvalidStatement)
}

// IsUnresolvableReferenceError returns true if err is an
// UNRESOLVABLE_REFERENCE error.
func IsUnresolvableReferenceError(err error) bool {
	return hasCode(err, ErrCodeUnresolvableReference)
}

// IsInvalidGraphMetadataError returns true if err is an
// INVALID_GRAPH_METADATA error.
func IsInvalidGraphMetadataError(err error) bool {
	return hasCode(err, ErrCodeInvalidGraphMetadata)
}

// IsCardinalityError returns true if err is a CARDINALITY_VIOLATION error.
func IsCardinalityError(err error) bool {
	return hasCode(err, ErrCodeCardinalityViolation)
}

// IsDomainError returns true if err is a DOMAIN_VIOLATION error.
func IsDomainError(err error) bool {
	return hasCode(err, ErrCodeDomainViolation)
}

// IsRangeError returns true if err is a RANGE_VIOLATION error.
func IsRangeError(err error) bool {
	return hasCode(err, ErrCodeRangeViolation)
}

// IsAmbiguousError returns true if err is an AMBIGUOUS_IDENTIFICATION error.
func IsAmbiguousError(err error) bool {
	return hasCode(err, ErrCodeAmbiguousIdentification)
}

// IsStoreError returns true if err is a STORE_ERROR.
func IsStoreError(err error) bool {
	return hasCode(err, ErrCodeStoreError)
}

// IsValidationError reports whether err is one of the validation errors a
// merge detects before writing.
func IsValidationError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case ErrCodeInvalidStatement, ErrCodeUnresolvableReference, ErrCodeInvalidGraphMetadata,
		ErrCodeCardinalityViolation, ErrCodeDomainViolation, ErrCodeRangeViolation:
		return true
	}
	return false
}

// storeError wraps a store failure. Engine errors pass through unchanged.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{
		Code:    ErrCodeStoreError,
		Message: op,
		Err:     err,
	}
}

// NewCardinalityError creates an Error for a property holding more values
// than its maximum cardinality allows.
func NewCardinalityError(subject rdf.Node, predicate rdf.IRI, max int, values []rdf.Node) *Error {
	return &Error{
		Code:      ErrCodeCardinalityViolation,
		Message:   fmt.Sprintf("%s has a max cardinality of %d", predicate, max),
		Subject:   subject,
		Predicate: predicate,
		Values:    values,
		Details: map[string]string{
			"max_cardinality": fmt.Sprintf("%d", max),
		},
	}
}

// NewDomainError creates an Error for a subject outside a property's domain.
func NewDomainError(subject rdf.Node, predicate, domain rdf.IRI) *Error {
	return &Error{
		Code:      ErrCodeDomainViolation,
		Message:   fmt.Sprintf("%s has a rdfs:domain of %s", predicate, domain),
		Subject:   subject,
		Predicate: predicate,
		Details: map[string]string{
			"domain": string(domain),
		},
	}
}

// NewRangeError creates an Error for an object outside a property's range.
func NewRangeError(subject rdf.Node, predicate, rng rdf.IRI, value rdf.Node) *Error {
	return &Error{
		Code:      ErrCodeRangeViolation,
		Message:   fmt.Sprintf("%s has a rdfs:range of %s", predicate, rng),
		Subject:   subject,
		Predicate: predicate,
		Values:    []rdf.Node{value},
		Details: map[string]string{
			"range": string(rng),
		},
	}
}

// NewAmbiguousError creates an Error listing equally scored candidates.
func NewAmbiguousError(subject rdf.Node, candidates []rdf.IRI, score int) *Error {
	values := make([]rdf.Node, len(candidates))
	for i, c := range candidates {
		values[i] = c
	}
	return &Error{
		Code:    ErrCodeAmbiguousIdentification,
		Message: fmt.Sprintf("%d candidates share the best score", len(candidates)),
		Subject: subject,
		Values:  values,
		Details: map[string]string{
			"score": fmt.Sprintf("%d", score),
		},
	}
}

func graphMetadataError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidGraphMetadata,
		Message: fmt.Sprintf(format, args...),
	}
}
