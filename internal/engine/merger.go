package engine

import (
	"context"
	"sort"

	"github.com/roach88/semstore/internal/ontology"
	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/watcher"
)

// Flags modify how a merge treats cardinality violations.
type Flags uint8

const (
	// OverwriteProperties replaces the single stored value of a
	// max-cardinality-1 property instead of failing.
	OverwriteProperties Flags = 1 << iota

	// LazyCardinalities never fails on cardinality. The newest values up
	// to the declared maximum are kept and older ones are removed.
	LazyCardinalities
)

// Has reports whether all of x are set in f.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

// MergeResult describes what a merge wrote.
type MergeResult struct {
	// Seq numbers the merge within its Engine. Zero for merges run on a
	// standalone Merger.
	Seq int64

	// Graph is the graph holding the new statements. Empty when the merge
	// wrote nothing new.
	Graph rdf.IRI

	// Graphs lists every graph the merge created, in creation order.
	Graphs []rdf.IRI

	// Superseded maps each old graph whose duplicates were moved to the
	// graph that now holds them.
	Superseded map[rdf.IRI]rdf.IRI

	// Inserted and Removed count statement writes and deletions, excluding
	// graph metadata.
	Inserted int
	Removed  int

	// Duplicates counts incoming statements that already existed.
	Duplicates int

	// Created lists resources materialised from placeholders.
	Created []rdf.IRI

	// Mappings is the final identification mapping, including created
	// resources. The identifier used by the merge is not extended with the
	// created ones; Engine does that once the transaction has committed.
	Mappings map[rdf.Node]rdf.IRI
}

// Merger validates and commits one batch of statements.
//
// A Merger is used for a single merge and is not safe for concurrent use.
// Validation happens before any write; callers run Merge inside a store
// transaction so that a failure in a later step leaves no writes either.
type Merger struct {
	st     Writer
	tree   ontology.Tree
	ident  *Identifier
	notify watcher.Notifier
	cfg    config
}

// NewMerger creates a merger writing to st. References are resolved through
// ident's mapping; a nil ident resolves only store identifiers. notify may be
// nil.
func NewMerger(st Writer, tree ontology.Tree, ident *Identifier, notify watcher.Notifier, opts ...Option) *Merger {
	return newMerger(st, tree, ident, notify, newConfig(opts))
}

func newMerger(st Writer, tree ontology.Tree, ident *Identifier, notify watcher.Notifier, cfg config) *Merger {
	if ident == nil {
		ident = newIdentifier(st, tree, cfg)
	}
	return &Merger{
		st:     st,
		tree:   tree,
		ident:  ident,
		notify: notify,
		cfg:    cfg,
	}
}

// spKey identifies a (subject, predicate) pair.
type spKey struct {
	subject   rdf.Node
	predicate rdf.IRI
}

// mergeState carries one merge through its steps.
type mergeState struct {
	flags    Flags
	metadata rdf.PropertyMap

	subjects     map[rdf.Node]struct{} // every incoming subject
	placeholders map[rdf.Node]struct{} // unresolved blanks and foreign subjects

	types   []rdf.Statement
	props   []rdf.Statement
	resMeta []rdf.Statement

	newTypes    map[rdf.Node][]rdf.IRI
	storedTypes map[rdf.Node][]rdf.IRI
	overwrite   map[spKey][]rdf.Node

	duplicates map[rdf.IRI][]rdf.Statement
	repoint    map[rdf.IRI]rdf.IRI

	mainGraph rdf.IRI
	created   map[rdf.Node]bool
	touched   map[rdf.Node]struct{}

	result *MergeResult
}

// Merge validates statements against the ontology and the store, then
// writes them with metadata describing the new graph.
//
// The steps are:
//  1. check the graph metadata
//  2. resolve references through the identification mapping
//  3. split type, resource-metadata and property statements
//  4. check cardinality
//  5. check domain and range
//  6. find statements that already exist
//  7. reuse or supersede the graphs holding them
//  8. create the main graph on first write
//  9. materialise unresolved placeholders
//  10. write types, properties, moved duplicates and resource metadata
//
// Steps 1 to 5 never write.
func (m *Merger) Merge(ctx context.Context, stmts []rdf.Statement, metadata rdf.PropertyMap, flags Flags) (*MergeResult, error) {
	st := &mergeState{
		flags:        flags,
		metadata:     metadata.Clone(),
		subjects:     make(map[rdf.Node]struct{}),
		placeholders: make(map[rdf.Node]struct{}),
		newTypes:     make(map[rdf.Node][]rdf.IRI),
		storedTypes:  make(map[rdf.Node][]rdf.IRI),
		overwrite:    make(map[spKey][]rdf.Node),
		duplicates:   make(map[rdf.IRI][]rdf.Statement),
		repoint:      make(map[rdf.IRI]rdf.IRI),
		created:      make(map[rdf.Node]bool),
		touched:      make(map[rdf.Node]struct{}),
		result: &MergeResult{
			Superseded: make(map[rdf.IRI]rdf.IRI),
			Mappings:   make(map[rdf.Node]rdf.IRI),
		},
	}

	if len(st.metadata) > 0 {
		if err := m.checkGraphMetadata(ctx, st.metadata); err != nil {
			return nil, err
		}
	}
	if err := m.classify(ctx, st, stmts); err != nil {
		return nil, err
	}
	if err := m.checkCardinality(ctx, st); err != nil {
		return nil, err
	}
	if err := m.checkDomainRange(ctx, st); err != nil {
		return nil, err
	}
	if err := m.findDuplicates(ctx, st); err != nil {
		return nil, err
	}
	if err := m.resolveGraphs(ctx, st); err != nil {
		return nil, err
	}
	if err := m.materialize(ctx, st); err != nil {
		return nil, err
	}
	if err := m.commit(ctx, st); err != nil {
		return nil, err
	}

	for subj, iri := range m.ident.Mappings() {
		st.result.Mappings[subj] = iri
	}
	return st.result, nil
}

// classify validates and resolves every statement and splits them into
// types, resource metadata and properties.
func (m *Merger) classify(ctx context.Context, st *mergeState, stmts []rdf.Statement) error {
	for _, s := range stmts {
		if err := s.Validate(); err != nil {
			return &Error{Code: ErrCodeInvalidStatement, Message: s.String(), Subject: s.Subject, Predicate: s.Predicate, Err: err}
		}
		if _, isIRI := s.Object.(rdf.IRI); s.Predicate == rdf.RDFType && !isIRI {
			return &Error{Code: ErrCodeInvalidStatement, Message: "rdf:type value must be a class", Subject: s.Subject, Predicate: s.Predicate, Values: []rdf.Node{s.Object}}
		}
		st.subjects[s.Subject] = struct{}{}
	}

	seen := make(map[rdf.Statement]struct{}, len(stmts))
	for _, s := range stmts {
		subj, err := m.resolve(ctx, st, s.Subject)
		if err != nil {
			return err
		}
		obj, err := m.resolve(ctx, st, s.Object)
		if err != nil {
			return err
		}
		r := rdf.NewStatement(subj, s.Predicate, obj)
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}

		switch {
		case r.Predicate == rdf.RDFType:
			if t, ok := r.Object.(rdf.IRI); ok {
				st.newTypes[r.Subject] = appendIRI(st.newTypes[r.Subject], t)
			}
			st.types = append(st.types, r)
		case rdf.IsResourceMetadata(r.Predicate):
			st.resMeta = append(st.resMeta, r)
		default:
			st.props = append(st.props, r)
		}
	}
	return nil
}

// resolve maps a term through the identification mapping. Unresolved blanks
// and foreign subjects stay as placeholders; other foreign IRIs are kept
// verbatim.
func (m *Merger) resolve(ctx context.Context, st *mergeState, n rdf.Node) (rdf.Node, error) {
	if target, ok := m.ident.MappedURI(n); ok {
		return target, nil
	}
	switch t := n.(type) {
	case rdf.Blank:
		st.placeholders[t] = struct{}{}
		return t, nil
	case rdf.IRI:
		if rdf.IsStoreIRI(t) {
			ok, err := m.ident.Identify(ctx, t)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &Error{
					Code:    ErrCodeUnresolvableReference,
					Message: "store identifier is neither mapped nor stored",
					Subject: t,
				}
			}
			target, _ := m.ident.MappedURI(t)
			return target, nil
		}
		if _, isSubject := st.subjects[t]; isSubject {
			st.placeholders[t] = struct{}{}
		}
		return t, nil
	}
	return n, nil
}

func (st *mergeState) isPlaceholder(n rdf.Node) bool {
	_, ok := st.placeholders[n]
	return ok
}

// typesOf returns the stored and newly asserted types of n.
func (m *Merger) typesOf(ctx context.Context, st *mergeState, n rdf.Node) ([]rdf.IRI, error) {
	var out []rdf.IRI
	if iri, ok := n.(rdf.IRI); ok && !st.isPlaceholder(n) {
		stored, cached := st.storedTypes[n]
		if !cached {
			var err error
			stored, err = storedTypes(ctx, m.st, iri)
			if err != nil {
				return nil, storeError("lookup types", err)
			}
			st.storedTypes[n] = stored
		}
		out = append(out, stored...)
	}
	for _, t := range st.newTypes[n] {
		out = appendIRI(out, t)
	}
	return out, nil
}

// groupProps groups property statements by (subject, predicate) in sorted
// order, keeping the incoming order of values.
func groupProps(stmts []rdf.Statement) ([]spKey, map[spKey][]rdf.Node) {
	values := make(map[spKey][]rdf.Node)
	var keys []spKey
	for _, s := range stmts {
		k := spKey{subject: s.Subject, predicate: s.Predicate}
		if _, ok := values[k]; !ok {
			keys = append(keys, k)
		}
		values[k] = append(values[k], s.Object)
	}
	sortKeys(keys)
	return keys, values
}

func sortKeys(keys []spKey) {
	sort.Slice(keys, func(i, j int) bool {
		if c := rdf.Compare(keys[i].subject, keys[j].subject); c != 0 {
			return c < 0
		}
		return keys[i].predicate < keys[j].predicate
	})
}

func appendIRI(list []rdf.IRI, iri rdf.IRI) []rdf.IRI {
	for _, have := range list {
		if have == iri {
			return list
		}
	}
	return append(list, iri)
}

func containsNode(list []rdf.Node, n rdf.Node) bool {
	for _, have := range list {
		if rdf.Equal(have, n) {
			return true
		}
	}
	return false
}
