package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/semstore/internal/engine"
	"github.com/roach88/semstore/internal/ontology"
	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/store"
	"github.com/roach88/semstore/internal/testutil"
	"github.com/roach88/semstore/internal/watcher"
)

// Harness is the scenario execution engine.
// It runs scenarios with deterministic clocks and id generators.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	ns       rdf.Namespaces
	labels   *labeler
	bindings map[string]rdf.IRI
	watches  []openWatch
	logger   *slog.Logger
}

type openWatch struct {
	name string
	sub  *watcher.Subscription
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Load the ontology and create a fresh in-memory store
// 2. Before each step, open the watches due at that step
// 3. Merge or identify the step's batch and check its expectation
// 4. Record the events delivered to every watch
// 5. Evaluate assertions against the trace and the final store
func Run(scenario *Scenario) (*Result, error) {
	tree, err := loadOntology(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load ontology: %w", err)
	}
	mode := engine.IdentifyNew
	if scenario.Mode != "" {
		if mode, err = engine.ParseMode(scenario.Mode); err != nil {
			return nil, err
		}
	}

	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequenceGenerator("")),
		store.WithClock(testutil.NewDeterministicClock().Now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	eng := engine.New(st, tree, nil,
		engine.WithMode(mode),
		engine.WithApplication(scenario.App),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(logger),
	)
	defer eng.Close()

	ns := rdf.DefaultNamespaces().With(scenario.Prefixes)
	h := &Harness{
		store:    st,
		engine:   eng,
		ns:       ns,
		labels:   newLabeler(ns),
		bindings: make(map[string]rdf.IRI),
		logger:   logger,
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		n := i + 1
		if err := h.openWatches(n, scenario.Watches); err != nil {
			return nil, fmt.Errorf("step %d: %w", n, err)
		}
		if err := h.executeStep(ctx, n, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", n, err)
		}
		h.drainWatches(n, result)
	}

	actx := &AssertionContext{
		Ctx:        ctx,
		Store:      st,
		Namespaces: ns,
		Bind:       h.bind,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func loadOntology(s *Scenario) (*ontology.Schema, error) {
	switch {
	case s.OntologyDir != "":
		return ontology.LoadDir(s.OntologyDir)
	case s.Ontology != "":
		return ontology.CompileString(s.Ontology)
	default:
		return ontology.Default(), nil
	}
}

func (h *Harness) bind(name string) (rdf.IRI, bool) {
	iri, ok := h.bindings[name]
	return iri, ok
}

// bindMappings binds every blank subject of mappings that has no binding
// yet. Later mappings of the same name are ignored.
func (h *Harness) bindMappings(mappings map[rdf.Node]rdf.IRI) {
	subjects := make([]rdf.Node, 0, len(mappings))
	for s := range mappings {
		subjects = append(subjects, s)
	}
	rdf.SortNodes(subjects)
	for _, s := range subjects {
		b, ok := s.(rdf.Blank)
		if !ok {
			continue
		}
		name := string(b)
		if _, bound := h.bindings[name]; bound {
			continue
		}
		h.bindings[name] = mappings[s]
		h.labels.name(mappings[s], "$"+name)
	}
}

func (h *Harness) openWatches(step int, watches []Watch) error {
	for _, w := range watches {
		before := w.Before
		if before == 0 {
			before = 1
		}
		if before != step {
			continue
		}
		resources, err := h.iris(w.Resources)
		if err != nil {
			return fmt.Errorf("watch %s: %w", w.Name, err)
		}
		properties, err := h.iris(w.Properties)
		if err != nil {
			return fmt.Errorf("watch %s: %w", w.Name, err)
		}
		types, err := h.iris(w.Types)
		if err != nil {
			return fmt.Errorf("watch %s: %w", w.Name, err)
		}
		sub, err := h.engine.Watch(resources, properties, types)
		if err != nil {
			return fmt.Errorf("watch %s: %w", w.Name, err)
		}
		h.watches = append(h.watches, openWatch{name: w.Name, sub: sub})
	}
	return nil
}

func (h *Harness) iris(terms []string) ([]rdf.IRI, error) {
	out := make([]rdf.IRI, 0, len(terms))
	for _, t := range terms {
		n, err := parseTerm(h.ns, h.bind, t)
		if err != nil {
			return nil, err
		}
		iri, ok := n.(rdf.IRI)
		if !ok {
			return nil, fmt.Errorf("%q is not an IRI", t)
		}
		out = append(out, iri)
	}
	return out, nil
}

// executeStep runs one step and checks its expectation. Engine failures are
// outcomes recorded in the trace; only undecodable batches abort the run.
func (h *Harness) executeStep(ctx context.Context, n int, step Step, result *Result) error {
	batch, err := step.batch().Decode(h.ns, h.bind)
	if err != nil {
		return err
	}

	var ev TraceEvent
	if step.Merge != nil {
		ev = h.merge(ctx, n, batch)
	} else {
		ev = h.identify(ctx, n, batch)
	}
	result.Trace = append(result.Trace, ev)

	for _, msg := range checkExpect(step.Expect, ev) {
		result.AddError(fmt.Sprintf("step %d (%s): %s", n, step.kind(), msg))
	}

	h.logger.Info("step completed",
		"step", n,
		"kind", step.kind(),
		"statements", len(batch.Statements),
		"error", ev.Error,
	)
	return nil
}

func (h *Harness) merge(ctx context.Context, n int, batch *Decoded) TraceEvent {
	ev := TraceEvent{Step: n, Type: TraceMerge}
	res, err := h.engine.Merge(ctx, batch.Statements, batch.Metadata, batch.Flags)
	if err != nil {
		ev.Error = errorCode(err)
		return ev
	}

	h.bindMappings(res.Mappings)
	if res.Graph != "" {
		ev.Graph = h.labels.iri(res.Graph)
	}
	ev.Inserted = res.Inserted
	ev.Deleted = res.Removed
	ev.Duplicates = res.Duplicates
	ev.Created = h.labels.iris(res.Created)
	if len(res.Superseded) > 0 {
		olds := make([]rdf.IRI, 0, len(res.Superseded))
		for old := range res.Superseded {
			olds = append(olds, old)
		}
		rdf.SortIRIs(olds)
		ev.Superseded = make(map[string]string, len(olds))
		for _, old := range olds {
			ev.Superseded[h.labels.iri(old)] = h.labels.iri(res.Superseded[old])
		}
	}
	return ev
}

func (h *Harness) identify(ctx context.Context, n int, batch *Decoded) TraceEvent {
	ev := TraceEvent{Step: n, Type: TraceIdentify}
	ident, err := h.engine.IdentifyAll(ctx, batch.Statements)
	if err != nil {
		ev.Error = errorCode(err)
		return ev
	}

	mappings := ident.Mappings()
	h.bindMappings(mappings)
	subjects := make([]rdf.Node, 0, len(mappings))
	for s := range mappings {
		subjects = append(subjects, s)
	}
	rdf.SortNodes(subjects)
	if len(subjects) > 0 {
		ev.Mapped = make(map[string]string, len(subjects))
	}
	for _, s := range subjects {
		ev.Mapped[h.labels.node(s)] = h.labels.iri(mappings[s])
	}
	ev.Unidentified = h.labels.nodes(ident.Unidentified())
	return ev
}

func (h *Harness) drainWatches(n int, result *Result) {
	for _, w := range h.watches {
		for _, e := range w.sub.Drain() {
			result.Trace = append(result.Trace, TraceEvent{
				Step:     n,
				Type:     TraceWatch,
				Watch:    w.name,
				Kind:     e.Kind.String(),
				Resource: h.labels.iri(e.Resource),
				Property: h.labels.node(optionalIRI(e.Property)),
				Types:    h.labels.iris(e.Types),
				Added:    h.labels.nodes(e.Added),
				Removed:  h.labels.nodes(e.Removed),
			})
		}
	}
}

func optionalIRI(iri rdf.IRI) rdf.Node {
	if iri == "" {
		return nil
	}
	return iri
}

// errorCode returns the engine error code of err, or its message.
func errorCode(err error) string {
	var e *engine.Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return err.Error()
}

// checkExpect compares a step outcome with its expectation. A step without
// an expectation must succeed.
func checkExpect(exp *Expect, ev TraceEvent) []string {
	if exp == nil {
		if ev.Error != "" {
			return []string{fmt.Sprintf("unexpected error %s", ev.Error)}
		}
		return nil
	}

	var errs []string
	if exp.Error != ev.Error {
		errs = append(errs, fmt.Sprintf("expected error %q, got %q", exp.Error, ev.Error))
	}
	counts := []struct {
		name string
		want *int
		got  int
	}{
		{"created", exp.Created, len(ev.Created)},
		{"inserted", exp.Inserted, ev.Inserted},
		{"removed", exp.Removed, ev.Deleted},
		{"duplicates", exp.Duplicates, ev.Duplicates},
		{"superseded", exp.Superseded, len(ev.Superseded)},
		{"mapped", exp.Mapped, len(ev.Mapped)},
		{"unidentified", exp.Unidentified, len(ev.Unidentified)},
	}
	for _, c := range counts {
		if c.want != nil && *c.want != c.got {
			errs = append(errs, fmt.Sprintf("expected %s %d, got %d", c.name, *c.want, c.got))
		}
	}
	if exp.NewGraph != nil && *exp.NewGraph != (ev.Graph != "") {
		errs = append(errs, fmt.Sprintf("expected new_graph %t, got %t", *exp.NewGraph, ev.Graph != ""))
	}
	return errs
}
