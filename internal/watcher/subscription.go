package watcher

import (
	"context"

	"github.com/roach88/semstore/internal/rdf"
)

// Filter is the three-dimensional filter of a subscription.
type Filter struct {
	Resources  []rdf.IRI
	Properties []rdf.IRI
	Types      []rdf.IRI
}

// IsEmpty reports whether all three dimensions are empty.
func (f Filter) IsEmpty() bool {
	return len(f.Resources) == 0 && len(f.Properties) == 0 && len(f.Types) == 0
}

type iriSet map[rdf.IRI]struct{}

func newIRISet(iris []rdf.IRI) iriSet {
	s := make(iriSet, len(iris))
	for _, iri := range iris {
		if iri != "" {
			s[iri] = struct{}{}
		}
	}
	return s
}

func (s iriSet) has(iri rdf.IRI) bool {
	_, ok := s[iri]
	return ok
}

func (s iriSet) intersects(iris []rdf.IRI) bool {
	for _, iri := range iris {
		if s.has(iri) {
			return true
		}
	}
	return false
}

func (s iriSet) sorted() []rdf.IRI {
	out := make([]rdf.IRI, 0, len(s))
	for iri := range s {
		out = append(out, iri)
	}
	rdf.SortIRIs(out)
	return out
}

// Subscription is a client's connection to the watcher.
//
// Filter mutators are safe for concurrent use with notification. A mutation
// that would leave every dimension empty is rejected with ErrEmptyFilter.
type Subscription struct {
	id      uint64
	manager *Manager
	box     *mailbox

	// Guarded by manager.mu.
	resources  iriSet
	properties iriSet
	types      iriSet
	closed     bool
}

// ID returns the subscription's manager-unique id.
func (s *Subscription) ID() uint64 {
	return s.id
}

// Filter returns a sorted snapshot of the subscription's filter.
func (s *Subscription) Filter() Filter {
	s.manager.mu.RLock()
	defer s.manager.mu.RUnlock()
	return Filter{
		Resources:  s.resources.sorted(),
		Properties: s.properties.sorted(),
		Types:      s.types.sorted(),
	}
}

func (s *Subscription) AddResource(r rdf.IRI) error {
	return s.manager.mutate(s, dimResource, r, true)
}

func (s *Subscription) RemoveResource(r rdf.IRI) error {
	return s.manager.mutate(s, dimResource, r, false)
}

func (s *Subscription) AddProperty(p rdf.IRI) error {
	return s.manager.mutate(s, dimProperty, p, true)
}

func (s *Subscription) RemoveProperty(p rdf.IRI) error {
	return s.manager.mutate(s, dimProperty, p, false)
}

func (s *Subscription) AddType(t rdf.IRI) error {
	return s.manager.mutate(s, dimType, t, true)
}

func (s *Subscription) RemoveType(t rdf.IRI) error {
	return s.manager.mutate(s, dimType, t, false)
}

// Close detaches the subscription from the manager. Events already in the
// mailbox remain readable. Close is idempotent.
func (s *Subscription) Close() {
	s.manager.unsubscribe(s)
}

// Next blocks until an event is available, the subscription is closed and
// drained, or ctx is done.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		if e, ok := s.box.tryPop(); ok {
			return e, nil
		}
		if s.box.isClosed() {
			return Event{}, ErrClosed
		}
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-s.box.wait():
		}
	}
}

// TryNext returns the next event without blocking.
func (s *Subscription) TryNext() (Event, bool) {
	return s.box.tryPop()
}

// Pending returns the number of undelivered events in the mailbox.
func (s *Subscription) Pending() int {
	return s.box.len()
}

// Drain removes and returns every pending event.
func (s *Subscription) Drain() []Event {
	var out []Event
	for {
		e, ok := s.box.tryPop()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}
