package watcher

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/semstore/internal/rdf"
)

var (
	// ErrEmptyFilter is returned when a subscription would watch nothing.
	ErrEmptyFilter = errors.New("watcher: resources, properties and types are all empty")

	// ErrClosed is returned by operations on a closed subscription or manager.
	ErrClosed = errors.New("watcher: closed")
)

// Notifier receives change notifications from the merger.
//
// types is the current type set of the resource. For rdf:type changes the
// added and removed values are the changed types as IRIs.
type Notifier interface {
	ResourceCreated(res rdf.IRI, types []rdf.IRI)
	ResourceRemoved(res rdf.IRI, types []rdf.IRI)
	PropertyChanged(res rdf.IRI, types []rdf.IRI, prop rdf.IRI, added, removed []rdf.Node)
}

type dimension int

const (
	dimResource dimension = iota
	dimProperty
	dimType
)

// index maps one filter value to its subscriptions.
type index map[rdf.IRI]map[*Subscription]struct{}

func (ix index) add(key rdf.IRI, s *Subscription) {
	set, ok := ix[key]
	if !ok {
		set = make(map[*Subscription]struct{})
		ix[key] = set
	}
	set[s] = struct{}{}
}

func (ix index) remove(key rdf.IRI, s *Subscription) {
	set, ok := ix[key]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(ix, key)
	}
}

func (ix index) collect(key rdf.IRI, into map[*Subscription]struct{}) {
	for s := range ix[key] {
		into[s] = struct{}{}
	}
}

// Manager maintains subscriptions and routes notifications to them.
//
// Manager implements Notifier. It is safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	byResource index
	byProperty index
	byType     index
	nextID     uint64
	closed     bool

	mailboxLimit int
	logger       *slog.Logger
	metrics      *Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMailboxLimit bounds each subscription mailbox. When a mailbox is full
// the oldest event is dropped. Zero means unbounded.
func WithMailboxLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.mailboxLimit = n
		}
	}
}

// WithRegisterer registers watcher metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		m.metrics = NewMetrics(reg)
	}
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		byResource: make(index),
		byProperty: make(index),
		byType:     make(index),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Watch creates a subscription. At least one of resources, properties and
// types must be non-empty.
func (m *Manager) Watch(resources, properties, types []rdf.IRI) (*Subscription, error) {
	s := &Subscription{
		manager:    m,
		resources:  newIRISet(resources),
		properties: newIRISet(properties),
		types:      newIRISet(types),
	}
	if len(s.resources) == 0 && len(s.properties) == 0 && len(s.types) == 0 {
		return nil, ErrEmptyFilter
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	m.nextID++
	s.id = m.nextID
	s.box = newMailbox(m.mailboxLimit)

	for r := range s.resources {
		m.byResource.add(r, s)
	}
	for p := range s.properties {
		m.byProperty.add(p, s)
	}
	for t := range s.types {
		m.byType.add(t, s)
	}

	m.metrics.subscriptionOpened()
	m.logger.Debug("watcher subscription opened",
		"id", s.id,
		"resources", len(s.resources),
		"properties", len(s.properties),
		"types", len(s.types))
	return s, nil
}

// Subscriptions returns the number of open subscriptions.
func (m *Manager) Subscriptions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[*Subscription]struct{})
	for _, ix := range []index{m.byResource, m.byProperty, m.byType} {
		for _, set := range ix {
			for s := range set {
				seen[s] = struct{}{}
			}
		}
	}
	return len(seen)
}

// Close closes every subscription and rejects further Watch calls.
func (m *Manager) Close() {
	m.mu.Lock()
	subs := make(map[*Subscription]struct{})
	for _, ix := range []index{m.byResource, m.byProperty, m.byType} {
		for _, set := range ix {
			for s := range set {
				subs[s] = struct{}{}
			}
		}
	}
	m.closed = true
	m.mu.Unlock()

	for s := range subs {
		s.Close()
	}
}

func (m *Manager) mutate(s *Subscription, dim dimension, value rdf.IRI, add bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	var set iriSet
	var ix index
	switch dim {
	case dimResource:
		set, ix = s.resources, m.byResource
	case dimProperty:
		set, ix = s.properties, m.byProperty
	default:
		set, ix = s.types, m.byType
	}

	if add {
		if value == "" || set.has(value) {
			return nil
		}
		set[value] = struct{}{}
		ix.add(value, s)
		return nil
	}

	if !set.has(value) {
		return nil
	}
	if len(s.resources)+len(s.properties)+len(s.types) == 1 {
		return ErrEmptyFilter
	}
	delete(set, value)
	ix.remove(value, s)
	return nil
}

// unsubscribe removes s from the indexes it is listed under. The cost is
// proportional to the size of s's filter.
func (m *Manager) unsubscribe(s *Subscription) {
	m.mu.Lock()
	if s.closed {
		m.mu.Unlock()
		return
	}
	s.closed = true
	for r := range s.resources {
		m.byResource.remove(r, s)
	}
	for p := range s.properties {
		m.byProperty.remove(p, s)
	}
	for t := range s.types {
		m.byType.remove(t, s)
	}
	m.mu.Unlock()

	s.box.close()
	m.metrics.subscriptionClosed()
	m.logger.Debug("watcher subscription closed", "id", s.id)
}

// ResourceCreated notifies subscriptions watching res or one of types.
func (m *Manager) ResourceCreated(res rdf.IRI, types []rdf.IRI) {
	m.lifecycle(ResourceCreated, res, types)
}

// ResourceRemoved notifies subscriptions watching res or one of types.
func (m *Manager) ResourceRemoved(res rdf.IRI, types []rdf.IRI) {
	m.lifecycle(ResourceRemoved, res, types)
}

func (m *Manager) lifecycle(kind EventKind, res rdf.IRI, types []rdf.IRI) {
	m.mu.RLock()
	candidates := make(map[*Subscription]struct{})
	m.byResource.collect(res, candidates)
	for _, t := range types {
		m.byType.collect(t, candidates)
	}

	var targets []*Subscription
	for s := range candidates {
		if len(s.resources) > 0 && !s.resources.has(res) {
			continue
		}
		if len(s.types) > 0 && !s.types.intersects(types) {
			continue
		}
		targets = append(targets, s)
	}
	m.mu.RUnlock()

	ev := Event{Kind: kind, Resource: res, Types: cloneIRIs(types)}
	m.deliver(targets, ev)
}

// PropertyChanged notifies subscriptions of values added to and removed from
// (res, prop). A change to rdf:type is also delivered as TypesAdded and
// TypesRemoved.
func (m *Manager) PropertyChanged(res rdf.IRI, types []rdf.IRI, prop rdf.IRI, added, removed []rdf.Node) {
	if len(added) == 0 && len(removed) == 0 {
		return
	}

	relevant := cloneIRIs(types)
	var addedTypes, removedTypes []rdf.IRI
	if prop == rdf.RDFType {
		addedTypes = nodeIRIs(added)
		removedTypes = nodeIRIs(removed)
		relevant = append(relevant, addedTypes...)
		relevant = append(relevant, removedTypes...)
	}

	targets := m.match(res, prop, relevant)

	if len(addedTypes) > 0 {
		m.deliver(targets, Event{Kind: TypesAdded, Resource: res, Types: addedTypes})
	}
	if len(removedTypes) > 0 {
		m.deliver(targets, Event{Kind: TypesRemoved, Resource: res, Types: removedTypes})
	}
	m.deliver(targets, Event{
		Kind:     PropertyChanged,
		Resource: res,
		Property: prop,
		Added:    cloneNodes(added),
		Removed:  cloneNodes(removed),
	})
}

// match returns the subscriptions for which every non-empty dimension
// matches the change.
func (m *Manager) match(res, prop rdf.IRI, types []rdf.IRI) []*Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := make(map[*Subscription]struct{})
	m.byResource.collect(res, candidates)
	m.byProperty.collect(prop, candidates)
	for _, t := range types {
		m.byType.collect(t, candidates)
	}

	var out []*Subscription
	for s := range candidates {
		if len(s.resources) > 0 && !s.resources.has(res) {
			continue
		}
		if len(s.properties) > 0 && !s.properties.has(prop) {
			continue
		}
		if len(s.types) > 0 && !s.types.intersects(types) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (m *Manager) deliver(targets []*Subscription, ev Event) {
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })
	for _, s := range targets {
		accepted, dropped := s.box.push(ev)
		if !accepted {
			continue
		}
		m.metrics.recordDelivery(ev.Kind, dropped)
		if dropped {
			m.logger.Warn("watcher mailbox full, dropped oldest event", "id", s.id)
		}
	}
}

func nodeIRIs(nodes []rdf.Node) []rdf.IRI {
	out := make([]rdf.IRI, 0, len(nodes))
	for _, n := range nodes {
		if iri, ok := n.(rdf.IRI); ok {
			out = append(out, iri)
		}
	}
	return out
}

func cloneIRIs(in []rdf.IRI) []rdf.IRI {
	if len(in) == 0 {
		return nil
	}
	return append([]rdf.IRI(nil), in...)
}

func cloneNodes(in []rdf.Node) []rdf.Node {
	if len(in) == 0 {
		return nil
	}
	return append([]rdf.Node(nil), in...)
}

var _ Notifier = (*Manager)(nil)
