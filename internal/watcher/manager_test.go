package watcher

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semstore/internal/rdf"
)

func iri(s string) rdf.IRI {
	return rdf.IRI("nepomuk:/res/" + s)
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestWatch_RejectsEmptyFilter(t *testing.T) {
	m := NewManager()

	_, err := m.Watch(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyFilter)

	_, err = m.Watch([]rdf.IRI{""}, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyFilter, "blank values do not count as filters")
}

func TestWatch_TypeFilter_ResourceCreated(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch(nil, nil, []rdf.IRI{rdf.NFOFolder})
	require.NoError(t, err)

	m.ResourceCreated(iri("folder"), []rdf.IRI{rdf.NFOFolder})
	m.ResourceCreated(iri("file"), []rdf.IRI{rdf.NFOFileDataObject})
	m.PropertyChanged(iri("file"), []rdf.IRI{rdf.NFOFileDataObject}, rdf.NFOFileName, []rdf.Node{rdf.NewString("a.txt")}, nil)
	m.PropertyChanged(iri("file"), []rdf.IRI{rdf.NFOFileDataObject}, rdf.NIETitle, []rdf.Node{rdf.NewString("A")}, nil)

	events := sub.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, ResourceCreated, events[0].Kind)
	assert.Equal(t, iri("folder"), events[0].Resource)
	assert.Equal(t, []rdf.IRI{rdf.NFOFolder}, events[0].Types)
}

func TestWatch_AllNonEmptyDimensionsMustMatch(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch([]rdf.IRI{iri("a")}, []rdf.IRI{rdf.NIETitle}, nil)
	require.NoError(t, err)

	// resource matches, property does not
	m.PropertyChanged(iri("a"), nil, rdf.NFOFileName, []rdf.Node{rdf.NewString("x")}, nil)
	// property matches, resource does not
	m.PropertyChanged(iri("b"), nil, rdf.NIETitle, []rdf.Node{rdf.NewString("x")}, nil)
	// both match
	m.PropertyChanged(iri("a"), nil, rdf.NIETitle, []rdf.Node{rdf.NewString("new")}, []rdf.Node{rdf.NewString("old")})

	events := sub.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, PropertyChanged, events[0].Kind)
	assert.Equal(t, rdf.NIETitle, events[0].Property)
	assert.Equal(t, []rdf.Node{rdf.NewString("new")}, events[0].Added)
	assert.Equal(t, []rdf.Node{rdf.NewString("old")}, events[0].Removed)
}

func TestWatch_PropertyOnlyIgnoresLifecycle(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch(nil, []rdf.IRI{rdf.NIETitle}, nil)
	require.NoError(t, err)

	m.ResourceCreated(iri("a"), []rdf.IRI{rdf.NFOFolder})
	m.ResourceRemoved(iri("a"), []rdf.IRI{rdf.NFOFolder})
	assert.Equal(t, 0, sub.Pending())
}

func TestWatch_ResourceAndPropertyReceivesLifecycle(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch([]rdf.IRI{iri("a")}, []rdf.IRI{rdf.NIETitle}, nil)
	require.NoError(t, err)

	m.ResourceRemoved(iri("a"), nil)
	events := sub.Drain()
	assert.Equal(t, []EventKind{ResourceRemoved}, kinds(events))
}

func TestWatch_TypeChangeDecomposed(t *testing.T) {
	m := NewManager()
	byType, err := m.Watch(nil, nil, []rdf.IRI{rdf.NFOFolder})
	require.NoError(t, err)
	byProp, err := m.Watch(nil, []rdf.IRI{rdf.NIETitle}, nil)
	require.NoError(t, err)

	m.PropertyChanged(iri("a"), []rdf.IRI{rdf.NIEDataObject}, rdf.RDFType,
		[]rdf.Node{rdf.NFOFolder}, []rdf.Node{rdf.NFOFileDataObject})

	events := byType.Drain()
	assert.Equal(t, []EventKind{TypesAdded, TypesRemoved, PropertyChanged}, kinds(events))
	assert.Equal(t, []rdf.IRI{rdf.NFOFolder}, events[0].Types)
	assert.Equal(t, []rdf.IRI{rdf.NFOFileDataObject}, events[1].Types)
	assert.Equal(t, rdf.RDFType, events[2].Property)

	assert.Equal(t, 0, byProp.Pending(), "rdf:type is not the watched property")
}

func TestWatch_RemovedTypeStillMatches(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch(nil, nil, []rdf.IRI{rdf.NFOFolder})
	require.NoError(t, err)

	m.PropertyChanged(iri("a"), nil, rdf.RDFType, nil, []rdf.Node{rdf.NFOFolder})
	assert.Equal(t, []EventKind{TypesRemoved, PropertyChanged}, kinds(sub.Drain()))
}

func TestWatch_DeliveryOrderedBySubscription(t *testing.T) {
	m := NewManager()
	var subs []*Subscription
	for i := 0; i < 5; i++ {
		s, err := m.Watch([]rdf.IRI{iri("a")}, nil, nil)
		require.NoError(t, err)
		subs = append(subs, s)
	}

	m.ResourceCreated(iri("a"), nil)
	for _, s := range subs {
		assert.Equal(t, 1, s.Pending())
	}
}

func TestSubscription_Mutators(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch([]rdf.IRI{iri("a")}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, sub.AddType(rdf.NFOFolder))
	require.NoError(t, sub.AddProperty(rdf.NIETitle))
	require.NoError(t, sub.AddResource(iri("b")))
	require.NoError(t, sub.RemoveResource(iri("a")))

	f := sub.Filter()
	assert.Equal(t, []rdf.IRI{iri("b")}, f.Resources)
	assert.Equal(t, []rdf.IRI{rdf.NIETitle}, f.Properties)
	assert.Equal(t, []rdf.IRI{rdf.NFOFolder}, f.Types)

	m.PropertyChanged(iri("a"), []rdf.IRI{rdf.NFOFolder}, rdf.NIETitle, []rdf.Node{rdf.NewString("x")}, nil)
	assert.Equal(t, 0, sub.Pending(), "a was removed from the resource filter")

	m.PropertyChanged(iri("b"), []rdf.IRI{rdf.NFOFolder}, rdf.NIETitle, []rdf.Node{rdf.NewString("x")}, nil)
	assert.Equal(t, 1, sub.Pending())

	require.NoError(t, sub.RemoveType(rdf.NFOFolder))
	require.NoError(t, sub.RemoveProperty(rdf.NIETitle))
	assert.ErrorIs(t, sub.RemoveResource(iri("b")), ErrEmptyFilter)
	assert.Equal(t, []rdf.IRI{iri("b")}, sub.Filter().Resources)
}

func TestSubscription_CloseDetaches(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch([]rdf.IRI{iri("a")}, []rdf.IRI{rdf.NIETitle}, []rdf.IRI{rdf.NFOFolder})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Subscriptions())

	m.ResourceCreated(iri("a"), []rdf.IRI{rdf.NFOFolder})
	sub.Close()
	sub.Close()
	assert.Equal(t, 0, m.Subscriptions())
	assert.Empty(t, m.byResource)
	assert.Empty(t, m.byProperty)
	assert.Empty(t, m.byType)

	m.ResourceCreated(iri("a"), []rdf.IRI{rdf.NFOFolder})

	ctx := context.Background()
	e, err := sub.Next(ctx)
	require.NoError(t, err, "events queued before close stay readable")
	assert.Equal(t, ResourceCreated, e.Kind)

	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, sub.AddType(rdf.NFOFolder), ErrClosed)
}

func TestSubscription_NextBlocksUntilEvent(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch([]rdf.IRI{iri("a")}, nil, nil)
	require.NoError(t, err)

	done := make(chan Event, 1)
	go func() {
		e, err := sub.Next(context.Background())
		if err == nil {
			done <- e
		}
	}()

	time.Sleep(10 * time.Millisecond)
	m.ResourceCreated(iri("a"), nil)

	select {
	case e := <-done:
		assert.Equal(t, iri("a"), e.Resource)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestSubscription_NextHonorsContext(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch([]rdf.IRI{iri("a")}, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_CloseRejectsWatch(t *testing.T) {
	m := NewManager()
	sub, err := m.Watch([]rdf.IRI{iri("a")}, nil, nil)
	require.NoError(t, err)

	m.Close()
	_, err = m.Watch([]rdf.IRI{iri("a")}, nil, nil)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestManager_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(WithRegisterer(reg), WithMailboxLimit(1))

	sub, err := m.Watch([]rdf.IRI{iri("a")}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.metrics.subscriptions))

	m.ResourceCreated(iri("a"), nil)
	m.PropertyChanged(iri("a"), nil, rdf.NIETitle, []rdf.Node{rdf.NewString("x")}, nil)

	assert.Equal(t, 1.0, promtest.ToFloat64(m.metrics.delivered.WithLabelValues("resourceCreated")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.metrics.delivered.WithLabelValues("propertyChanged")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.metrics.dropped))
	assert.Equal(t, 1, sub.Pending())

	sub.Close()
	assert.Equal(t, 0.0, promtest.ToFloat64(m.metrics.subscriptions))
}
