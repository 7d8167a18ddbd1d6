package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semstore/internal/ontology"
	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/store"
	"github.com/roach88/semstore/internal/watcher"
)

var errDiskFull = errors.New("disk full")

// failingWriter fails every write once a resource id has been allocated.
type failingWriter struct {
	Writer
	allocated bool
}

func (w *failingWriter) AllocateResourceID(ctx context.Context) (rdf.IRI, error) {
	w.allocated = true
	return w.Writer.AllocateResourceID(ctx)
}

func (w *failingWriter) AddStatement(ctx context.Context, s rdf.Node, p rdf.IRI, o rdf.Node, g rdf.IRI) (bool, error) {
	if w.allocated {
		return false, errDiskFull
	}
	return w.Writer.AddStatement(ctx, s, p, o, g)
}

func TestMerger_FailedCommitLeavesSessionUnmapped(t *testing.T) {
	ctx := context.Background()
	e, s := setupTestEngine(t)
	a := rdf.Blank("a")

	ident := e.NewIdentifier()
	ident.AddStatements(contact(a, "Alice"))

	err := s.Tx(ctx, func(tx *store.Tx) error {
		_, err := NewMerger(&failingWriter{Writer: tx}, ontology.Default(), ident, nil).
			Merge(ctx, ident.Statements(), nil, 0)
		return err
	})
	require.ErrorIs(t, err, errDiskFull)
	_, mapped := ident.MappedURI(a)
	assert.False(t, mapped)
	assert.Equal(t, int64(0), count(t, s, nil, "", nil, ""))

	sub, err := e.Watch(nil, nil, []rdf.IRI{rdf.NCOPersonContact})
	require.NoError(t, err)

	res, err := e.MergeSession(ctx, ident, nil, 0)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	id := res.Created[0]

	target, ok := ident.MappedURI(a)
	require.True(t, ok)
	assert.Equal(t, id, target)
	assert.Len(t, values(t, s, id, rdf.NAOCreated), 1)

	events := sub.Drain()
	require.NotEmpty(t, events)
	assert.Equal(t, watcher.ResourceCreated, events[0].Kind)
	assert.Equal(t, id, events[0].Resource)
}

func TestMerger_ResultMappingsIncludeCreated(t *testing.T) {
	ctx := context.Background()
	_, s := setupTestEngine(t)
	a := rdf.Blank("a")

	ident := NewIdentifier(s, ontology.Default())
	var res *MergeResult
	err := s.Tx(ctx, func(tx *store.Tx) error {
		var err error
		res, err = NewMerger(tx, ontology.Default(), ident, nil).Merge(ctx, contact(a, "Alice"), nil, 0)
		return err
	})
	require.NoError(t, err)

	require.Len(t, res.Created, 1)
	assert.Equal(t, res.Created[0], res.Mappings[a])
	_, mapped := ident.MappedURI(a)
	assert.False(t, mapped, "a standalone merge leaves the identifier to the caller")
}
