package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semstore/internal/rdf"
)

func TestAddStatement_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	res := rdf.IRI("nepomuk:/res/a")

	inserted, err := s.AddStatement(ctx, res, rdf.NCOFullname, rdf.NewString("Alice"), "nepomuk:/ctx/g")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.AddStatement(ctx, res, rdf.NCOFullname, rdf.NewString("Alice"), "nepomuk:/ctx/g")
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := s.Count(ctx, res, "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAddStatement_SameTripleInTwoGraphs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	res := rdf.IRI("nepomuk:/res/a")

	mustAdd(t, s, res, rdf.NCOFullname, rdf.NewString("Alice"), "nepomuk:/ctx/g1")
	mustAdd(t, s, res, rdf.NCOFullname, rdf.NewString("Alice"), "nepomuk:/ctx/g2")

	n, err := s.Count(ctx, res, rdf.NCOFullname, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAddStatement_RejectsUnstorableTerms(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.AddStatement(ctx, rdf.Blank("b"), rdf.RDFType, rdf.NCOContact, "nepomuk:/ctx/g")
	assert.Error(t, err)

	_, err = s.AddStatement(ctx, rdf.IRI("nepomuk:/res/a"), rdf.NIEIsPartOf, rdf.Blank("b"), "nepomuk:/ctx/g")
	assert.Error(t, err)

	_, err = s.AddStatement(ctx, rdf.IRI("nepomuk:/res/a"), rdf.RDFType, rdf.NCOContact, "")
	assert.Error(t, err)

	_, err = s.AddStatement(ctx, rdf.IRI("nepomuk:/res/a"), "", rdf.NCOContact, "nepomuk:/ctx/g")
	assert.ErrorIs(t, err, rdf.ErrInvalidStatement)
}

func TestRemoveStatements_Wildcards(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := rdf.IRI("nepomuk:/res/a")
	b := rdf.IRI("nepomuk:/res/b")

	mustAdd(t, s, a, rdf.NCOFullname, rdf.NewString("Alice"), "nepomuk:/ctx/g1")
	mustAdd(t, s, a, rdf.NCOFullname, rdf.NewString("Alice"), "nepomuk:/ctx/g2")
	mustAdd(t, s, a, rdf.NCONickname, rdf.NewString("al"), "nepomuk:/ctx/g1")
	mustAdd(t, s, b, rdf.NCOFullname, rdf.NewString("Bob"), "nepomuk:/ctx/g1")

	n, err := s.RemoveStatements(ctx, a, rdf.NCOFullname, rdf.NewString("Alice"), "nepomuk:/ctx/g1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.RemoveStatements(ctx, a, rdf.NCOFullname, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	remaining, err := s.Statements(ctx, "")
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	_, err = s.RemoveStatements(ctx, nil, "", nil, "")
	assert.Error(t, err)
}

func TestCreateGraph_WritesMetadata(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	meta := rdf.PropertyMap{}
	meta.Add(rdf.NAOPrefLabel, rdf.NewString("import"))

	g, err := s.CreateGraph(ctx, "indexer", meta)
	require.NoError(t, err)
	assert.True(t, rdf.IsStoreIRI(g))

	got, err := s.GraphMetadata(ctx, g)
	require.NoError(t, err)

	assert.Equal(t, []rdf.IRI{rdf.NRLInstanceBase}, got.Types())
	assert.True(t, got.Contains(rdf.NAOPrefLabel, rdf.NewString("import")))
	created, ok := got.First(rdf.NAOCreated)
	require.True(t, ok)
	assert.Equal(t, rdf.XSDDateTime, created.(rdf.Literal).Datatype)

	agent, ok, err := s.AgentFor(ctx, "indexer")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []rdf.Node{agent}, got.Values(rdf.NAOMaintainedBy))
}

func TestCreateGraph_KeepsExplicitTypesAndCreated(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	created := rdf.NewTyped("2020-01-01T00:00:00.000Z", rdf.XSDDateTime)
	meta := rdf.PropertyMap{}
	meta.Add(rdf.RDFType, rdf.NRLDiscardableInstanceBase)
	meta.Add(rdf.NAOCreated, created)

	g, err := s.CreateGraph(ctx, "", meta)
	require.NoError(t, err)

	got, err := s.GraphMetadata(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, []rdf.IRI{rdf.NRLDiscardableInstanceBase}, got.Types())
	assert.Equal(t, []rdf.Node{created}, got.Values(rdf.NAOCreated))
	assert.Empty(t, got.Values(rdf.NAOMaintainedBy))
}

func TestCreateGraph_ReusesAgent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	g1, err := s.CreateGraph(ctx, "indexer", nil)
	require.NoError(t, err)
	g2, err := s.CreateGraph(ctx, "indexer", nil)
	require.NoError(t, err)
	assert.NotEqual(t, g1, g2)

	m1, err := s.GraphMetadata(ctx, g1)
	require.NoError(t, err)
	m2, err := s.GraphMetadata(ctx, g2)
	require.NoError(t, err)
	assert.Equal(t, m1.Values(rdf.NAOMaintainedBy), m2.Values(rdf.NAOMaintainedBy))

	agents, err := s.Count(ctx, nil, rdf.RDFType, rdf.NAOAgent, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), agents)
}

func TestDropGraphIfEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	g, err := s.CreateGraph(ctx, "app", nil)
	require.NoError(t, err)
	mustAdd(t, s, rdf.IRI("nepomuk:/res/a"), rdf.NCOFullname, rdf.NewString("Alice"), g)

	dropped, err := s.DropGraphIfEmpty(ctx, g)
	require.NoError(t, err)
	assert.False(t, dropped, "graph still holds a statement")

	_, err = s.RemoveStatements(ctx, nil, "", nil, g)
	require.NoError(t, err)

	dropped, err = s.DropGraphIfEmpty(ctx, g)
	require.NoError(t, err)
	assert.True(t, dropped)

	meta, err := s.GraphMetadata(ctx, g)
	require.NoError(t, err)
	assert.Empty(t, meta)
}

func TestAllocateResourceID(t *testing.T) {
	s := createTestStore(t)

	id1, err := s.AllocateResourceID(context.Background())
	require.NoError(t, err)
	id2, err := s.AllocateResourceID(context.Background())
	require.NoError(t, err)

	assert.Equal(t, rdf.IRI(rdf.ResourcePrefix+"id-1"), id1)
	assert.Equal(t, rdf.IRI(rdf.ResourcePrefix+"id-2"), id2)
}
