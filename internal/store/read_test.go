package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semstore/internal/queryir"
	"github.com/roach88/semstore/internal/rdf"
)

func seedContacts(t *testing.T, s *Store) (alice, alicia rdf.IRI) {
	t.Helper()
	alice = "nepomuk:/res/alice"
	alicia = "nepomuk:/res/alicia"
	g := rdf.IRI("nepomuk:/ctx/g")

	mustAdd(t, s, alice, rdf.RDFType, rdf.NCOPersonContact, g)
	mustAdd(t, s, alice, rdf.NCOFullname, rdf.NewString("Alice"), g)
	mustAdd(t, s, alice, rdf.NCONickname, rdf.NewString("al"), g)
	mustAdd(t, s, alicia, rdf.RDFType, rdf.NCOPersonContact, g)
	mustAdd(t, s, alicia, rdf.NCOFullname, rdf.NewString("Alice"), g)
	mustAdd(t, s, rdf.IRI("nepomuk:/res/tag"), rdf.RDFType, rdf.NAOTag, g)
	return alice, alicia
}

func TestMatch_ScoresOptionalPatterns(t *testing.T) {
	s := createTestStore(t)
	alice, alicia := seedContacts(t, s)

	sols, err := s.Match(context.Background(), queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.Var("r"), queryir.C(rdf.RDFType), queryir.C(rdf.NCOPersonContact)),
		},
		Optional: []queryir.Pattern{
			queryir.Triple(queryir.Var("r"), queryir.C(rdf.NCOFullname), queryir.C(rdf.NewString("Alice"))),
			queryir.Triple(queryir.Var("r"), queryir.C(rdf.NCONickname), queryir.C(rdf.NewString("al"))),
		},
		Project:  []queryir.Var{"r"},
		Distinct: true,
		ScoreVar: "score",
	})
	require.NoError(t, err)

	require.Len(t, sols, 2)
	assert.Equal(t, alice, sols[0].Get("r"))
	assert.Equal(t, 2, sols[0].Score)
	assert.Equal(t, alicia, sols[1].Get("r"))
	assert.Equal(t, 1, sols[1].Score)
}

func TestMatch_JoinAndFilter(t *testing.T) {
	s := createTestStore(t)
	alice, _ := seedContacts(t, s)

	sols, err := s.Match(context.Background(), queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.C(alice), queryir.Var("p"), queryir.Var("v")),
		},
		Filter:  queryir.NotEquals{Var: "p", Value: rdf.RDFType},
		Project: []queryir.Var{"p", "v"},
	})
	require.NoError(t, err)

	require.Len(t, sols, 2)
	assert.Equal(t, rdf.NCOFullname, sols[0].Get("p"))
	assert.Equal(t, rdf.NewString("Alice"), sols[0].Get("v"))
	assert.Equal(t, rdf.NCONickname, sols[1].Get("p"))
}

func TestMatch_InvalidQuery(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Match(context.Background(), queryir.Select{})
	assert.Error(t, err)
}

func TestStatements_InsertionOrder(t *testing.T) {
	s := createTestStore(t)
	seedContacts(t, s)

	all, err := s.Statements(context.Background(), "nepomuk:/ctx/g")
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, rdf.IRI("nepomuk:/res/alice"), all[0].Subject)
	assert.Equal(t, rdf.IRI("nepomuk:/ctx/g"), all[0].Graph)
	assert.Equal(t, rdf.NAOTag, all[5].Object)
}

func TestTx_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Tx(ctx, func(tx *Tx) error {
		if _, err := tx.AddStatement(ctx, rdf.IRI("nepomuk:/res/a"), rdf.RDFType, rdf.NCOContact, "nepomuk:/ctx/g"); err != nil {
			return err
		}
		if _, err := tx.CreateGraph(ctx, "app", nil); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := s.Count(ctx, nil, "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTx_Commits(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Tx(ctx, func(tx *Tx) error {
		_, err := tx.AddStatement(ctx, rdf.IRI("nepomuk:/res/a"), rdf.RDFType, rdf.NCOContact, "nepomuk:/ctx/g")
		return err
	})
	require.NoError(t, err)

	ok, err := s.Contains(ctx, rdf.IRI("nepomuk:/res/a"), rdf.RDFType, rdf.NCOContact, "")
	require.NoError(t, err)
	assert.True(t, ok)
}
