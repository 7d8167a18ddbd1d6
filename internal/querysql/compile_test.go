package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semstore/internal/queryir"
	"github.com/roach88/semstore/internal/rdf"
)

func TestCompile_SimplePattern(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.Var("r"), queryir.C(rdf.RDFType), queryir.C(rdf.NFOFolder)),
		},
		Project: []queryir.Var{"r"},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t0.subject FROM statements AS t0 WHERE t0.predicate = ? AND t0.object = ? ORDER BY t0.subject ASC COLLATE BINARY",
		sql)
	assert.Equal(t, []any{rdf.RDFType.N3(), rdf.NFOFolder.N3()}, params)
}

func TestCompile_JoinOnSharedVariable(t *testing.T) {
	compiler := NewSQLCompiler()

	query := &queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.Var("f"), queryir.C(rdf.NIEIsPartOf), queryir.Var("dir")),
			{Subject: queryir.Var("dir"), Predicate: queryir.C(rdf.NIEURL), Object: queryir.Var("url"), Graph: queryir.Var("g")},
		},
		Project: []queryir.Var{"f", "url"},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM statements AS t0, statements AS t1")
	assert.Contains(t, sql, "t1.subject = t0.object")
	assert.Contains(t, sql, "ORDER BY t0.subject ASC COLLATE BINARY, t1.object ASC COLLATE BINARY")
	assert.NotContains(t, sql, "graph =", "free graph variable adds no condition")
	assert.Equal(t, []any{rdf.NIEIsPartOf.N3(), rdf.NIEURL.N3()}, params)
}

func TestCompile_ScoreFromOptionalPatterns(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.Var("r"), queryir.C(rdf.RDFType), queryir.C(rdf.NCOContact)),
		},
		Optional: []queryir.Pattern{
			queryir.Triple(queryir.Var("r"), queryir.C(rdf.NCOFullname), queryir.C(rdf.NewString("Alice"))),
		},
		Project:  []queryir.Var{"r"},
		Distinct: true,
		ScoreVar: "score",
	}

	compiled, err := compiler.CompileQuery(query)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT DISTINCT t0.subject, (EXISTS (SELECT 1 FROM statements AS o0 WHERE o0.subject = t0.subject AND o0.predicate = ? AND o0.object = ?)) AS score"+
			" FROM statements AS t0 WHERE t0.predicate = ? AND t0.object = ? ORDER BY t0.subject ASC COLLATE BINARY",
		compiled.SQL)
	// Select-list parameters precede WHERE parameters
	assert.Equal(t, []any{
		rdf.NCOFullname.N3(), rdf.NewString("Alice").N3(),
		rdf.RDFType.N3(), rdf.NCOContact.N3(),
	}, compiled.Params)
	assert.True(t, compiled.HasScore)
	assert.Equal(t, []queryir.Var{"r"}, compiled.Columns)
}

func TestCompile_FiltersAreParameterized(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.C(rdf.IRI("nepomuk:/res/1")), queryir.C(rdf.NCOFullname), queryir.Var("v")),
		},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.NotEquals{Var: "v", Value: rdf.NewString("secret")},
			queryir.In{Var: "v", Values: []rdf.Node{rdf.NewString("a"), rdf.NewString("b")}},
		}},
		Project: []queryir.Var{"v"},
		Limit:   5,
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.NotContains(t, sql, "secret")
	assert.Contains(t, sql, "(t0.object <> ? AND t0.object IN (?, ?))")
	assert.Contains(t, sql, "LIMIT ?")
	assert.Equal(t, 5, params[len(params)-1])
	assert.Len(t, params, 6)
}

func TestCompile_EmptyInNeverMatches(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, _, err := compiler.Compile(queryir.Select{
		Where:   []queryir.Pattern{queryir.Triple(queryir.Var("s"), queryir.Var("p"), queryir.Var("o"))},
		Filter:  queryir.In{Var: "s"},
		Project: []queryir.Var{"s"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "0 = 1")
}

func TestCompile_RejectsInvalidQuery(t *testing.T) {
	compiler := NewSQLCompiler()

	_, _, err := compiler.Compile(nil)
	assert.Error(t, err)

	_, _, err = compiler.Compile(queryir.Select{Project: []queryir.Var{"r"}})
	assert.Error(t, err)
}
