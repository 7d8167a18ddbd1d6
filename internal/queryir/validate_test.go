package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/semstore/internal/rdf"
)

func TestValidate_ValidSelect(t *testing.T) {
	q := Select{
		Where: []Pattern{
			Triple(Var("r"), C(rdf.RDFType), C(rdf.NCOPersonContact)),
		},
		Optional: []Pattern{
			Triple(Var("r"), C(rdf.NCOFullname), C(rdf.NewString("Alice"))),
			Triple(Var("r"), C(rdf.NCOHasEmailAddress), Var("e")),
		},
		Filter:   NotEquals{Var: "r", Value: rdf.IRI("nepomuk:/res/x")},
		Project:  []Var{"r"},
		Distinct: true,
		ScoreVar: "score",
	}

	result := Validate(q)
	assert.True(t, result.Valid, result.Problems)
	assert.NoError(t, result.Err())
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name  string
		query Query
	}{
		{"nil query", nil},
		{"no required patterns", Select{Project: []Var{"r"}}},
		{"empty projection", Select{Where: []Pattern{Triple(Var("r"), C(rdf.RDFType), Var("t"))}}},
		{"unbound projection", Select{
			Where:   []Pattern{Triple(Var("r"), C(rdf.RDFType), Var("t"))},
			Project: []Var{"x"},
		}},
		{"optional-only variable projected", Select{
			Where:    []Pattern{Triple(Var("r"), C(rdf.RDFType), Var("t"))},
			Optional: []Pattern{Triple(Var("r"), C(rdf.NCOFullname), Var("n"))},
			Project:  []Var{"n"},
		}},
		{"unset position", Select{
			Where:   []Pattern{{Subject: Var("r"), Predicate: C(rdf.RDFType)}},
			Project: []Var{"r"},
		}},
		{"nil constant", Select{
			Where:   []Pattern{Triple(Var("r"), C(nil), Var("o"))},
			Project: []Var{"r"},
		}},
		{"score clashes", Select{
			Where:    []Pattern{Triple(Var("r"), C(rdf.RDFType), Var("t"))},
			Project:  []Var{"r"},
			ScoreVar: "t",
		}},
		{"unbound filter", Select{
			Where:   []Pattern{Triple(Var("r"), C(rdf.RDFType), Var("t"))},
			Project: []Var{"r"},
			Filter:  And{Predicates: []Predicate{Equals{Var: "q", Value: rdf.IRI("x")}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query)
			assert.False(t, result.Valid)
			assert.NotEmpty(t, result.Problems)
			assert.Error(t, result.Err())
		})
	}
}

func TestPattern_Vars(t *testing.T) {
	p := Pattern{Subject: Var("s"), Predicate: C(rdf.RDFType), Object: Var("o"), Graph: Var("g")}
	assert.Equal(t, []Var{"s", "o", "g"}, p.Vars())
}
