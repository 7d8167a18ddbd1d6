package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios_Golden runs every scenario under testdata/scenarios and
// compares its trace with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -run TestScenarios_Golden -update
func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestMarshalSnapshot_Format(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace, TraceEvent{
		Step:       1,
		Type:       TraceMerge,
		Graph:      "g2",
		Duplicates: 1,
		Superseded: map[string]string{"g1": "g2"},
	}, TraceEvent{
		Step:     1,
		Type:     TraceWatch,
		Watch:    "w",
		Kind:     "propertyChanged",
		Resource: "$a",
		Property: "nao:prefLabel",
		Added:    []string{`"<b>"`},
	})

	data, err := MarshalSnapshot("format", result)
	require.NoError(t, err)

	want := `{
  "scenario_name": "format",
  "trace": [
    {
      "step": 1,
      "type": "merge",
      "graph": "g2",
      "duplicates": 1,
      "superseded": {
        "g1": "g2"
      }
    },
    {
      "step": 1,
      "type": "event",
      "watch": "w",
      "kind": "propertyChanged",
      "resource": "$a",
      "property": "nao:prefLabel",
      "added": [
        "\"<b>\""
      ]
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}

func TestMarshalSnapshot_EmptyTrace(t *testing.T) {
	data, err := MarshalSnapshot("empty", &Result{})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"scenario_name\": \"empty\",\n  \"trace\": []\n}\n", string(data))
}

func TestMarshalSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/ambiguous_contacts.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
