package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectOntology = `package ex

prefixes: ex: "http://example.org/"

class: "ex:Project": {parents: ["nie:InformationElement"]}

property: "ex:code": {
	domain:         "ex:Project"
	range:          "xsd:string"
	maxCardinality: 1
}
`

func TestOntologyCheck_Valid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ex.cue", projectOntology)

	out, err := execute(t, "ontology", "check", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Ontology valid")

	resp, err := executeJSON(t, "ontology", "check", dir)
	require.NoError(t, err)
	data := dataMap(t, resp)
	assert.Equal(t, true, data["valid"])
	assert.Greater(t, data["classes"], float64(1))
	assert.Nil(t, data["errors"])
}

func TestOntologyCheck_Problems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ex.cue", `package ex

prefixes: ex: "http://example.org/"

class: "ex:Task": {parents: ["ex:Missing"]}

property: "ex:owner": {
	domain: "ex:Nobody"
	range:  "ex:Task"
}
`)

	resp, err := executeJSON(t, "ontology", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeOntologyBad, resp.Error.Code)
	assert.Equal(t, "2 ontology problem(s)", resp.Error.Message)

	problems, ok := resp.Error.Details.([]any)
	require.True(t, ok)
	var codes []string
	for _, p := range problems {
		codes = append(codes, p.(map[string]any)["code"].(string))
	}
	assert.ElementsMatch(t, []string{"E210", "E211"}, codes)

	out, err := execute(t, "ontology", "check", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ [E210] http://example.org/Task")
	assert.Contains(t, out, "Error [E006]")
}

func TestOntologyCheck_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
		code string
	}{
		{"missing directory", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none") }, "E201"},
		{"no cue files", func(t *testing.T) string { return t.TempDir() }, "E202"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := executeJSON(t, "ontology", "check", tt.dir(t))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
