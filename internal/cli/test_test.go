package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tagScenario = `name: tag
description: A tag is created once
watches:
  - name: tags
    types: [nao:Tag]
steps:
  - merge:
      resources:
        _:t:
          a: nao:Tag
          nao:prefLabel: '"work"'
    expect:
      created: 1
assertions:
  - type: events
    watch: tags
    kind: resourceCreated
    count: 1
`

const failingScenario = `name: failing
description: The assertion does not hold
steps:
  - merge:
      resources:
        _:t:
          a: nao:Tag
assertions:
  - type: count
    pattern: ["*", a, nao:Tag]
    count: 2
`

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	resp, err := executeJSON(t, "test", dir)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.EqualValues(t, 0, dataMap(t, resp)["total"])
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tag.yaml", tagScenario)
	golden := filepath.Join(dir, "golden", "tag.golden")

	out, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ tag")
	assert.NoFileExists(t, golden)

	out, err = execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ tag (golden updated)")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "tag"`)
	assert.Contains(t, string(data), `"kind": "resourceCreated"`)

	resp, err := executeJSON(t, "test", dir)
	require.NoError(t, err)
	scenarios := dataMap(t, resp)["scenarios"].([]any)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "match", scenarios[0].(map[string]any)["golden"])

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ tag")
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tag.yaml", tagScenario)
	writeFile(t, dir, "failing.yaml", failingScenario)

	resp, err := executeJSON(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)

	data := dataMap(t, resp)
	assert.EqualValues(t, 1, data["passed"])
	assert.EqualValues(t, 1, data["failed"])
}

func TestTestCommandFilterAndLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tag.yaml", tagScenario)
	writeFile(t, dir, "broken.yaml", "name: broken\n")

	out, err := execute(t, "test", dir, "--filter", "ta*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "contact-a.yaml", "")
	writeFile(t, dir, "contact-b.yml", "")
	writeFile(t, dir, "tag.yaml", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, filepath.Join("sub", "nested.yaml"), "")
	writeFile(t, dir, filepath.Join("golden", "stray.yaml"), "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 4)

	files, err = findScenarioFiles(dir, "contact-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	assert.ErrorContains(t, err, "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, goldenFilePath(tc.input))
	}
}
