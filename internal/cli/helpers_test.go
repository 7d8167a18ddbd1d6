package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const contactsBatch = `
metadata:
  a: nrl:InstanceBase
resources:
  _:alice:
    a: nco:PersonContact
    nco:fullname: '"Alice"'
    nco:hasEmailAddress: _:mail
  _:mail:
    a: nco:EmailAddress
    nco:emailAddress: '"alice@example.org"'
`

// execute runs the root command with args and returns what it wrote to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// executeJSON runs the root command with --format json and decodes the
// response.
func executeJSON(t *testing.T, args ...string) (CLIResponse, error) {
	t.Helper()
	out, err := execute(t, append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// dataMap returns the response payload as a JSON object.
func dataMap(t *testing.T, resp CLIResponse) map[string]any {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data
}
