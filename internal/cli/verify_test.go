package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: loop_free
description: "Inner is emitted before Outer"
model: |
  packages:
    org.example.ok:
      typeCollections:
        Ok:
          structs:
            Outer: {inner: Inner}
            Inner: {v: UInt8}
assertions:
  - type: order
    container: Ok
    names: [Inner, Outer]
`

const failingScenario = `name: wrong_order
description: "expects the insertion order"
model: |
  packages:
    org.example.ok:
      typeCollections:
        Ok:
          structs:
            Outer: {inner: Inner}
            Inner: {v: UInt8}
assertions:
  - type: order
    container: Ok
    names: [Outer, Inner]
`

func (e *testEnv) writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.Dir, "scenarios", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type verifyResponse struct {
	Status string       `json:"status"`
	Data   VerifyResult `json:"data"`
	Error  *CLIError    `json:"error"`
}

func TestVerifyPassing(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeScenario(t, "ok.yaml", passingScenario)

	out, err := execute(t, env, "verify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ loop_free (1 containers)")
	assert.Contains(t, out, "1 passed, 0 failed")
}

func TestVerifyFailingScenario(t *testing.T) {
	env := newTestEnv(t, "")
	env.writeScenario(t, "a_ok.yaml", passingScenario)
	env.writeScenario(t, "b_wrong.yaml", failingScenario)

	out, err := execute(t, env, "verify", filepath.Join(env.Dir, "scenarios"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_order")
	assert.Contains(t, out, "Actual: Inner, Outer")
	assert.Contains(t, out, "1 passed, 1 failed")
}

func TestVerifyJSON(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeScenario(t, "ok.yaml", passingScenario)

	out, err := execute(t, env, "--format", "json", "verify", path)
	require.NoError(t, err)

	var resp verifyResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	s := resp.Data.Scenarios[0]
	assert.Equal(t, "loop_free", s.Name)
	require.NotNil(t, s.Result)
	require.Len(t, s.Result.Containers, 1)
	assert.Equal(t, "Inner", string(s.Result.Containers[0].Declarations[0]))
}

func TestVerifyInvalidScenarioFile(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeScenario(t, "bad.yaml", "name: only_a_name\n")

	out, err := execute(t, env, "--format", "json", "verify", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp verifyResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Data.Scenarios[0].Error)
	assert.Contains(t, resp.Data.Scenarios[0].Error.Message, "invalid scenario")
}

func TestVerifyNoScenarios(t *testing.T) {
	env := newTestEnv(t, "")
	empty := filepath.Join(env.Dir, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))

	_, err := execute(t, env, "verify", empty)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no scenario files found")
}

func TestVerifyMissingPath(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := execute(t, env, "verify", filepath.Join(env.Dir, "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerifyRepositoryScenarios(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := execute(t, env, "verify", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 failed")
}
