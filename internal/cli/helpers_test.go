package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/francagen/internal/testutil"
)

// testEnv is a scratch workspace with a config that points at the repo
// templates and writes into the workspace.
type testEnv struct {
	Dir    string
	Config string
	Out    string
	Ledger string
}

func newTestEnv(t *testing.T, extra string) *testEnv {
	t.Helper()

	repoRoot, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	return newTestEnvAt(t, repoRoot, extra)
}

// newTestEnvAt is newTestEnv with an explicit default template root.
func newTestEnvAt(t *testing.T, defaultRoot, extra string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		Dir:    dir,
		Config: filepath.Join(dir, "francagen.toml"),
		Out:    filepath.Join(dir, "out"),
		Ledger: filepath.Join(dir, "state", "ledger.db"),
	}

	content := fmt.Sprintf(`[templates]
override_dir = %q
default_dir = %q

[output]
dir = %q
formatter = ""
`, dir, defaultRoot, env.Out) + extra
	require.NoError(t, os.WriteFile(env.Config, []byte(content), 0o644))
	return env
}

// writeModel copies a model fixture into the workspace.
func (e *testEnv) writeModel(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.Dir, "model", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fixture returns the path of a model fixture from the model package.
func fixture(name string) string {
	return filepath.Join("..", "model", "testdata", name)
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, env *testEnv, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand(&RootOptions{
		Logger: zaptest.NewLogger(t).Sugar(),
		clock:  testutil.NewFixedClock(time.Time{}),
	})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	if env != nil {
		args = append([]string{"--config", env.Config, "--no-color"}, args...)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

const cyclicModel = `packages:
  org.example.loop:
    typeCollections:
      Loop:
        structs:
          A: {b: B}
          B: {a: A}
          C: {n: UInt8}
`
