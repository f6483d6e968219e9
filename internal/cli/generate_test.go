package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/store"
)

type generateResponse struct {
	Status string         `json:"status"`
	Data   GenerateResult `json:"data"`
	Error  *CLIError      `json:"error"`
}

func decodeGenerate(t *testing.T, out string) generateResponse {
	t.Helper()
	var resp generateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestGenerateWritesAllTargets(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := execute(t, env, "generate", fixture("media.yaml"))
	require.NoError(t, err)

	for _, name := range []string{
		"iPlayer.h", "Player.h", "Player.cpp", "utest_Player_mock.h",
		"Player.types.h", "Types.types.h",
	} {
		assert.FileExists(t, filepath.Join(env.Out, name))
	}
	assert.Contains(t, out, "Generated 6 file(s)")
	assert.Contains(t, out, "Types.types.h")
}

func TestGenerateJSONOrdersTypes(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := execute(t, env, "--format", "json", "generate", fixture("media.yaml"))
	require.NoError(t, err)

	resp := decodeGenerate(t, out)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Files, 6)
	assert.Empty(t, resp.Data.RunID, "no ledger configured")

	// Interfaces write plain targets before their types header
	assert.Equal(t, "interfaceheader.tpl", resp.Data.Files[0].Target)
	assert.Equal(t, "typesheader.tpl", resp.Data.Files[4].Target)

	text, err := os.ReadFile(filepath.Join(env.Out, "Types.types.h"))
	require.NoError(t, err)
	header := string(text)
	artist := strings.Index(header, "typedef std::string Artist;")
	track := strings.Index(header, "struct Track")
	playlist := strings.Index(header, "struct Playlist")
	require.True(t, artist >= 0 && track >= 0 && playlist >= 0, header)
	assert.Less(t, artist, track)
	assert.Less(t, track, playlist)
}

func TestGenerateOutputFlagOverridesConfig(t *testing.T) {
	env := newTestEnv(t, "")
	alt := filepath.Join(env.Dir, "alt")

	_, err := execute(t, env, "generate", "-o", alt, "--no-plain-targets", fixture("media.yaml"))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(alt, "Types.types.h"))
	assert.NoFileExists(t, filepath.Join(alt, "iPlayer.h"))
	assert.NoDirExists(t, env.Out)
}

func TestGenerateDirectoryInput(t *testing.T) {
	env := newTestEnv(t, "")
	data, err := os.ReadFile(fixture("media.cue"))
	require.NoError(t, err)
	env.writeModel(t, "media.cue", string(data))

	out, err := execute(t, env, "--format", "json", "generate", filepath.Join(env.Dir, "model"))
	require.NoError(t, err)

	resp := decodeGenerate(t, out)
	require.Len(t, resp.Data.Inputs, 1)
	assert.NotEmpty(t, resp.Data.Files)
}

func TestGeneratePermissiveSkipsBrokenFile(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := execute(t, env, "--format", "json", "generate", fixture("broken.yaml"), fixture("media.yaml"))
	require.NoError(t, err)

	resp := decodeGenerate(t, out)
	require.Len(t, resp.Data.LoadErrors, 1)
	assert.Equal(t, "E204", resp.Data.LoadErrors[0].Code)
	assert.Len(t, resp.Data.Files, 6)
}

func TestGenerateStrictFailsOnBrokenFile(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := execute(t, env, "--format", "json", "generate", "--strict", fixture("broken.yaml"), fixture("media.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeGenerate(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E204", resp.Error.Code)
	assert.NoDirExists(t, env.Out)
}

func TestGenerateMissingInput(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := execute(t, env, "generate", filepath.Join(env.Dir, "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGenerateEmptyDirectory(t *testing.T) {
	env := newTestEnv(t, "")
	empty := filepath.Join(env.Dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))

	out, err := execute(t, env, "generate", empty)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoInputs)
}

func TestGenerateCycleFails(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeModel(t, "loop.yaml", cyclicModel)

	out, err := execute(t, env, "--format", "json", "generate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeGenerate(t, out)
	assert.Equal(t, "CYCLE_DETECTED", resp.Error.Code)
	assert.NoFileExists(t, filepath.Join(env.Out, "Loop.types.h"))
}

func TestGenerateRecordsLedger(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := execute(t, env, "--format", "json", "generate", "--ledger", env.Ledger, fixture("media.yaml"))
	require.NoError(t, err)
	first := decodeGenerate(t, out)
	require.NotEmpty(t, first.Data.RunID)
	for _, f := range first.Data.Files {
		assert.Equal(t, ChangeNew, f.Change, f.Path)
	}

	out, err = execute(t, env, "--format", "json", "generate", "--ledger", env.Ledger, fixture("media.yaml"))
	require.NoError(t, err)
	second := decodeGenerate(t, out)
	for _, f := range second.Data.Files {
		assert.Equal(t, ChangeUnchanged, f.Change, f.Path)
	}

	s, err := store.Open(env.Ledger)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.ListRuns(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.Data.RunID, runs[0].ID)
	assert.Equal(t, store.RunSucceeded, runs[0].Status)
	assert.Equal(t, ir.GeneratorVersion, runs[0].GeneratorVersion)

	files, err := s.ListFiles(t.Context(), first.Data.RunID)
	require.NoError(t, err)
	assert.Len(t, files, len(first.Data.Files))
}

func TestGenerateLedgerRecordsFailedRun(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeModel(t, "loop.yaml", cyclicModel)

	_, err := execute(t, env, "generate", "--ledger", env.Ledger, path)
	require.Error(t, err)

	s, err := store.Open(env.Ledger)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.ListRuns(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunFailed, runs[0].Status)
	assert.Contains(t, runs[0].Message, "CYCLE_DETECTED")
}

func TestGenerateTopologicalStrategy(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := execute(t, env, "--format", "json", "generate", "--strategy", "topological", fixture("media.yaml"))
	require.NoError(t, err)

	resp := decodeGenerate(t, out)
	i := slices.IndexFunc(resp.Data.Files, func(f GeneratedFile) bool { return f.Container == "Types" })
	require.GreaterOrEqual(t, i, 0)
	require.NotNil(t, resp.Data.Files[i].Stats)
	assert.Equal(t, "topological", string(resp.Data.Files[i].Stats.Strategy))
}

func TestGenerateUnknownStrategy(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := execute(t, env, "generate", "--strategy", "bogo", fixture("media.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
