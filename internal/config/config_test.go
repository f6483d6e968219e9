package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/francagen/internal/session"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".", cfg.Templates.OverrideDir)
	assert.NotEmpty(t, cfg.Templates.DefaultDir)
	assert.Equal(t, "templates", cfg.Templates.Subdir)
	assert.Equal(t, "src_gen", cfg.Output.Dir)
	assert.Equal(t, "clang-format -i", cfg.Output.Formatter)
	assert.True(t, cfg.Output.PlainTargets)
	assert.Equal(t, "scan-swap", cfg.Reorder.Strategy)
	assert.Equal(t, session.DefaultMaxSwaps, cfg.Reorder.MaxSwaps)
	assert.False(t, cfg.Model.Strict)
	assert.Empty(t, cfg.Ledger.Path)
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[output]
dir = "generated"
formatter = ""

[reorder]
strategy = "topological"

[model]
strict = true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "generated", cfg.Output.Dir)
	assert.Empty(t, cfg.Output.Formatter)
	assert.Equal(t, "topological", cfg.Reorder.Strategy)
	assert.True(t, cfg.Model.Strict)
	// Untouched keys keep their defaults
	assert.Equal(t, "templates", cfg.Templates.Subdir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err, "a missing francagen.toml is not an error")
	assert.Equal(t, "src_gen", cfg.Output.Dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[output]\ndir = \"out\"\n"), 0o644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[output]\ndir = \"from-file\"\n"), 0o644))
	t.Setenv("FRANCAGEN_OUTPUT_DIR", "from-env")
	t.Setenv("FRANCAGEN_REORDER_MAX_SWAPS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Output.Dir)
	assert.Equal(t, 12, cfg.Reorder.MaxSwaps)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Reorder.Strategy = "bogo" }},
		{"negative swaps", func(c *Config) { c.Reorder.MaxSwaps = -1 }},
		{"negative concurrency", func(c *Config) { c.Model.Concurrency = -2 }},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	cfg.Output.Dir = "cpp"
	cfg.Ledger.Path = ".francagen/ledger.db"

	require.NoError(t, WriteFile(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[output]")
	assert.Contains(t, string(data), `dir = "cpp"`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWriteFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o644))

	err := WriteFile(path, Default(), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))

	data, _ := os.ReadFile(path)
	assert.Equal(t, "# mine\n", string(data))

	require.NoError(t, WriteFile(path, Default(), true))
}
