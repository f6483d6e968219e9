// Package config loads francagen settings from francagen.toml, FRANCAGEN_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/roach88/francagen/internal/session"
)

const (
	// FileName is the config file searched for in the working directory.
	FileName = "francagen.toml"
	// EnvPrefix prefixes environment overrides, e.g. FRANCAGEN_OUTPUT_DIR.
	EnvPrefix = "FRANCAGEN"
)

// Config is the full francagen configuration.
type Config struct {
	Templates TemplatesConfig `mapstructure:"templates" toml:"templates"`
	Output    OutputConfig    `mapstructure:"output" toml:"output"`
	Reorder   ReorderConfig   `mapstructure:"reorder" toml:"reorder"`
	Model     ModelConfig     `mapstructure:"model" toml:"model"`
	Ledger    LedgerConfig    `mapstructure:"ledger" toml:"ledger"`
}

// TemplatesConfig locates templates and the boilerplate file.
type TemplatesConfig struct {
	OverrideDir string `mapstructure:"override_dir" toml:"override_dir"`
	DefaultDir  string `mapstructure:"default_dir" toml:"default_dir"`
	Subdir      string `mapstructure:"subdir" toml:"subdir"`
}

// OutputConfig controls where and how files are written.
type OutputConfig struct {
	Dir          string `mapstructure:"dir" toml:"dir"`
	Formatter    string `mapstructure:"formatter" toml:"formatter"`
	PlainTargets bool   `mapstructure:"plain_targets" toml:"plain_targets"`
}

// ReorderConfig selects the declaration ordering strategy.
type ReorderConfig struct {
	Strategy string `mapstructure:"strategy" toml:"strategy"`
	MaxSwaps int    `mapstructure:"max_swaps" toml:"max_swaps"`
}

// ModelConfig controls model loading.
type ModelConfig struct {
	Strict      bool `mapstructure:"strict" toml:"strict"`
	Concurrency int  `mapstructure:"concurrency" toml:"concurrency"`
}

// LedgerConfig locates the generation ledger. An empty path disables it.
type LedgerConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("templates.override_dir", ".")
	v.SetDefault("templates.default_dir", executableDir())
	v.SetDefault("templates.subdir", "templates")

	v.SetDefault("output.dir", "src_gen")
	v.SetDefault("output.formatter", "clang-format -i")
	v.SetDefault("output.plain_targets", true)

	v.SetDefault("reorder.strategy", string(session.StrategyScanSwap))
	v.SetDefault("reorder.max_swaps", session.DefaultMaxSwaps)

	v.SetDefault("model.strict", false)
	v.SetDefault("model.concurrency", 4)

	v.SetDefault("ledger.path", "")
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Decode(v)
	if err != nil {
		// Defaults are static and always decode
		panic(err)
	}
	return cfg
}

// NewViper builds a viper instance with defaults, environment binding and,
// when present, the config file. An explicit path must exist; without one
// FileName is looked up in the working directory and may be absent.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		return v, nil
	}

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrapf(err, "failed to read %s", FileName)
		}
	}
	return v, nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is NewViper followed by Decode.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := session.ParseStrategy(c.Reorder.Strategy); err != nil {
		return errors.Wrap(err, "reorder.strategy")
	}
	if c.Reorder.MaxSwaps < 0 {
		return errors.Newf("reorder.max_swaps must not be negative, got %d", c.Reorder.MaxSwaps)
	}
	if c.Model.Concurrency < 0 {
		return errors.Newf("model.concurrency must not be negative, got %d", c.Model.Concurrency)
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir must not be empty")
	}
	return nil
}

// executableDir is the directory holding the running binary, where the
// default templates are installed next to it.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
