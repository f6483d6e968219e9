package config

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// ErrExists is returned by WriteFile when the target exists and force is off.
var ErrExists = errors.New("config file already exists")

const fileHeader = `# francagen configuration.
# Every key can be overridden with FRANCAGEN_<SECTION>_<KEY>, e.g. FRANCAGEN_OUTPUT_DIR.

`

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to encode config")
	}
	return buf.Bytes(), nil
}

// WriteFile writes cfg to path. An existing file is only replaced when
// force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.Wrapf(ErrExists, "%s", path)
		}
	}
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
