// Package output writes generated files, runs the configured source
// formatter on them and applies the final textual cleanups.
package output

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/roach88/francagen/internal/ir"
)

// DefaultFormatter is the formatter command used when none is configured.
const DefaultFormatter = "clang-format -i"

// FileName joins prefix, name and suffix into an output file name.
func FileName(prefix, name, suffix string) string {
	return prefix + name + suffix
}

// Clean inserts a line break between ")" and a directly following "{", then
// drops a comma directly before ")". Each replacement is a single pass, so
// ",,)" loses only its last comma.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "){", ")\n{")
	return strings.ReplaceAll(text, ",)", ")")
}

// ParseFormatter splits a formatter command line. An empty command disables
// formatting.
func ParseFormatter(command string) ([]string, error) {
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing formatter command %q", command)
	}
	return args, nil
}

// File describes one written file.
type File struct {
	Path   string `json:"path"`
	Bytes  int    `json:"bytes"`
	Digest string `json:"digest"`
}

// Writer writes files into Dir.
type Writer struct {
	Dir string
	// Formatter is the command run on every written file, with the file
	// path appended as last argument. Empty disables formatting.
	Formatter []string
	Logger    *zap.SugaredLogger

	formatterMissing bool
}

// NewWriter creates a writer for dir using the given formatter command line.
func NewWriter(dir, formatter string, logger *zap.SugaredLogger) (*Writer, error) {
	args, err := ParseFormatter(formatter)
	if err != nil {
		return nil, err
	}
	return &Writer{Dir: dir, Formatter: args, Logger: logger}, nil
}

func (w *Writer) logger() *zap.SugaredLogger {
	if w.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return w.Logger
}

// Write stores text as Dir/prefix+name+suffix, formats the file in place and
// applies Clean. The output directory is created first; its failure and any
// file system error are returned. A formatter that is not installed or exits
// with an error is logged and otherwise ignored.
func (w *Writer) Write(ctx context.Context, prefix, name, suffix, text string) (File, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return File{}, errors.Wrapf(err, "creating output directory %s", w.Dir)
	}

	path := filepath.Join(w.Dir, FileName(prefix, name, suffix))
	if err := writeAtomic(path, []byte(text)); err != nil {
		return File{}, err
	}

	w.format(ctx, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, errors.Wrapf(err, "reading %s", path)
	}
	cleaned := Clean(string(data))
	if cleaned != string(data) {
		if err := writeAtomic(path, []byte(cleaned)); err != nil {
			return File{}, err
		}
	}

	w.logger().Infow("Wrote file", "path", path)
	return File{Path: path, Bytes: len(cleaned), Digest: ir.OutputDigest(cleaned)}, nil
}

func (w *Writer) format(ctx context.Context, path string) {
	if len(w.Formatter) == 0 || w.formatterMissing {
		return
	}

	bin, err := exec.LookPath(w.Formatter[0])
	if err != nil {
		w.formatterMissing = true
		w.logger().Warnw("Formatter not found, writing unformatted output", "formatter", w.Formatter[0], "error", err)
		return
	}

	args := append(append([]string{}, w.Formatter[1:]...), path)
	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		w.logger().Warnw("Formatter failed", "command", strings.Join(cmd.Args, " "), "error", err, "output", string(out))
	}
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place, so path never holds partial content.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
