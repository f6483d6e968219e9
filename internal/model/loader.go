package model

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/francagen/internal/ir"
)

// Format is a supported model file format.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Parse decodes one model file held in memory. file names the input in
// errors and selects the format.
func Parse(file string, data []byte) ([]*ir.Package, error) {
	format, ok := FormatOf(file)
	if !ok {
		return nil, &ModelError{Code: ErrCodeFormat, File: file, Message: "unsupported model file extension"}
	}

	data, err := Normalize(data)
	if err != nil {
		return nil, &ModelError{Code: ErrCodeRead, File: file, Message: err.Error()}
	}

	var root *node
	switch format {
	case FormatCUE:
		root, err = decodeCUE(file, data)
	case FormatYAML:
		root, err = decodeYAML(file, data)
	}
	if err != nil {
		return nil, err
	}
	return compileDocument(file, root)
}

// DefaultConcurrency bounds how many files LoadFiles reads at once.
const DefaultConcurrency = 4

// Options configures a Loader.
type Options struct {
	// Strict aborts LoadFiles on the first file that fails to load.
	Strict bool
	// Concurrency bounds parallel file loads. Zero means DefaultConcurrency.
	Concurrency int
	Logger      *zap.SugaredLogger
}

// Loader reads model files.
type Loader struct {
	opts   Options
	logger *zap.SugaredLogger
}

// NewLoader creates a loader.
func NewLoader(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Loader{opts: opts, logger: logger}
}

// LoadFile reads and parses one file.
func (l *Loader) LoadFile(path string) ([]*ir.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModelError{Code: ErrCodeRead, File: path, Message: err.Error()}
	}
	return Parse(path, data)
}

// Result holds the outcome of LoadFiles.
type Result struct {
	// Packages from every file that loaded, in input order.
	Packages []*ir.Package
	// Loaded lists the files that loaded, in input order.
	Loaded []string
	// Errors holds one error per file that failed, in input order.
	Errors []error
}

// LoadFiles loads paths concurrently and returns their packages in input
// order.
//
// Without Options.Strict a failing file is logged and skipped, and its error
// is reported in Result.Errors. With Options.Strict the first failing file in
// input order is returned as the error.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) (*Result, error) {
	loaded := make([][]*ir.Package, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pkgs, err := l.LoadFile(path)
			if err != nil {
				errs[i] = err
				if l.opts.Strict {
					return err
				}
				return nil
			}
			loaded[i] = pkgs
			return nil
		})
	}
	waitErr := g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{}
	for i, path := range paths {
		if errs[i] != nil {
			if l.opts.Strict {
				return nil, errs[i]
			}
			l.logger.Errorw("Model file failed to load, skipping", "file", path, "error", errs[i])
			result.Errors = append(result.Errors, errs[i])
			continue
		}
		if loaded[i] == nil {
			continue
		}
		l.logger.Debugw("Loaded model file", "file", path, "packages", len(loaded[i]))
		result.Loaded = append(result.Loaded, path)
		result.Packages = append(result.Packages, loaded[i]...)
	}
	if waitErr != nil {
		return nil, waitErr
	}
	return result, nil
}

// FindModelFiles walks dir and returns every CUE and YAML file in lexical
// order.
func FindModelFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := FormatOf(path); ok {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ExpandInputs replaces every directory in inputs with the model files it
// contains. Plain files are kept as given.
func ExpandInputs(inputs []string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, &ModelError{Code: ErrCodeRead, File: in, Message: err.Error()}
		}
		if !info.IsDir() {
			out = append(out, in)
			continue
		}
		files, err := FindModelFiles(in)
		if err != nil {
			return nil, &ModelError{Code: ErrCodeRead, File: in, Message: err.Error()}
		}
		out = append(out, files...)
	}
	return out, nil
}
