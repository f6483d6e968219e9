// Package resource locates generation resources (templates and boilerplate)
// under two roots: an override root that wins whenever the file exists there,
// and a default root used otherwise.
package resource

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// DefaultSubdir is the category path templates live under in both roots.
const DefaultSubdir = "templates"

// BoilerplateName is the resource holding the header text copied into every
// generated file.
const BoilerplateName = "boilerplate.txt"

// Resolver maps logical resource names to filesystem paths.
type Resolver struct {
	OverrideRoot string
	DefaultRoot  string
	Subdir       string
}

// NewResolver creates a resolver for the given roots using DefaultSubdir.
func NewResolver(overrideRoot, defaultRoot string) *Resolver {
	return &Resolver{
		OverrideRoot: overrideRoot,
		DefaultRoot:  defaultRoot,
		Subdir:       DefaultSubdir,
	}
}

// Resolve returns OverrideRoot/Subdir/name if that file exists, and
// DefaultRoot/Subdir/name otherwise, whether or not the default exists.
// Only the override candidate is checked.
func (r *Resolver) Resolve(name string) string {
	preferred := r.candidate(r.OverrideRoot, name)
	if _, err := os.Stat(preferred); err == nil {
		return preferred
	}
	return r.candidate(r.DefaultRoot, name)
}

// Candidates returns the override and default paths for name without
// touching the filesystem.
func (r *Resolver) Candidates(name string) (override, fallback string) {
	return r.candidate(r.OverrideRoot, name), r.candidate(r.DefaultRoot, name)
}

func (r *Resolver) candidate(root, name string) string {
	p := filepath.Join(root, r.Subdir, name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Stat resolves name and returns the file info of the resolved path.
func (r *Resolver) Stat(name string) (string, fs.FileInfo, error) {
	path := r.Resolve(name)
	info, err := os.Stat(path)
	if err != nil {
		return path, nil, r.wrap(name, path, err)
	}
	return path, info, nil
}

// Read returns the contents and resolved path of name. A resolved path that
// does not exist yields a *NotFoundError.
func (r *Resolver) Read(name string) ([]byte, string, error) {
	path := r.Resolve(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, r.wrap(name, path, err)
	}
	return data, path, nil
}

func (r *Resolver) wrap(name, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		override, _ := r.Candidates(name)
		return &NotFoundError{Name: name, Searched: []string{override, path}}
	}
	return errors.Wrapf(err, "reading resource %s", name)
}

// Boilerplate returns the text of BoilerplateName.
func (r *Resolver) Boilerplate() (string, error) {
	data, _, err := r.Read(BoilerplateName)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NotFoundError reports a resource missing from both roots.
type NotFoundError struct {
	Name     string
	Searched []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %q not found (searched %v)", e.Name, e.Searched)
}

// IsNotFound returns true if err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
