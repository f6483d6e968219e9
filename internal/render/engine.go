// Package render turns declarations into C++ text through text/template
// templates located by a resource.Resolver.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/resource"
)

// DefaultCacheSize bounds the number of parsed templates kept in memory.
const DefaultCacheSize = 64

// Data is the context every template is executed with. Declaration templates
// use Item; container templates use the remaining fields.
type Data struct {
	Item        any
	Name        string
	Package     string
	Timestamp   string
	Boilerplate string
	Body        string
	Imports     []string
}

// Funcs returns the helper functions available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"renderType":       RenderType,
		"renderEnumerator": RenderEnumerator,
		"kind":             func(d ir.Declaration) string { return d.Kind().String() },
		"join":             func(sep string, elems []string) string { return strings.Join(elems, sep) },
		"title":            title,
	}
}

// title upper-cases the first ASCII letter of s.
func title(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

type cachedTemplate struct {
	tpl     *template.Template
	modTime time.Time
	size    int64
}

// Engine renders named templates. Parsed templates are cached by resolved
// path and reparsed when the file changes on disk.
type Engine struct {
	resolver *resource.Resolver
	cache    *lru.Cache[string, cachedTemplate]
	logger   *zap.SugaredLogger
}

// NewEngine creates an engine reading templates through resolver.
// A nil logger disables logging.
func NewEngine(resolver *resource.Resolver, logger *zap.SugaredLogger) (*Engine, error) {
	cache, err := lru.New[string, cachedTemplate](DefaultCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating template cache")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{resolver: resolver, cache: cache, logger: logger}, nil
}

// Resolver returns the resolver templates are located with.
func (e *Engine) Resolver() *resource.Resolver {
	return e.resolver
}

// Load returns the parsed template for name and the path it came from.
func (e *Engine) Load(name string) (*template.Template, string, error) {
	path, info, err := e.resolver.Stat(name)
	if err != nil {
		return nil, path, err
	}

	if c, ok := e.cache.Get(path); ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.tpl, path, nil
	}

	src, _, err := e.resolver.Read(name)
	if err != nil {
		return nil, path, err
	}
	tpl, err := template.New(name).Funcs(Funcs()).Parse(string(src))
	if err != nil {
		return nil, path, &RenderError{Template: name, Path: path, Err: err}
	}

	e.cache.Add(path, cachedTemplate{tpl: tpl, modTime: info.ModTime(), size: info.Size()})
	e.logger.Debugw("Parsed template", "name", name, "path", path)
	return tpl, path, nil
}

// Render executes template name with data.
func (e *Engine) Render(name string, data Data) (string, error) {
	tpl, path, err := e.Load(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", &RenderError{Template: name, Path: path, Err: err}
	}
	return buf.String(), nil
}

// RenderDeclaration renders decl with the template of its kind.
func (e *Engine) RenderDeclaration(decl ir.Declaration) (string, error) {
	return e.Render(decl.Kind().Template(), Data{Item: decl, Name: string(decl.DeclName())})
}

// CacheLen returns the number of cached templates.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// RenderError reports a template that failed to parse or execute.
type RenderError struct {
	Template string
	Path     string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template %s (%s): %v", e.Template, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
