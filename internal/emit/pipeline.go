package emit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/output"
	"github.com/roach88/francagen/internal/render"
	"github.com/roach88/francagen/internal/resource"
	"github.com/roach88/francagen/internal/session"
)

const (
	// TypesHeaderTemplate wraps the ordered declarations of a container.
	TypesHeaderTemplate = "typesheader.tpl"
	// TypesSuffix is appended to the container name for the types header.
	TypesSuffix = ".types.h"
	// TimestampLayout formats the generation time embedded in every file.
	TimestampLayout = "2006-01-02, 15:04:05"
)

// Target is a plain per-interface output: the whole interface rendered with
// one template into prefix+name+suffix.
type Target struct {
	Template string `json:"template"`
	Prefix   string `json:"prefix"`
	Suffix   string `json:"suffix"`
}

// PlainTargets are the default per-interface outputs.
var PlainTargets = []Target{
	{Template: "interfaceheader.tpl", Prefix: "i", Suffix: ".h"},
	{Template: "classheader.tpl", Prefix: "", Suffix: ".h"},
	{Template: "class.tpl", Prefix: "", Suffix: ".cpp"},
	{Template: "unittest.tpl", Prefix: "utest_", Suffix: "_mock.h"},
}

// Clock supplies the generation timestamp.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Recorder is called for every written file.
type Recorder func(ctx context.Context, f FileResult) error

// Options configures a Pipeline. Engine is required; Writer is required by
// Run only.
type Options struct {
	Engine   *render.Engine
	Resolver *resource.Resolver // defaults to the engine's resolver
	Writer   *output.Writer
	Clock    Clock
	Strategy session.Strategy
	MaxSwaps int
	// Targets are rendered for every interface. Nil means PlainTargets;
	// an empty non-nil slice disables them.
	Targets  []Target
	Recorder Recorder
	Logger   *zap.SugaredLogger
}

// Pipeline renders and writes containers.
type Pipeline struct {
	engine   *render.Engine
	resolver *resource.Resolver
	writer   *output.Writer
	clock    Clock
	strategy session.Strategy
	maxSwaps int
	targets  []Target
	recorder Recorder
	logger   *zap.SugaredLogger
}

// New creates a pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Engine == nil {
		return nil, errors.New("emit: template engine is required")
	}
	p := &Pipeline{
		engine:   opts.Engine,
		resolver: opts.Resolver,
		writer:   opts.Writer,
		clock:    opts.Clock,
		strategy: opts.Strategy,
		maxSwaps: opts.MaxSwaps,
		targets:  opts.Targets,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
	if p.resolver == nil {
		p.resolver = opts.Engine.Resolver()
	}
	if p.clock == nil {
		p.clock = systemClock{}
	}
	if p.strategy == "" {
		p.strategy = session.StrategyScanSwap
	}
	if p.targets == nil {
		p.targets = PlainTargets
	}
	if p.logger == nil {
		p.logger = zap.NewNop().Sugar()
	}
	return p, nil
}

// Document is the rendered types header of one container.
type Document struct {
	Package   string           `json:"package"`
	Container string           `json:"container"`
	Kind      ir.ContainerKind `json:"kind"`
	Text      string           `json:"-"`
	// Declarations lists the stored declarations in final order.
	Declarations []ir.DeclName `json:"declarations"`
	// Duplicates lists declarations dropped because the name was already
	// stored in this container.
	Duplicates []ir.DeclName `json:"duplicates,omitempty"`
	Stats      session.Stats `json:"stats"`
}

// Empty reports whether the container had no declarations.
func (d *Document) Empty() bool {
	return len(d.Declarations) == 0
}

func (p *Pipeline) timestamp() string {
	return p.clock.Now().Format(TimestampLayout)
}

// RenderTypes renders the types header of cont. A container without
// declarations still gets a header with an empty body, since the plain
// targets and importing headers include it.
func (p *Pipeline) RenderTypes(pkg *ir.Package, cont *ir.Container) (*Document, error) {
	doc := &Document{Package: pkg.Name, Container: cont.Name, Kind: cont.Kind}

	s := session.New()
	for _, decl := range cont.Declarations() {
		name := decl.DeclName()
		for _, dep := range render.Dependencies(decl) {
			s.Reference(name, dep)
		}

		text, err := p.engine.RenderDeclaration(decl)
		if err != nil {
			return nil, errors.Wrapf(err, "rendering %s %s in %s %s", decl.Kind(), name, cont.Kind, cont.Name)
		}
		if !s.Store(name, text) {
			p.logger.Debugw("Dropping duplicate declaration", "name", name, "container", cont.Name)
			doc.Duplicates = append(doc.Duplicates, name)
		}
	}

	if s.Registry.Len() > 0 {
		stats, err := session.Reorder(s,
			session.WithStrategy(p.strategy),
			session.WithMaxSwaps(p.maxSwaps),
		)
		doc.Stats = stats
		if err != nil {
			return nil, errors.Wrapf(err, "ordering declarations of %s %s in package %s", cont.Kind, cont.Name, pkg.Name)
		}
		p.logger.Debugw("Reordered declarations",
			"container", cont.Name,
			"strategy", stats.Strategy,
			"passes", stats.Passes,
			"swaps", stats.Swaps,
		)
	}

	var body strings.Builder
	for idx, entry := range s.Registry.Entries() {
		fmt.Fprintf(&body, "\n// Typedef #%d from %s in package %s\n", idx, cont.Name, pkg.Name)
		body.WriteString(entry.Text)
	}

	boilerplate, err := p.resolver.Boilerplate()
	if err != nil {
		return nil, errors.Wrapf(err, "rendering types header of %s", cont.Name)
	}

	text, err := p.engine.Render(TypesHeaderTemplate, render.Data{
		Item:        cont,
		Name:        cont.Name,
		Package:     pkg.Name,
		Timestamp:   p.timestamp(),
		Boilerplate: boilerplate,
		Body:        body.String(),
		Imports:     pkg.ImportNamespaces(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "rendering types header of %s", cont.Name)
	}

	doc.Text = text
	doc.Declarations = s.Registry.Names()
	return doc, nil
}

// RenderTarget renders one plain target for cont, prefixed with the
// boilerplate text.
func (p *Pipeline) RenderTarget(pkg *ir.Package, cont *ir.Container, target Target) (string, error) {
	boilerplate, err := p.resolver.Boilerplate()
	if err != nil {
		return "", errors.Wrapf(err, "rendering %s for %s", target.Template, cont.Name)
	}

	text, err := p.engine.Render(target.Template, render.Data{
		Item:      cont,
		Name:      cont.Name,
		Package:   pkg.Name,
		Timestamp: p.timestamp(),
		Imports:   pkg.ImportNamespaces(),
	})
	if err != nil {
		return "", errors.Wrapf(err, "rendering %s for %s", target.Template, cont.Name)
	}
	return boilerplate + text, nil
}
