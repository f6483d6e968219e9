package harness

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/francagen/internal/emit"
	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/model"
	"github.com/roach88/francagen/internal/render"
	"github.com/roach88/francagen/internal/resource"
	"github.com/roach88/francagen/internal/session"
	"github.com/roach88/francagen/internal/testutil"
)

// Options configures Run.
type Options struct {
	// Resolver locates templates. Required.
	Resolver *resource.Resolver
	Logger   *zap.SugaredLogger
}

// Harness renders scenario models in memory.
type Harness struct {
	pipeline *emit.Pipeline
	loader   *model.Loader
	logger   *zap.SugaredLogger
}

// New builds a harness for one scenario.
func New(scenario *Scenario, opts Options) (*Harness, error) {
	if opts.Resolver == nil {
		return nil, errors.New("harness: template resolver is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	strategy, err := session.ParseStrategy(scenario.Strategy)
	if err != nil {
		return nil, err
	}
	engine, err := render.NewEngine(opts.Resolver, logger)
	if err != nil {
		return nil, errors.Wrap(err, "creating template engine")
	}
	p, err := emit.New(emit.Options{
		Engine:   engine,
		Resolver: opts.Resolver,
		Clock:    testutil.NewFixedClock(testutil.FixedTime),
		Strategy: strategy,
		MaxSwaps: scenario.MaxSwaps,
		Targets:  []emit.Target{},
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &Harness{
		pipeline: p,
		loader:   model.NewLoader(model.Options{Strict: true, Logger: logger}),
		logger:   logger,
	}, nil
}

// Run executes a scenario and returns its result.
//
// Model files load strictly: a model that fails to load is an error, not a
// failed assertion. Rendering failures (cycles, swap limits, broken
// templates) are recorded on the container outcome so assertions can
// inspect them.
func Run(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	h, err := New(scenario, opts)
	if err != nil {
		return nil, err
	}
	return h.Run(ctx, scenario)
}

// Run executes scenario with h.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	pkgs, err := h.load(ctx, scenario)
	if err != nil {
		return nil, errors.Wrapf(err, "loading models of scenario %s", scenario.Name)
	}

	result := NewResult()
	for _, pkg := range pkgs {
		for _, cont := range pkg.Containers() {
			result.Containers = append(result.Containers, h.renderContainer(pkg, cont))
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	h.logger.Debugw("Scenario finished",
		"scenario", scenario.Name,
		"containers", len(result.Containers),
		"pass", result.Pass,
	)
	return result, nil
}

func (h *Harness) load(ctx context.Context, scenario *Scenario) ([]*ir.Package, error) {
	var pkgs []*ir.Package
	if len(scenario.Models) > 0 {
		loaded, err := h.loader.LoadFiles(ctx, scenario.Models)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, loaded.Packages...)
	}
	if scenario.Model != "" {
		inline, err := model.Parse(scenario.Name+".yaml", []byte(scenario.Model))
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, inline...)
	}
	return pkgs, nil
}

func (h *Harness) renderContainer(pkg *ir.Package, cont *ir.Container) ContainerOutcome {
	out := ContainerOutcome{
		Package:      pkg.Name,
		Container:    cont.Name,
		Kind:         cont.Kind.String(),
		Declarations: []ir.DeclName{},
	}

	doc, err := h.pipeline.RenderTypes(pkg, cont)
	if err != nil {
		out.Error = err.Error()
		var cycleErr *session.CycleError
		if errors.As(err, &cycleErr) {
			out.Cycles = cycleErr.Cycles
		}
		return out
	}

	if doc.Declarations != nil {
		out.Declarations = doc.Declarations
	}
	out.Duplicates = doc.Duplicates
	if !doc.Empty() {
		stats := doc.Stats
		out.Stats = &stats
	}
	return out
}
