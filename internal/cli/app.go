package cli

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/francagen/internal/config"
	"github.com/roach88/francagen/internal/emit"
	"github.com/roach88/francagen/internal/model"
	"github.com/roach88/francagen/internal/output"
	"github.com/roach88/francagen/internal/render"
	"github.com/roach88/francagen/internal/resource"
	"github.com/roach88/francagen/internal/session"
)

// errNoInputs is returned when the inputs contain no model files.
var errNoInputs = errors.New("no CUE or YAML model files found")

// newResolver builds the template resolver from configuration.
func newResolver(cfg *config.Config) *resource.Resolver {
	r := resource.NewResolver(cfg.Templates.OverrideDir, cfg.Templates.DefaultDir)
	if cfg.Templates.Subdir != "" {
		r.Subdir = cfg.Templates.Subdir
	}
	return r
}

// pipelineParts bundles what a command needs to render.
type pipelineParts struct {
	Resolver *resource.Resolver
	Engine   *render.Engine
	Pipeline *emit.Pipeline
}

// newPipeline wires resolver, template engine and emission pipeline. writer
// and recorder may be nil for commands that never write files.
func newPipeline(cfg *config.Config, log *zap.SugaredLogger, clock emit.Clock, writer *output.Writer, recorder emit.Recorder) (*pipelineParts, error) {
	strategy, err := session.ParseStrategy(cfg.Reorder.Strategy)
	if err != nil {
		return nil, err
	}

	resolver := newResolver(cfg)
	engine, err := render.NewEngine(resolver, log)
	if err != nil {
		return nil, errors.Wrap(err, "creating template engine")
	}

	var targets []emit.Target
	if !cfg.Output.PlainTargets {
		targets = []emit.Target{}
	}

	p, err := emit.New(emit.Options{
		Engine:   engine,
		Resolver: resolver,
		Writer:   writer,
		Clock:    clock,
		Strategy: strategy,
		MaxSwaps: cfg.Reorder.MaxSwaps,
		Targets:  targets,
		Recorder: recorder,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	return &pipelineParts{Resolver: resolver, Engine: engine, Pipeline: p}, nil
}

// loadModels expands inputs into model files and loads them.
func loadModels(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, inputs []string) ([]string, *model.Result, error) {
	files, err := model.ExpandInputs(inputs)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, errNoInputs
	}

	loader := model.NewLoader(model.Options{
		Strict:      cfg.Model.Strict,
		Concurrency: cfg.Model.Concurrency,
		Logger:      log,
	})
	result, err := loader.LoadFiles(ctx, files)
	if err != nil {
		return files, nil, err
	}
	return files, result, nil
}

// loadErrorDetails flattens permissive-mode load errors for output.
func loadErrorDetails(errs []error) []CLIError {
	out := make([]CLIError, 0, len(errs))
	for _, err := range errs {
		out = append(out, CLIError{Code: errorCode(err), Message: err.Error(), Details: errorDetails(err)})
	}
	return out
}
