package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/francagen/internal/config"
	"github.com/roach88/francagen/internal/emit"
	"github.com/roach88/francagen/internal/output"
	"github.com/roach88/francagen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	Output         string
	Strategy       string
	Ledger         string
	Formatter      string
	Strict         bool
	NoPlainTargets bool
	Watch          bool
	Debounce       time.Duration
}

// File change classes relative to the ledger.
const (
	ChangeNew       = "new"
	ChangeModified  = "modified"
	ChangeUnchanged = "unchanged"
)

// GeneratedFile is one written file in the generate result.
type GeneratedFile struct {
	emit.FileResult
	Change string `json:"change,omitempty"` // set only when a ledger is in use
}

// GenerateResult is the output of one generate run.
type GenerateResult struct {
	RunID      string          `json:"run_id,omitempty"`
	Inputs     []string        `json:"inputs"`
	OutputDir  string          `json:"output_dir"`
	Files      []GeneratedFile `json:"files"`
	LoadErrors []CLIError      `json:"load_errors,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <model-file-or-dir>...",
		Short: "Generate C++ sources from model files",
		Long: `Load CUE or YAML interface models and write one dependency-ordered
types header per interface and type collection, plus the per-interface
header, class and mock files.

Model files that fail to load are reported and skipped unless --strict is set.
With --watch the command keeps running and regenerates whenever a model
file or template changes.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (default from config: src_gen)")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "reorder strategy (scan-swap|topological)")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "record the run in this SQLite ledger")
	cmd.Flags().StringVar(&opts.Formatter, "formatter", "", `formatter command run on each file ("none" disables)`)
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "abort on the first model file that fails to load")
	cmd.Flags().BoolVar(&opts.NoPlainTargets, "no-plain-targets", false, "write only the types headers")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "regenerate when model files or templates change")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", DefaultDebounce, "quiet period before a watched change triggers a run")

	return cmd
}

// apply merges command flags over the loaded configuration.
func (o *GenerateOptions) apply(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir = o.Output
	}
	if flags.Changed("strategy") {
		cfg.Reorder.Strategy = o.Strategy
	}
	if flags.Changed("ledger") {
		cfg.Ledger.Path = o.Ledger
	}
	if flags.Changed("formatter") {
		cfg.Output.Formatter = o.Formatter
		if o.Formatter == "none" {
			cfg.Output.Formatter = ""
		}
	}
	if flags.Changed("strict") {
		cfg.Model.Strict = o.Strict
	}
	if o.NoPlainTargets {
		cfg.Output.PlainTargets = false
	}
	return cfg
}

func runGenerate(cmd *cobra.Command, rootOpts *RootOptions, opts *GenerateOptions, inputs []string) error {
	formatter := rootOpts.formatter(cmd)
	cfg := opts.apply(cmd, *rootOpts.Config)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	g := &generator{cfg: &cfg, root: rootOpts, formatter: formatter}
	err := g.run(ctx, inputs)
	if !opts.Watch {
		return err
	}

	watchPaths := append([]string{}, inputs...)
	watchPaths = append(watchPaths, filepath.Join(cfg.Templates.OverrideDir, cfg.Templates.Subdir))
	w, werr := NewWatcher(watchPaths, opts.Debounce, rootOpts.Logger)
	if werr != nil {
		return fail(formatter, ExitCommandError, werr)
	}
	formatter.VerboseLog("Watching %s", strings.Join(w.Dirs(), ", "))

	return w.Run(ctx, func(ctx context.Context) {
		if err := g.run(ctx, inputs); err != nil {
			rootOpts.Logger.Debugw("Watched run failed", "error", err)
		}
	})
}

// generator performs one load-render-write cycle.
type generator struct {
	cfg       *config.Config
	root      *RootOptions
	formatter *OutputFormatter
}

func (g *generator) run(ctx context.Context, inputs []string) error {
	log := g.root.Logger

	files, loaded, err := loadModels(ctx, g.cfg, log, inputs)
	if err != nil {
		code := ExitFailure
		if errors.Is(err, errNoInputs) || files == nil {
			code = ExitCommandError
		}
		return fail(g.formatter, code, err)
	}

	result := &GenerateResult{
		Inputs:     files,
		OutputDir:  g.cfg.Output.Dir,
		LoadErrors: loadErrorDetails(loaded.Errors),
	}

	ledger, err := g.openLedger()
	if err != nil {
		return fail(g.formatter, ExitCommandError, err)
	}
	if ledger != nil {
		defer ledger.Close()
		result.RunID, err = ledger.BeginRun(ctx, files)
		if err != nil {
			return fail(g.formatter, ExitCommandError, errors.Wrap(err, "starting ledger run"))
		}
	}

	writer, err := output.NewWriter(g.cfg.Output.Dir, g.cfg.Output.Formatter, log)
	if err != nil {
		return fail(g.formatter, ExitCommandError, err)
	}

	changes := map[string]string{}
	var recorder emit.Recorder
	if ledger != nil {
		recorder = func(ctx context.Context, fr emit.FileResult) error {
			last, err := ledger.LastDigest(ctx, fr.Path)
			if err != nil {
				return err
			}
			switch {
			case last == "":
				changes[fr.Path] = ChangeNew
			case last == fr.Digest:
				changes[fr.Path] = ChangeUnchanged
			default:
				changes[fr.Path] = ChangeModified
			}
			_, err = ledger.RecordFile(ctx, result.RunID, store.FileRecord{
				Path:         fr.Path,
				Package:      fr.Package,
				Container:    fr.Container,
				Target:       fr.Target,
				Declarations: fr.Declarations,
				Digest:       fr.Digest,
				Bytes:        fr.Bytes,
			})
			return err
		}
	}

	parts, err := newPipeline(g.cfg, log, g.root.clock, writer, recorder)
	if err != nil {
		return fail(g.formatter, ExitCommandError, err)
	}

	report, runErr := parts.Pipeline.Run(ctx, loaded.Packages)
	if report != nil {
		for _, fr := range report.Files {
			result.Files = append(result.Files, GeneratedFile{FileResult: fr, Change: changes[fr.Path]})
		}
	}

	if ledger != nil {
		status, message := store.RunSucceeded, ""
		if runErr != nil {
			status, message = store.RunFailed, runErr.Error()
		}
		// The run may have been cancelled; the ledger entry still gets closed.
		if err := ledger.FinishRun(context.WithoutCancel(ctx), result.RunID, status, message); err != nil {
			log.Warnw("Failed to finish ledger run", "run", result.RunID, "error", err)
		}
	}

	if runErr != nil {
		return fail(g.formatter, ExitFailure, runErr)
	}

	log.Infow("Generation finished", "files", len(result.Files), "failed_inputs", len(result.LoadErrors))
	return g.output(result)
}

func (g *generator) openLedger() (*store.Store, error) {
	if g.cfg.Ledger.Path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(g.cfg.Ledger.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating ledger directory %s", dir)
		}
	}
	s, err := store.Open(g.cfg.Ledger.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening ledger %s", g.cfg.Ledger.Path)
	}
	return s, nil
}

func (g *generator) output(result *GenerateResult) error {
	f := g.formatter
	if f.JSON() {
		return f.Success(result)
	}

	for _, le := range result.LoadErrors {
		fmt.Fprintf(f.Writer, "%s skipped input: %s\n", f.Warn(), le.Message)
	}
	for _, file := range result.Files {
		line := fmt.Sprintf("%s %s", f.Good(), file.Path)
		if file.Declarations > 0 {
			line += f.Dim(fmt.Sprintf(" (%d declarations)", file.Declarations))
		}
		if file.Change != "" {
			line += f.Dim(" [" + file.Change + "]")
		}
		fmt.Fprintln(f.Writer, line)
	}
	summary := fmt.Sprintf("Generated %d file(s) in %s", len(result.Files), result.OutputDir)
	if result.RunID != "" {
		summary += " (run " + result.RunID + ")"
	}
	fmt.Fprintln(f.Writer, summary)
	return nil
}
