package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/session"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	Strategy string
	Strict   bool
}

// ContainerCheck is the ordering outcome of one container.
type ContainerCheck struct {
	Package      string          `json:"package"`
	Container    string          `json:"container"`
	Kind         string          `json:"kind"`
	Declarations []ir.DeclName   `json:"declarations,omitempty"`
	Duplicates   []ir.DeclName   `json:"duplicates,omitempty"`
	Stats        *session.Stats  `json:"stats,omitempty"`
	Cycles       [][]ir.DeclName `json:"cycles,omitempty"`
	Error        *CLIError       `json:"error,omitempty"`
}

// CheckResult is the output of the check command.
type CheckResult struct {
	Valid      bool             `json:"valid"`
	Inputs     []string         `json:"inputs"`
	Containers []ContainerCheck `json:"containers"`
	LoadErrors []CLIError       `json:"load_errors,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <model-file-or-dir>...",
		Short: "Load models and report declaration order without writing files",
		Long: `Load CUE or YAML interface models, render every container in memory and
report the dependency order its types header would use.

Dependency cycles and templates that fail to render are reported per
container. No files are written.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "reorder strategy (scan-swap|topological)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "abort on the first model file that fails to load")

	return cmd
}

func runCheck(cmd *cobra.Command, rootOpts *RootOptions, opts *CheckOptions, inputs []string) error {
	formatter := rootOpts.formatter(cmd)
	cfg := *rootOpts.Config
	if cmd.Flags().Changed("strategy") {
		cfg.Reorder.Strategy = opts.Strategy
	}
	if cmd.Flags().Changed("strict") {
		cfg.Model.Strict = opts.Strict
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, loaded, err := loadModels(ctx, &cfg, rootOpts.Logger, inputs)
	if err != nil {
		code := ExitFailure
		if files == nil {
			code = ExitCommandError
		}
		return fail(formatter, code, err)
	}

	parts, err := newPipeline(&cfg, rootOpts.Logger, rootOpts.clock, nil, nil)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	result := CheckResult{
		Valid:      len(loaded.Errors) == 0,
		Inputs:     files,
		LoadErrors: loadErrorDetails(loaded.Errors),
	}
	for _, pkg := range loaded.Packages {
		for _, cont := range pkg.Containers() {
			cc := ContainerCheck{Package: pkg.Name, Container: cont.Name, Kind: cont.Kind.String()}
			doc, err := parts.Pipeline.RenderTypes(pkg, cont)
			if err != nil {
				result.Valid = false
				cc.Error = &CLIError{Code: errorCode(err), Message: err.Error()}
				var cycleErr *session.CycleError
				if errors.As(err, &cycleErr) {
					cc.Cycles = cycleErr.Cycles
				}
			} else {
				cc.Declarations = doc.Declarations
				cc.Duplicates = doc.Duplicates
				if !doc.Empty() {
					stats := doc.Stats
					cc.Stats = &stats
				}
			}
			result.Containers = append(result.Containers, cc)
		}
	}

	if formatter.JSON() {
		if !result.Valid {
			_ = formatter.Failure(firstCheckCode(result), "check failed", result)
			return NewExitError(ExitFailure, "check failed")
		}
		return formatter.Success(result)
	}

	printCheck(formatter, result)
	if !result.Valid {
		return NewExitError(ExitFailure, "check failed")
	}
	return nil
}

func firstCheckCode(r CheckResult) string {
	if len(r.LoadErrors) > 0 {
		return r.LoadErrors[0].Code
	}
	for _, c := range r.Containers {
		if c.Error != nil {
			return c.Error.Code
		}
	}
	return ErrCodeGeneric
}

func printCheck(f *OutputFormatter, r CheckResult) {
	for _, le := range r.LoadErrors {
		fmt.Fprintf(f.Writer, "%s %s\n", f.Bad(), le.Message)
	}
	for _, c := range r.Containers {
		name := c.Package + "." + c.Container
		switch {
		case c.Error != nil:
			fmt.Fprintf(f.Writer, "%s %s: %s\n", f.Bad(), name, c.Error.Message)
			for _, cycle := range c.Cycles {
				fmt.Fprintf(f.Writer, "    cycle: %s\n", joinNames(cycle, " -> "))
			}
		case len(c.Declarations) == 0:
			fmt.Fprintf(f.Writer, "%s %s %s\n", f.Dim("-"), name, f.Dim("(no declarations)"))
		default:
			fmt.Fprintf(f.Writer, "%s %s: %s\n", f.Good(), name, joinNames(c.Declarations, ", "))
			if len(c.Duplicates) > 0 {
				fmt.Fprintf(f.Writer, "    %s duplicates dropped: %s\n", f.Warn(), joinNames(c.Duplicates, ", "))
			}
			if f.Verbose && c.Stats != nil {
				fmt.Fprintf(f.Writer, "    %s\n", f.Dim(fmt.Sprintf("%s: %d passes, %d swaps", c.Stats.Strategy, c.Stats.Passes, c.Stats.Swaps)))
			}
		}
	}
	if r.Valid {
		fmt.Fprintf(f.Writer, "%s All containers ordered\n", f.Good())
	} else {
		fmt.Fprintf(f.Writer, "%s Check failed\n", f.Bad())
	}
}

func joinNames(names []ir.DeclName, sep string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, sep)
}
