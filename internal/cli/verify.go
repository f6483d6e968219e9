package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/francagen/internal/harness"
)

// errNoScenarios is returned when the inputs contain no scenario files.
var errNoScenarios = errors.New("no scenario files found")

// ScenarioOutcome is the verify result of one scenario file.
type ScenarioOutcome struct {
	File   string          `json:"file"`
	Name   string          `json:"name,omitempty"`
	Pass   bool            `json:"pass"`
	Result *harness.Result `json:"result,omitempty"`
	Error  *CLIError       `json:"error,omitempty"`
}

// VerifyResult is the output of the verify command.
type VerifyResult struct {
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Scenarios []ScenarioOutcome `json:"scenarios"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <scenario-file-or-dir>...",
		Short: "Run ordering scenarios against the configured templates",
		Long: `Run ordering conformance scenarios. Each scenario is a YAML file naming
model files (or an inline model) and assertions about the declaration order
of the resulting types headers.

Directories are expanded to the .yaml and .yml files they contain. Nothing
is written to the output directory.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, rootOpts, args)
		},
	}
	return cmd
}

func runVerify(cmd *cobra.Command, rootOpts *RootOptions, inputs []string) error {
	formatter := rootOpts.formatter(cmd)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := expandScenarios(inputs)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}
	if len(files) == 0 {
		return fail(formatter, ExitCommandError, errNoScenarios)
	}

	opts := harness.Options{Resolver: newResolver(rootOpts.Config), Logger: rootOpts.Logger}
	var result VerifyResult
	for _, file := range files {
		outcome := verifyScenario(ctx, file, opts)
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, outcome)
	}

	if formatter.JSON() {
		if result.Failed > 0 {
			_ = formatter.Failure(ErrCodeGeneric, fmt.Sprintf("%d scenario(s) failed", result.Failed), result)
			return NewExitError(ExitFailure, "verify failed")
		}
		return formatter.Success(result)
	}

	printVerify(formatter, result)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, "verify failed")
	}
	return nil
}

func verifyScenario(ctx context.Context, file string, opts harness.Options) ScenarioOutcome {
	outcome := ScenarioOutcome{File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		outcome.Error = &CLIError{Code: errorCode(err), Message: err.Error()}
		return outcome
	}
	outcome.Name = scenario.Name

	result, err := harness.Run(ctx, scenario, opts)
	if err != nil {
		outcome.Error = &CLIError{Code: errorCode(err), Message: err.Error(), Details: errorDetails(err)}
		return outcome
	}
	outcome.Result = result
	outcome.Pass = result.Pass
	return outcome
}

// expandScenarios replaces directories with the scenario files inside them.
func expandScenarios(inputs []string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, in)
			continue
		}
		found, err := harness.FindScenarios(in)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

func printVerify(f *OutputFormatter, r VerifyResult) {
	for _, s := range r.Scenarios {
		name := s.Name
		if name == "" {
			name = s.File
		}
		switch {
		case s.Error != nil:
			fmt.Fprintf(f.Writer, "%s %s: %s\n", f.Bad(), name, s.Error.Message)
		case !s.Pass:
			fmt.Fprintf(f.Writer, "%s %s\n", f.Bad(), name)
			for _, msg := range s.Result.Errors {
				fmt.Fprintf(f.Writer, "    %s\n", msg)
			}
		default:
			fmt.Fprintf(f.Writer, "%s %s %s\n", f.Good(), name, f.Dim(fmt.Sprintf("(%d containers)", len(s.Result.Containers))))
		}
	}
	fmt.Fprintf(f.Writer, "%d passed, %d failed\n", r.Passed, r.Failed)
}
