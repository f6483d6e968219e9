package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/francagen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	Ledger string
	Limit  int
}

// RunDetail is a run together with its files.
type RunDetail struct {
	store.Run
	Files []store.FileRecord `json:"files"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded generation runs",
		Long: `List runs recorded in the generation ledger, newest first.
With a run ID, show that run and every file it wrote.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "ledger database (default from config)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, rootOpts *RootOptions, opts *HistoryOptions, args []string) error {
	formatter := rootOpts.formatter(cmd)

	path := rootOpts.Config.Ledger.Path
	if cmd.Flags().Changed("ledger") {
		path = opts.Ledger
	}
	if path == "" {
		_ = formatter.Error(ErrCodeLedger, "no ledger configured: pass --ledger or set ledger.path", nil)
		return NewExitError(ExitCommandError, ErrCodeLedger+": no ledger configured")
	}
	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("ledger not found: %s", path), nil)
		return WrapExitError(ExitCommandError, ErrCodeNotFound, err)
	}

	s, err := store.Open(path)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}
	defer s.Close()

	ctx := cmd.Context()

	if len(args) == 1 {
		run, err := s.GetRun(ctx, args[0])
		if err != nil {
			return fail(formatter, ExitCommandError, err)
		}
		files, err := s.ListFiles(ctx, run.ID)
		if err != nil {
			return fail(formatter, ExitCommandError, err)
		}
		detail := RunDetail{Run: run, Files: files}
		if formatter.JSON() {
			return formatter.Success(detail)
		}
		printRun(formatter, run)
		for _, f := range files {
			fmt.Fprintf(formatter.Writer, "    %3d  %s  %s\n", f.Seq, shortDigest(f.Digest), f.Path)
		}
		return nil
	}

	runs, err := s.ListRuns(ctx, opts.Limit)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}
	if runs == nil {
		runs = []store.Run{}
	}
	if formatter.JSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded")
		return nil
	}
	for _, run := range runs {
		printRun(formatter, run)
	}
	return nil
}

func printRun(f *OutputFormatter, run store.Run) {
	mark := f.Warn()
	switch run.Status {
	case store.RunSucceeded:
		mark = f.Good()
	case store.RunFailed:
		mark = f.Bad()
	}
	line := fmt.Sprintf("%s #%d %s %s", mark, run.Seq, run.ID, run.StartedAt.Local().Format(time.DateTime))
	if run.FinishedAt != nil {
		line += f.Dim(fmt.Sprintf(" (%s)", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond)))
	}
	if run.Message != "" {
		line += " " + run.Message
	}
	fmt.Fprintln(f.Writer, line)
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
