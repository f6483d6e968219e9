package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/francagen/internal/config"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	Path   string
	Force  bool
	Output string
	Ledger string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Write a default " + config.FileName,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", config.FileName, "where to write the config file")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory to record")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "ledger path to record")

	return cmd
}

func runInit(cmd *cobra.Command, rootOpts *RootOptions, opts *InitOptions) error {
	formatter := rootOpts.formatter(cmd)

	cfg := config.Default()
	if opts.Output != "" {
		cfg.Output.Dir = opts.Output
	}
	if opts.Ledger != "" {
		cfg.Ledger.Path = opts.Ledger
	}

	if err := config.WriteFile(opts.Path, cfg, opts.Force); err != nil {
		if errors.Is(err, config.ErrExists) {
			_ = formatter.Error(ErrCodeConfig, fmt.Sprintf("%s already exists (use --force to overwrite)", opts.Path), nil)
			return WrapExitError(ExitCommandError, ErrCodeConfig, err)
		}
		return fail(formatter, ExitCommandError, err)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]string{"path": opts.Path})
	}
	fmt.Fprintf(formatter.Writer, "%s Wrote %s\n", formatter.Good(), opts.Path)
	return nil
}
