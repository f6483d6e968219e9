package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/francagen/internal/config"
	"github.com/roach88/francagen/internal/emit"
	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbosity  int
	Format     string // "json" | "text"
	LogJSON    bool
	ConfigPath string
	NoColor    bool

	// Populated by the root command before any subcommand runs.
	Config *config.Config
	Logger *zap.SugaredLogger

	clock emit.Clock // nil means wall clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the francagen CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// newRootCommand builds the command tree around opts. A Logger already set
// on opts is kept instead of being built from the flags.
func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "francagen",
		Short:   "francagen - C++ code generator for interface models",
		Long:    "Generates dependency-ordered C++ type headers and per-interface sources from CUE or YAML interface models.",
		Version: ir.GeneratorVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.LogJSON, "log-json", false, "emit logs as JSON on stderr")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./"+config.FileName+")")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored text output")

	// Add subcommands
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// setup loads configuration and builds the logger.
func (o *RootOptions) setup() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg
	if o.Logger == nil {
		o.Logger = logger.New(o.LogJSON, o.Verbosity)
	}
	return nil
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Diagnostics go to stderr to avoid corrupting JSON
		Verbose:   o.Verbosity > 0,
		Color:     !o.NoColor,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
