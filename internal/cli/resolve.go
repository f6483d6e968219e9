package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Resolution is where a resource name resolved to.
type Resolution struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Source   string `json:"source"` // "override" | "default"
	Exists   bool   `json:"exists"`
	Override string `json:"override_candidate"`
	Default  string `json:"default_candidate"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <resource-name>...",
		Short: "Show which file a template or resource name resolves to",
		Long: `Resolve resource names (templates, boilerplate.txt) against the override
directory and the default directory, and print the path that would be used.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, rootOpts, args)
		},
	}
	return cmd
}

func runResolve(cmd *cobra.Command, rootOpts *RootOptions, names []string) error {
	formatter := rootOpts.formatter(cmd)
	resolver := newResolver(rootOpts.Config)

	var (
		out     []Resolution
		missing int
	)
	for _, name := range names {
		override, fallback := resolver.Candidates(name)
		path := resolver.Resolve(name)
		r := Resolution{
			Name:     name,
			Path:     path,
			Source:   "default",
			Override: override,
			Default:  fallback,
		}
		if path == override {
			r.Source = "override"
		}
		if _, err := os.Stat(path); err == nil {
			r.Exists = true
		} else {
			missing++
		}
		out = append(out, r)
	}

	if formatter.JSON() {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		for _, r := range out {
			mark := formatter.Good()
			if !r.Exists {
				mark = formatter.Bad()
			}
			fmt.Fprintf(formatter.Writer, "%s %s -> %s %s\n", mark, r.Name, r.Path, formatter.Dim("("+r.Source+")"))
		}
	}

	if missing > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d resource(s) not found", ErrCodeNotFound, missing))
	}
	return nil
}
