package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind"
)

func checkCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile a template and report diagnostics",
		Long: `Compile a template against an empty store and report problems
such as unknown directives, invalid expressions, or a missing mount element.

Examples:
  vbind check -t index.html
  vbind check -c ./site`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := runCheck(cmd.Context(), cmd.ErrOrStderr(), &opts)
			if err != nil {
				exitWithError(err)
			}
			success("template ok (%d bindings)", n)
			return nil
		},
	}

	opts.addFlags(cmd)

	return cmd
}

// runCheck compiles the template against an empty store and returns the
// number of watchers created.
func runCheck(ctx context.Context, stderr io.Writer, opts *renderOptions) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := opts.resolve()
	if err != nil {
		return 0, err
	}

	loader, err := newLoader(ctx, cfg.Source)
	if err != nil {
		return 0, err
	}
	vm, err := vbind.Open(ctx, loader, cfg.TemplatePath(), "",
		vbind.WithLogger(opts.logger(stderr)),
		vbind.WithMount(cfg.Mount),
		vbind.WithPrefix(cfg.DirectivePrefix),
	)
	if err != nil {
		return 0, err
	}
	defer vm.Close()
	return len(vm.Watchers()), nil
}
