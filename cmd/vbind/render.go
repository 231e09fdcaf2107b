package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
)

// renderOptions holds the flags shared by render and check.
type renderOptions struct {
	configDir string
	template  string
	data      string
	mount     string
	prefix    string
	region    string
	sets      []string
	verbose   bool
}

func (o *renderOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configDir, "config", "c", "", "Project directory with vbind.json (flags override it)")
	cmd.Flags().StringVarP(&o.template, "template", "t", "", "Template path or s3:// URI")
	cmd.Flags().StringVarP(&o.mount, "mount", "m", "", "Mount selector (default #app)")
	cmd.Flags().StringVar(&o.prefix, "prefix", "", "Directive prefix (default v-)")
	cmd.Flags().StringVar(&o.region, "region", "", "AWS region for s3:// URIs")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Log every binding")
}

// resolve merges flags over the project config, if any.
func (o *renderOptions) resolve() (*config.Config, error) {
	cfg := config.New()
	cfg.Template = ""
	if o.configDir != "" {
		loaded, err := config.Load(o.configDir)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.template != "" {
		cfg.Template = o.template
	}
	if o.data != "" {
		cfg.Data = o.data
	}
	if o.mount != "" {
		cfg.Mount = o.mount
	}
	if o.prefix != "" {
		cfg.DirectivePrefix = o.prefix
	}
	if o.region != "" {
		cfg.Source.Region = o.region
	}
	if cfg.Template == "" {
		return nil, errors.New("E100").
			WithDetail("no template given").
			WithSuggestion("Pass --template or --config")
	}
	return cfg, nil
}

func (o *renderOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template against store data",
		Long: `Render a template against store data and print the mount element.

Each --set assignment is applied through the store after compiling, so
the printed HTML shows the result of the reactive updates. Values are
parsed as JSON when possible and used as strings otherwise.

Examples:
  vbind render -t index.html -d data.yaml
  vbind render -t s3://bucket/index.html --region eu-west-1
  vbind render -t index.html --set user.name=Ann --set count=3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), &opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "Data path or s3:// URI (JSON or YAML)")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Assign path=value after compiling (repeatable)")

	return cmd
}

func runRender(ctx context.Context, stdout, stderr io.Writer, opts *renderOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := opts.resolve()
	if err != nil {
		return err
	}

	assignments := make([]assignment, 0, len(opts.sets))
	for _, s := range opts.sets {
		a, err := parseSet(s)
		if err != nil {
			return err
		}
		assignments = append(assignments, a)
	}

	loader, err := newLoader(ctx, cfg.Source)
	if err != nil {
		return err
	}
	vm, err := vbind.Open(ctx, loader, cfg.TemplatePath(), cfg.DataPath(),
		vbind.WithLogger(opts.logger(stderr)),
		vbind.WithMount(cfg.Mount),
		vbind.WithPrefix(cfg.DirectivePrefix),
	)
	if err != nil {
		return err
	}
	defer vm.Close()

	for _, a := range assignments {
		if err := vm.Set(a.path, a.value); err != nil {
			return err
		}
	}

	out, err := vm.HTML()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

type assignment struct {
	path  string
	value any
}

// parseSet parses a path=value argument.
func parseSet(s string) (assignment, error) {
	path, raw, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return assignment{}, errors.New("E100").
			WithDetail(fmt.Sprintf("--set %q is not path=value", s))
	}

	var value any = raw
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		value = decoded
	}
	return assignment{path: strings.TrimSpace(path), value: value}, nil
}

// exitWithError prints err in the detailed format and exits.
func exitWithError(err error) {
	errors.Fprint(os.Stderr, err)
	os.Exit(1)
}
