package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/dev"
)

func serveCmd() *cobra.Command {
	var (
		configDir string
		port      int
		host      string
		noWatch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live development server",
		Long: `Start the live development server.

The server renders the template, keeps every browser in sync over a
WebSocket and reloads when the template or data file changes.

Features:
  • Live two-way binding in the browser
  • Reload on save
  • Store snapshot at /_vbind/state
  • Prometheus metrics at dev.metricsPath

Examples:
  vbind serve
  vbind serve --config ./site --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configDir, port, host, noWatch)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Project directory with vbind.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from vbind.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vbind.json)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable reload on file change")

	return cmd
}

func runServe(configDir string, port int, host string, noWatch bool) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if noWatch {
		cfg.Dev.Watch = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	printBanner()
	fmt.Println("  serve")
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loader, err := newLoader(ctx, cfg.Source)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv, err := dev.NewServer(ctx, dev.ServerOptions{
		Config: cfg,
		Loader: loader,
		Logger: logger,
	})
	if err != nil {
		errorMsg("initial render failed")
		return err
	}
	defer srv.Close()

	success("Serving %s", cfg.DevURL())
	info("Template: %s", cfg.TemplatePath())
	if cfg.DataPath() != "" {
		info("Data:     %s", cfg.DataPath())
	}
	if cfg.Dev.Watch {
		info("Watching for changes")
	}
	fmt.Println()

	return srv.Start(ctx)
}
