package vbind

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vbind/pkg/compile"
	"github.com/vango-dev/vbind/pkg/reactive"
)

type config struct {
	logger   *slog.Logger
	mount    string
	prefix   string
	observer reactive.Observer
	recorder compile.Recorder
	tracer   trace.Tracer
}

func defaultConfig() config {
	return config{
		logger: slog.Default(),
		mount:  DefaultMount,
		prefix: compile.DefaultPrefix,
	}
}

// Option configures a VM.
type Option func(*config)

// WithLogger sets the logger used by the VM and its compiler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMount sets the mount selector ("#id" or a tag name).
func WithMount(selector string) Option {
	return func(c *config) {
		if selector != "" {
			c.mount = selector
		}
	}
}

// WithPrefix sets the directive attribute prefix.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithObserver installs o as the engine observer for the lifetime of the VM.
// If o also implements compile.Recorder it receives compile statistics.
func WithObserver(o reactive.Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// WithTracer sets the tracer used for the compile span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithRecorder sets a recorder for compile statistics without installing
// an observer.
func WithRecorder(r compile.Recorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}
