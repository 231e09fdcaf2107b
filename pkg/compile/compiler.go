package compile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	binderrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
	"github.com/vango-dev/vbind/pkg/store"
)

const (
	// DefaultPrefix marks directive attributes.
	DefaultPrefix = "v-"

	tracerName = "github.com/vango-dev/vbind/pkg/compile"
)

// Recorder receives one observation per finished compile.
type Recorder interface {
	ObserveCompile(d time.Duration, bindings int)
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithPrefix sets the directive attribute prefix.
func WithPrefix(prefix string) Option {
	return func(c *Compiler) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for the compile span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Compiler) {
		c.tracer = tracer
	}
}

// WithRecorder sets the compile metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Compiler) {
		c.recorder = r
	}
}

// Compiler binds template trees to one store through one surface.
type Compiler struct {
	store    *store.Store
	surface  dom.Surface
	prefix   string
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// Result describes one finished compile.
type Result struct {
	// Watchers are the watchers created, in creation order.
	Watchers []*reactive.Watcher

	// Directives is the number of directive attributes bound.
	Directives int

	// TextNodes is the number of text nodes holding interpolation spans.
	TextNodes int

	// Duration is the wall time of the compile.
	Duration time.Duration
}

// New creates a Compiler.
func New(st *store.Store, surface dom.Surface, opts ...Option) *Compiler {
	c := &Compiler{
		store:   st,
		surface: surface,
		prefix:  DefaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Compile binds every directive and interpolation span under root.
//
// The children of root are moved to a detached fragment, compiled there and
// moved back in one pass, also when compilation fails part-way. Watchers
// created before a failure stay bound.
func (c *Compiler) Compile(ctx context.Context, root *html.Node) (*Result, error) {
	_, span := c.tracer.Start(ctx, "vbind.compile",
		trace.WithAttributes(attribute.String("vbind.root", dom.Describe(root))))
	defer span.End()

	start := time.Now()
	env := &Env{Store: c.store, Surface: c.surface, Logger: c.logger}
	res := &Result{}

	frag := dom.Detach(root)
	err := c.compileChildren(env, frag, res)
	dom.Attach(root, frag)

	res.Watchers = env.Watchers()
	res.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("vbind.watchers", len(res.Watchers)),
		attribute.Int("vbind.directives", res.Directives),
		attribute.Int("vbind.text_nodes", res.TextNodes),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	if c.recorder != nil {
		c.recorder.ObserveCompile(res.Duration, res.Directives+res.TextNodes)
	}
	c.logger.Info("template compiled",
		"watchers", len(res.Watchers),
		"directives", res.Directives,
		"text_nodes", res.TextNodes,
		"duration", res.Duration)
	return res, nil
}

func (c *Compiler) compileChildren(env *Env, parent *html.Node, res *Result) error {
	for _, n := range dom.Children(parent) {
		switch n.Type {
		case html.ElementNode:
			if err := c.compileElement(env, n, res); err != nil {
				return err
			}
			if env.Owns(n) {
				continue
			}
			if err := c.compileChildren(env, n, res); err != nil {
				return err
			}
		case html.TextNode:
			if err := c.compileText(env, n, res); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Compiler) compileElement(env *Env, n *html.Node, res *Result) error {
	// Handlers may rewrite attributes, so iterate over a copy.
	attrs := append([]html.Attribute(nil), n.Attr...)
	for _, a := range attrs {
		name, ok := c.directiveName(a.Key)
		if !ok {
			continue
		}

		handler, ok := Lookup(name)
		if !ok {
			return binderrors.New("E020").
				WithDetail("no handler for " + quote(a.Key)).
				WithNode(dom.Describe(n)).
				WithSuggestion("Registered directives: " + strings.Join(c.qualifiedNames(), ", "))
		}

		expr := strings.TrimSpace(a.Val)
		if err := handler(env, n, expr); err != nil {
			return err
		}
		res.Directives++
		c.logger.Debug("directive bound",
			"directive", name,
			"expr", expr,
			"node", dom.Describe(n))
	}
	return nil
}

func (c *Compiler) compileText(env *Env, n *html.Node, res *Result) error {
	text := n.Data
	if !HasSpans(text) {
		return nil
	}
	if err := bindText(env, n, text); err != nil {
		return err
	}
	res.TextNodes++
	c.logger.Debug("text bound", "spans", len(Spans(text)), "node", dom.Describe(n))
	return nil
}

func (c *Compiler) directiveName(attr string) (string, bool) {
	if c.prefix == "" {
		return "", false
	}
	return strings.CutPrefix(attr, c.prefix)
}

func (c *Compiler) qualifiedNames() []string {
	names := Names()
	for i, name := range names {
		names[i] = c.prefix + name
	}
	return names
}
