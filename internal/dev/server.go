package dev

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zoobzio/capitan"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/metrics"
	"github.com/vango-dev/vbind/pkg/reactive"
	"github.com/vango-dev/vbind/pkg/source"
)

const (
	tracerName = "github.com/vango-dev/vbind/internal/dev"

	// LivePath is the websocket endpoint.
	LivePath = "/_vbind/live"

	// StatePath serves a JSON snapshot of the store.
	StatePath = "/_vbind/state"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Loader loads the template and data. Default: file paths only.
	Loader source.Loader

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger

	// Registry receives the engine metrics. Default: a fresh registry.
	Registry *prometheus.Registry

	// Tracer creates the per-event spans. Default: the global tracer.
	Tracer trace.Tracer
}

// Server is the development server.
type Server struct {
	config   *config.Config
	loader   source.Loader
	logger   *slog.Logger
	registry *prometheus.Registry
	tracer   trace.Tracer
	metrics  *metrics.Collector
	hub      *LiveHub
	restore  func()

	// mu serializes all engine access.
	mu sync.Mutex
	vm *vbind.VM
}

// NewServer creates a development server and performs the initial load.
// The metrics collector is installed as the engine observer until Close.
func NewServer(ctx context.Context, options ServerOptions) (*Server, error) {
	if options.Config == nil {
		return nil, errors.New("E062").WithDetail("dev server requires a config")
	}

	s := &Server{
		config:   options.Config,
		loader:   options.Loader,
		logger:   options.Logger,
		registry: options.Registry,
		tracer:   options.Tracer,
	}
	if s.loader == nil {
		s.loader = source.FileLoader{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.metrics = metrics.New(metrics.WithRegistry(s.registry))
	s.hub = NewLiveHub(s.handleConnect, s.handleMessage)

	s.restore = reactive.SetObserver(s.metrics)
	vm, err := s.open(ctx)
	if err != nil {
		s.restore()
		return nil, err
	}
	s.vm = vm
	return s, nil
}

// Handler returns the HTTP handler with all dev routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(tracing(s.tracer))
	r.Use(requestLogger(s.logger))

	r.Get("/", s.handlePage)
	r.Get(LivePath, s.hub.HandleWebSocket)
	r.Get(StatePath, s.handleState)
	if path := s.config.Dev.MetricsPath; path != "" {
		r.Handle(path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Start serves HTTP on the configured address and, with dev.watch enabled,
// reloads on template or data changes. It blocks until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.DevAddress()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.config.Dev.Watch {
		if err := s.watch(ctx); err != nil {
			return errors.New("E080").WithDetail("file watcher").Wrap(err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	capitan.Emit(ctx, ServerStarted, KeyAddress.Field(addr))
	s.logger.Info("dev server started", "url", s.config.DevURL())

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.New("E080").WithDetail(addr).Wrap(err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// Close disconnects all clients and restores the previous engine observer.
func (s *Server) Close() {
	s.hub.Close()
	if s.restore != nil {
		s.restore()
		s.restore = nil
	}
}

// Reload rebuilds the VM from the template and data. The rebuild holds the
// engine lock, since compiling evaluates watchers. On failure the previous
// VM stays live and clients receive an error message.
func (s *Server) Reload(ctx context.Context, file string) error {
	s.mu.Lock()
	vm, err := s.open(ctx)
	if err != nil {
		s.mu.Unlock()
		capitan.Emit(ctx, ReloadFailed,
			KeyFile.Field(file),
			KeyError.Field(err.Error()),
		)
		s.logger.Error("reload failed", "file", file, "error", err)
		s.hub.Broadcast(Message{Type: MessageError, Error: err.Error()})
		return err
	}

	s.vm = vm
	html, err := vm.HTML()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	capitan.Emit(ctx, Reloaded,
		KeyFile.Field(file),
		KeyClients.Field(s.hub.ClientCount()),
	)
	s.logger.Info("reloaded", "file", file, "clients", s.hub.ClientCount())
	s.hub.Broadcast(Message{Type: MessageRender, HTML: html})
	return nil
}

// HandleEvent applies one live message to the engine and broadcasts the
// new render. Engine failures during the event are reported but the
// render is still broadcast, since the store may have changed.
func (s *Server) HandleEvent(ctx context.Context, msg Message) (err error) {
	ctx, span := s.tracer.Start(ctx, "vbind.event",
		trace.WithAttributes(
			attribute.String("vbind.event.type", string(msg.Type)),
			attribute.Int("vbind.event.target", msg.Target),
		))
	defer span.End()

	status := "ok"
	defer func() {
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("vbind.event.status", status))
		s.metrics.ObserveEvent(status)
		capitan.Emit(ctx, EventHandled,
			KeyTarget.Field(msg.Target),
			KeyStatus.Field(status),
		)
	}()

	if msg.Type != MessageInput {
		return errors.New("E081").WithDetail(fmt.Sprintf("unsupported message type %q", msg.Type))
	}

	s.mu.Lock()
	inputErr := s.vm.Input(msg.Target, msg.Value)
	html, renderErr := s.vm.HTML()
	s.mu.Unlock()

	if errors.HasCode(inputErr, "E081") {
		return inputErr
	}
	if renderErr != nil {
		return renderErr
	}
	s.hub.Broadcast(Message{Type: MessageRender, HTML: html})
	return inputErr
}

func (s *Server) open(ctx context.Context) (*vbind.VM, error) {
	return vbind.Open(ctx, s.loader, s.config.TemplatePath(), s.config.DataPath(),
		vbind.WithLogger(s.logger),
		vbind.WithMount(s.config.Mount),
		vbind.WithPrefix(s.config.DirectivePrefix),
		vbind.WithRecorder(s.metrics),
	)
}

func (s *Server) watch(ctx context.Context) error {
	var paths []string
	for _, p := range []string{s.config.TemplatePath(), s.config.DataPath()} {
		if p != "" && !strings.Contains(p, "://") {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil
	}

	changes, err := NewFileWatcher(100*time.Millisecond, paths...).Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for file := range changes {
			_ = s.Reload(ctx, file)
		}
	}()
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	page, err := s.vm.Document().HTML()
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page = injectScript(page, ClientScript(s.config.Mount, s.config.DirectivePrefix))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snapshot := s.vm.Store().Snapshot()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Error("state encode failed", "error", err)
	}
}

func (s *Server) handleConnect(conn *websocket.Conn) {
	s.mu.Lock()
	html, err := s.vm.HTML()
	s.mu.Unlock()
	if err != nil {
		_ = s.hub.Send(conn, Message{Type: MessageError, Error: err.Error()})
		return
	}
	_ = s.hub.Send(conn, Message{Type: MessageRender, HTML: html})
}

func (s *Server) handleMessage(ctx context.Context, conn *websocket.Conn, msg Message) {
	if err := s.HandleEvent(ctx, msg); err != nil {
		s.logger.Warn("live event failed", "target", msg.Target, "error", err)
		_ = s.hub.Send(conn, Message{Type: MessageError, Error: err.Error()})
	}
}
