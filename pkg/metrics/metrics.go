// Package metrics exposes vbind engine activity as Prometheus metrics.
//
// A Collector implements reactive.Observer and compile.Recorder, so it can
// be installed with reactive.SetObserver and passed to the compiler:
//
//	m := metrics.New(metrics.WithRegistry(reg))
//	restore := reactive.SetObserver(m)
//	defer restore()
//	c := compile.New(st, doc, compile.WithRecorder(m))
//
// Metrics collected (default namespace "vbind"):
//   - vbind_watchers_total: watchers created
//   - vbind_notifications_total: Dep notifications
//   - vbind_reactions_total: watcher reactions that ran
//   - vbind_subscriber_failures_total: isolated subscriber failures
//   - vbind_compile_duration_seconds: compile wall time
//   - vbind_bindings: bindings created by the last compile
//   - vbind_events_total: live input events by status
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vbind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for compile duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the compile duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vbind",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the Prometheus metrics for one registry.
type Collector struct {
	watchers        prometheus.Counter
	notifications   prometheus.Counter
	reactions       prometheus.Counter
	failures        prometheus.Counter
	compileDuration prometheus.Histogram
	bindings        prometheus.Gauge
	events          *prometheus.CounterVec
}

// New creates a Collector and registers its metrics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		watchers: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watchers_total",
			Help:        "Total number of watchers created",
			ConstLabels: config.ConstLabels,
		}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of dependency notifications",
			ConstLabels: config.ConstLabels,
		}),

		reactions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reactions_total",
			Help:        "Total number of watcher reactions run after a value change",
			ConstLabels: config.ConstLabels,
		}),

		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriber_failures_total",
			Help:        "Total number of subscriber failures isolated during notification",
			ConstLabels: config.ConstLabels,
		}),

		compileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "compile_duration_seconds",
			Help:        "Template compile duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		bindings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bindings",
			Help:        "Number of bindings created by the most recent compile",
			ConstLabels: config.ConstLabels,
		}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of input events by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),
	}
}

// WatcherCreated implements reactive.Observer.
func (c *Collector) WatcherCreated(string) {
	c.watchers.Inc()
}

// Notified implements reactive.Observer.
func (c *Collector) Notified(int) {
	c.notifications.Inc()
}

// Reacted implements reactive.Observer.
func (c *Collector) Reacted(string) {
	c.reactions.Inc()
}

// SubscriberFailed implements reactive.Observer.
func (c *Collector) SubscriberFailed(error) {
	c.failures.Inc()
}

// ObserveCompile implements compile.Recorder.
func (c *Collector) ObserveCompile(d time.Duration, bindings int) {
	c.compileDuration.Observe(d.Seconds())
	c.bindings.Set(float64(bindings))
}

// ObserveEvent counts one input event. Status is "ok" or "error".
func (c *Collector) ObserveEvent(status string) {
	c.events.WithLabelValues(status).Inc()
}
