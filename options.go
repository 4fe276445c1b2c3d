package advreg

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/config"
	"github.com/zero-day-ai/advreg/registry"
)

const instrumentationName = "github.com/zero-day-ai/advreg"

// Option configures Open and Live.
type Option func(*openConfig)

type openConfig struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	meter         metric.Meter
	namespace     string
	strictParents bool
	treeCheck     bool
}

func newOpenConfig(opts []Option) *openConfig {
	cfg := &openConfig{
		logger:    slog.Default(),
		tracer:    otel.Tracer(instrumentationName),
		namespace: registry.DefaultNamespace,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// buildOptions translates the configuration for advancement.New.
func (c *openConfig) buildOptions(sourceName string) []advancement.Option {
	opts := []advancement.Option{
		advancement.WithNamespace(c.namespace),
		advancement.WithLogger(c.logger),
		advancement.WithSource(sourceName),
	}
	if c.strictParents {
		opts = append(opts, advancement.WithStrictParents())
	}
	if c.treeCheck {
		opts = append(opts, advancement.WithTreeCheck())
	}
	return opts
}

// WithLogger sets the logger for build and reload messages.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *openConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the OpenTelemetry tracer. The global tracer provider is used by default.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *openConfig) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMeter enables build metrics.
func WithMeter(meter metric.Meter) Option {
	return func(c *openConfig) {
		c.meter = meter
	}
}

// WithNamespace sets the prefix stripped by GetNamespaced and parent resolution.
func WithNamespace(ns string) Option {
	return func(c *openConfig) {
		c.namespace = ns
	}
}

// WithStrictParents makes a dangling parent a construction error.
func WithStrictParents() Option {
	return func(c *openConfig) {
		c.strictParents = true
	}
}

// WithTreeCheck makes a parent cycle a construction error.
func WithTreeCheck() Option {
	return func(c *openConfig) {
		c.treeCheck = true
	}
}

// WithRegistryConfig applies the registry section of an advreg.yaml file.
func WithRegistryConfig(cfg config.Registry) Option {
	return func(c *openConfig) {
		if cfg.Namespace != "" {
			c.namespace = cfg.Namespace
		}
		c.strictParents = cfg.StrictParents
		c.treeCheck = cfg.TreeCheck
	}
}

// buildMetrics holds the instruments recorded by Open.
type buildMetrics struct {
	duration metric.Float64Histogram
	records  metric.Int64Counter
}

func (c *openConfig) metrics() (*buildMetrics, error) {
	if c.meter == nil {
		return nil, nil
	}

	m := &buildMetrics{}
	var err error

	m.duration, err = c.meter.Float64Histogram(
		"advreg.build.duration",
		metric.WithDescription("Registry build duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create build duration histogram: %w", err)
	}

	m.records, err = c.meter.Int64Counter(
		"advreg.records",
		metric.WithDescription("Number of records indexed by registry builds"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create records counter: %w", err)
	}

	return m, nil
}
