package advreg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/registry"
	"github.com/zero-day-ai/advreg/source"
)

// Open loads every record from src and builds an immutable registry.
//
// Any construction failure is returned as *Error: KindSource when loading
// fails, KindBuild for empty or duplicate ids, and KindIntegrity for strict
// parent or tree check violations. No partially built registry is returned.
func Open(ctx context.Context, src source.Source, opts ...Option) (*advancement.Registry, error) {
	const op = "advreg.Open"

	if src == nil {
		return nil, NewSourceError(op, ErrNoSource)
	}

	cfg := newOpenConfig(opts)
	metrics, err := cfg.metrics()
	if err != nil {
		return nil, NewConfigurationError(op, err)
	}

	ctx, span := cfg.tracer.Start(ctx, "advreg.open",
		trace.WithAttributes(attribute.String("advreg.source", src.Name())))
	defer span.End()

	start := time.Now()
	sourceCtx := map[string]any{"source": src.Name()}

	records, err := src.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, NewSourceError(op, err).WithContext(sourceCtx)
	}

	reg, err := advancement.New(records, cfg.buildOptions(src.Name())...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		if errors.Is(err, advancement.ErrCycle) || errors.Is(err, advancement.ErrDanglingParent) {
			return nil, NewIntegrityError(op, err).WithContext(sourceCtx)
		}
		return nil, NewBuildError(op, err).WithContext(sourceCtx)
	}

	report := reg.Validate()
	for _, cycle := range report.Cycles {
		cfg.logger.WarnContext(ctx, "parent cycle", "source", src.Name(), "cycle", cycle)
	}

	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.Int("advreg.records", reg.Len()),
		attribute.Int("advreg.dangling", len(report.Dangling)),
		attribute.Int("advreg.cycles", len(report.Cycles)),
		attribute.String("advreg.snapshot", reg.Snapshot().ID),
	)
	span.SetStatus(codes.Ok, "")

	if metrics != nil {
		attrs := metric.WithAttributes(attribute.String("source", src.Name()))
		metrics.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
		metrics.records.Add(ctx, int64(reg.Len()), attrs)
	}

	cfg.logger.InfoContext(ctx, "registry built",
		"source", src.Name(),
		"records", reg.Len(),
		"roots", len(reg.Roots()),
		"dangling", len(report.Dangling),
		"snapshot", reg.Snapshot().ID,
		"duration", elapsed)

	return reg, nil
}

// MustOpen is like Open but panics on error. It is meant for data compiled
// into the binary, where a failure is a programming error.
func MustOpen(ctx context.Context, src source.Source, opts ...Option) *advancement.Registry {
	reg, err := Open(ctx, src, opts...)
	if err != nil {
		panic(fmt.Sprintf("advreg: %v", err))
	}
	return reg
}

var defaultRegistry = registry.NewLazy(func() (*advancement.Registry, error) {
	return Open(context.Background(), source.Embedded(), WithStrictParents(), WithTreeCheck())
})

// Default returns the registry of the embedded vanilla data set.
//
// It is built on first use, exactly once, and shared by all callers.
// Default panics if the embedded data is corrupt.
func Default() *advancement.Registry {
	return defaultRegistry.MustGet()
}

// Get looks up id literally in the Default registry.
func Get(id string) (*advancement.Record, bool) {
	return Default().Get(id)
}

// GetNamespaced looks up id in the Default registry after stripping the
// "minecraft:" prefix.
func GetNamespaced(id string) (*advancement.Record, bool) {
	return Default().GetNamespaced(id)
}
