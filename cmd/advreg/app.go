package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/advreg"
	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/config"
	"github.com/zero-day-ai/advreg/source"
)

// app carries global flags and the state derived from them.
type app struct {
	configPath string
	file       string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

// init loads the configuration, applies flag overrides and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		if _, err := config.ParseLevel(a.logLevel); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		if a.logFormat != "text" && a.logFormat != "json" {
			return fmt.Errorf("--log-format must be text or json, got %q", a.logFormat)
		}
		cfg.Log.Format = a.logFormat
	}
	if a.file != "" {
		src, err := sourceForPath(a.file, cfg.Source.DefaultNamespace)
		if err != nil {
			return err
		}
		cfg.Source = src
	}

	a.cfg = cfg
	a.logger = cfg.Log.NewLoggerTo(cmd.ErrOrStderr())
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}

	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		if errors.Is(err, config.ErrInvalid) {
			return nil, err
		}
		return config.Default(), nil
	}
	return cfg, nil
}

// sourceForPath picks the source type for a --file argument.
func sourceForPath(path, defaultNamespace string) (config.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return config.Source{}, fmt.Errorf("--file: %w", err)
	}

	src := config.Source{Path: path, DefaultNamespace: defaultNamespace}
	switch {
	case info.IsDir():
		src.Type = config.SourceDatapack
	case source.FormatFromPath(path) == source.FormatBundle:
		src.Type = config.SourceBundle
	default:
		src.Type = config.SourceFile
	}
	return src, nil
}

func (a *app) options() []advreg.Option {
	return []advreg.Option{
		advreg.WithLogger(a.logger),
		advreg.WithRegistryConfig(a.cfg.Registry),
	}
}

// openSource builds the configured source. The returned release func closes
// any connection the source holds.
func (a *app) openSource(ctx context.Context) (source.Source, func(), error) {
	src, err := source.FromConfig(ctx, a.cfg.Source)
	if err != nil {
		return nil, nil, advreg.NewSourceError("openSource", err)
	}
	release := func() {
		if c, ok := src.(io.Closer); ok {
			advreg.CloseWithLog(c, a.logger, src.Name())
		}
	}
	return src, release, nil
}

// openRegistry loads and builds the registry from the configured source.
func (a *app) openRegistry(ctx context.Context, extra ...advreg.Option) (*advancement.Registry, error) {
	src, release, err := a.openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return advreg.Open(ctx, src, append(a.options(), extra...)...)
}

// records returns the registry contents in load order.
func records(reg *advancement.Registry) []advancement.Record {
	recs := reg.Records()
	out := make([]advancement.Record, len(recs))
	for i, rec := range recs {
		out[i] = *rec
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
