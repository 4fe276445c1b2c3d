package serve

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/zero-day-ai/advreg/config"
)

// Option is a functional option for configuring a Server.
type Option func(*Config)

// WithPort sets the TCP port for the gRPC server.
// Use port 0 to automatically select an available port.
//
// Example:
//
//	serve.NewServer(provider, serve.WithPort(8080))
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithGracefulShutdown sets the maximum duration to wait for active
// requests to complete during graceful shutdown.
// After this timeout, the server will force shutdown.
func WithGracefulShutdown(timeout time.Duration) Option {
	return func(c *Config) {
		c.GracefulTimeout = timeout
	}
}

// WithTLS enables TLS encryption for the gRPC server.
// If either path is empty, TLS will be disabled.
//
// Example:
//
//	serve.NewServer(provider, serve.WithTLS("/etc/certs/server.crt", "/etc/certs/server.key"))
func WithTLS(certFile, keyFile string) Option {
	return func(c *Config) {
		c.TLSCertFile = certFile
		c.TLSKeyFile = keyFile
	}
}

// WithLogger sets the logger for server lifecycle and request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithMeter enables lookup metrics.
func WithMeter(meter metric.Meter) Option {
	return func(c *Config) {
		c.Meter = meter
	}
}

// WithServeConfig applies the serve section of an advreg.yaml file.
func WithServeConfig(cfg config.Serve) Option {
	return func(c *Config) {
		c.Port = cfg.Port
		c.GracefulTimeout = cfg.GetGracefulTimeout()
		c.TLSCertFile = cfg.TLSCertFile
		c.TLSKeyFile = cfg.TLSKeyFile
	}
}
