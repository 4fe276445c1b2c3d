package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/health"
	"github.com/zero-day-ai/advreg/types"
)

// Config holds serve configuration.
type Config struct {
	// Port is the TCP port on which the gRPC server listens.
	// Default: 50051
	Port int

	// GracefulTimeout is the maximum duration to wait for active requests
	// to complete during graceful shutdown.
	// Default: 30 seconds
	GracefulTimeout time.Duration

	// TLSCertFile is the path to the TLS certificate file.
	// If empty, TLS is disabled.
	TLSCertFile string

	// TLSKeyFile is the path to the TLS private key file.
	// If empty, TLS is disabled.
	TLSKeyFile string

	// Logger receives lifecycle and request logs.
	// Default: slog.Default()
	Logger *slog.Logger

	// Meter records lookup counts. Nil disables metrics.
	Meter metric.Meter
}

// DefaultConfig returns default serve configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:            50051,
		GracefulTimeout: 30 * time.Second,
		Logger:          slog.Default(),
	}
}

// Provider returns the registry snapshot that answers a request.
// Implementations must be safe for concurrent use.
type Provider interface {
	Registry() *advancement.Registry
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() *advancement.Registry

func (f ProviderFunc) Registry() *advancement.Registry { return f() }

// StaticProvider serves a single immutable registry.
func StaticProvider(reg *advancement.Registry) Provider {
	return ProviderFunc(func() *advancement.Registry { return reg })
}

// Server wraps a gRPC server with lifecycle management.
type Server struct {
	grpcServer   *grpc.Server
	listener     net.Listener
	config       *Config
	healthServer *grpchealth.Server
	provider     Provider
}

// NewServer listens on the configured port and registers the lookup and
// health services.
func NewServer(provider Provider, opts ...Option) (*Server, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}

	srv, err := newServer(cfg, provider, listener)
	if err != nil {
		listener.Close()
		return nil, err
	}
	return srv, nil
}

func newServer(cfg *Config, provider Provider, listener net.Listener) (*Server, error) {
	if provider == nil {
		return nil, fmt.Errorf("registry provider is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var opts []grpc.ServerOption

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	lookup, err := newLookupService(provider, cfg.Logger, cfg.Meter)
	if err != nil {
		return nil, err
	}

	grpcServer := grpc.NewServer(opts...)
	RegisterLookupServer(grpcServer, lookup)

	healthServer := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	srv := &Server{
		grpcServer:   grpcServer,
		listener:     listener,
		config:       cfg,
		healthServer: healthServer,
		provider:     provider,
	}
	srv.UpdateHealth()
	return srv, nil
}

// GRPCServer returns the underlying gRPC server.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}

// HealthServer returns the health check server.
func (s *Server) HealthServer() *grpchealth.Server {
	return s.healthServer
}

// UpdateHealth re-checks the current registry and publishes the result on the
// health service, both for the server as a whole and for advreg.v1.Lookup.
// Call it after swapping the snapshot behind the provider.
func (s *Server) UpdateHealth() types.HealthStatus {
	status := health.RegistryCheck(s.provider.Registry())

	serving := grpc_health_v1.HealthCheckResponse_SERVING
	if !status.Serving() {
		serving = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.healthServer.SetServingStatus("", serving)
	s.healthServer.SetServingStatus(LookupServiceName, serving)

	if !status.IsHealthy() {
		s.config.Logger.Warn("registry health", "status", status.Status, "message", status.Message)
	}
	return status
}

// Serve starts the gRPC server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM signals.
// The context can be used to initiate shutdown programmatically.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	s.config.Logger.Info("lookup service listening", "addr", s.listener.Addr().String())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		s.GracefulStop()
		return ctx.Err()
	case sig := <-sigCh:
		s.config.Logger.Info("received signal, shutting down gracefully", "signal", sig.String())
		s.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop immediately stops the gRPC server.
// Active RPCs will be terminated abruptly.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}

// GracefulStop stops accepting new connections and waits for active RPCs
// to complete within the configured timeout period.
func (s *Server) GracefulStop() {
	s.healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.GracefulTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.config.Logger.Info("server stopped gracefully")
	case <-ctx.Done():
		s.config.Logger.Warn("graceful shutdown timeout, forcing stop")
		s.grpcServer.Stop()
	}
}

// Port returns the port the server is listening on.
// This is useful when using port 0 to get an available port.
func (s *Server) Port() int {
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}
