package source

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/zero-day-ai/advreg/config"
)

// clientTLS builds the mutual TLS configuration for an etcd client.
// It returns nil when cfg is nil or disabled.
func clientTLS(cfg *config.TLS) (*tls.Config, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if cfg.CertFile == "" || cfg.KeyFile == "" || cfg.CAFile == "" {
		return nil, fmt.Errorf("%w: tls needs cert_file, key_file and ca_file when enabled", config.ErrInvalid)
	}

	pair, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load etcd client certificate: %w", err)
	}

	pem, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("read etcd CA bundle: %w", err)
	}
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("etcd CA bundle %s holds no PEM certificates", cfg.CAFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		RootCAs:      roots,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
