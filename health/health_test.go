package health

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/config"
	"github.com/zero-day-ai/advreg/types"
)

func buildRegistry(t *testing.T, records []advancement.Record) *advancement.Registry {
	t.Helper()
	reg, err := advancement.New(records, advancement.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return reg
}

// startListener accepts and closes connections until the test ends.
func startListener(t *testing.T) *net.TCPAddr {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	return listener.Addr().(*net.TCPAddr)
}

func TestRegistryCheck(t *testing.T) {
	tests := []struct {
		name         string
		records      []advancement.Record
		nilRegistry  bool
		expectStatus types.Status
		expectDetail string
	}{
		{
			name: "consistent tree",
			records: []advancement.Record{
				{ID: "story/root"},
				{ID: "story/mine_stone", Parent: "minecraft:story/root"},
			},
			expectStatus: types.StatusHealthy,
			expectDetail: "records",
		},
		{
			name: "dangling parent",
			records: []advancement.Record{
				{ID: "story/root"},
				{ID: "story/mine_stone", Parent: "story/missing"},
			},
			expectStatus: types.StatusDegraded,
			expectDetail: "dangling",
		},
		{
			name: "cycle",
			records: []advancement.Record{
				{ID: "story/a", Parent: "story/b"},
				{ID: "story/b", Parent: "story/a"},
			},
			expectStatus: types.StatusUnhealthy,
			expectDetail: "cycles",
		},
		{
			name:         "empty",
			records:      nil,
			expectStatus: types.StatusUnhealthy,
		},
		{
			name:         "nil registry",
			nilRegistry:  true,
			expectStatus: types.StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reg *advancement.Registry
			if !tt.nilRegistry {
				reg = buildRegistry(t, tt.records)
			}

			status := RegistryCheck(reg)
			if status.Status != tt.expectStatus {
				t.Errorf("expected status %s, got %s: %s", tt.expectStatus, status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
			if tt.expectDetail != "" {
				if _, ok := status.Details[tt.expectDetail]; !ok {
					t.Errorf("expected detail %q, got %v", tt.expectDetail, status.Details)
				}
			}
		})
	}
}

func TestRegistryCheck_DanglingDetail(t *testing.T) {
	reg := buildRegistry(t, []advancement.Record{
		{ID: "story/root"},
		{ID: "story/mine_stone", Parent: "story/missing"},
	})

	status := RegistryCheck(reg)
	dangling, ok := status.Details["dangling"].([]string)
	if !ok || len(dangling) != 1 || dangling[0] != "story/mine_stone -> story/missing" {
		t.Errorf("unexpected dangling detail: %v", status.Details["dangling"])
	}
}

func TestNetworkCheck(t *testing.T) {
	addr := startListener(t)

	tests := []struct {
		name          string
		host          string
		port          int
		expectHealthy bool
	}{
		{
			name:          "successful connection to test server",
			host:          "127.0.0.1",
			port:          addr.Port,
			expectHealthy: true,
		},
		{
			name:          "connection to non-existent port",
			host:          "127.0.0.1",
			port:          65000,
			expectHealthy: false,
		},
		{
			name:          "invalid port number negative",
			host:          "127.0.0.1",
			port:          -1,
			expectHealthy: false,
		},
		{
			name:          "invalid port number too large",
			host:          "127.0.0.1",
			port:          70000,
			expectHealthy: false,
		},
		{
			name:          "empty host",
			host:          "",
			port:          80,
			expectHealthy: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			status := NetworkCheck(ctx, tt.host, tt.port)

			if tt.expectHealthy != status.IsHealthy() {
				t.Errorf("expected healthy=%v, got %s: %s", tt.expectHealthy, status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestNetworkCheckWithNilContext(t *testing.T) {
	status := NetworkCheck(nil, "127.0.0.1", 65000)
	if status.IsHealthy() {
		t.Error("expected unhealthy status for unreachable port")
	}
}

func TestEndpointCheck(t *testing.T) {
	addr := startListener(t)
	port := strconv.Itoa(addr.Port)

	tests := []struct {
		name          string
		endpoint      string
		expectHealthy bool
	}{
		{"host port", "127.0.0.1:" + port, true},
		{"redis url", "redis://127.0.0.1:" + port + "/0", true},
		{"http url", "http://127.0.0.1:" + port, true},
		{"empty", "", false},
		{"missing port", "127.0.0.1", false},
		{"bad port", "127.0.0.1:http-alt", false},
		{"unreachable", "127.0.0.1:65000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			status := EndpointCheck(ctx, tt.endpoint)
			if tt.expectHealthy != status.IsHealthy() {
				t.Errorf("expected healthy=%v, got %s: %s", tt.expectHealthy, status.Status, status.Message)
			}
		})
	}
}

func TestSourceCheck(t *testing.T) {
	addr := startListener(t)
	tmpFile := filepath.Join(t.TempDir(), "advancements.json")
	if err := os.WriteFile(tmpFile, []byte("[]"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name          string
		cfg           config.Source
		expectHealthy bool
	}{
		{"embedded", config.Source{Type: config.SourceEmbedded}, true},
		{"file exists", config.Source{Type: config.SourceFile, Path: tmpFile}, true},
		{"file missing", config.Source{Type: config.SourceBundle, Path: "/nonexistent/x.advb"}, false},
		{"redis reachable", config.Source{Type: config.SourceRedis, Redis: &config.RedisSource{URL: "redis://" + addr.String()}}, true},
		{"redis unconfigured", config.Source{Type: config.SourceRedis}, false},
		{"etcd reachable", config.Source{Type: config.SourceEtcd, Etcd: &config.EtcdSource{Endpoints: []string{addr.String()}}}, true},
		{"etcd one endpoint down", config.Source{Type: config.SourceEtcd, Etcd: &config.EtcdSource{Endpoints: []string{addr.String(), "127.0.0.1:65000"}}}, false},
		{"etcd unconfigured", config.Source{Type: config.SourceEtcd}, false},
		{"unknown", config.Source{Type: "ftp"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			status := SourceCheck(ctx, tt.cfg)
			if tt.expectHealthy != status.IsHealthy() {
				t.Errorf("expected healthy=%v, got %s: %s", tt.expectHealthy, status.Status, status.Message)
			}
		})
	}
}

func TestPathCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "advancements.json")
	if err := os.WriteFile(file, []byte("[]"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name          string
		sourceType    string
		path          string
		expectHealthy bool
	}{
		{"file", config.SourceFile, file, true},
		{"datapack directory", config.SourceDatapack, dir, true},
		{"datapack given a file", config.SourceDatapack, file, false},
		{"bundle given a directory", config.SourceBundle, dir, false},
		{"missing", config.SourceFile, filepath.Join(dir, "missing.json"), false},
		{"empty path", config.SourceBundle, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := PathCheck(tt.sourceType, tt.path)

			if tt.expectHealthy != status.IsHealthy() {
				t.Errorf("expected healthy=%v, got %s: %s", tt.expectHealthy, status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name         string
		checks       []types.HealthStatus
		expectStatus types.Status
	}{
		{
			name: "all healthy",
			checks: []types.HealthStatus{
				types.NewHealthyStatus("check 1"),
				types.NewHealthyStatus("check 2"),
			},
			expectStatus: types.StatusHealthy,
		},
		{
			name: "one unhealthy",
			checks: []types.HealthStatus{
				types.NewHealthyStatus("check 1"),
				types.NewUnhealthyStatus("check 2 failed", nil),
			},
			expectStatus: types.StatusUnhealthy,
		},
		{
			name: "one degraded",
			checks: []types.HealthStatus{
				types.NewHealthyStatus("check 1"),
				types.NewDegradedStatus("check 2 degraded", nil),
			},
			expectStatus: types.StatusDegraded,
		},
		{
			name: "unhealthy and degraded",
			checks: []types.HealthStatus{
				types.NewDegradedStatus("check 1 degraded", nil),
				types.NewUnhealthyStatus("check 2 failed", nil),
			},
			expectStatus: types.StatusUnhealthy,
		},
		{
			name:         "unknown status counts as failed",
			checks:       []types.HealthStatus{{Status: "rebooting"}},
			expectStatus: types.StatusUnhealthy,
		},
		{
			name:         "no checks",
			checks:       nil,
			expectStatus: types.StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Combine(tt.checks...)

			if status.Status != tt.expectStatus {
				t.Errorf("expected status %s, got %s: %s", tt.expectStatus, status.Status, status.Message)
			}
			if status.Message == "" {
				t.Error("expected non-empty message")
			}
			if status.Status != types.StatusHealthy {
				if _, ok := status.Details["problems"].([]string); !ok {
					t.Errorf("expected problems detail, got %v", status.Details)
				}
			}
		})
	}
}
