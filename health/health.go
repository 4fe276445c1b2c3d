package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/config"
	"github.com/zero-day-ai/advreg/types"
)

// RegistryCheck inspects a built registry.
//
// Example:
//
//	status := health.RegistryCheck(reg)
//	if status.IsDegraded() {
//	    log.Printf("registry warnings: %v", status.Details["dangling"])
//	}
func RegistryCheck(reg *advancement.Registry) types.HealthStatus {
	if reg == nil || reg.Len() == 0 {
		return types.NewUnhealthyStatus("registry is empty", nil)
	}

	report := reg.Validate()
	details := map[string]any{
		"records":  reg.Len(),
		"roots":    len(reg.Roots()),
		"snapshot": reg.Snapshot().ID,
	}

	if len(report.Cycles) > 0 {
		cycles := make([]string, len(report.Cycles))
		for i, c := range report.Cycles {
			cycles[i] = strings.Join(c, " -> ")
		}
		details["cycles"] = cycles
		return types.NewUnhealthyStatus(
			fmt.Sprintf("%d parent cycle(s) detected", len(report.Cycles)),
			details,
		)
	}

	if len(report.Dangling) > 0 {
		dangling := make([]string, len(report.Dangling))
		for i, d := range report.Dangling {
			dangling[i] = d.ID + " -> " + d.Parent
		}
		details["dangling"] = dangling
		return types.NewDegradedStatus(
			fmt.Sprintf("%d dangling parent reference(s)", len(report.Dangling)),
			details,
		)
	}

	return types.HealthStatus{
		Status:  types.StatusHealthy,
		Message: fmt.Sprintf("%d advancements loaded", reg.Len()),
		Details: details,
	}
}

// SourceCheck verifies that the source described by cfg is reachable.
// File sources must exist; network sources must accept TCP connections.
func SourceCheck(ctx context.Context, cfg config.Source) types.HealthStatus {
	switch cfg.Type {
	case config.SourceEmbedded, "":
		return types.NewHealthyStatus("embedded data set")
	case config.SourceFile, config.SourceBundle, config.SourceDatapack:
		return PathCheck(cfg.Type, cfg.Path)
	case config.SourceRedis:
		if cfg.Redis == nil {
			return types.NewUnhealthyStatus("redis source is not configured", nil)
		}
		return EndpointCheck(ctx, cfg.Redis.URL)
	case config.SourceEtcd:
		if cfg.Etcd == nil || len(cfg.Etcd.Endpoints) == 0 {
			return types.NewUnhealthyStatus("etcd source has no endpoints", nil)
		}
		checks := make([]types.HealthStatus, len(cfg.Etcd.Endpoints))
		for i, ep := range cfg.Etcd.Endpoints {
			checks[i] = EndpointCheck(ctx, ep)
		}
		return Combine(checks...)
	default:
		return types.NewUnhealthyStatus(
			fmt.Sprintf("unknown source type %q", cfg.Type),
			map[string]any{"type": cfg.Type},
		)
	}
}

// defaultPorts maps URL schemes to their default port.
var defaultPorts = map[string]int{
	"redis":  6379,
	"rediss": 6379,
	"http":   80,
	"https":  443,
}

// EndpointCheck verifies TCP connectivity to addr, which is either "host:port"
// or a URL such as "redis://cache:6379/0".
func EndpointCheck(ctx context.Context, addr string) types.HealthStatus {
	if addr == "" {
		return types.NewUnhealthyStatus("endpoint cannot be empty", nil)
	}

	hostport := addr
	defaultPort := 0
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return types.NewUnhealthyStatus(
				fmt.Sprintf("invalid endpoint %q", addr),
				map[string]any{"endpoint": addr, "error": err.Error()},
			)
		}
		hostport = u.Host
		defaultPort = defaultPorts[u.Scheme]
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		if defaultPort == 0 {
			return types.NewUnhealthyStatus(
				fmt.Sprintf("invalid endpoint %q", addr),
				map[string]any{"endpoint": addr, "error": err.Error()},
			)
		}
		host, portStr = hostport, strconv.Itoa(defaultPort)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("invalid port in endpoint %q", addr),
			map[string]any{"endpoint": addr},
		)
	}
	return NetworkCheck(ctx, host, port)
}

// NetworkCheck dials host:port over TCP. A nil ctx gets a 5s timeout.
func NetworkCheck(ctx context.Context, host string, port int) types.HealthStatus {
	if host == "" || port <= 0 || port > 65535 {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("invalid endpoint %s:%d", host, port),
			map[string]any{"host": host, "port": port},
		)
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("source endpoint %s unreachable", address),
			map[string]any{"address": address, "error": err.Error()},
		)
	}
	_ = conn.Close()

	return types.NewHealthyStatus("source endpoint " + address + " reachable")
}

// PathCheck verifies the on-disk input of a file, bundle or datapack source.
// Datapacks must be directories; the other types must be regular files.
func PathCheck(sourceType, path string) types.HealthStatus {
	details := map[string]any{"type": sourceType, "path": path}
	if path == "" {
		return types.NewUnhealthyStatus(sourceType+" source has no path", details)
	}

	info, err := os.Stat(path)
	if err != nil {
		details["error"] = err.Error()
		return types.NewUnhealthyStatus(fmt.Sprintf("%s source %s is not readable", sourceType, path), details)
	}

	wantDir := sourceType == config.SourceDatapack
	if info.IsDir() != wantDir {
		want := "a regular file"
		if wantDir {
			want = "a directory"
		}
		return types.NewUnhealthyStatus(fmt.Sprintf("%s source %s is not %s", sourceType, path, want), details)
	}

	return types.NewHealthyStatus(fmt.Sprintf("%s source %s present", sourceType, path))
}

// Combine reduces checks to the worst status among them. The message of every
// non-healthy check is listed under details["problems"].
func Combine(checks ...types.HealthStatus) types.HealthStatus {
	worst := types.NewHealthyStatus("")
	var problems []string
	for _, check := range checks {
		if check.Worse(worst) {
			worst.Status = check.Status
		}
		if !check.IsHealthy() {
			msg := check.Message
			if msg == "" {
				msg = "check reported " + string(check.Status)
			}
			problems = append(problems, msg)
		}
	}

	if len(problems) == 0 {
		worst.Message = fmt.Sprintf("%d check(s) passed", len(checks))
		return worst
	}
	if !worst.IsDegraded() {
		worst.Status = types.StatusUnhealthy
	}
	worst.Message = strings.Join(problems, "; ")
	worst.Details = map[string]any{
		"checks":   len(checks),
		"problems": problems,
	}
	return worst
}
