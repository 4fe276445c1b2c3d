package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by Load for directories.
const FileName = "advreg.yaml"

// Source types.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceDatapack = "datapack"
	SourceBundle   = "bundle"
	SourceRedis    = "redis"
	SourceEtcd     = "etcd"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config represents an advreg.yaml configuration file.
type Config struct {
	Source   Source   `yaml:"source"`
	Registry Registry `yaml:"registry"`
	Serve    Serve    `yaml:"serve"`
	Log      Log      `yaml:"log"`
}

// Source selects where advancement records come from.
type Source struct {
	// Type is one of embedded, file, datapack, bundle, redis, etcd.
	// Default: embedded
	Type string `yaml:"type,omitempty"`

	// Path is the JSON/YAML file, datapack directory or bundle file.
	Path string `yaml:"path,omitempty"`

	// DefaultNamespace is dropped from datapack ids so vanilla ids stay bare.
	// It must match registry.namespace without the trailing colon.
	// Default: registry.namespace without the colon, else minecraft
	DefaultNamespace string `yaml:"default_namespace,omitempty"`

	Redis *RedisSource `yaml:"redis,omitempty"`
	Etcd  *EtcdSource  `yaml:"etcd,omitempty"`
}

// RedisSource configures the Redis hash source.
type RedisSource struct {
	// URL is the Redis connection string.
	// Default: redis://localhost:6379
	URL string `yaml:"url,omitempty"`

	// Key is the hash holding id -> record JSON.
	// Default: advreg:advancements
	Key string `yaml:"key,omitempty"`
}

// EtcdSource configures the etcd prefix source.
type EtcdSource struct {
	Endpoints []string `yaml:"endpoints"`

	// Prefix is the key namespace. The current generation id lives at
	// /{prefix}/advancements/current and its records under
	// /{prefix}/advancements/gen/{gen}/.
	// Default: advreg
	Prefix string `yaml:"prefix,omitempty"`

	// DialTimeout is a Go duration string.
	// Default: 5s
	DialTimeout string `yaml:"dial_timeout,omitempty"`

	TLS *TLS `yaml:"tls,omitempty"`
}

// TLS holds client certificate settings.
type TLS struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file,omitempty"`
	KeyFile  string `yaml:"key_file,omitempty"`
	CAFile   string `yaml:"ca_file,omitempty"`
}

// Registry controls how the table is built.
type Registry struct {
	// Namespace is stripped by namespaced lookups.
	// Default: source.default_namespace + ":"
	Namespace string `yaml:"namespace,omitempty"`

	// StrictParents turns dangling parents into a startup failure.
	StrictParents bool `yaml:"strict_parents,omitempty"`

	// TreeCheck turns parent cycles into a startup failure.
	TreeCheck bool `yaml:"tree_check,omitempty"`
}

// Serve configures the gRPC lookup service.
type Serve struct {
	// Port is the TCP port. Default: 50051
	Port int `yaml:"port,omitempty"`

	// GracefulTimeout is a Go duration string. Default: 30s
	GracefulTimeout string `yaml:"graceful_timeout,omitempty"`

	TLSCertFile string `yaml:"tls_cert_file,omitempty"`
	TLSKeyFile  string `yaml:"tls_key_file,omitempty"`
}

// Log configures the slog handler.
type Log struct {
	// Level is debug, info, warn or error. Default: info
	Level string `yaml:"level,omitempty"`

	// Format is text or json. Default: text
	Format string `yaml:"format,omitempty"`
}

// Default returns a configuration that serves the embedded vanilla data.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = SourceEmbedded
	}
	// Either namespace setting fills in the other.
	if c.Source.DefaultNamespace == "" {
		c.Source.DefaultNamespace = strings.TrimSuffix(c.Registry.Namespace, ":")
	}
	if c.Source.DefaultNamespace == "" {
		c.Source.DefaultNamespace = "minecraft"
	}
	if c.Registry.Namespace == "" {
		c.Registry.Namespace = c.Source.DefaultNamespace + ":"
	}
	if c.Source.Type == SourceRedis && c.Source.Redis == nil {
		c.Source.Redis = &RedisSource{}
	}
	if c.Source.Redis != nil {
		if c.Source.Redis.URL == "" {
			c.Source.Redis.URL = "redis://localhost:6379"
		}
		if c.Source.Redis.Key == "" {
			c.Source.Redis.Key = "advreg:advancements"
		}
	}
	if c.Source.Etcd != nil && c.Source.Etcd.Prefix == "" {
		c.Source.Etcd.Prefix = "advreg"
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 50051
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case SourceEmbedded:
	case SourceFile, SourceDatapack, SourceBundle:
		if c.Source.Path == "" {
			return fmt.Errorf("%w: source.path is required for %s sources", ErrInvalid, c.Source.Type)
		}
	case SourceRedis:
		if c.Source.Redis == nil || c.Source.Redis.Key == "" {
			return fmt.Errorf("%w: source.redis.key is required", ErrInvalid)
		}
	case SourceEtcd:
		if c.Source.Etcd == nil || len(c.Source.Etcd.Endpoints) == 0 {
			return fmt.Errorf("%w: source.etcd.endpoints is required", ErrInvalid)
		}
		if tls := c.Source.Etcd.TLS; tls != nil && tls.Enabled {
			if tls.CertFile == "" || tls.KeyFile == "" || tls.CAFile == "" {
				return fmt.Errorf("%w: source.etcd.tls needs cert_file, key_file and ca_file", ErrInvalid)
			}
		}
	default:
		return fmt.Errorf("%w: unknown source type %q", ErrInvalid, c.Source.Type)
	}

	if strings.TrimSuffix(c.Registry.Namespace, ":") != c.Source.DefaultNamespace {
		return fmt.Errorf("%w: registry.namespace %q does not match source.default_namespace %q",
			ErrInvalid, c.Registry.Namespace, c.Source.DefaultNamespace)
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("%w: serve.port %d out of range", ErrInvalid, c.Serve.Port)
	}
	if c.Serve.GracefulTimeout != "" {
		if _, err := time.ParseDuration(c.Serve.GracefulTimeout); err != nil {
			return fmt.Errorf("%w: serve.graceful_timeout: %v", ErrInvalid, err)
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// GetGracefulTimeout parses the graceful timeout, defaulting to 30s.
func (s Serve) GetGracefulTimeout() time.Duration {
	if s.GracefulTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(s.GracefulTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetDialTimeout parses the etcd dial timeout, defaulting to 5s.
func (e *EtcdSource) GetDialTimeout() time.Duration {
	if e == nil || e.DialTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(e.DialTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses a configuration file.
// If path is a directory, it looks for advreg.yaml or advreg.yml inside it.
// Relative source paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range []string{FileName, "advreg.yml"} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, fmt.Errorf("no %s found in %s", FileName, path)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	if cfg.Source.Path != "" && !filepath.IsAbs(cfg.Source.Path) {
		cfg.Source.Path = filepath.Join(filepath.Dir(configPath), cfg.Source.Path)
	}
	return cfg, nil
}

// LoadFromDir searches for advreg.yaml starting from dir and walking up
// to parent directories until found or the root is reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		cfg, err := Load(absDir)
		if err == nil {
			return cfg, nil
		}
		if errors.Is(err, ErrInvalid) {
			return nil, err
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("no %s found in %s or parent directories", FileName, dir)
		}
		absDir = parent
	}
}

// LoadFromCurrentDir loads advreg.yaml from the working directory or its parents.
func LoadFromCurrentDir() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadFromDir(cwd)
}

// NewLogger builds a slog.Logger writing to os.Stderr per the Log section.
func (l Log) NewLogger() *slog.Logger {
	return l.NewLoggerTo(os.Stderr)
}

// NewLoggerTo is like NewLogger but writes to w.
func (l Log) NewLoggerTo(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
