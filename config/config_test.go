package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, SourceEmbedded, cfg.Source.Type)
	assert.Equal(t, "minecraft", cfg.Source.DefaultNamespace)
	assert.Equal(t, "minecraft:", cfg.Registry.Namespace)
	assert.Equal(t, 50051, cfg.Serve.Port)
	assert.Equal(t, 30*time.Second, cfg.Serve.GetGracefulTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
source:
  type: redis
  redis:
    url: redis://cache:6379/2
registry:
  strict_parents: true
serve:
  port: 6000
  graceful_timeout: 5s
log:
  level: debug
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, SourceRedis, cfg.Source.Type)
	assert.Equal(t, "redis://cache:6379/2", cfg.Source.Redis.URL)
	assert.Equal(t, "advreg:advancements", cfg.Source.Redis.Key)
	assert.True(t, cfg.Registry.StrictParents)
	assert.Equal(t, 6000, cfg.Serve.Port)
	assert.Equal(t, 5*time.Second, cfg.Serve.GetGracefulTimeout())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown source", yaml: "source: {type: ftp}"},
		{name: "file without path", yaml: "source: {type: file}"},
		{name: "etcd without endpoints", yaml: "source: {type: etcd, etcd: {prefix: x}}"},
		{name: "etcd tls incomplete", yaml: "source: {type: etcd, etcd: {endpoints: [a], tls: {enabled: true}}}"},
		{name: "namespace mismatch", yaml: "source: {default_namespace: custom}\nregistry: {namespace: \"minecraft:\"}"},
		{name: "bad port", yaml: "serve: {port: 70000}"},
		{name: "bad timeout", yaml: "serve: {graceful_timeout: soon}"},
		{name: "bad level", yaml: "log: {level: loud}"},
		{name: "bad format", yaml: "log: {format: xml}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse([]byte("source: [unclosed"))
	assert.Error(t, err)
}

func TestNamespaceDefaults(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		source   string
		registry string
	}{
		{name: "neither set", yaml: "log: {level: info}", source: "minecraft", registry: "minecraft:"},
		{name: "source set", yaml: "source: {default_namespace: custom}", source: "custom", registry: "custom:"},
		{name: "registry set", yaml: "registry: {namespace: \"custom:\"}", source: "custom", registry: "custom:"},
		{name: "registry without colon", yaml: "registry: {namespace: custom}", source: "custom", registry: "custom"},
		{name: "both set", yaml: "source: {default_namespace: custom}\nregistry: {namespace: \"custom:\"}", source: "custom", registry: "custom:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.source, cfg.Source.DefaultNamespace)
			assert.Equal(t, tt.registry, cfg.Registry.Namespace)
		})
	}
}

func TestEtcdDefaults(t *testing.T) {
	cfg, err := Parse([]byte("source: {type: etcd, etcd: {endpoints: [localhost:2379], dial_timeout: 2s}}"))
	require.NoError(t, err)
	assert.Equal(t, "advreg", cfg.Source.Etcd.Prefix)
	assert.Equal(t, 2*time.Second, cfg.Source.Etcd.GetDialTimeout())

	var nilEtcd *EtcdSource
	assert.Equal(t, 5*time.Second, nilEtcd.GetDialTimeout())
}

func TestLoad_DirectoryAndRelativePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "source:\n  type: file\n  path: data/advancements.json\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "advancements.json"), cfg.Source.Path)

	_, err = Load(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	empty := t.TempDir()
	_, err = Load(empty)
	assert.Error(t, err)
}

func TestLoadFromDir_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "advreg.yml", "serve:\n  port: 7000\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := LoadFromDir(nested)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Serve.Port)
}

func TestLoadFromDir_InvalidStops(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "log:\n  level: loud\n")

	_, err := LoadFromDir(root)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)

	assert.NotNil(t, Log{Level: "debug", Format: "json"}.NewLogger())
}
