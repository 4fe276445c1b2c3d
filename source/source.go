package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/config"
)

// Source loads a complete set of advancement records.
type Source interface {
	// Name identifies the source in logs and snapshot metadata.
	Name() string

	// Load returns every record. It is called once per registry build.
	Load(ctx context.Context) ([]advancement.Record, error)
}

// Watcher is a Source that can report content changes.
//
// The returned channel receives a value after each change and is closed when
// ctx is done or the watch fails.
type Watcher interface {
	Source
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Format is a document encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatBundle Format = "bundle"
)

// FormatFromPath infers the format from a file extension. Unknown extensions
// are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".advb", ".pb", ".bundle":
		return FormatBundle
	default:
		return FormatJSON
	}
}

// document is the top-level shape of JSON and YAML data files.
// A bare list of records is also accepted.
type document struct {
	Advancements []advancement.Record `json:"advancements" yaml:"advancements"`
}

// Decode parses records from data in the given format.
func Decode(data []byte, format Format) ([]advancement.Record, error) {
	switch format {
	case FormatBundle:
		return DecodeBundle(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON, "":
		return decodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func decodeJSON(data []byte) ([]advancement.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []advancement.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode JSON records: %w", err)
		}
		return records, nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON document: %w", err)
	}
	return doc.Advancements, nil
}

func decodeYAML(data []byte) ([]advancement.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to decode YAML document: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var records []advancement.Record
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode YAML records: %w", err)
		}
		return records, nil
	}
	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode YAML document: %w", err)
	}
	return doc.Advancements, nil
}

// EncodeJSON writes records as an indented {"advancements": [...]} document.
func EncodeJSON(w io.Writer, records []advancement.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Advancements: records})
}

type readerSource struct {
	name   string
	r      io.Reader
	format Format
}

// Reader returns a Source that decodes r once. A second Load fails.
func Reader(name string, r io.Reader, format Format) Source {
	return &readerSource{name: name, r: r, format: format}
}

func (s *readerSource) Name() string { return s.name }

func (s *readerSource) Load(ctx context.Context) ([]advancement.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.r == nil {
		return nil, fmt.Errorf("source %s: reader already consumed", s.name)
	}
	data, err := io.ReadAll(s.r)
	s.r = nil
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", s.name, err)
	}
	records, err := Decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", s.name, err)
	}
	return records, nil
}

type fileSource struct {
	path   string
	format Format
}

// File returns a Source reading a JSON, YAML or bundle file. The format is
// inferred from the extension.
func File(path string) Source {
	return &fileSource{path: path, format: FormatFromPath(path)}
}

func (s *fileSource) Name() string { return "file:" + s.path }

func (s *fileSource) Load(ctx context.Context) ([]advancement.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	records, err := Decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return records, nil
}

type multiSource struct {
	sources []Source
}

// Multi concatenates the records of several sources in order.
// Duplicate ids across sources are rejected when the registry is built.
func Multi(sources ...Source) Source {
	return &multiSource{sources: sources}
}

func (m *multiSource) Name() string {
	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *multiSource) Load(ctx context.Context) ([]advancement.Record, error) {
	var all []advancement.Record
	for _, s := range m.sources {
		records, err := s.Load(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// FromConfig builds the Source described by cfg. Sources holding connections
// implement io.Closer and should be closed by the caller.
func FromConfig(ctx context.Context, cfg config.Source) (Source, error) {
	switch cfg.Type {
	case config.SourceEmbedded, "":
		return Embedded(), nil
	case config.SourceFile:
		return File(cfg.Path), nil
	case config.SourceBundle:
		return Bundle(cfg.Path), nil
	case config.SourceDatapack:
		return Datapack(os.DirFS(cfg.Path), cfg.DefaultNamespace), nil
	case config.SourceRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("%w: redis source needs a redis section", config.ErrInvalid)
		}
		client, err := DialRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.Redis.Key), nil
	case config.SourceEtcd:
		return NewEtcd(cfg.Etcd)
	default:
		return nil, fmt.Errorf("%w: unknown source type %q", config.ErrInvalid, cfg.Type)
	}
}
