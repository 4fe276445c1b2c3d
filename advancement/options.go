package advancement

import (
	"log/slog"

	"github.com/zero-day-ai/advreg/registry"
)

// Option configures how a Registry is built.
type Option func(*config)

type config struct {
	namespace     string
	logger        *slog.Logger
	source        string
	strictParents bool
	treeCheck     bool
}

func defaultConfig() config {
	return config{
		namespace: registry.DefaultNamespace,
		logger:    slog.Default(),
	}
}

// WithNamespace sets the prefix that GetNamespaced and parent resolution strip.
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithLogger sets the logger used for integrity warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSource records the name of the data source in the snapshot metadata.
func WithSource(name string) Option {
	return func(c *config) {
		c.source = name
	}
}

// WithStrictParents makes a dangling parent a construction error.
func WithStrictParents() Option {
	return func(c *config) {
		c.strictParents = true
	}
}

// WithTreeCheck makes a parent cycle a construction error.
func WithTreeCheck() Option {
	return func(c *config) {
		c.treeCheck = true
	}
}
