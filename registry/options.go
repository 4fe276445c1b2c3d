package registry

import "strings"

// DefaultNamespace is the prefix stripped by GetNamespaced unless overridden.
const DefaultNamespace = "minecraft:"

// Option configures a Static table at build time.
type Option func(*options)

type options struct {
	namespace  string
	normalizer func(string) string
}

func defaultOptions() options {
	return options{namespace: DefaultNamespace}
}

// WithNamespace sets the prefix that GetNamespaced strips before lookup.
// A trailing ':' is appended when missing. An empty namespace disables stripping,
// making GetNamespaced equivalent to Get.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" && !strings.HasSuffix(ns, ":") {
			ns += ":"
		}
		o.namespace = ns
	}
}

// WithNormalizer canonicalizes keys at build time and on every lookup,
// for example strings.ToLower for case-insensitive tables.
// The normalizer must be deterministic and safe for concurrent use.
func WithNormalizer(fn func(string) string) Option {
	return func(o *options) {
		o.normalizer = fn
	}
}
