package registry

import "strings"

// Entry is one key/value pair supplied to Build.
type Entry[V any] struct {
	Key   string
	Value V
}

// Static is an immutable table mapping string keys to values.
//
// A Static is only obtainable from Build or MustBuild and is read-only afterwards.
// All methods are safe for concurrent use.
type Static[V any] struct {
	index     map[string]int
	keys      []string
	values    []V
	namespace string
	normalize func(string) string
}

// Build constructs a table from entries.
//
// Entries are validated in order. The first empty key or duplicate key aborts
// construction with a *BuildError and a nil table. Building twice from the same
// input yields two tables that answer every query identically.
func Build[V any](entries []Entry[V], opts ...Option) (*Static[V], error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	s := &Static[V]{
		index:     make(map[string]int, len(entries)),
		keys:      make([]string, 0, len(entries)),
		values:    make([]V, 0, len(entries)),
		namespace: o.namespace,
		normalize: o.normalizer,
	}

	for i, e := range entries {
		if e.Key == "" {
			return nil, &BuildError{Index: i, Key: e.Key, FirstIndex: -1, Err: ErrEmptyKey}
		}
		k := s.norm(e.Key)
		if k == "" {
			return nil, &BuildError{Index: i, Key: e.Key, FirstIndex: -1, Err: ErrEmptyKey}
		}
		if first, exists := s.index[k]; exists {
			return nil, &BuildError{Index: i, Key: e.Key, FirstIndex: first, Err: ErrDuplicateKey}
		}
		s.index[k] = len(s.values)
		s.keys = append(s.keys, k)
		s.values = append(s.values, e.Value)
	}

	return s, nil
}

// MustBuild is like Build but panics on error. Useful for package-level tables.
func MustBuild[V any](entries []Entry[V], opts ...Option) *Static[V] {
	s, err := Build(entries, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns the value stored under the literal key.
func (s *Static[V]) Get(key string) (V, bool) {
	var zero V
	if s == nil {
		return zero, false
	}
	i, ok := s.index[s.norm(key)]
	if !ok {
		return zero, false
	}
	return s.values[i], true
}

// GetNamespaced strips the configured namespace prefix from key, if present,
// and then behaves exactly like Get.
func (s *Static[V]) GetNamespaced(key string) (V, bool) {
	if s == nil {
		var zero V
		return zero, false
	}
	return s.Get(s.StripNamespace(key))
}

// StripNamespace removes the configured namespace prefix from key, if present.
func (s *Static[V]) StripNamespace(key string) string {
	if s == nil || s.namespace == "" {
		return key
	}
	return strings.TrimPrefix(key, s.namespace)
}

// Contains reports whether key is present under its literal form.
func (s *Static[V]) Contains(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Namespace returns the prefix stripped by GetNamespaced.
func (s *Static[V]) Namespace() string {
	if s == nil {
		return ""
	}
	return s.namespace
}

// Len returns the number of entries.
func (s *Static[V]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Keys returns the normalized keys in insertion order.
// The returned slice is a copy.
func (s *Static[V]) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (s *Static[V]) Range(fn func(key string, value V) bool) {
	if s == nil {
		return
	}
	for i, k := range s.keys {
		if !fn(k, s.values[i]) {
			return
		}
	}
}

func (s *Static[V]) norm(key string) string {
	if s.normalize != nil {
		return s.normalize(key)
	}
	return key
}
