package registry

import "sync"

// Lazy builds a value, typically a *Static table or something wrapping one,
// on first access.
//
// The loader runs at most once. Its result, value or error, is cached and
// returned to every subsequent caller. sync.Once guarantees that the build
// happens-before any reader observes the value.
type Lazy[T any] struct {
	once  sync.Once
	load  func() (T, error)
	value T
	err   error
}

// NewLazy returns a Lazy that constructs its value with load.
func NewLazy[T any](load func() (T, error)) *Lazy[T] {
	return &Lazy[T]{load: load}
}

// Get builds the value if needed and returns it.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.load()
	})
	return l.value, l.err
}

// MustGet is like Get but panics if construction failed.
func (l *Lazy[T]) MustGet() T {
	v, err := l.Get()
	if err != nil {
		panic(err)
	}
	return v
}
