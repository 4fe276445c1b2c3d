package advreg

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/source"
)

// Live holds the current registry snapshot for a source that can change.
//
// Readers call Registry and get an immutable snapshot; rebuilds publish a new
// snapshot with a single atomic store. No snapshot is ever modified, so a
// reader holding an old snapshot keeps a consistent view.
//
// Thread-safety: All methods are safe for concurrent use.
type Live struct {
	src     source.Source
	opts    []Option
	logger  *slog.Logger
	current atomic.Pointer[advancement.Registry]

	// reload serializes rebuilds so snapshots are published in order.
	reload sync.Mutex

	hooksMu sync.RWMutex
	hooks   []func(old, cur *advancement.Registry)
}

// NewLive builds the first snapshot from src. The initial build is fatal:
// its error is returned as from Open.
func NewLive(ctx context.Context, src source.Source, opts ...Option) (*Live, error) {
	reg, err := Open(ctx, src, opts...)
	if err != nil {
		return nil, err
	}

	l := &Live{
		src:    src,
		opts:   opts,
		logger: newOpenConfig(opts).logger,
	}
	l.current.Store(reg)
	return l, nil
}

// Registry returns the current snapshot.
func (l *Live) Registry() *advancement.Registry {
	return l.current.Load()
}

// Source returns the source snapshots are built from.
func (l *Live) Source() source.Source {
	return l.src
}

// OnSwap registers fn to run after each successful reload, with the
// replaced and the new snapshot.
func (l *Live) OnSwap(fn func(old, cur *advancement.Registry)) {
	l.hooksMu.Lock()
	defer l.hooksMu.Unlock()
	l.hooks = append(l.hooks, fn)
}

// Reload rebuilds the registry from the source. On failure the previous
// snapshot stays current and the error is logged and returned.
func (l *Live) Reload(ctx context.Context) error {
	l.reload.Lock()
	defer l.reload.Unlock()

	reg, err := Open(ctx, l.src, l.opts...)
	if err != nil {
		l.logger.ErrorContext(ctx, "reload failed, keeping previous snapshot",
			"source", l.src.Name(),
			"snapshot", l.Registry().Snapshot().ID,
			"error", err)
		return err
	}

	old := l.current.Swap(reg)

	l.hooksMu.RLock()
	hooks := l.hooks
	l.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(old, reg)
	}
	return nil
}

// Follow reloads on every value received from changes. It returns nil when
// changes is closed and ctx.Err() when ctx is done. Reload failures do not
// stop the loop.
func (l *Live) Follow(ctx context.Context, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			_ = l.Reload(ctx)
		}
	}
}

// Watch subscribes to the source's change notifications and follows them.
// The source must implement source.Watcher.
func (l *Live) Watch(ctx context.Context) error {
	const op = "Live.Watch"

	w, ok := l.src.(source.Watcher)
	if !ok {
		return NewConfigurationError(op, fmt.Errorf("%w: source %s does not support watching", ErrInvalidConfig, l.src.Name()))
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return NewSourceError(op, err).WithContext(map[string]any{"source": l.src.Name()})
	}
	return l.Follow(ctx, changes)
}
