package advreg

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for registry construction.
var (
	// ErrInvalidConfig indicates the provided configuration is invalid or incomplete.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoSource indicates that no record source was supplied.
	ErrNoSource = errors.New("no source")

	// ErrIntegrity indicates the records violate a tree invariant (strict
	// parents or a parent cycle under tree checking).
	ErrIntegrity = errors.New("integrity violation")

	// ErrNotFound indicates a lookup miss surfaced as an error, for example by the CLI.
	ErrNotFound = errors.New("advancement not found")
)

// Error kinds categorize errors by their type.
const (
	// KindSource represents failures to load records from a source.
	KindSource = "source"

	// KindBuild represents table construction failures (empty or duplicate keys).
	KindBuild = "build"

	// KindIntegrity represents tree invariant violations.
	KindIntegrity = "integrity"

	// KindConfiguration represents errors related to configuration.
	KindConfiguration = "configuration"

	// KindNotFound represents errors where a record was not found.
	KindNotFound = "not_found"
)

// Error is a structured error that wraps underlying errors with the
// operation that failed and the category of error.
//
// Example usage:
//
//	err := &Error{
//		Op:   "advreg.Open",
//		Kind: KindBuild,
//		Err:  registry.ErrDuplicateKey,
//	}
type Error struct {
	// Op is the operation that failed (e.g., "advreg.Open", "Live.Reload").
	Op string

	// Kind categorizes the error (e.g., KindSource, KindBuild).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional),
	// such as the source name.
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("advreg: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("advreg: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("advreg: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind (and Op when the target sets one), and
// otherwise delegates to the wrapped error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of e with ctx merged into its context.
//
// Example:
//
//	err = err.WithContext(map[string]any{
//		"source": "redis:advreg:advancements",
//	})
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	merged := make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	newErr.Context = merged
	return &newErr
}

// NewSourceError creates a new Error with KindSource.
func NewSourceError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindSource, Err: err}
}

// NewBuildError creates a new Error with KindBuild.
func NewBuildError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindBuild, Err: err}
}

// NewIntegrityError creates a new Error with KindIntegrity. The result
// matches ErrIntegrity as well as err.
func NewIntegrityError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindIntegrity, Err: fmt.Errorf("%w: %w", ErrIntegrity, err)}
}

// NewConfigurationError creates a new Error with KindConfiguration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindConfiguration, Err: err}
}

// NewNotFoundError creates a new Error with KindNotFound for key.
func NewNotFoundError(op, key string) *Error {
	return &Error{
		Op:      op,
		Kind:    KindNotFound,
		Err:     ErrNotFound,
		Context: map[string]any{"key": key},
	}
}

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements to ensure
// cleanup errors are not silently ignored.
//
// If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer advreg.CloseWithLog(src, logger, "etcd source")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
