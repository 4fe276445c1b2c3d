package registry

import (
	"errors"
	"fmt"
)

// Construction errors. Lookups never return errors.
var (
	// ErrEmptyKey indicates an entry was supplied with an empty key.
	ErrEmptyKey = errors.New("registry: empty key")

	// ErrDuplicateKey indicates two entries share the same key.
	ErrDuplicateKey = errors.New("registry: duplicate key")
)

// BuildError reports the entry that made construction fail.
//
// It wraps one of the sentinel errors so callers can use errors.Is:
//
//	if errors.Is(err, registry.ErrDuplicateKey) { ... }
type BuildError struct {
	// Index is the position of the offending entry in the input sequence.
	Index int

	// Key is the offending key as supplied (before normalization).
	Key string

	// FirstIndex is the position of the earlier entry for duplicate keys, -1 otherwise.
	FirstIndex int

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.FirstIndex >= 0 {
		return fmt.Sprintf("%v: %q at entry %d (first defined at entry %d)", e.Err, e.Key, e.Index, e.FirstIndex)
	}
	return fmt.Sprintf("%v at entry %d", e.Err, e.Index)
}

// Unwrap returns the sentinel error.
func (e *BuildError) Unwrap() error {
	return e.Err
}
