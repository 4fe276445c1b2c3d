package advancement

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle indicates that parent links form a loop.
	ErrCycle = errors.New("advancement: parent cycle")

	// ErrDanglingParent indicates a parent id that does not resolve to a record.
	ErrDanglingParent = errors.New("advancement: dangling parent")
)

// CycleError reports the ids forming a parent cycle, in parent order.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCycle.Error()
	}
	loop := make([]string, 0, len(e.Path)+1)
	loop = append(loop, e.Path...)
	loop = append(loop, e.Path[0])
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(loop, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// DanglingParent names a record whose parent is missing.
type DanglingParent struct {
	ID     string `json:"id"`
	Parent string `json:"parent"`
}

func (d DanglingParent) Error() string {
	return fmt.Sprintf("%v: %q references %q", ErrDanglingParent, d.ID, d.Parent)
}

func (d DanglingParent) Unwrap() error {
	return ErrDanglingParent
}
