package advreg

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zero-day-ai/advreg/advancement"
	"github.com/zero-day-ai/advreg/registry"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "ErrInvalidConfig", err: ErrInvalidConfig, want: "invalid configuration"},
		{name: "ErrNoSource", err: ErrNoSource, want: "no source"},
		{name: "ErrIntegrity", err: ErrIntegrity, want: "integrity violation"},
		{name: "ErrNotFound", err: ErrNotFound, want: "advancement not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("error message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "basic error",
			err:  NewBuildError("advreg.Open", registry.ErrDuplicateKey),
			want: "advreg: advreg.Open (build): registry: duplicate key",
		},
		{
			name: "error with context",
			err: NewSourceError("advreg.Open", errors.New("connection refused")).
				WithContext(map[string]any{"source": "redis:advancements"}),
			want: "advreg: advreg.Open (source): connection refused [context:",
		},
		{
			name: "error without underlying error",
			err:  &Error{Op: "Live.Watch", Kind: KindConfiguration},
			want: "advreg: Live.Watch: configuration",
		},
		{
			name: "not found",
			err:  NewNotFoundError("get", "story/missing"),
			want: "advreg: get (not_found): advancement not found [context: map[key:story/missing]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.Contains(got, tt.want) {
				t.Errorf("Error() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewSourceError("advreg.Open", underlying)
	if got := err.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	if got := (&Error{Op: "x", Kind: KindBuild}).Unwrap(); got != nil {
		t.Errorf("Unwrap() with nil Err = %v, want nil", got)
	}
}

func TestErrorIs(t *testing.T) {
	cycle := &advancement.CycleError{Path: []string{"a", "b"}}

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same kind",
			err:    NewBuildError("advreg.Open", registry.ErrEmptyKey),
			target: &Error{Kind: KindBuild},
			want:   true,
		},
		{
			name:   "different kind",
			err:    NewBuildError("advreg.Open", registry.ErrEmptyKey),
			target: &Error{Kind: KindSource},
			want:   false,
		},
		{
			name:   "kind and op",
			err:    NewSourceError("Live.Reload", ErrNoSource),
			target: &Error{Op: "advreg.Open", Kind: KindSource},
			want:   false,
		},
		{
			name:   "wrapped sentinel",
			err:    NewBuildError("advreg.Open", fmt.Errorf("entry 3: %w", registry.ErrDuplicateKey)),
			target: registry.ErrDuplicateKey,
			want:   true,
		},
		{
			name:   "integrity matches ErrIntegrity",
			err:    NewIntegrityError("advreg.Open", cycle),
			target: ErrIntegrity,
			want:   true,
		},
		{
			name:   "integrity matches cause",
			err:    NewIntegrityError("advreg.Open", cycle),
			target: advancement.ErrCycle,
			want:   true,
		},
		{
			name:   "nil target",
			err:    NewBuildError("advreg.Open", registry.ErrEmptyKey),
			target: nil,
			want:   false,
		},
		{
			name:   "wrapped in fmt.Errorf",
			err:    fmt.Errorf("startup: %w", NewNotFoundError("get", "story/root")),
			target: ErrNotFound,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorAs(t *testing.T) {
	err := fmt.Errorf("startup: %w", NewIntegrityError("advreg.Open", advancement.DanglingParent{ID: "a", Parent: "b"}))

	var advErr *Error
	if !errors.As(err, &advErr) {
		t.Fatal("errors.As() did not find *Error")
	}
	if advErr.Kind != KindIntegrity {
		t.Errorf("Kind = %q, want %q", advErr.Kind, KindIntegrity)
	}

	var dangling advancement.DanglingParent
	if !errors.As(err, &dangling) {
		t.Fatal("errors.As() did not find DanglingParent")
	}
	if dangling.Parent != "b" {
		t.Errorf("Parent = %q, want %q", dangling.Parent, "b")
	}
}

func TestErrorWithContext(t *testing.T) {
	base := NewSourceError("advreg.Open", ErrNoSource).WithContext(map[string]any{"source": "file:a.json"})
	merged := base.WithContext(map[string]any{"attempt": 2})

	if len(base.Context) != 1 {
		t.Errorf("original context modified: %v", base.Context)
	}
	if merged.Context["source"] != "file:a.json" || merged.Context["attempt"] != 2 {
		t.Errorf("merged context = %v", merged.Context)
	}
	if merged.Op != base.Op || merged.Kind != base.Kind || merged.Err != base.Err {
		t.Error("WithContext changed the error identity")
	}
}
