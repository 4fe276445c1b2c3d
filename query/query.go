package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/zero-day-ai/advreg/advancement"
)

// ErrNotBool is returned when an expression does not evaluate to a bool.
var ErrNotBool = errors.New("query: expression must evaluate to bool")

// Option configures Compile.
type Option func(*options)

type options struct {
	defaultNamespace string
}

// WithDefaultNamespace sets the namespace reported for bare ids. Default: minecraft.
func WithDefaultNamespace(ns string) Option {
	return func(o *options) {
		o.defaultNamespace = strings.TrimSuffix(ns, ":")
	}
}

// Filter is a compiled expression. It is safe for concurrent use.
type Filter struct {
	expr             string
	program          cel.Program
	defaultNamespace string
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("parent", cel.StringType),
		cel.Variable("namespace", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("telemetry", cel.BoolType),
		cel.Variable("has_display", cel.BoolType),
		cel.Variable("frame", cel.StringType),
		cel.Variable("hidden", cel.BoolType),
		cel.Variable("title", cel.StringType),
	)
}

// Compile parses and type-checks expr.
func Compile(expr string, opts ...Option) (*Filter, error) {
	o := options{defaultNamespace: "minecraft"}
	for _, opt := range opts {
		opt(&o)
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("query: failed to create environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("query: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBool, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("query: failed to build program: %w", err)
	}

	return &Filter{
		expr:             expr,
		program:          program,
		defaultNamespace: o.defaultNamespace,
	}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the filter against rec.
func (f *Filter) Match(rec *advancement.Record) (bool, error) {
	out, _, err := f.program.Eval(f.vars(rec))
	if err != nil {
		return false, fmt.Errorf("query: evaluating %s: %w", rec.ID, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w, got %T", ErrNotBool, out.Value())
	}
	return b, nil
}

// Select returns the records of reg that match, in load order.
func (f *Filter) Select(reg *advancement.Registry) ([]*advancement.Record, error) {
	var out []*advancement.Record
	for _, rec := range reg.Records() {
		ok, err := f.Match(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *Filter) vars(rec *advancement.Record) map[string]any {
	ns := rec.Namespace()
	if ns == "" {
		ns = f.defaultNamespace
	}

	vars := map[string]any{
		"id":          rec.ID,
		"parent":      rec.Parent,
		"namespace":   ns,
		"category":    advancement.Category(rec.ID),
		"name":        advancement.Name(rec.ID),
		"telemetry":   rec.SendsTelemetry,
		"has_display": rec.Display != nil,
		"frame":       "",
		"hidden":      false,
		"title":       "",
	}
	if d := rec.Display; d != nil {
		frame := d.Frame
		if frame == "" {
			frame = advancement.FrameTask
		}
		vars["frame"] = string(frame)
		vars["hidden"] = d.Hidden
		vars["title"] = d.Title.String()
	}
	return vars
}
