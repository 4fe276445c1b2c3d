package advancement

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zero-day-ai/advreg/registry"
)

// Snapshot describes one built registry.
type Snapshot struct {
	ID       string    `json:"id"`
	Source   string    `json:"source,omitempty"`
	BuiltAt  time.Time `json:"built_at"`
	Records  int       `json:"records"`
	Roots    int       `json:"roots"`
	Dangling int       `json:"dangling"`
}

// Registry is an immutable set of advancement records with tree indexes.
// It is safe for concurrent use.
type Registry struct {
	table    *registry.Static[*Record]
	children map[string][]*Record
	roots    []*Record
	dangling []DanglingParent
	snapshot Snapshot
}

// New validates records and builds a Registry.
//
// The input slice is copied; later changes to it do not affect the registry.
func New(records []Record, opts ...Option) (*Registry, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	entries := make([]registry.Entry[*Record], len(records))
	for i := range records {
		rec := records[i]
		entries[i] = registry.Entry[*Record]{Key: rec.ID, Value: &rec}
	}

	table, err := registry.Build(entries, registry.WithNamespace(cfg.namespace))
	if err != nil {
		return nil, err
	}

	r := &Registry{
		table:    table,
		children: make(map[string][]*Record),
	}

	table.Range(func(_ string, rec *Record) bool {
		if rec.IsRoot() {
			r.roots = append(r.roots, rec)
			return true
		}
		parent, ok := resolve(table, rec.Parent)
		if !ok {
			d := DanglingParent{ID: rec.ID, Parent: rec.Parent}
			r.dangling = append(r.dangling, d)
			cfg.logger.Warn("advancement parent does not resolve",
				"id", rec.ID,
				"parent", rec.Parent)
			return true
		}
		r.children[parent.ID] = append(r.children[parent.ID], rec)
		return true
	})

	if cfg.strictParents && len(r.dangling) > 0 {
		return nil, r.dangling[0]
	}
	if cfg.treeCheck {
		if err := r.CheckTree(); err != nil {
			return nil, err
		}
	}

	r.snapshot = Snapshot{
		ID:       uuid.NewString(),
		Source:   cfg.source,
		BuiltAt:  time.Now().UTC(),
		Records:  table.Len(),
		Roots:    len(r.roots),
		Dangling: len(r.dangling),
	}

	cfg.logger.Debug("advancement registry built",
		"snapshot", r.snapshot.ID,
		"source", cfg.source,
		"records", r.snapshot.Records,
		"roots", r.snapshot.Roots)

	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(records []Record, opts ...Option) *Registry {
	r, err := New(records, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the record stored under the literal id.
func (r *Registry) Get(id string) (*Record, bool) {
	return r.table.Get(id)
}

// GetNamespaced strips the namespace prefix from id, if present, then looks it up.
func (r *Registry) GetNamespaced(id string) (*Record, bool) {
	return r.table.GetNamespaced(id)
}

// Resolve finds id as a record reference: the literal id first, then the id
// with the namespace prefix stripped. Parent links resolve this way, so both
// "minecraft:story/root" and "story/root" tables link correctly.
func (r *Registry) Resolve(id string) (*Record, bool) {
	return resolve(r.table, id)
}

func resolve(table *registry.Static[*Record], id string) (*Record, bool) {
	if rec, ok := table.Get(id); ok {
		return rec, true
	}
	return table.GetNamespaced(id)
}

// Namespace returns the prefix stripped by GetNamespaced.
func (r *Registry) Namespace() string {
	return r.table.Namespace()
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return r.table.Len()
}

// IDs returns all ids in load order.
func (r *Registry) IDs() []string {
	return r.table.Keys()
}

// Records returns all records in load order.
func (r *Registry) Records() []*Record {
	out := make([]*Record, 0, r.table.Len())
	r.table.Range(func(_ string, rec *Record) bool {
		out = append(out, rec)
		return true
	})
	return out
}

// Snapshot returns metadata about this build.
func (r *Registry) Snapshot() Snapshot {
	return r.snapshot
}

// Parent resolves rec's parent. It returns false for roots and dangling parents.
func (r *Registry) Parent(rec *Record) (*Record, bool) {
	if rec == nil || rec.IsRoot() {
		return nil, false
	}
	return r.Resolve(rec.Parent)
}

// Children returns the direct children of id in load order.
func (r *Registry) Children(id string) []*Record {
	rec, ok := r.Resolve(id)
	if !ok {
		return nil
	}
	kids := r.children[rec.ID]
	out := make([]*Record, len(kids))
	copy(out, kids)
	return out
}

// Roots returns the records without a parent in load order.
func (r *Registry) Roots() []*Record {
	out := make([]*Record, len(r.roots))
	copy(out, r.roots)
	return out
}

// Ancestors returns the parent chain of id, nearest first.
// The chain stops at a root or at a dangling parent. A loop yields a *CycleError.
func (r *Registry) Ancestors(id string) ([]*Record, error) {
	rec, ok := r.Resolve(id)
	if !ok {
		return nil, nil
	}
	seen := map[string]int{rec.ID: 0}
	order := []string{rec.ID}
	var chain []*Record
	for {
		parent, ok := r.Parent(rec)
		if !ok {
			return chain, nil
		}
		if at, loop := seen[parent.ID]; loop {
			return chain, &CycleError{Path: order[at:]}
		}
		seen[parent.ID] = len(order)
		order = append(order, parent.ID)
		chain = append(chain, parent)
		rec = parent
	}
}

// Walk visits the tree below id depth-first in pre-order, starting with id itself
// at depth 0. Returning false from fn skips the record's subtree.
func (r *Registry) Walk(id string, fn func(rec *Record, depth int) bool) {
	rec, ok := r.Resolve(id)
	if !ok {
		return
	}
	visited := make(map[string]bool)
	var visit func(rec *Record, depth int)
	visit = func(rec *Record, depth int) {
		if visited[rec.ID] {
			return
		}
		visited[rec.ID] = true
		if !fn(rec, depth) {
			return
		}
		for _, child := range r.children[rec.ID] {
			visit(child, depth+1)
		}
	}
	visit(rec, 0)
}

// Report is the result of an integrity pass.
type Report struct {
	Dangling []DanglingParent `json:"dangling,omitempty"`
	Cycles   [][]string       `json:"cycles,omitempty"`
}

// OK reports whether no integrity problem was found.
func (rep Report) OK() bool {
	return len(rep.Dangling) == 0 && len(rep.Cycles) == 0
}

// Validate checks parent links. It never modifies the registry.
func (r *Registry) Validate() Report {
	rep := Report{Cycles: r.cycles()}
	if len(r.dangling) > 0 {
		rep.Dangling = make([]DanglingParent, len(r.dangling))
		copy(rep.Dangling, r.dangling)
	}
	return rep
}

// CheckTree returns a *CycleError for the first parent cycle, if any.
// Consumers that traverse trees should call it once after loading.
func (r *Registry) CheckTree() error {
	if cycles := r.cycles(); len(cycles) > 0 {
		return &CycleError{Path: cycles[0]}
	}
	return nil
}

// cycles finds every parent loop. Each loop is rotated to start at its smallest id
// and the list is sorted, so results are deterministic.
func (r *Registry) cycles() [][]string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, r.table.Len())
	var found [][]string

	r.table.Range(func(_ string, start *Record) bool {
		if state[start.ID] != unvisited {
			return true
		}
		var path []*Record
		rec := start
		for rec != nil && state[rec.ID] == unvisited {
			state[rec.ID] = inProgress
			path = append(path, rec)
			parent, ok := r.Parent(rec)
			if !ok {
				rec = nil
				break
			}
			rec = parent
		}
		if rec != nil && state[rec.ID] == inProgress {
			// rec is on the current path: the tail from rec forms a loop
			var loop []string
			for i := len(path) - 1; i >= 0; i-- {
				loop = append(loop, path[i].ID)
				if path[i].ID == rec.ID {
					break
				}
			}
			found = append(found, rotate(reverse(loop)))
		}
		for _, p := range path {
			state[p.ID] = done
		}
		return true
	})

	sort.Slice(found, func(i, j int) bool { return found[i][0] < found[j][0] })
	return found
}

func reverse(ids []string) []string {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

func rotate(ids []string) []string {
	lo := 0
	for i, id := range ids {
		if id < ids[lo] {
			lo = i
		}
	}
	out := make([]string, 0, len(ids))
	out = append(out, ids[lo:]...)
	return append(out, ids[:lo]...)
}

// String implements fmt.Stringer for log output.
func (r *Registry) String() string {
	return fmt.Sprintf("advancement.Registry{snapshot=%s records=%d roots=%d}", r.snapshot.ID, r.snapshot.Records, r.snapshot.Roots)
}

// LogValue implements slog.LogValuer.
func (r *Registry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("snapshot", r.snapshot.ID),
		slog.String("source", r.snapshot.Source),
		slog.Int("records", r.snapshot.Records),
		slog.Int("roots", r.snapshot.Roots),
	)
}
