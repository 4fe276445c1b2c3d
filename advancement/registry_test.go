package advancement

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/advreg/registry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func storyRecords() []Record {
	return []Record{
		{
			ID:             "story/root",
			SendsTelemetry: true,
			Display: &Display{
				Title:       Text{Translate: "advancements.story.root.title"},
				Description: Text{Translate: "advancements.story.root.description"},
				Icon:        "minecraft:grass_block",
				Frame:       FrameTask,
				Background:  "minecraft:textures/gui/advancements/backgrounds/stone.png",
			},
		},
		{ID: "story/mine_stone", Parent: "story/root", SendsTelemetry: true},
		{ID: "story/upgrade_tools", Parent: "minecraft:story/mine_stone"},
		{ID: "story/smelt_iron", Parent: "story/upgrade_tools"},
		{ID: "nether/root"},
		{ID: "recipes/root"},
		{ID: "recipes/misc/iron_nugget", Parent: "recipes/root"},
	}
}

func TestNew_Scenario(t *testing.T) {
	reg, err := New([]Record{
		{ID: "story/root"},
		{ID: "story/mine_stone", Parent: "story/root"},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	root, ok := reg.Get("story/root")
	require.True(t, ok)
	assert.Empty(t, root.Parent)

	child, ok := reg.Get("story/mine_stone")
	require.True(t, ok)
	back, ok := reg.Get(child.Parent)
	require.True(t, ok)
	assert.Same(t, root, back)

	_, ok = reg.Get("nonexistent")
	assert.False(t, ok)
}

func TestNew_Totality(t *testing.T) {
	records := storyRecords()
	reg := MustNew(records, WithLogger(quietLogger()))
	require.Equal(t, len(records), reg.Len())

	for _, want := range records {
		got, ok := reg.Get(want.ID)
		require.True(t, ok, want.ID)
		assert.Equal(t, want, *got)
	}
}

func TestNew_CopiesInput(t *testing.T) {
	records := storyRecords()
	reg := MustNew(records, WithLogger(quietLogger()))

	records[1].Parent = "changed"
	got, _ := reg.Get("story/mine_stone")
	assert.Equal(t, "story/root", got.Parent)
}

func TestNew_ConstructionErrors(t *testing.T) {
	_, err := New([]Record{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, registry.ErrDuplicateKey)

	_, err = New([]Record{{ID: ""}})
	assert.ErrorIs(t, err, registry.ErrEmptyKey)
}

func TestNew_DanglingParentWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	reg, err := New([]Record{
		{ID: "story/root"},
		{ID: "story/orphan", Parent: "story/missing"},
	}, WithLogger(logger))
	require.NoError(t, err)

	rec, ok := reg.Get("story/orphan")
	require.True(t, ok)
	_, ok = reg.Parent(rec)
	assert.False(t, ok)

	rep := reg.Validate()
	assert.False(t, rep.OK())
	assert.Equal(t, []DanglingParent{{ID: "story/orphan", Parent: "story/missing"}}, rep.Dangling)
	assert.Contains(t, buf.String(), "story/missing")
	assert.Equal(t, 1, reg.Snapshot().Dangling)
}

func TestNew_StrictParents(t *testing.T) {
	_, err := New([]Record{{ID: "a", Parent: "b"}}, WithStrictParents(), WithLogger(quietLogger()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDanglingParent))

	var d DanglingParent
	require.True(t, errors.As(err, &d))
	assert.Equal(t, "b", d.Parent)
}

func TestQualifiedIDs(t *testing.T) {
	records := []Record{
		{ID: "minecraft:story/root"},
		{ID: "minecraft:story/mine_stone", Parent: "minecraft:story/root"},
		{ID: "minecraft:story/upgrade_tools", Parent: "story/mine_stone"},
	}

	reg, err := New(records, WithStrictParents(), WithTreeCheck(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Empty(t, reg.Validate().Dangling)

	mine, ok := reg.Get("minecraft:story/mine_stone")
	require.True(t, ok)
	parent, ok := reg.Parent(mine)
	require.True(t, ok)
	assert.Equal(t, "minecraft:story/root", parent.ID)

	literal, ok := reg.Get(mine.Parent)
	require.True(t, ok)
	assert.Same(t, parent, literal)

	roots := reg.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "minecraft:story/root", roots[0].ID)

	kids := reg.Children("minecraft:story/root")
	require.Len(t, kids, 1)
	assert.Equal(t, "minecraft:story/mine_stone", kids[0].ID)

	var walked []string
	reg.Walk("minecraft:story/root", func(rec *Record, depth int) bool {
		walked = append(walked, rec.ID)
		return true
	})
	assert.Equal(t, []string{
		"minecraft:story/root",
		"minecraft:story/mine_stone",
		"minecraft:story/upgrade_tools",
	}, walked)

	chain, err := reg.Ancestors("minecraft:story/upgrade_tools")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "minecraft:story/mine_stone", chain[0].ID)
	assert.Equal(t, "minecraft:story/root", chain[1].ID)
}

func TestResolve(t *testing.T) {
	reg, err := New([]Record{
		{ID: "story/root"},
		{ID: "minecraft:nether/root"},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	tests := []struct {
		ref    string
		wantID string
	}{
		{ref: "story/root", wantID: "story/root"},
		{ref: "minecraft:story/root", wantID: "story/root"},
		{ref: "minecraft:nether/root", wantID: "minecraft:nether/root"},
		{ref: "nether/root"},
		{ref: "mymod:story/root"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			rec, ok := reg.Resolve(tt.ref)
			if tt.wantID == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantID, rec.ID)
		})
	}
}

func TestGetNamespaced(t *testing.T) {
	reg := MustNew(storyRecords(), WithLogger(quietLogger()))

	for _, id := range reg.IDs() {
		want, _ := reg.Get(id)
		got, ok := reg.GetNamespaced("minecraft:" + id)
		require.True(t, ok, id)
		assert.Same(t, want, got)
	}

	_, ok := reg.GetNamespaced("minecraft:missing")
	assert.False(t, ok)
}

func TestWithNamespace(t *testing.T) {
	reg := MustNew([]Record{{ID: "quests/root"}, {ID: "quests/first", Parent: "mypack:quests/root"}},
		WithNamespace("mypack"), WithLogger(quietLogger()))

	_, ok := reg.GetNamespaced("mypack:quests/root")
	assert.True(t, ok)
	_, ok = reg.GetNamespaced("minecraft:quests/root")
	assert.False(t, ok)
	assert.Len(t, reg.Children("quests/root"), 1)
}

func TestTreeQueries(t *testing.T) {
	reg := MustNew(storyRecords(), WithLogger(quietLogger()))

	roots := reg.Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, "story/root", roots[0].ID)
	assert.Equal(t, "nether/root", roots[1].ID)
	assert.Equal(t, "recipes/root", roots[2].ID)

	kids := reg.Children("minecraft:story/root")
	require.Len(t, kids, 1)
	assert.Equal(t, "story/mine_stone", kids[0].ID)

	// parent written with the namespace prefix still links
	kids = reg.Children("story/mine_stone")
	require.Len(t, kids, 1)
	assert.Equal(t, "story/upgrade_tools", kids[0].ID)

	assert.Nil(t, reg.Children("missing"))
	assert.Empty(t, reg.Children("story/smelt_iron"))

	chain, err := reg.Ancestors("story/smelt_iron")
	require.NoError(t, err)
	var ids []string
	for _, r := range chain {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"story/upgrade_tools", "story/mine_stone", "story/root"}, ids)

	chain, err = reg.Ancestors("story/root")
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestWalk(t *testing.T) {
	reg := MustNew(storyRecords(), WithLogger(quietLogger()))

	type visit struct {
		id    string
		depth int
	}
	var got []visit
	reg.Walk("story/root", func(rec *Record, depth int) bool {
		got = append(got, visit{rec.ID, depth})
		return true
	})
	assert.Equal(t, []visit{
		{"story/root", 0},
		{"story/mine_stone", 1},
		{"story/upgrade_tools", 2},
		{"story/smelt_iron", 3},
	}, got)

	got = nil
	reg.Walk("story/root", func(rec *Record, depth int) bool {
		got = append(got, visit{rec.ID, depth})
		return depth < 1
	})
	assert.Len(t, got, 2)
}

func TestCycles(t *testing.T) {
	records := []Record{
		{ID: "root"},
		{ID: "c", Parent: "a"},
		{ID: "a", Parent: "b"},
		{ID: "b", Parent: "c"},
		{ID: "tail", Parent: "a"},
		{ID: "self", Parent: "self"},
	}
	reg, err := New(records, WithLogger(quietLogger()))
	require.NoError(t, err, "cycles are not fatal for plain lookups")

	rep := reg.Validate()
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"self"}}, rep.Cycles)

	err = reg.CheckTree()
	var ce *CycleError
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, "advancement: parent cycle: a -> b -> c -> a", err.Error())

	_, err = reg.Ancestors("tail")
	assert.ErrorIs(t, err, ErrCycle)

	var n int
	reg.Walk("a", func(*Record, int) bool { n++; return true })
	assert.Equal(t, 4, n, "walk terminates on loops")

	_, err = New(records, WithTreeCheck(), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrCycle)
}

func TestSnapshot(t *testing.T) {
	a := MustNew(storyRecords(), WithSource("test"), WithLogger(quietLogger()))
	b := MustNew(storyRecords(), WithSource("test"), WithLogger(quietLogger()))

	sa := a.Snapshot()
	assert.NotEmpty(t, sa.ID)
	assert.NotEqual(t, sa.ID, b.Snapshot().ID)
	assert.Equal(t, "test", sa.Source)
	assert.Equal(t, 7, sa.Records)
	assert.Equal(t, 3, sa.Roots)
	assert.False(t, sa.BuiltAt.IsZero())
	assert.Contains(t, a.String(), sa.ID)

	// separately built registries answer identically
	for _, id := range append(a.IDs(), "missing") {
		ra, oka := a.Get(id)
		rb, okb := b.Get(id)
		assert.Equal(t, oka, okb)
		if oka {
			assert.Equal(t, *ra, *rb)
		}
	}
}

func TestConcurrentLookups(t *testing.T) {
	reg := MustNew(storyRecords(), WithLogger(quietLogger()))
	want, _ := reg.Get("story/smelt_iron")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				got, ok := reg.GetNamespaced("minecraft:story/smelt_iron")
				if !ok || got != want {
					t.Error("lookup drifted")
					return
				}
				if _, err := reg.Ancestors(got.ID); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
