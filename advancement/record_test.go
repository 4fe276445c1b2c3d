package advancement

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestText_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Text
		out  string
	}{
		{
			name: "plain string",
			in:   `"Minecraft"`,
			want: Text{Text: "Minecraft"},
			out:  `"Minecraft"`,
		},
		{
			name: "translate object",
			in:   `{"translate":"advancements.story.root.title"}`,
			want: Text{Translate: "advancements.story.root.title"},
			out:  `{"translate":"advancements.story.root.title"}`,
		},
		{
			name: "styled text",
			in:   `{"text":"Hot Stuff","color":"gold","bold":true}`,
			want: Text{Text: "Hot Stuff", Color: "gold", Bold: true},
			out:  `{"text":"Hot Stuff","color":"gold","bold":true}`,
		},
		{
			name: "null",
			in:   `null`,
			want: Text{},
			out:  `""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)

			out, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.out, string(out))
		})
	}

	var bad Text
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &bad))
}

func TestText_YAML(t *testing.T) {
	var d Display
	err := yaml.Unmarshal([]byte(`
title: Stone Age
description:
  translate: advancements.story.mine_stone.description
  italic: true
frame: goal
`), &d)
	require.NoError(t, err)
	assert.Equal(t, Text{Text: "Stone Age"}, d.Title)
	assert.Equal(t, Text{Translate: "advancements.story.mine_stone.description", Italic: true}, d.Description)
	assert.Equal(t, FrameGoal, d.Frame)

	out, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(out), "title: Stone Age")
	assert.Contains(t, string(out), "translate: advancements.story.mine_stone.description")

	var bad Text
	assert.Error(t, yaml.Unmarshal([]byte(`[a, b]`), &bad))
}

func TestText_String(t *testing.T) {
	assert.Equal(t, "Stone Age", Text{Text: "Stone Age", Translate: "k"}.String())
	assert.Equal(t, "k", Text{Translate: "k"}.String())
	assert.True(t, Text{}.IsZero())
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	in := `{
		"id": "story/root",
		"send_telemetry": true,
		"display": {
			"title": {"translate": "advancements.story.root.title"},
			"description": "The heart and story of the game",
			"icon": "minecraft:grass_block",
			"frame": "task",
			"show_toast": true
		}
	}`
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(in), &rec))
	assert.True(t, rec.IsRoot())
	assert.True(t, rec.SendsTelemetry)
	require.NotNil(t, rec.Display)
	assert.Equal(t, "advancements.story.root.title", rec.Display.Title.String())
	assert.Equal(t, "The heart and story of the game", rec.Display.Description.Text)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	var again Record
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, rec, again)
}

func TestFrame_Valid(t *testing.T) {
	for _, f := range []Frame{"", FrameTask, FrameGoal, FrameChallenge} {
		assert.True(t, f.Valid(), f)
	}
	assert.False(t, Frame("epic").Valid())
}
