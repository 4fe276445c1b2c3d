package advancement

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frame is the border style of an advancement icon.
type Frame string

const (
	FrameTask      Frame = "task"
	FrameGoal      Frame = "goal"
	FrameChallenge Frame = "challenge"
)

// Valid reports whether f is a known frame. The empty frame is treated as task.
func (f Frame) Valid() bool {
	switch f {
	case "", FrameTask, FrameGoal, FrameChallenge:
		return true
	}
	return false
}

// Record is a single advancement descriptor.
type Record struct {
	// ID is the unique lookup key, "namespace:category/name" or "category/name".
	ID string `json:"id" yaml:"id"`

	// Parent is the id of the parent advancement. Empty for roots.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// SendsTelemetry marks advancements that emit a telemetry event when earned.
	SendsTelemetry bool `json:"send_telemetry,omitempty" yaml:"send_telemetry,omitempty"`

	// Display is the presentation payload. Most recipe advancements have none.
	Display *Display `json:"display,omitempty" yaml:"display,omitempty"`
}

// IsRoot reports whether the record has no parent.
func (r *Record) IsRoot() bool {
	return r.Parent == ""
}

// Namespace returns the namespace part of the id.
func (r *Record) Namespace() string {
	ns, _ := SplitID(r.ID)
	return ns
}

// Display is the user-facing part of an advancement.
type Display struct {
	Title          Text   `json:"title" yaml:"title"`
	Description    Text   `json:"description" yaml:"description"`
	Icon           string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Frame          Frame  `json:"frame,omitempty" yaml:"frame,omitempty"`
	Background     string `json:"background,omitempty" yaml:"background,omitempty"`
	ShowToast      bool   `json:"show_toast,omitempty" yaml:"show_toast,omitempty"`
	AnnounceToChat bool   `json:"announce_to_chat,omitempty" yaml:"announce_to_chat,omitempty"`
	Hidden         bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Text is a rich-text component.
//
// In JSON and YAML it is either a plain string, decoded into Text, or an object
// such as {"translate": "advancements.story.root.title", "color": "green"}.
type Text struct {
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	Translate string `json:"translate,omitempty" yaml:"translate,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Bold      bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
}

// String returns the literal text, or the translation key when there is none.
func (t Text) String() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Translate
}

// IsZero reports whether the component carries no content.
func (t Text) IsZero() bool {
	return t == Text{}
}

func (t Text) plain() bool {
	return t.Translate == "" && t.Color == "" && !t.Bold && !t.Italic
}

// textFields breaks the recursion between Text and its codecs.
type textFields Text

// UnmarshalJSON accepts a plain string or a component object.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text{Text: s}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*t = Text{}
		return nil
	}
	var f textFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("text component: %w", err)
	}
	*t = Text(f)
	return nil
}

// MarshalJSON emits a plain string when the component has only literal text.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.plain() {
		return json.Marshal(t.Text)
	}
	return json.Marshal(textFields(t))
}

// UnmarshalYAML accepts a scalar string or a component mapping.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*t = Text{}
			return nil
		}
		*t = Text{Text: node.Value}
		return nil
	case yaml.MappingNode:
		var f textFields
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("text component: %w", err)
		}
		*t = Text(f)
		return nil
	default:
		return fmt.Errorf("text component: unexpected YAML node at line %d", node.Line)
	}
}

// MarshalYAML emits a scalar when the component has only literal text.
func (t Text) MarshalYAML() (any, error) {
	if t.plain() {
		return t.Text, nil
	}
	return textFields(t), nil
}
