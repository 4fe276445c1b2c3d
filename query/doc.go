// Package query filters advancement records with CEL expressions.
//
// Expressions see one record at a time through these variables:
//
//	id           string  full id as stored
//	parent       string  parent id, "" for roots
//	namespace    string  id namespace; bare ids report the default namespace
//	category     string  first path segment ("story")
//	name         string  last path segment ("mine_stone")
//	telemetry    bool    record sends a telemetry event
//	has_display  bool    record has a display payload
//	frame        string  display frame, "task" when unset, "" without display
//	hidden       bool    display is hidden
//	title        string  display title text or translation key
//
// Example:
//
//	f, err := query.Compile(`category == "story" && frame == "challenge"`)
//	if err != nil {
//		return err
//	}
//	matches, err := f.Select(reg)
package query
