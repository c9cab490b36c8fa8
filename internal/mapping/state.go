package mapping

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowcanvas/internal/fieldschema"
)

// Unmapped is the selection index meaning "deliberately no candidate".
const Unmapped = -1

// FieldCandidate is a concrete graph location that could satisfy a semantic
// field.
type FieldCandidate struct {
	NodeID       string
	NodeTitle    string
	ClassType    string
	InputKey     string
	CurrentValue cty.Value
}

// FieldState is one field's candidates and current selection.
type FieldState struct {
	Field      *fieldschema.Field
	Candidates []FieldCandidate
	// SelectedIndex is an index into Candidates, or Unmapped.
	SelectedIndex int
}

// Selected returns the currently selected candidate, if any.
func (f *FieldState) Selected() (FieldCandidate, bool) {
	if f.SelectedIndex < 0 || f.SelectedIndex >= len(f.Candidates) {
		return FieldCandidate{}, false
	}
	return f.Candidates[f.SelectedIndex], true
}

// WorkflowState aggregates the field states of one workflow category.
type WorkflowState struct {
	Category *fieldschema.Category

	fields []*FieldState
	byKey  map[string]*FieldState
}

// Field returns the state for a field key.
func (w *WorkflowState) Field(key string) (*FieldState, bool) {
	f, ok := w.byKey[key]
	return f, ok
}

// Fields returns every field state in schema declaration order.
func (w *WorkflowState) Fields() []*FieldState {
	return w.fields
}

// Select moves a field's selection. index must be Unmapped or a valid
// candidate index. Selecting a candidate clears any other field currently
// pointing at the same node: one graph location cannot serve two roles.
func (w *WorkflowState) Select(fieldKey string, index int) error {
	f, ok := w.byKey[fieldKey]
	if !ok {
		return fmt.Errorf("no field %q in category %q", fieldKey, w.Category.Name)
	}
	if index != Unmapped && (index < 0 || index >= len(f.Candidates)) {
		return fmt.Errorf("field %q has no candidate %d", fieldKey, index)
	}
	f.SelectedIndex = index

	if index == Unmapped {
		return nil
	}
	chosen := f.Candidates[index]
	for _, other := range w.fields {
		if other == f {
			continue
		}
		if sel, ok := other.Selected(); ok && sel.NodeID == chosen.NodeID {
			other.SelectedIndex = Unmapped
		}
	}
	return nil
}

// Clear marks a field deliberately unmapped.
func (w *WorkflowState) Clear(fieldKey string) error {
	return w.Select(fieldKey, Unmapped)
}

// AllRequiredFieldsMapped reports whether every required field has a
// selection. It is recomputed from current state on every call, so it is
// correct immediately after any selection change.
func (w *WorkflowState) AllRequiredFieldsMapped() bool {
	for _, f := range w.fields {
		if f.Field.Required && f.SelectedIndex == Unmapped {
			return false
		}
	}
	return true
}

// MissingRequiredFields returns the display names of every required field
// without a selection, in schema declaration order. The caller surfaces the
// list to the user; nothing here is an error.
func (w *WorkflowState) MissingRequiredFields() []string {
	var missing []string
	for _, f := range w.fields {
		if f.Field.Required && f.SelectedIndex == Unmapped {
			missing = append(missing, f.Field.DisplayName)
		}
	}
	return missing
}
