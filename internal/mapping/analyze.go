package mapping

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowcanvas/internal/ctxlog"
	"github.com/vk/flowcanvas/internal/fieldschema"
	"github.com/vk/flowcanvas/internal/graph"
)

// Analyze scans a graph for every field of a workflow category and returns
// the aggregate mapping state. Candidate order is discovery order (node
// insertion order), except that tracing puts the analytically justified
// candidate of a prompt field at index 0. Each field defaults to its first
// candidate, or to Unmapped when it has none.
func Analyze(ctx context.Context, g *graph.Graph, category *fieldschema.Category) *WorkflowState {
	w := &WorkflowState{
		Category: category,
		byKey:    make(map[string]*FieldState, len(category.Fields)),
	}
	for _, f := range category.Fields {
		state := &FieldState{Field: f, SelectedIndex: Unmapped}
		w.fields = append(w.fields, state)
		w.byKey[f.Key] = state
	}

	for _, f := range category.Fields {
		state := w.byKey[f.Key]
		if f.IsPromptField() {
			state.Candidates = promptCandidates(g, f)
		} else {
			state.Candidates = literalCandidates(g, f)
		}
		if len(state.Candidates) > 0 {
			state.SelectedIndex = 0
		}
	}

	ctxlog.FromContext(ctx).Debug("analyzed workflow mapping",
		"category", category.Name,
		"all_required_mapped", w.AllRequiredFieldsMapped())
	return w
}

// literalCandidates finds ordinary-field candidates: literal inputs whose
// name matches the field's patterns and whose value fits its shape. A
// templated literal is inert unless its placeholder names this very field,
// in which case it is the designated location and goes first.
func literalCandidates(g *graph.Graph, f *fieldschema.Field) []FieldCandidate {
	var designated, found []FieldCandidate
	for _, n := range g.Nodes() {
		for _, input := range n.Inputs {
			if !f.MatchesInput(input.Name) {
				continue
			}
			lit, ok := input.Value.(graph.Literal)
			if !ok {
				continue
			}
			if n.IsTemplated(input.Name) {
				if placeholderNames(lit.Value, f.Key) {
					designated = append(designated, candidateFor(n, input.Name, lit.Value))
				}
				continue
			}
			if !f.AcceptsValue(lit.Value) {
				continue
			}
			found = append(found, candidateFor(n, input.Name, lit.Value))
		}
	}
	return append(designated, found...)
}

// promptCandidates finds and orders the candidates of a positive/negative
// prompt field. An encoder whose text is templated belongs only to the field
// its placeholder names, and goes first. Encoders traced (or title-matched)
// to the field's role come next; encoders whose role could not be determined
// are appended to both prompt fields' lists rather than dropped.
func promptCandidates(g *graph.Graph, f *fieldschema.Field) []FieldCandidate {
	var designated, matched, ambiguous []FieldCandidate
	for _, n := range g.Nodes() {
		if n.Category != graph.CategoryEncoder {
			continue
		}
		inputName, value, ok := encoderTextInput(n)
		if !ok {
			continue
		}
		if n.IsTemplated(inputName) {
			if placeholderNames(value, f.Key) {
				designated = append(designated, candidateFor(n, inputName, value))
			}
			continue
		}
		switch role := classifyEncoder(g, n); {
		case role.matches(f.PromptRole):
			matched = append(matched, candidateFor(n, inputName, value))
		case role == roleAmbiguous:
			ambiguous = append(ambiguous, candidateFor(n, inputName, value))
		}
	}
	return append(designated, append(matched, ambiguous...)...)
}

// encoderTextInput returns the node's text-carrying literal input, if any.
func encoderTextInput(n *graph.Node) (string, cty.Value, bool) {
	for _, name := range [...]string{"text", "prompt"} {
		if v, ok := n.Input(name); ok {
			if lit, ok := v.(graph.Literal); ok {
				return name, lit.Value, true
			}
		}
	}
	return "", cty.NilVal, false
}

func candidateFor(n *graph.Node, inputKey string, value cty.Value) FieldCandidate {
	return FieldCandidate{
		NodeID:       n.ID,
		NodeTitle:    n.Title,
		ClassType:    n.ClassType,
		InputKey:     inputKey,
		CurrentValue: value,
	}
}

// placeholderNames reports whether a templated literal's placeholder text
// names the given field key, e.g. a "{{seed}}" literal for the seed field.
func placeholderNames(v cty.Value, fieldKey string) bool {
	s, ok := stringValue(v)
	if !ok {
		return false
	}
	for _, m := range graph.PlaceholderIdentifiers(s) {
		if m == fieldKey {
			return true
		}
	}
	return false
}

func stringValue(v cty.Value) (string, bool) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return "", false
	}
	return v.AsString(), true
}
