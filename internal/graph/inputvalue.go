package graph

import (
	"github.com/zclconf/go-cty/cty"
)

// InputValue is the closed set of shapes a node input can take. Exactly three
// types implement it: Literal, Connection and UnconnectedSlot. Consumers
// switch over the concrete type; the unexported marker method keeps the set
// closed so every switch can be exhaustive.
type InputValue interface {
	isInputValue()
}

// Literal is an inline value supplied directly on the node.
type Literal struct {
	Value cty.Value
}

// Connection routes another node's output slot into this input.
type Connection struct {
	SourceNodeID      string
	SourceOutputIndex int
}

// UnconnectedSlot is a connection-typed input that has nothing wired into it.
// ExpectedType is the declared slot type, or "" when the catalog did not know
// the type at the time the slot was created.
type UnconnectedSlot struct {
	ExpectedType string
}

func (Literal) isInputValue()         {}
func (Connection) isInputValue()      {}
func (UnconnectedSlot) isInputValue() {}

// LiteralString returns the string payload of a Literal input, and whether
// the value was a known, non-null cty string.
func LiteralString(v InputValue) (string, bool) {
	lit, ok := v.(Literal)
	if !ok {
		return "", false
	}
	if lit.Value.IsNull() || !lit.Value.IsKnown() || lit.Value.Type() != cty.String {
		return "", false
	}
	return lit.Value.AsString(), true
}
