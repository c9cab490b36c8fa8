package graph

import (
	"maps"
	"strings"
)

// Category is a coarse classification of a node's role, derived from its
// classType. It drives field-mapping candidate discovery and nothing else;
// two nodes with the same classType always share a category.
type Category int

const (
	CategoryLoader Category = iota
	CategoryEncoder
	CategorySampler
	CategoryLatent
	CategoryInput
	CategoryOutput
	CategoryProcess
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryLoader:
		return "loader"
	case CategoryEncoder:
		return "encoder"
	case CategorySampler:
		return "sampler"
	case CategoryLatent:
		return "latent"
	case CategoryInput:
		return "input"
	case CategoryOutput:
		return "output"
	case CategoryProcess:
		return "process"
	default:
		return "other"
	}
}

// categoryRule maps a lowercase classType substring to a category. Rules are
// checked in order; the first match wins, so broader substrings must come
// after narrower ones (a "LoadImage" must not be claimed by "loader").
type categoryRule struct {
	substr   string
	category Category
}

var categoryRules = []categoryRule{
	{"loader", CategoryLoader},
	{"checkpointload", CategoryLoader},
	{"encode", CategoryEncoder},
	{"sampler", CategorySampler},
	{"latent", CategoryLatent},
	{"loadimage", CategoryInput},
	{"imageload", CategoryInput},
	{"save", CategoryOutput},
	{"preview", CategoryOutput},
	{"upscale", CategoryProcess},
	{"scale", CategoryProcess},
	{"merge", CategoryProcess},
	{"combine", CategoryProcess},
	{"conditioning", CategoryProcess},
	{"vae", CategoryProcess},
}

// CategoryOf classifies a classType by its fixed substring precedence rules.
func CategoryOf(classType string) Category {
	lower := strings.ToLower(classType)
	for _, rule := range categoryRules {
		if strings.Contains(lower, rule.substr) {
			return rule.category
		}
	}
	return CategoryOther
}

// Mode is a node's execution disposition. A bypassed node is skipped by the
// external executor but remains structurally present: layout and type rules
// apply to it identically.
type Mode int

const (
	ModeNormal Mode = iota
	ModeBypassed
)

// Wire values for Mode. Integers other than these two pass through the
// parser and serializer opaquely.
const (
	WireModeNormal   = 0
	WireModeBypassed = 4
)

// ModeFromWire maps a wire mode integer onto the Mode enum. Unrecognized
// values behave as Normal; the raw integer is preserved separately on the
// node so serialization does not lose it.
func ModeFromWire(raw int) Mode {
	if raw == WireModeBypassed {
		return ModeBypassed
	}
	return ModeNormal
}

// InputField is one entry of a node's ordered input mapping.
type InputField struct {
	Name  string
	Value InputValue
}

// Node is a single operation vertex in a workflow graph.
type Node struct {
	// ID is unique within a graph and never reused after deletion within one
	// editing session.
	ID string
	// ClassType is the node's operation name, analogous to an opcode. It is
	// the key into the node-type catalog.
	ClassType string
	// Title is the display label; defaults to ClassType.
	Title    string
	Category Category

	// Inputs preserves wire declaration order.
	Inputs []InputField
	// Outputs lists the output slot types in declaration order. Empty when
	// the catalog does not know the classType.
	Outputs []string

	// Layout annotations, assigned by the layout engine.
	X, Y, Width, Height float64

	Mode Mode
	// RawMode keeps the wire integer so unknown mode values round-trip.
	RawMode int

	// TemplateInputKeys names the inputs whose literal value embeds a
	// {{identifier}} placeholder.
	TemplateInputKeys map[string]struct{}
}

// Input returns the value of the named input.
func (n *Node) Input(name string) (InputValue, bool) {
	for _, f := range n.Inputs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// SetInput replaces the named input's value in place, appending a new field
// when the name is not present yet.
func (n *Node) SetInput(name string, v InputValue) {
	for i := range n.Inputs {
		if n.Inputs[i].Name == name {
			n.Inputs[i].Value = v
			return
		}
	}
	n.Inputs = append(n.Inputs, InputField{Name: name, Value: v})
}

// ConnectionInputCount counts inputs that are connections or unconnected
// slots; the layout engine sizes the node by the larger of this and the
// output count.
func (n *Node) ConnectionInputCount() int {
	count := 0
	for _, f := range n.Inputs {
		switch f.Value.(type) {
		case Connection, UnconnectedSlot:
			count++
		}
	}
	return count
}

// LiteralInputCount counts inline-valued inputs.
func (n *Node) LiteralInputCount() int {
	count := 0
	for _, f := range n.Inputs {
		if _, ok := f.Value.(Literal); ok {
			count++
		}
	}
	return count
}

// IsTemplated reports whether the named input carries a template placeholder.
func (n *Node) IsTemplated(inputName string) bool {
	_, ok := n.TemplateInputKeys[inputName]
	return ok
}

// Clone returns a deep copy of the node. InputValue payloads are immutable
// value types, so copying the field slice is sufficient for them.
func (n *Node) Clone() *Node {
	out := *n
	out.Inputs = make([]InputField, len(n.Inputs))
	copy(out.Inputs, n.Inputs)
	out.Outputs = make([]string, len(n.Outputs))
	copy(out.Outputs, n.Outputs)
	out.TemplateInputKeys = maps.Clone(n.TemplateInputKeys)
	return &out
}
