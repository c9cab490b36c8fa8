package catalog

import (
	"strings"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowcanvas/internal/ctyutil"
)

// scalarTypes are the declared type names whose values live inline on the
// node. Anything else is a connection type and must be fed by an edge.
var scalarTypes = map[string]struct{}{
	"INT":     {},
	"FLOAT":   {},
	"NUMBER":  {},
	"STRING":  {},
	"BOOLEAN": {},
}

// InputSpec describes one declared input of a node type.
type InputSpec struct {
	Name string
	// Type is the declared slot type ("STRING", "MODEL", ...). For an
	// enumerated input it is "STRING" unless the server declared otherwise.
	Type string
	// Default is the catalog-declared default value, or cty.NilVal when the
	// server declared none.
	Default cty.Value
	// Options holds the enumerated choices of a combo input, in declaration
	// order. Empty for non-enumerated inputs.
	Options []string
	// ForceInput means this input must be supplied via connection even
	// though its type is scalar.
	ForceInput bool
	// Required distinguishes the server's required section from optional.
	Required bool
}

// IsConnection reports whether the input must be fed by an edge rather than
// an inline literal.
func (s *InputSpec) IsConnection() bool {
	if s.ForceInput {
		return true
	}
	if len(s.Options) > 0 {
		return false
	}
	_, scalar := scalarTypes[strings.ToUpper(s.Type)]
	return !scalar
}

// DefaultValue returns the declared default, the first enumerated option, or
// a type-appropriate zero value, in that preference order.
func (s *InputSpec) DefaultValue() cty.Value {
	if !s.Default.IsNull() {
		return s.Default
	}
	if len(s.Options) > 0 {
		return cty.StringVal(s.Options[0])
	}
	return ctyutil.ZeroForType(s.Type)
}

// NodeType is one catalog entry: a classType with its declared inputs and
// outputs in declaration order.
type NodeType struct {
	ClassType string
	Inputs    []InputSpec
	Outputs   []string
}

// Input returns the named input spec.
func (t *NodeType) Input(name string) (*InputSpec, bool) {
	for i := range t.Inputs {
		if t.Inputs[i].Name == name {
			return &t.Inputs[i], true
		}
	}
	return nil, false
}

// Catalog is the populate-once, read-many index of node types. The zero
// value is an unpopulated catalog whose lookups all answer "unknown".
type Catalog struct {
	mu    sync.RWMutex
	order []string
	types map[string]*NodeType
}

// New returns an empty, unpopulated catalog.
func New() *Catalog {
	return &Catalog{types: make(map[string]*NodeType)}
}

// Populate replaces the whole index. It is called once per connection
// lifetime when the server's definitions arrive, and again only when the
// catalog is deliberately re-fetched (e.g. the save-time re-check).
func (c *Catalog) Populate(types []*NodeType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.types = make(map[string]*NodeType, len(types))
	for _, t := range types {
		if _, dup := c.types[t.ClassType]; dup {
			continue
		}
		c.order = append(c.order, t.ClassType)
		c.types[t.ClassType] = t
	}
}

// IsPopulated reports whether definitions have arrived yet.
func (c *Catalog) IsPopulated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types) > 0
}

// Get returns the definition for a classType, or nil/false when the catalog
// is unpopulated or the type is unknown.
func (c *Catalog) Get(classType string) (*NodeType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[classType]
	return t, ok
}

// OutputType returns the declared type of an output slot, or "" when the
// classType or slot index is unknown.
func (c *Catalog) OutputType(classType string, outputIndex int) string {
	t, ok := c.Get(classType)
	if !ok || outputIndex < 0 || outputIndex >= len(t.Outputs) {
		return ""
	}
	return t.Outputs[outputIndex]
}

// InputType returns the declared type of a named input, or "" when unknown.
func (c *Catalog) InputType(classType, inputName string) string {
	t, ok := c.Get(classType)
	if !ok {
		return ""
	}
	spec, ok := t.Input(inputName)
	if !ok {
		return ""
	}
	return spec.Type
}

// ClassTypes returns every known classType in catalog declaration order.
func (c *Catalog) ClassTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// MissingFrom returns the classTypes that occur in classTypesInUse but are
// absent from this catalog, preserving input order. An unpopulated catalog
// reports nothing missing: absence of knowledge is not absence of the type.
func (c *Catalog) MissingFrom(classTypesInUse []string) []string {
	if !c.IsPopulated() {
		return nil
	}
	var missing []string
	seen := make(map[string]struct{})
	for _, ct := range classTypesInUse {
		if _, dup := seen[ct]; dup {
			continue
		}
		seen[ct] = struct{}{}
		if _, ok := c.Get(ct); !ok {
			missing = append(missing, ct)
		}
	}
	return missing
}
