// Package fieldschema declares, per workflow category, the abstract semantic
// fields (positive prompt, seed, model name, ...) that the mapping analyzer
// locates inside a concrete graph.
//
// Schemas are HCL manifests: a `category` block per workflow category with
// one `field` block per semantic field, each naming the recognized input-name
// patterns and the expected value shape. A default set ships embedded in the
// binary; a directory of override manifests can be loaded on top of it.
package fieldschema

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Value kinds a field can expect. An empty kind accepts any literal shape.
const (
	KindString = "string"
	KindNumber = "number"
	KindBool   = "bool"
)

// Prompt roles for the two ambiguous text fields whose candidates need graph
// tracing to tell apart.
const (
	RolePositive = "positive"
	RoleNegative = "negative"
)

// Field is one semantic parameter slot of a workflow category.
type Field struct {
	Key         string   `hcl:"key,label"`
	DisplayName string   `hcl:"display_name"`
	Required    bool     `hcl:"required,optional"`
	Inputs      []string `hcl:"inputs,optional"`
	Kind        string   `hcl:"kind,optional"`
	PromptRole  string   `hcl:"prompt_role,optional"`
}

// MatchesInput reports whether a node input name matches one of the field's
// recognized patterns (case-insensitive exact match).
func (f *Field) MatchesInput(inputName string) bool {
	for _, pattern := range f.Inputs {
		if strings.EqualFold(pattern, inputName) {
			return true
		}
	}
	return false
}

// AcceptsValue reports whether a literal's shape fits the field's value
// convention. Placeholder strings always fit string fields; numbers accept
// any cty number.
func (f *Field) AcceptsValue(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	switch f.Kind {
	case KindString:
		return v.Type() == cty.String
	case KindNumber:
		return v.Type() == cty.Number
	case KindBool:
		return v.Type() == cty.Bool
	default:
		return true
	}
}

// IsPromptField reports whether the field needs graph tracing to pick its
// candidate among interchangeable encoder nodes.
func (f *Field) IsPromptField() bool {
	return f.PromptRole == RolePositive || f.PromptRole == RoleNegative
}

// Category is the schema of one workflow category.
type Category struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Fields      []*Field `hcl:"field,block"`
}

// Field returns the field with the given key.
func (c *Category) Field(key string) (*Field, bool) {
	for _, f := range c.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return nil, false
}

// RequiredFields returns the required fields in declaration order.
func (c *Category) RequiredFields() []*Field {
	var out []*Field
	for _, f := range c.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// manifest is the top-level structure of one schema file.
type manifest struct {
	Categories []*Category `hcl:"category,block"`
}

// Set is the loaded, process-scoped schema table: populate-once, read-many.
type Set struct {
	order      []string
	categories map[string]*Category
}

// Category returns the schema for a workflow category.
func (s *Set) Category(name string) (*Category, bool) {
	c, ok := s.categories[name]
	return c, ok
}

// CategoryNames returns every known category in declaration order.
func (s *Set) CategoryNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// IsPopulated reports whether any category schema has been loaded.
func (s *Set) IsPopulated() bool {
	return s != nil && len(s.categories) > 0
}
