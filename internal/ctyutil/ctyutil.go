// Package ctyutil converts between raw wire JSON values and cty values.
// Literal node inputs are held as cty.Value so that numeric fidelity (large
// seeds, exact floats) survives a parse/serialize round trip.
package ctyutil

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FromRawJSON decodes one JSON value into a cty.Value with its implied type.
func FromRawJSON(raw []byte) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("implying type of literal: %w", err)
	}
	v, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decoding literal: %w", err)
	}
	return v, nil
}

// ToRawJSON encodes a cty.Value back into wire JSON.
func ToRawJSON(v cty.Value) ([]byte, error) {
	if v.IsNull() {
		return []byte("null"), nil
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("encoding literal: %w", err)
	}
	return raw, nil
}

// ZeroForType returns a type-appropriate zero literal for a catalog-declared
// scalar type name. Unknown type names get an empty string, the least
// destructive stand-in for a value the user has not chosen yet.
func ZeroForType(typeName string) cty.Value {
	switch strings.ToUpper(typeName) {
	case "INT", "FLOAT", "NUMBER":
		return cty.Zero
	case "BOOLEAN", "BOOL":
		return cty.False
	default:
		return cty.StringVal("")
	}
}
