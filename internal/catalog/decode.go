package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/vk/flowcanvas/internal/ctyutil"
	"github.com/vk/flowcanvas/internal/jsonorder"
)

// wireNodeType mirrors one entry of the server's object-info response. The
// input sections stay raw because their key order must be preserved.
type wireNodeType struct {
	Input struct {
		Required json.RawMessage `json:"required"`
		Optional json.RawMessage `json:"optional"`
	} `json:"input"`
	Output []json.RawMessage `json:"output"`
}

// Decode parses the server's object-info response into node type definitions
// in declaration order.
func Decode(raw []byte) ([]*NodeType, error) {
	entries, err := jsonorder.Fields(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog response: %w", err)
	}

	types := make([]*NodeType, 0, len(entries))
	for _, entry := range entries {
		var wt wireNodeType
		if err := json.Unmarshal(entry.Raw, &wt); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", entry.Name, err)
		}

		t := &NodeType{ClassType: entry.Name}

		if err := appendInputs(t, wt.Input.Required, true); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", entry.Name, err)
		}
		if err := appendInputs(t, wt.Input.Optional, false); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", entry.Name, err)
		}

		for _, out := range wt.Output {
			var typeName string
			if err := json.Unmarshal(out, &typeName); err != nil {
				// Non-string output declarations (inline combo lists) have
				// no single type name; they behave as wildcard slots.
				typeName = "*"
			}
			t.Outputs = append(t.Outputs, typeName)
		}

		types = append(types, t)
	}
	return types, nil
}

func appendInputs(t *NodeType, section json.RawMessage, required bool) error {
	if len(section) == 0 {
		return nil
	}
	fields, err := jsonorder.Fields(section)
	if err != nil {
		return err
	}
	for _, f := range fields {
		spec, err := decodeInputSpec(f.Name, f.Raw)
		if err != nil {
			return fmt.Errorf("input %q: %w", f.Name, err)
		}
		spec.Required = required
		t.Inputs = append(t.Inputs, *spec)
	}
	return nil
}

// inputConfig is the optional second element of an input declaration.
type inputConfig struct {
	Default    json.RawMessage `json:"default"`
	ForceInput bool            `json:"forceInput"`
}

// decodeInputSpec parses one input declaration: an array whose first element
// is either a type name or an enumerated option list, optionally followed by
// a configuration object.
func decodeInputSpec(name string, raw json.RawMessage) (*InputSpec, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		// A bare declaration without the array wrapper; treat it as an
		// untyped slot rather than failing the whole catalog.
		return &InputSpec{Name: name, Type: "*"}, nil
	}
	if len(parts) == 0 {
		return &InputSpec{Name: name, Type: "*"}, nil
	}

	spec := &InputSpec{Name: name}

	var typeName string
	if err := json.Unmarshal(parts[0], &typeName); err == nil {
		spec.Type = typeName
	} else {
		var options []any
		if err := json.Unmarshal(parts[0], &options); err != nil {
			return nil, fmt.Errorf("declaration is neither type name nor option list")
		}
		spec.Type = "STRING"
		for _, opt := range options {
			spec.Options = append(spec.Options, fmt.Sprint(opt))
		}
	}

	if len(parts) > 1 {
		var cfg inputConfig
		if err := json.Unmarshal(parts[1], &cfg); err == nil {
			spec.ForceInput = cfg.ForceInput
			if len(cfg.Default) > 0 {
				if v, err := ctyutil.FromRawJSON(cfg.Default); err == nil {
					spec.Default = v
				}
			}
		}
	}
	return spec, nil
}
