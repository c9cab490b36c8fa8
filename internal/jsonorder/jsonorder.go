// Package jsonorder decodes JSON objects into ordered field lists.
//
// Both external formats this module consumes are JSON objects whose key
// order is load-bearing: the workflow wire format (node insertion order
// drives layout determinism) and the server catalog (input specs are in
// declaration order). encoding/json maps discard that order, so objects are
// walked with the token stream instead.
package jsonorder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one key/value pair of a JSON object, in document order.
type Field struct {
	Name string
	Raw  json.RawMessage
}

// Fields decodes raw, which must be a JSON object, into its fields in
// document order. Values are left as raw JSON for the caller to interpret.
func Fields(raw []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading value of %q: %w", key, err)
		}
		fields = append(fields, Field{Name: key, Raw: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading object end: %w", err)
	}
	return fields, nil
}
