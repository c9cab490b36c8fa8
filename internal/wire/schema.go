package wire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrStructural marks a malformed workflow document. Parse never returns a
// partial graph alongside it.
var ErrStructural = errors.New("malformed workflow document")

// workflowSchema structurally validates the wire format before parsing so
// that every malformed document fails the same way, with one error naming
// everything wrong, instead of failing at whichever field the parser reached
// first.
const workflowSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "description": {"type": "string"}
  },
  "additionalProperties": {
    "type": "object",
    "required": ["class_type"],
    "properties": {
      "class_type": {"type": "string", "minLength": 1},
      "inputs": {"type": "object"},
      "_meta": {
        "type": "object",
        "properties": {"title": {"type": "string"}}
      },
      "mode": {"type": "integer"}
    }
  }
}`

var compiledSchema = gojsonschema.NewStringLoader(workflowSchema)

func validateStructure(data []byte) error {
	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStructural, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrStructural, strings.Join(msgs, "; "))
}
