package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowcanvas/internal/ctyutil"
	"github.com/vk/flowcanvas/internal/graph"
)

// SerializeOptions controls how a graph is re-emitted as wire JSON.
type SerializeOptions struct {
	// Edits maps nodeID to inputName to replacement literal. An edit applies
	// in place of the stored literal; stored values (including template
	// placeholders) are otherwise emitted verbatim.
	Edits map[string]map[string]cty.Value
	// RequireConnected makes any remaining unconnected slot fatal, returned
	// as an UnconnectedError enumerating every hole. When unset, unconnected
	// inputs are omitted from the output.
	RequireConnected bool
	// IncludeMeta emits the name/description workflow metadata entries and
	// per-node _meta titles.
	IncludeMeta bool
}

// UnconnectedError reports the inputs that still have nothing wired in when
// the caller demanded full connectivity.
type UnconnectedError struct {
	// Slots are "nodeID.inputName" strings in node insertion order.
	Slots []string
}

func (e *UnconnectedError) Error() string {
	return fmt.Sprintf("workflow has unconnected inputs: %s", strings.Join(e.Slots, ", "))
}

// Serialize re-emits a graph as wire JSON, preserving node and input order.
//
// A Connection whose source node is no longer in the graph is never emitted;
// it is treated exactly like an unconnected slot, so a deletion that left a
// dangling input behind cannot produce wire JSON the server would choke on.
func Serialize(g *graph.Graph, opts SerializeOptions) ([]byte, error) {
	var unconnected []string
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	writeKey := func(key string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyJSON, _ := json.Marshal(key)
		buf.Write(keyJSON)
		buf.WriteByte(':')
	}

	if opts.IncludeMeta {
		if g.Name != "" {
			writeKey("name")
			nameJSON, _ := json.Marshal(g.Name)
			buf.Write(nameJSON)
		}
		if g.Description != "" {
			writeKey("description")
			descJSON, _ := json.Marshal(g.Description)
			buf.Write(descJSON)
		}
	}

	for _, n := range g.Nodes() {
		nodeJSON, holes, err := serializeNode(g, n, opts)
		if err != nil {
			return nil, err
		}
		unconnected = append(unconnected, holes...)
		writeKey(n.ID)
		buf.Write(nodeJSON)
	}
	buf.WriteByte('}')

	if opts.RequireConnected && len(unconnected) > 0 {
		return nil, &UnconnectedError{Slots: unconnected}
	}
	return buf.Bytes(), nil
}

func serializeNode(g *graph.Graph, n *graph.Node, opts SerializeOptions) ([]byte, []string, error) {
	var holes []string
	var buf bytes.Buffer

	buf.WriteString(`{"class_type":`)
	classJSON, _ := json.Marshal(n.ClassType)
	buf.Write(classJSON)

	buf.WriteString(`,"inputs":{`)
	firstInput := true
	for _, f := range n.Inputs {
		raw, ok, err := serializeInput(g, n, f, opts)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			holes = append(holes, n.ID+"."+f.Name)
			continue
		}
		if !firstInput {
			buf.WriteByte(',')
		}
		firstInput = false
		nameJSON, _ := json.Marshal(f.Name)
		buf.Write(nameJSON)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteByte('}')

	// A title equal to the classType is the parser's default, not document
	// content; emitting it would grow every round trip.
	if opts.IncludeMeta && n.Title != "" && n.Title != n.ClassType {
		buf.WriteString(`,"_meta":{"title":`)
		titleJSON, _ := json.Marshal(n.Title)
		buf.Write(titleJSON)
		buf.WriteByte('}')
	}
	if n.RawMode != graph.WireModeNormal {
		fmt.Fprintf(&buf, `,"mode":%d`, n.RawMode)
	}
	buf.WriteByte('}')
	return buf.Bytes(), holes, nil
}

// serializeInput emits one input value. ok=false means the input has no wire
// representation (unconnected, or a connection dangling at a removed node).
func serializeInput(g *graph.Graph, n *graph.Node, f graph.InputField, opts SerializeOptions) (json.RawMessage, bool, error) {
	if override, ok := opts.Edits[n.ID][f.Name]; ok {
		raw, err := ctyutil.ToRawJSON(override)
		if err != nil {
			return nil, false, fmt.Errorf("node %q input %q: %w", n.ID, f.Name, err)
		}
		return raw, true, nil
	}

	switch v := f.Value.(type) {
	case graph.Literal:
		raw, err := ctyutil.ToRawJSON(v.Value)
		if err != nil {
			return nil, false, fmt.Errorf("node %q input %q: %w", n.ID, f.Name, err)
		}
		return raw, true, nil
	case graph.Connection:
		if _, exists := g.Node(v.SourceNodeID); !exists {
			return nil, false, nil
		}
		raw, err := json.Marshal([]any{v.SourceNodeID, v.SourceOutputIndex})
		if err != nil {
			return nil, false, fmt.Errorf("node %q input %q: %w", n.ID, f.Name, err)
		}
		return raw, true, nil
	case graph.UnconnectedSlot:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("node %q input %q has unknown value shape %T", n.ID, f.Name, f.Value)
	}
}
