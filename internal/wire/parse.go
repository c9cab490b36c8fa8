package wire

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowcanvas/internal/catalog"
	"github.com/vk/flowcanvas/internal/ctxlog"
	"github.com/vk/flowcanvas/internal/ctyutil"
	"github.com/vk/flowcanvas/internal/graph"
	"github.com/vk/flowcanvas/internal/jsonorder"
)

// wireNode mirrors one node entry of the wire format. Inputs stay raw so
// their declaration order survives.
type wireNode struct {
	ClassType string          `json:"class_type"`
	Inputs    json.RawMessage `json:"inputs"`
	Meta      *struct {
		Title string `json:"title"`
	} `json:"_meta"`
	Mode *int `json:"mode"`
}

// Parse converts a wire workflow document into a graph. The catalog may be
// unpopulated; classification then degrades (every inline value stays a
// literal, outputs stay empty) without failing.
//
// Parsing is atomic: any structural problem returns ErrStructural and a nil
// graph.
func Parse(ctx context.Context, data []byte, cat *catalog.Catalog) (*graph.Graph, error) {
	if err := validateStructure(data); err != nil {
		return nil, err
	}

	entries, err := jsonorder.Fields(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructural, err)
	}

	g := graph.New("", "")
	var pending []graph.Edge

	for _, entry := range entries {
		if entry.Name == "name" || entry.Name == "description" {
			var s string
			if err := json.Unmarshal(entry.Raw, &s); err != nil {
				return nil, fmt.Errorf("%w: %q is not a string", ErrStructural, entry.Name)
			}
			if entry.Name == "name" {
				g.Name = s
			} else {
				g.Description = s
			}
			continue
		}

		var wn wireNode
		if err := json.Unmarshal(entry.Raw, &wn); err != nil {
			return nil, fmt.Errorf("%w: node %q: %v", ErrStructural, entry.Name, err)
		}
		if wn.ClassType == "" {
			return nil, fmt.Errorf("%w: node %q has no class_type", ErrStructural, entry.Name)
		}

		n := &graph.Node{
			ID:                entry.Name,
			ClassType:         wn.ClassType,
			Title:             wn.ClassType,
			Category:          graph.CategoryOf(wn.ClassType),
			TemplateInputKeys: make(map[string]struct{}),
		}
		if wn.Meta != nil && wn.Meta.Title != "" {
			n.Title = wn.Meta.Title
		}
		if wn.Mode != nil {
			n.RawMode = *wn.Mode
			n.Mode = graph.ModeFromWire(*wn.Mode)
		}

		typeDef, known := cat.Get(wn.ClassType)
		if known {
			n.Outputs = append(n.Outputs, typeDef.Outputs...)
		}

		edges, err := parseInputs(n, wn.Inputs, typeDef, g)
		if err != nil {
			return nil, err
		}
		pending = append(pending, edges...)

		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStructural, err)
		}
	}

	for _, e := range pending {
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStructural, err)
		}
	}

	ctxlog.FromContext(ctx).Debug("parsed workflow",
		"nodes", g.NodeCount(),
		"edges", len(g.Edges()),
		"placeholders", len(g.TemplatePlaceholders()))
	return g, nil
}

// parseInputs classifies each declared input value and returns the edges
// derived from connection inputs. typeDef may be nil for unknown classTypes.
func parseInputs(n *graph.Node, rawInputs json.RawMessage, typeDef *catalog.NodeType, g *graph.Graph) ([]graph.Edge, error) {
	var edges []graph.Edge

	if len(rawInputs) > 0 {
		fields, err := jsonorder.Fields(rawInputs)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q inputs: %v", ErrStructural, n.ID, err)
		}
		for _, f := range fields {
			if srcID, srcIdx, ok := connectionValue(f.Raw); ok {
				n.Inputs = append(n.Inputs, graph.InputField{
					Name:  f.Name,
					Value: graph.Connection{SourceNodeID: srcID, SourceOutputIndex: srcIdx},
				})
				edges = append(edges, graph.Edge{
					SourceNodeID:      srcID,
					SourceOutputIndex: srcIdx,
					TargetNodeID:      n.ID,
					TargetInputName:   f.Name,
				})
				continue
			}

			// Force-input slots must be fed by a connection; an inline value
			// there is a leftover the server would reject, so it degrades to
			// an unconnected slot instead of a literal.
			if typeDef != nil {
				if spec, ok := typeDef.Input(f.Name); ok && spec.ForceInput {
					n.Inputs = append(n.Inputs, graph.InputField{
						Name:  f.Name,
						Value: graph.UnconnectedSlot{ExpectedType: spec.Type},
					})
					continue
				}
			}

			v, err := ctyutil.FromRawJSON(f.Raw)
			if err != nil {
				return nil, fmt.Errorf("%w: node %q input %q: %v", ErrStructural, n.ID, f.Name, err)
			}
			n.Inputs = append(n.Inputs, graph.InputField{Name: f.Name, Value: graph.Literal{Value: v}})
			recordPlaceholders(g, n, f.Name, v)
		}
	}

	// Required connection inputs the document never mentioned become
	// unconnected slots so downstream consumers see the hole explicitly.
	if typeDef != nil {
		for i := range typeDef.Inputs {
			spec := &typeDef.Inputs[i]
			if !spec.Required || !spec.IsConnection() {
				continue
			}
			if _, present := n.Input(spec.Name); !present {
				n.Inputs = append(n.Inputs, graph.InputField{
					Name:  spec.Name,
					Value: graph.UnconnectedSlot{ExpectedType: spec.Type},
				})
			}
		}
	}

	return edges, nil
}

// connectionValue reports whether raw is a two-element [nodeId, outputIndex]
// connection array.
func connectionValue(raw json.RawMessage) (string, int, bool) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 2 {
		return "", 0, false
	}
	var nodeID string
	if err := json.Unmarshal(parts[0], &nodeID); err != nil {
		return "", 0, false
	}
	var index int
	if err := json.Unmarshal(parts[1], &index); err != nil {
		return "", 0, false
	}
	return nodeID, index, true
}

// recordPlaceholders scans a string literal for {{identifier}} placeholders
// and records them on both the node and the graph.
func recordPlaceholders(g *graph.Graph, n *graph.Node, inputName string, v cty.Value) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return
	}
	identifiers := graph.PlaceholderIdentifiers(v.AsString())
	if len(identifiers) == 0 {
		return
	}
	n.TemplateInputKeys[inputName] = struct{}{}
	for _, id := range identifiers {
		g.AddPlaceholder(id)
	}
}
