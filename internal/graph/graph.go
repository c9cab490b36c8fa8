package graph

import (
	"fmt"
	"sort"
)

// Edge is a directed connection from a source node's output slot to a target
// node's named input.
type Edge struct {
	SourceNodeID      string
	SourceOutputIndex int
	TargetNodeID      string
	TargetInputName   string
	// SlotType is derived by the type resolver from the catalog. It is ""
	// until resolved, or when the catalog has no entry for the source node's
	// classType. It is never authoritative.
	SlotType string
}

// Graph is a workflow: an insertion-ordered set of nodes plus the edges
// derived from their connection inputs.
type Graph struct {
	Name        string
	Description string

	nodes []*Node
	byID  map[string]*Node
	edges []*Edge

	placeholders map[string]struct{}
}

// New returns an empty graph.
func New(name, description string) *Graph {
	return &Graph{
		Name:         name,
		Description:  description,
		byID:         make(map[string]*Node),
		placeholders: make(map[string]struct{}),
	}
}

// AddNode appends a node. Node IDs are unique within a graph; adding a
// duplicate is an error.
func (g *Graph) AddNode(n *Node) error {
	if n.ID == "" {
		return fmt.Errorf("node has empty id")
	}
	if _, exists := g.byID[n.ID]; exists {
		return fmt.Errorf("duplicate node id %q", n.ID)
	}
	if n.Title == "" {
		n.Title = n.ClassType
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return nil
}

// AddEdge inserts an edge. Both endpoints must already be present, and at
// most one edge may terminate at any (target, input) pair.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.byID[e.SourceNodeID]; !ok {
		return fmt.Errorf("edge source node %q not in graph", e.SourceNodeID)
	}
	if _, ok := g.byID[e.TargetNodeID]; !ok {
		return fmt.Errorf("edge target node %q not in graph", e.TargetNodeID)
	}
	if existing, ok := g.EdgeInto(e.TargetNodeID, e.TargetInputName); ok {
		return fmt.Errorf("input %s.%s already fed by node %q",
			e.TargetNodeID, e.TargetInputName, existing.SourceNodeID)
	}
	g.edges = append(g.edges, &e)
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes returns the nodes in insertion order. The slice is shared; callers
// must not append to or reorder it.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Edges returns all edges. The slice is shared; the type resolver writes
// SlotType through it, everyone else treats it as read-only.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// EdgeInto returns the single edge terminating at the given input, if any.
func (g *Graph) EdgeInto(nodeID, inputName string) (*Edge, bool) {
	for _, e := range g.edges {
		if e.TargetNodeID == nodeID && e.TargetInputName == inputName {
			return e, true
		}
	}
	return nil, false
}

// EdgesFrom returns every edge originating at the given node, in insertion
// order.
func (g *Graph) EdgesFrom(nodeID string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.SourceNodeID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// RemoveEdgeInto deletes the edge terminating at the given input, reporting
// whether one existed.
func (g *Graph) RemoveEdgeInto(nodeID, inputName string) bool {
	for i, e := range g.edges {
		if e.TargetNodeID == nodeID && e.TargetInputName == inputName {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveNode deletes the node and every edge touching it. The surviving
// endpoint of each removed incoming connection is reverted by the caller
// (see session.DeleteNodes); this method only keeps the edge set consistent.
func (g *Graph) RemoveNode(id string) bool {
	n, ok := g.byID[id]
	if !ok {
		return false
	}
	delete(g.byID, id)
	for i, candidate := range g.nodes {
		if candidate == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.SourceNodeID != id && e.TargetNodeID != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return true
}

// AddPlaceholder records a template placeholder identifier seen in a literal.
func (g *Graph) AddPlaceholder(identifier string) {
	g.placeholders[identifier] = struct{}{}
}

// TemplatePlaceholders returns the placeholder identifiers embedded anywhere
// in the graph's literals, sorted for deterministic iteration.
func (g *Graph) TemplatePlaceholders() []string {
	out := make([]string, 0, len(g.placeholders))
	for p := range g.placeholders {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HasPlaceholder reports whether the identifier occurs in any literal.
func (g *Graph) HasPlaceholder(identifier string) bool {
	_, ok := g.placeholders[identifier]
	return ok
}

// Clone returns a deep copy sharing no mutable state with the receiver. The
// editing session clones on entry so a discarded edit can never corrupt the
// displayed snapshot.
func (g *Graph) Clone() *Graph {
	out := New(g.Name, g.Description)
	for _, n := range g.nodes {
		clone := n.Clone()
		out.nodes = append(out.nodes, clone)
		out.byID[clone.ID] = clone
	}
	for _, e := range g.edges {
		copied := *e
		out.edges = append(out.edges, &copied)
	}
	for p := range g.placeholders {
		out.placeholders[p] = struct{}{}
	}
	return out
}

// MaxNumericID returns the largest node id that parses as a non-negative
// integer, or -1 when none does. The editing session seeds its monotonic id
// allocator from this.
func (g *Graph) MaxNumericID() int {
	max := -1
	for _, n := range g.nodes {
		v := 0
		ok := len(n.ID) > 0
		for _, r := range n.ID {
			if r < '0' || r > '9' {
				ok = false
				break
			}
			v = v*10 + int(r-'0')
		}
		if ok && v > max {
			max = v
		}
	}
	return max
}
