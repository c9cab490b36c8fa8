// Package layout assigns deterministic 2-D coordinates to every node of a
// workflow graph and computes its bounding box.
//
// Nodes are placed in columns by topological depth (longest path from any
// root) and stacked within a column in graph insertion order, so the same
// structural input always produces the same picture. Layout is always a full
// recompute; after any structural edit the session re-runs Apply over the
// whole graph rather than patching incrementally.
package layout

import (
	"github.com/vk/flowcanvas/internal/graph"
)

// Geometry constants, in canvas units.
const (
	NodeWidth    = 260.0
	HeaderHeight = 30.0
	RowHeight    = 22.0
	ColumnGap    = 80.0
	RowGap       = 40.0
)

// Bounds is the axis-aligned bounding box of all node rectangles. The zero
// value (an empty graph's bounds) has zero width and height; consumers that
// scale or fit must handle that without dividing by zero.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Apply assigns x, y, width and height to every node and returns the graph's
// bounding box. It is deterministic for the same structural input.
func Apply(g *graph.Graph) Bounds {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return Bounds{}
	}

	depths := nodeDepths(g)

	maxDepth := 0
	for _, d := range depths {
		if d > maxDepth {
			maxDepth = d
		}
	}

	// Fully isolated nodes (typically freshly added ones) go after the
	// deepest existing layer so they never land on top of prior content.
	orphanDepth := maxDepth
	if hasIsolated(g, depths) {
		orphanDepth = maxDepth + 1
		for _, n := range nodes {
			if isolated(g, n.ID) {
				depths[n.ID] = orphanDepth
			}
		}
	}

	// Stack each column in insertion order.
	columnY := make(map[int]float64)
	for _, n := range nodes {
		depth := depths[n.ID]
		n.Width = NodeWidth
		n.Height = nodeHeight(n)
		n.X = float64(depth) * (NodeWidth + ColumnGap)
		n.Y = columnY[depth]
		columnY[depth] += n.Height + RowGap
	}

	bounds := Bounds{
		MinX: nodes[0].X,
		MinY: nodes[0].Y,
		MaxX: nodes[0].X + nodes[0].Width,
		MaxY: nodes[0].Y + nodes[0].Height,
	}
	for _, n := range nodes[1:] {
		bounds.MinX = min(bounds.MinX, n.X)
		bounds.MinY = min(bounds.MinY, n.Y)
		bounds.MaxX = max(bounds.MaxX, n.X+n.Width)
		bounds.MaxY = max(bounds.MaxY, n.Y+n.Height)
	}
	return bounds
}

// nodeHeight sizes a node to fit whichever is taller: its literal rows or
// its connection slots (inputs on one side, outputs on the other).
func nodeHeight(n *graph.Node) float64 {
	rows := n.LiteralInputCount()
	slots := n.ConnectionInputCount()
	if len(n.Outputs) > slots {
		slots = len(n.Outputs)
	}
	if slots > rows {
		rows = slots
	}
	return HeaderHeight + float64(rows)*RowHeight
}

// nodeDepths computes the topological depth of every node: roots sit at 0,
// every edge pushes its target at least one column past its source. The walk
// memoizes through a depth-first traversal of incoming edges; a node already
// on the visiting stack (a cycle, which valid input never has) contributes
// depth 0 instead of recursing forever.
func nodeDepths(g *graph.Graph) map[string]int {
	incoming := make(map[string][]*graph.Edge)
	for _, e := range g.Edges() {
		incoming[e.TargetNodeID] = append(incoming[e.TargetNodeID], e)
	}

	depths := make(map[string]int, g.NodeCount())
	visiting := make(map[string]bool)

	var depthOf func(id string) int
	depthOf = func(id string) int {
		if d, done := depths[id]; done {
			return d
		}
		if visiting[id] {
			return 0
		}
		visiting[id] = true
		d := 0
		for _, e := range incoming[id] {
			if candidate := depthOf(e.SourceNodeID) + 1; candidate > d {
				d = candidate
			}
		}
		delete(visiting, id)
		depths[id] = d
		return d
	}

	for _, n := range g.Nodes() {
		depthOf(n.ID)
	}
	return depths
}

func isolated(g *graph.Graph, id string) bool {
	for _, e := range g.Edges() {
		if e.SourceNodeID == id || e.TargetNodeID == id {
			return false
		}
	}
	return true
}

func hasIsolated(g *graph.Graph, depths map[string]int) bool {
	if len(g.Edges()) == 0 {
		// A graph with no edges at all stacks everything in column zero;
		// there is no prior content to avoid.
		return false
	}
	for _, n := range g.Nodes() {
		if isolated(g, n.ID) {
			return true
		}
	}
	return false
}
