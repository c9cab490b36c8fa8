package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/vk/flowcanvas/internal/catalog"
	"github.com/vk/flowcanvas/internal/ctxlog"
	"github.com/vk/flowcanvas/internal/graph"
	"github.com/vk/flowcanvas/internal/layout"
	"github.com/vk/flowcanvas/internal/typing"
)

// ErrUnknownNode is returned when an operation names a node id that is not
// in the working graph.
var ErrUnknownNode = fmt.Errorf("unknown node")

// IncompatibleError reports a rejected connection attempt.
type IncompatibleError struct {
	OutputType string
	InputType  string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("output type %q is not connectable to input type %q", e.OutputType, e.InputType)
}

// duplicateOffset is the fixed pixel offset applied to cloned nodes before
// the re-layout runs, so renderers that draw mid-operation never see clones
// exactly covering their originals.
const duplicateOffset = 24.0

// InsertionHint is an advisory initial position for a freshly added node.
// The global re-layout that follows every structural edit supersedes it; it
// only positions the node for renderers that draw before layout lands.
type InsertionHint struct {
	X, Y float64
}

// Session is one editing session over a workflow graph.
type Session struct {
	id   string
	base *graph.Graph
	work *graph.Graph
	cat  *catalog.Catalog

	baseBounds layout.Bounds
	bounds     layout.Bounds

	nextID   int
	selected map[string]struct{}
}

// Begin snapshots the displayed graph and opens a session on a private
// clone. The catalog may be unpopulated; every dependent check degrades to
// permissive.
func Begin(ctx context.Context, g *graph.Graph, bounds layout.Bounds, cat *catalog.Catalog) *Session {
	s := &Session{
		id:         uuid.NewString(),
		base:       g,
		work:       g.Clone(),
		cat:        cat,
		baseBounds: bounds,
		bounds:     bounds,
		nextID:     g.MaxNumericID() + 1,
		selected:   make(map[string]struct{}),
	}
	ctxlog.FromContext(ctx).Debug("editing session opened",
		"session", s.id, "nodes", g.NodeCount())
	return s
}

// Graph returns the working copy. It is valid for rendering during the edit
// but must only be mutated through the session API.
func (s *Session) Graph() *graph.Graph {
	return s.work
}

// Bounds returns the working copy's current bounding box.
func (s *Session) Bounds() layout.Bounds {
	return s.bounds
}

// Selected returns the selected node ids in working-graph insertion order.
func (s *Session) Selected() []string {
	var out []string
	for _, n := range s.work.Nodes() {
		if _, ok := s.selected[n.ID]; ok {
			out = append(out, n.ID)
		}
	}
	return out
}

// Select replaces the selection.
func (s *Session) Select(ids ...string) {
	s.selected = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.work.Node(id); ok {
			s.selected[id] = struct{}{}
		}
	}
}

// Commit finalizes the edit: the working copy becomes the new baseline and
// is returned together with its bounds. The session must not be used after.
func (s *Session) Commit(ctx context.Context) (*graph.Graph, layout.Bounds) {
	ctxlog.FromContext(ctx).Debug("editing session committed", "session", s.id)
	return s.work, s.bounds
}

// Discard drops every change and returns the pre-edit snapshot verbatim.
func (s *Session) Discard(ctx context.Context) (*graph.Graph, layout.Bounds) {
	ctxlog.FromContext(ctx).Debug("editing session discarded", "session", s.id)
	return s.base, s.baseBounds
}

// allocateID returns a fresh node id. The counter is monotonic for the
// session lifetime, so an id freed by deletion is never handed out again.
func (s *Session) allocateID() string {
	for {
		id := strconv.Itoa(s.nextID)
		s.nextID++
		if _, taken := s.work.Node(id); !taken {
			return id
		}
	}
}

// AddNode creates a node of the given type: literal inputs get the declared
// default (or a type-appropriate zero), connection-typed and force-input
// slots start unconnected. The new node is selected and the graph re-laid
// out.
func (s *Session) AddNode(ctx context.Context, typeDef *catalog.NodeType, hint *InsertionHint) (*graph.Node, error) {
	if typeDef == nil {
		return nil, fmt.Errorf("add node: nil type definition")
	}
	n := &graph.Node{
		ID:                s.allocateID(),
		ClassType:         typeDef.ClassType,
		Title:             typeDef.ClassType,
		Category:          graph.CategoryOf(typeDef.ClassType),
		TemplateInputKeys: make(map[string]struct{}),
	}
	for i := range typeDef.Inputs {
		spec := &typeDef.Inputs[i]
		var v graph.InputValue
		if spec.IsConnection() {
			v = graph.UnconnectedSlot{ExpectedType: spec.Type}
		} else {
			v = graph.Literal{Value: spec.DefaultValue()}
		}
		n.Inputs = append(n.Inputs, graph.InputField{Name: spec.Name, Value: v})
	}
	n.Outputs = append(n.Outputs, typeDef.Outputs...)
	if hint != nil {
		n.X, n.Y = hint.X, hint.Y
	}

	if err := s.work.AddNode(n); err != nil {
		return nil, fmt.Errorf("add node: %w", err)
	}
	s.relayout()
	s.Select(n.ID)
	ctxlog.FromContext(ctx).Debug("node added",
		"session", s.id, "node", n.ID, "class_type", n.ClassType)
	return n, nil
}

// DeleteNodes removes the named nodes and every edge touching them. The
// surviving endpoint of each severed incoming connection is reverted to an
// unconnected slot carrying the edge's resolved type, so no input is left
// pointing at a node that no longer exists. Triggers a re-layout.
func (s *Session) DeleteNodes(ctx context.Context, ids ...string) error {
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.work.Node(id); !ok {
			return fmt.Errorf("delete node %q: %w", id, ErrUnknownNode)
		}
		doomed[id] = struct{}{}
	}

	// Revert surviving peers before the edges disappear, while the edge
	// still tells us the slot type.
	for _, e := range s.work.Edges() {
		_, sourceDoomed := doomed[e.SourceNodeID]
		_, targetDoomed := doomed[e.TargetNodeID]
		if !sourceDoomed || targetDoomed {
			continue
		}
		target, ok := s.work.Node(e.TargetNodeID)
		if !ok {
			continue
		}
		target.SetInput(e.TargetInputName, graph.UnconnectedSlot{
			ExpectedType: s.slotTypeForInput(target, e.TargetInputName, e.SlotType),
		})
	}

	for id := range doomed {
		s.work.RemoveNode(id)
		delete(s.selected, id)
	}
	s.relayout()
	ctxlog.FromContext(ctx).Debug("nodes deleted", "session", s.id, "count", len(doomed))
	return nil
}

// DuplicateNodes clones each named node with a fresh id and a fixed offset.
// Edges are cloned only when both endpoints are inside the selection; a
// clone's connection to a node outside the selection becomes an unconnected
// slot, never an edge back to the original's neighborhood. The clones become
// the new selection and the graph is re-laid out.
func (s *Session) DuplicateNodes(ctx context.Context, ids ...string) ([]string, error) {
	idMap := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := s.work.Node(id); !ok {
			return nil, fmt.Errorf("duplicate node %q: %w", id, ErrUnknownNode)
		}
		if _, dup := idMap[id]; dup {
			continue
		}
		idMap[id] = s.allocateID()
	}

	// Clone in insertion order so the clones keep their relative order.
	var newIDs []string
	for _, n := range s.work.Nodes() {
		newID, selected := idMap[n.ID]
		if !selected {
			continue
		}
		clone := n.Clone()
		clone.ID = newID
		clone.X += duplicateOffset
		clone.Y += duplicateOffset

		for i := range clone.Inputs {
			conn, ok := clone.Inputs[i].Value.(graph.Connection)
			if !ok {
				continue
			}
			if mapped, inside := idMap[conn.SourceNodeID]; inside {
				clone.Inputs[i].Value = graph.Connection{
					SourceNodeID:      mapped,
					SourceOutputIndex: conn.SourceOutputIndex,
				}
			} else {
				clone.Inputs[i].Value = graph.UnconnectedSlot{
					ExpectedType: s.slotTypeForInput(clone, clone.Inputs[i].Name, ""),
				}
			}
		}

		if err := s.work.AddNode(clone); err != nil {
			return nil, fmt.Errorf("duplicate node %q: %w", n.ID, err)
		}
		newIDs = append(newIDs, newID)
	}

	// Inter-selection edges, rewritten onto the clone ids.
	for _, e := range s.work.Edges() {
		newSrc, srcInside := idMap[e.SourceNodeID]
		newTgt, tgtInside := idMap[e.TargetNodeID]
		if !srcInside || !tgtInside {
			continue
		}
		if err := s.work.AddEdge(graph.Edge{
			SourceNodeID:      newSrc,
			SourceOutputIndex: e.SourceOutputIndex,
			TargetNodeID:      newTgt,
			TargetInputName:   e.TargetInputName,
			SlotType:          e.SlotType,
		}); err != nil {
			return nil, fmt.Errorf("duplicate edge: %w", err)
		}
	}

	s.relayout()
	s.Select(newIDs...)
	ctxlog.FromContext(ctx).Debug("nodes duplicated", "session", s.id, "count", len(newIDs))
	return newIDs, nil
}

// Connect wires a source output slot into a target input. The types must be
// compatible (unresolved and wildcard types accept everything); any edge
// already terminating at the target input is removed first, since an input
// accepts at most one incoming edge.
func (s *Session) Connect(ctx context.Context, sourceNodeID string, sourceOutputIndex int, targetNodeID, targetInputName string) error {
	src, ok := s.work.Node(sourceNodeID)
	if !ok {
		return fmt.Errorf("connect: source %q: %w", sourceNodeID, ErrUnknownNode)
	}
	tgt, ok := s.work.Node(targetNodeID)
	if !ok {
		return fmt.Errorf("connect: target %q: %w", targetNodeID, ErrUnknownNode)
	}

	outputType := s.cat.OutputType(src.ClassType, sourceOutputIndex)
	if outputType == "" && sourceOutputIndex >= 0 && sourceOutputIndex < len(src.Outputs) {
		outputType = src.Outputs[sourceOutputIndex]
	}
	inputType := s.slotTypeForInput(tgt, targetInputName, "")

	if !typing.Compatible(outputType, inputType) {
		return &IncompatibleError{OutputType: outputType, InputType: inputType}
	}

	s.work.RemoveEdgeInto(targetNodeID, targetInputName)
	if err := s.work.AddEdge(graph.Edge{
		SourceNodeID:      sourceNodeID,
		SourceOutputIndex: sourceOutputIndex,
		TargetNodeID:      targetNodeID,
		TargetInputName:   targetInputName,
		SlotType:          outputType,
	}); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	tgt.SetInput(targetInputName, graph.Connection{
		SourceNodeID:      sourceNodeID,
		SourceOutputIndex: sourceOutputIndex,
	})
	ctxlog.FromContext(ctx).Debug("connected",
		"session", s.id,
		"source", sourceNodeID, "output", sourceOutputIndex,
		"target", targetNodeID, "input", targetInputName)
	return nil
}

// Disconnect severs the edge terminating at the named input. A literal-
// capable input reverts to its catalog default (or a type-appropriate zero);
// a connection-only input reverts to an unconnected slot, because a literal
// there could never be valid wire JSON.
func (s *Session) Disconnect(ctx context.Context, nodeID, inputName string) error {
	n, ok := s.work.Node(nodeID)
	if !ok {
		return fmt.Errorf("disconnect: node %q: %w", nodeID, ErrUnknownNode)
	}
	s.work.RemoveEdgeInto(nodeID, inputName)

	reverted := false
	if typeDef, known := s.cat.Get(n.ClassType); known {
		if spec, ok := typeDef.Input(inputName); ok {
			if spec.IsConnection() {
				n.SetInput(inputName, graph.UnconnectedSlot{ExpectedType: spec.Type})
			} else {
				n.SetInput(inputName, graph.Literal{Value: spec.DefaultValue()})
			}
			reverted = true
		}
	}
	if !reverted {
		n.SetInput(inputName, graph.UnconnectedSlot{
			ExpectedType: s.slotTypeForInput(n, inputName, ""),
		})
	}
	ctxlog.FromContext(ctx).Debug("disconnected",
		"session", s.id, "node", nodeID, "input", inputName)
	return nil
}

// RenameNode sets a node's display title. Metadata-only; no re-layout.
func (s *Session) RenameNode(nodeID, title string) error {
	n, ok := s.work.Node(nodeID)
	if !ok {
		return fmt.Errorf("rename node %q: %w", nodeID, ErrUnknownNode)
	}
	n.Title = title
	return nil
}

// SetBypassed toggles a node's bypass flag. The node stays structurally
// present; layout and type rules keep applying to it. Metadata-only.
func (s *Session) SetBypassed(nodeID string, bypassed bool) error {
	n, ok := s.work.Node(nodeID)
	if !ok {
		return fmt.Errorf("set bypassed on node %q: %w", nodeID, ErrUnknownNode)
	}
	if bypassed {
		n.Mode = graph.ModeBypassed
		n.RawMode = graph.WireModeBypassed
	} else {
		n.Mode = graph.ModeNormal
		n.RawMode = graph.WireModeNormal
	}
	return nil
}

func (s *Session) relayout() {
	s.bounds = layout.Apply(s.work)
}

// slotTypeForInput resolves the declared type of a node's input, preferring
// the catalog, then the input's own unconnected-slot annotation, then the
// fallback (typically an edge's resolved slot type). "" means unknown and
// behaves as wildcard everywhere.
func (s *Session) slotTypeForInput(n *graph.Node, inputName, fallback string) string {
	if t := s.cat.InputType(n.ClassType, inputName); t != "" {
		return t
	}
	if v, ok := n.Input(inputName); ok {
		if slot, ok := v.(graph.UnconnectedSlot); ok && slot.ExpectedType != "" {
			return slot.ExpectedType
		}
	}
	return fallback
}
