package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flowcanvas/internal/graph"
	"github.com/vk/flowcanvas/internal/layout"
	"github.com/vk/flowcanvas/internal/testutil"
	"github.com/vk/flowcanvas/internal/typing"
	"github.com/vk/flowcanvas/internal/wire"
)

func beginFixture(t *testing.T) *Session {
	t.Helper()
	cat := testutil.TestCatalog()
	g, err := wire.Parse(context.Background(), []byte(testutil.TextToImageWorkflow), cat)
	require.NoError(t, err)
	typing.ResolveEdgeTypes(g, cat)
	bounds := layout.Apply(g)
	return Begin(context.Background(), g, bounds, cat)
}

func TestBeginIsolatesTheBaseline(t *testing.T) {
	cat := testutil.TestCatalog()
	g, err := wire.Parse(context.Background(), []byte(testutil.TextToImageWorkflow), cat)
	require.NoError(t, err)
	bounds := layout.Apply(g)

	s := Begin(context.Background(), g, bounds, cat)
	require.NoError(t, s.DeleteNodes(context.Background(), "7"))

	assert.Equal(t, 7, g.NodeCount(), "edits must not reach the displayed graph")
	assert.Equal(t, 6, s.Graph().NodeCount())
}

func TestAddNode(t *testing.T) {
	s := beginFixture(t)
	cat := testutil.TestCatalog()
	typeDef, ok := cat.Get("KSampler")
	require.True(t, ok)

	n, err := s.AddNode(context.Background(), typeDef, &InsertionHint{X: 100, Y: 100})
	require.NoError(t, err)

	t.Run("fresh id past the document maximum", func(t *testing.T) {
		assert.Equal(t, "8", n.ID)
	})

	t.Run("literal inputs get defaults", func(t *testing.T) {
		v, ok := n.Input("steps")
		require.True(t, ok)
		lit, isLit := v.(graph.Literal)
		require.True(t, isLit)
		assert.True(t, lit.Value.RawEquals(cty.NumberIntVal(20)))

		v, ok = n.Input("sampler_name")
		require.True(t, ok)
		name, ok := graph.LiteralString(v)
		require.True(t, ok)
		assert.Equal(t, "euler", name, "combo inputs default to their first option")
	})

	t.Run("connection inputs start unconnected", func(t *testing.T) {
		v, ok := n.Input("positive")
		require.True(t, ok)
		slot, isSlot := v.(graph.UnconnectedSlot)
		require.True(t, isSlot)
		assert.Equal(t, "CONDITIONING", slot.ExpectedType)
	})

	t.Run("new node is the selection", func(t *testing.T) {
		assert.Equal(t, []string{"8"}, s.Selected())
	})

	t.Run("outputs copied from the type", func(t *testing.T) {
		assert.Equal(t, []string{"LATENT"}, n.Outputs)
	})
}

func TestDeleteNodes(t *testing.T) {
	t.Run("unknown id fails the whole call", func(t *testing.T) {
		s := beginFixture(t)
		before := s.Graph().NodeCount()
		err := s.DeleteNodes(context.Background(), "7", "nope")
		require.ErrorIs(t, err, ErrUnknownNode)
		assert.Equal(t, before, s.Graph().NodeCount(), "failed delete must change nothing")
	})

	t.Run("surviving peers revert to typed unconnected slots", func(t *testing.T) {
		s := beginFixture(t)
		require.NoError(t, s.DeleteNodes(context.Background(), "1"))

		ks, ok := s.Graph().Node("2")
		require.True(t, ok)
		v, ok := ks.Input("positive")
		require.True(t, ok)
		slot, isSlot := v.(graph.UnconnectedSlot)
		require.True(t, isSlot)
		assert.Equal(t, "CONDITIONING", slot.ExpectedType)

		_, found := s.Graph().EdgeInto("2", "positive")
		assert.False(t, found)
	})

	t.Run("deleting both endpoints leaves no stragglers", func(t *testing.T) {
		s := beginFixture(t)
		require.NoError(t, s.DeleteNodes(context.Background(), "6", "7"))
		assert.Equal(t, 5, s.Graph().NodeCount())
		for _, e := range s.Graph().Edges() {
			assert.NotContains(t, []string{"6", "7"}, e.SourceNodeID)
			assert.NotContains(t, []string{"6", "7"}, e.TargetNodeID)
		}
	})

	t.Run("deletion drops the node from the selection", func(t *testing.T) {
		s := beginFixture(t)
		s.Select("7")
		require.NoError(t, s.DeleteNodes(context.Background(), "7"))
		assert.Empty(t, s.Selected())
	})
}

func TestDuplicateNodes(t *testing.T) {
	t.Run("internal wiring is preserved between clones", func(t *testing.T) {
		s := beginFixture(t)
		newIDs, err := s.DuplicateNodes(context.Background(), "1", "2")
		require.NoError(t, err)
		require.Len(t, newIDs, 2)

		encClone, samplerClone := newIDs[0], newIDs[1]
		e, ok := s.Graph().EdgeInto(samplerClone, "positive")
		require.True(t, ok)
		assert.Equal(t, encClone, e.SourceNodeID, "the clone's edge targets the other clone")

		ks, _ := s.Graph().Node(samplerClone)
		v, _ := ks.Input("positive")
		conn, isConn := v.(graph.Connection)
		require.True(t, isConn)
		assert.Equal(t, encClone, conn.SourceNodeID)
	})

	t.Run("connections outside the selection are severed", func(t *testing.T) {
		s := beginFixture(t)
		newIDs, err := s.DuplicateNodes(context.Background(), "2")
		require.NoError(t, err)
		require.Len(t, newIDs, 1)

		clone, _ := s.Graph().Node(newIDs[0])
		v, ok := clone.Input("negative")
		require.True(t, ok)
		slot, isSlot := v.(graph.UnconnectedSlot)
		require.True(t, isSlot, "a clone never stays wired to the original's neighbors")
		assert.Equal(t, "CONDITIONING", slot.ExpectedType)

		_, found := s.Graph().EdgeInto(newIDs[0], "negative")
		assert.False(t, found)
	})

	t.Run("originals are untouched", func(t *testing.T) {
		s := beginFixture(t)
		_, err := s.DuplicateNodes(context.Background(), "2")
		require.NoError(t, err)

		orig, _ := s.Graph().Node("2")
		v, _ := orig.Input("positive")
		conn, isConn := v.(graph.Connection)
		require.True(t, isConn)
		assert.Equal(t, "1", conn.SourceNodeID)
	})

	t.Run("clones become the selection", func(t *testing.T) {
		s := beginFixture(t)
		newIDs, err := s.DuplicateNodes(context.Background(), "1", "3")
		require.NoError(t, err)
		assert.ElementsMatch(t, newIDs, s.Selected())
	})

	t.Run("unknown id rejected", func(t *testing.T) {
		s := beginFixture(t)
		_, err := s.DuplicateNodes(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrUnknownNode)
	})
}

func TestConnect(t *testing.T) {
	t.Run("rewires and replaces the previous edge", func(t *testing.T) {
		s := beginFixture(t)
		// Swap positive and negative prompts on the sampler.
		require.NoError(t, s.Connect(context.Background(), "3", 0, "2", "positive"))

		e, ok := s.Graph().EdgeInto("2", "positive")
		require.True(t, ok)
		assert.Equal(t, "3", e.SourceNodeID)
		assert.Equal(t, "CONDITIONING", e.SlotType)

		ks, _ := s.Graph().Node("2")
		v, _ := ks.Input("positive")
		conn, isConn := v.(graph.Connection)
		require.True(t, isConn)
		assert.Equal(t, "3", conn.SourceNodeID)

		// Exactly one edge may terminate at the input.
		count := 0
		for _, e := range s.Graph().Edges() {
			if e.TargetNodeID == "2" && e.TargetInputName == "positive" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("incompatible types rejected", func(t *testing.T) {
		s := beginFixture(t)
		// LATENT output into an IMAGE input.
		err := s.Connect(context.Background(), "5", 0, "7", "images")
		var ie *IncompatibleError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, "LATENT", ie.OutputType)
		assert.Equal(t, "IMAGE", ie.InputType)

		e, ok := s.Graph().EdgeInto("7", "images")
		require.True(t, ok)
		assert.Equal(t, "6", e.SourceNodeID, "rejected connect must leave the old edge alone")
	})

	t.Run("unknown endpoints rejected", func(t *testing.T) {
		s := beginFixture(t)
		assert.ErrorIs(t, s.Connect(context.Background(), "nope", 0, "2", "positive"), ErrUnknownNode)
		assert.ErrorIs(t, s.Connect(context.Background(), "1", 0, "nope", "positive"), ErrUnknownNode)
	})
}

func TestDisconnect(t *testing.T) {
	s := beginFixture(t)

	t.Run("connection-only input becomes an unconnected slot", func(t *testing.T) {
		require.NoError(t, s.Disconnect(context.Background(), "2", "positive"))

		_, found := s.Graph().EdgeInto("2", "positive")
		assert.False(t, found)

		ks, _ := s.Graph().Node("2")
		v, _ := ks.Input("positive")
		slot, isSlot := v.(graph.UnconnectedSlot)
		require.True(t, isSlot)
		assert.Equal(t, "CONDITIONING", slot.ExpectedType)
	})

	t.Run("unknown node rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.Disconnect(context.Background(), "nope", "x"), ErrUnknownNode)
	})
}

func TestDisconnectLiteralCapableInput(t *testing.T) {
	cat := testutil.TestCatalog()
	g, err := wire.Parse(context.Background(),
		[]byte(`{"1": {"class_type": "CLIPTextEncode", "inputs": {"text": ["2", 0], "clip": ["2", 0]}},
			"2": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "sd_xl_base_1.0.safetensors"}}}`), cat)
	require.NoError(t, err)
	s := Begin(context.Background(), g, layout.Apply(g), cat)

	require.NoError(t, s.Disconnect(context.Background(), "1", "text"))

	enc, _ := s.Graph().Node("1")
	v, _ := enc.Input("text")
	lit, isLit := v.(graph.Literal)
	require.True(t, isLit, "a literal-capable input reverts to a literal, not a slot")
	assert.True(t, lit.Value.RawEquals(cty.StringVal("")))
}

func TestIDsNeverReused(t *testing.T) {
	s := beginFixture(t)
	cat := testutil.TestCatalog()
	typeDef, _ := cat.Get("EmptyLatentImage")

	n1, err := s.AddNode(context.Background(), typeDef, nil)
	require.NoError(t, err)
	require.NoError(t, s.DeleteNodes(context.Background(), n1.ID))

	n2, err := s.AddNode(context.Background(), typeDef, nil)
	require.NoError(t, err)
	assert.NotEqual(t, n1.ID, n2.ID, "a deleted id must never come back within the session")
}

func TestCommitAndDiscard(t *testing.T) {
	t.Run("discard returns the snapshot verbatim", func(t *testing.T) {
		cat := testutil.TestCatalog()
		g, err := wire.Parse(context.Background(), []byte(testutil.TextToImageWorkflow), cat)
		require.NoError(t, err)
		bounds := layout.Apply(g)

		s := Begin(context.Background(), g, bounds, cat)
		require.NoError(t, s.DeleteNodes(context.Background(), "7"))
		require.NoError(t, s.RenameNode("2", "My Sampler"))

		restored, restoredBounds := s.Discard(context.Background())
		assert.Same(t, g, restored)
		assert.Equal(t, bounds, restoredBounds)
		assert.Equal(t, 7, restored.NodeCount())
		ks, _ := restored.Node("2")
		assert.Equal(t, "KSampler", ks.Title)
	})

	t.Run("commit returns the edited graph and fresh bounds", func(t *testing.T) {
		s := beginFixture(t)
		require.NoError(t, s.DeleteNodes(context.Background(), "7"))

		committed, bounds := s.Commit(context.Background())
		assert.Equal(t, 6, committed.NodeCount())
		assert.Equal(t, s.Bounds(), bounds)
	})
}

func TestRenameAndBypass(t *testing.T) {
	s := beginFixture(t)

	require.NoError(t, s.RenameNode("2", "Main Sampler"))
	ks, _ := s.Graph().Node("2")
	assert.Equal(t, "Main Sampler", ks.Title)

	require.NoError(t, s.SetBypassed("2", true))
	assert.Equal(t, graph.ModeBypassed, ks.Mode)
	assert.Equal(t, graph.WireModeBypassed, ks.RawMode)
	assert.Equal(t, 7, s.Graph().NodeCount(), "bypass keeps the node structurally present")

	require.NoError(t, s.SetBypassed("2", false))
	assert.Equal(t, graph.ModeNormal, ks.Mode)
	assert.Equal(t, graph.WireModeNormal, ks.RawMode)

	assert.ErrorIs(t, s.RenameNode("nope", "x"), ErrUnknownNode)
	assert.ErrorIs(t, s.SetBypassed("nope", true), ErrUnknownNode)
}

func TestEditsRelayout(t *testing.T) {
	s := beginFixture(t)
	before := s.Bounds()

	require.NoError(t, s.DeleteNodes(context.Background(), "7"))
	assert.NotEqual(t, before, s.Bounds(), "structural edits recompute the bounding box")
}
