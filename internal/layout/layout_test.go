package layout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowcanvas/internal/graph"
	"github.com/vk/flowcanvas/internal/testutil"
	"github.com/vk/flowcanvas/internal/wire"
)

func parseFixture(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := wire.Parse(context.Background(), []byte(testutil.TextToImageWorkflow), testutil.TestCatalog())
	require.NoError(t, err)
	return g
}

func TestApplyEmptyGraph(t *testing.T) {
	b := Apply(graph.New("", ""))
	assert.Zero(t, b.Width())
	assert.Zero(t, b.Height())
}

func TestApplyColumns(t *testing.T) {
	g := parseFixture(t)
	Apply(g)

	column := func(id string) int {
		n, ok := g.Node(id)
		require.True(t, ok)
		return int(n.X / (NodeWidth + ColumnGap))
	}

	// Longest path from any root decides the column.
	assert.Equal(t, 0, column("4"), "loader is a root")
	assert.Equal(t, 0, column("5"), "latent allocation is a root")
	assert.Equal(t, 1, column("1"))
	assert.Equal(t, 1, column("3"))
	assert.Equal(t, 2, column("2"), "sampler sits past both encoders")
	assert.Equal(t, 3, column("6"))
	assert.Equal(t, 4, column("7"))
}

func TestApplyStackingAndBounds(t *testing.T) {
	g := parseFixture(t)
	b := Apply(g)

	t.Run("same column stacks in insertion order", func(t *testing.T) {
		n1, _ := g.Node("1")
		n3, _ := g.Node("3")
		assert.Equal(t, n1.X, n3.X)
		assert.Equal(t, n1.Y+n1.Height+RowGap, n3.Y, "vertical gap between stacked nodes")
	})

	t.Run("no overlap within a column", func(t *testing.T) {
		byX := make(map[float64][]*graph.Node)
		for _, n := range g.Nodes() {
			byX[n.X] = append(byX[n.X], n)
		}
		for _, col := range byX {
			for i := 0; i < len(col); i++ {
				for j := i + 1; j < len(col); j++ {
					a, b := col[i], col[j]
					overlap := a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
					assert.False(t, overlap, "nodes %s and %s overlap", a.ID, b.ID)
				}
			}
		}
	})

	t.Run("bounds enclose every node", func(t *testing.T) {
		assert.Positive(t, b.Width())
		assert.Positive(t, b.Height())
		for _, n := range g.Nodes() {
			assert.GreaterOrEqual(t, n.X, b.MinX)
			assert.GreaterOrEqual(t, n.Y, b.MinY)
			assert.LessOrEqual(t, n.X+n.Width, b.MaxX)
			assert.LessOrEqual(t, n.Y+n.Height, b.MaxY)
		}
	})
}

func TestApplyDeterministic(t *testing.T) {
	first := parseFixture(t)
	second := parseFixture(t)
	b1 := Apply(first)
	b2 := Apply(second)

	assert.Equal(t, b1, b2)
	for _, n := range first.Nodes() {
		m, ok := second.Node(n.ID)
		require.True(t, ok)
		assert.Equal(t, n.X, m.X, "node %s x", n.ID)
		assert.Equal(t, n.Y, m.Y, "node %s y", n.ID)
	}
}

func TestApplyIsolatedNodesGoLast(t *testing.T) {
	g := parseFixture(t)
	require.NoError(t, g.AddNode(&graph.Node{
		ID:        "99",
		ClassType: "EmptyLatentImage",
		Title:     "EmptyLatentImage",
	}))
	Apply(g)

	orphan, _ := g.Node("99")
	for _, n := range g.Nodes() {
		if n.ID == "99" {
			continue
		}
		assert.Greater(t, orphan.X, n.X, "orphan must sit past node %s", n.ID)
	}
}

func TestApplyNodeHeight(t *testing.T) {
	g := parseFixture(t)
	Apply(g)

	t.Run("sized by slot rows", func(t *testing.T) {
		// KSampler: 6 literals vs 4 connection slots and 1 output.
		ks, _ := g.Node("2")
		assert.Equal(t, HeaderHeight+6*RowHeight, ks.Height)

		// Loader: 1 literal vs 3 outputs.
		loader, _ := g.Node("4")
		assert.Equal(t, HeaderHeight+3*RowHeight, loader.Height)
	})

	t.Run("width is uniform", func(t *testing.T) {
		for _, n := range g.Nodes() {
			assert.Equal(t, NodeWidth, n.Width)
		}
	})
}

func TestApplyCycleDefense(t *testing.T) {
	g := graph.New("", "")
	for _, id := range []string{"a", "b"} {
		require.NoError(t, g.AddNode(&graph.Node{ID: id, ClassType: "X", Title: "X"}))
	}
	require.NoError(t, g.AddEdge(graph.Edge{SourceNodeID: "a", TargetNodeID: "b", TargetInputName: "in"}))
	require.NoError(t, g.AddEdge(graph.Edge{SourceNodeID: "b", TargetNodeID: "a", TargetInputName: "in"}))

	// Must terminate and still place every node.
	b := Apply(g)
	assert.Positive(t, b.Width())
}
