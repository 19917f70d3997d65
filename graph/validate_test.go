package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"radioflow/blocks"
	"radioflow/errs"
	"radioflow/graph"
)

// TestInferRejectsCycle covers scenario S5: a cycle among nodes must be
// rejected before any type or rate work happens.
func TestInferRejectsCycle(t *testing.T) {
	g := graph.New()
	a := g.AddBlock(blocks.NewScaleTransform("a", 1))
	b := g.AddBlock(blocks.NewScaleTransform("b", 1))

	require.NoError(t, g.Connect(a, "out", b, "in"))
	require.NoError(t, g.Connect(b, "out", a, "in"))

	_, err := graph.Infer(g)
	require.Error(t, err)
	require.Equal(t, errs.CodeCyclic, errs.Of(err))
}

// TestInferRejectsSelfLoop covers the single-node degenerate case of S5: a
// block wired back into its own input.
func TestInferRejectsSelfLoop(t *testing.T) {
	g := graph.New()
	a := g.AddBlock(blocks.NewScaleTransform("a", 1))

	require.NoError(t, g.Connect(a, "out", a, "in"))

	_, err := graph.Infer(g)
	require.Error(t, err)
	require.Equal(t, errs.CodeCyclic, errs.Of(err))
}
