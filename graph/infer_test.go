package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"radioflow/block"
	"radioflow/blocks"
	"radioflow/errs"
	"radioflow/graph"
	"radioflow/types"
)

// combinerBlock is a test-only two-input block used to exercise
// checkRateAlignment's rejection path — no reference block in package
// blocks declares more than one input port.
type combinerBlock struct {
	block.Base
	quantumA, quantumB int
}

func newCombinerBlock(id string, quantumA, quantumB int) *combinerBlock {
	b := &combinerBlock{
		Base:     block.NewBase(id, "test_combiner", []block.Port{{Name: "a"}, {Name: "b"}}, []block.Port{{Name: "out"}}),
		quantumA: quantumA,
		quantumB: quantumB,
	}
	b.AddSignature(block.Signature{
		Inputs: []block.TypeMatcher{
			block.Concrete(types.Float32Type),
			block.Concrete(types.Float32Type),
		},
		Outputs: []block.TypeProducer{block.SameAsInput(0)},
		Rate:    block.IdentityRate,
	})
	return b
}

func (b *combinerBlock) PortQuantum(portName string) int {
	if portName == "a" {
		return b.quantumA
	}
	return b.quantumB
}

func (b *combinerBlock) Initialize(context.Context) error { return nil }

func (b *combinerBlock) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	return []types.Vector{in[0]}, nil
}

func (b *combinerBlock) Cleanup() error { return nil }

// TestInferRejectsTypeMismatch covers scenario S4: a byte-typed output
// wired into a float32-only input must fail Differentiate during
// inference, not panic or silently pass through.
func TestInferRejectsTypeMismatch(t *testing.T) {
	g := graph.New()
	src := g.AddBlock(blocks.NewByteSequenceSource("src", []byte{1, 2, 3}))
	tr := g.AddBlock(blocks.NewScaleTransform("scale", 2))

	require.NoError(t, g.Connect(src, "out", tr, "in"))

	_, err := graph.Infer(g)
	require.Error(t, err)
	require.Equal(t, errs.CodeTypeMismatch, errs.Of(err))
}

// TestInferResolvesEdgeQuantumToConsumerLCM exercises graph.Quantized: a
// decimate-by-4 consumer forces its inbound edge's read quantum to 4
// even though its producer declares no quantum of its own (default 1).
func TestInferResolvesEdgeQuantumToConsumerLCM(t *testing.T) {
	g := graph.New()
	src := g.AddBlock(blocks.NewInfiniteCounterSource("src", 8, 1000))
	dec := g.AddBlock(blocks.NewDecimateTransform("dec", 4))
	sink := g.AddBlock(blocks.NewThrottledSink("sink", 1000, 1000))

	require.NoError(t, g.Connect(src, "out", dec, "in"))
	require.NoError(t, g.Connect(dec, "out", sink, "in"))

	plan, err := graph.Infer(g)
	require.NoError(t, err)

	edge := graph.PortRef{Node: src, Port: "out"}
	require.Equal(t, 4, plan.EdgeQuantum[edge])
}

// TestInferRejectsRateMismatch exercises the C3 rejection path: a
// two-input block whose declared per-port quanta don't correspond to
// the same wall-clock batch duration at its resolved input rates must
// fail inference with a rate-mismatch TypeMismatch rather than being
// silently accepted.
func TestInferRejectsRateMismatch(t *testing.T) {
	g := graph.New()
	a := g.AddBlock(blocks.NewInfiniteCounterSource("a", 4, 1000))
	b := g.AddBlock(blocks.NewInfiniteCounterSource("b", 4, 1000))
	// quantumA=1 samples at 1000Hz takes half the wall-clock time that
	// quantumB=2 samples at the same 1000Hz would — irreconcilable.
	comb := g.AddBlock(newCombinerBlock("comb", 1, 2))

	require.NoError(t, g.Connect(a, "out", comb, "a"))
	require.NoError(t, g.Connect(b, "out", comb, "b"))

	_, err := graph.Infer(g)
	require.Error(t, err)
	require.Equal(t, errs.CodeTypeMismatch, errs.Of(err))
	tm, ok := err.(*errs.TypeMismatch)
	require.True(t, ok)
	require.Equal(t, "rate-mismatch", tm.Reason)
}
