package blocks

import (
	"context"

	"radioflow/block"
	"radioflow/types"
	"radioflow/x/mathx"
)

// ScaleTransform multiplies every float32 sample by a fixed scalar.
type ScaleTransform struct {
	block.Base
	factor float32
}

// NewScaleTransform builds a transform accepting and producing float32.
func NewScaleTransform(id string, factor float32) *ScaleTransform {
	b := &ScaleTransform{
		Base:   block.NewBase(id, "scale_transform", []block.Port{{Name: "in"}}, []block.Port{{Name: "out"}}),
		factor: mathx.Clamp(factor, -1e6, 1e6),
	}
	b.AddSignature(block.Signature{
		Inputs:  []block.TypeMatcher{block.Concrete(types.Float32Type)},
		Outputs: []block.TypeProducer{block.SameAsInput(0)},
		Rate:    block.IdentityRate,
	})
	return b
}

func (b *ScaleTransform) Initialize(context.Context) error { return nil }

func (b *ScaleTransform) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	src := in[0].Data.([]float32)
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = v * b.factor
	}
	return []types.Vector{types.NewFloat32Vector(out)}, nil
}

func (b *ScaleTransform) Cleanup() error { return nil }

// DecimateTransform keeps every factor-th float32 sample, declaring an
// input read quantum of factor samples per output sample so the
// scheduler always delivers exactly that many input samples per Process
// call regardless of how the upstream producer batched its writes —
// this is the reference block exercising graph.Quantized and the
// LCM-based edge quantum resolution.
type DecimateTransform struct {
	block.Base
	factor int
}

// NewDecimateTransform builds a decimate-by-factor transform over
// float32 samples. factor < 1 is clamped to 1 (pass-through).
func NewDecimateTransform(id string, factor int) *DecimateTransform {
	if factor < 1 {
		factor = 1
	}
	b := &DecimateTransform{
		Base:   block.NewBase(id, "decimate_transform", []block.Port{{Name: "in"}}, []block.Port{{Name: "out"}}),
		factor: factor,
	}
	b.AddSignature(block.Signature{
		Inputs:  []block.TypeMatcher{block.Concrete(types.Float32Type)},
		Outputs: []block.TypeProducer{block.SameAsInput(0)},
		Rate: func(in []float64) float64 {
			if len(in) == 0 {
				return 0
			}
			return in[0] / float64(factor)
		},
	})
	return b
}

// PortQuantum declares this block's per-read sample count: factor
// samples in, one decimated sample out.
func (b *DecimateTransform) PortQuantum(portName string) int {
	if portName == "in" {
		return b.factor
	}
	return 1
}

func (b *DecimateTransform) Initialize(context.Context) error { return nil }

func (b *DecimateTransform) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	src := in[0].Data.([]float32)
	out := make([]float32, 0, len(src)/b.factor+1)
	for i := 0; i < len(src); i += b.factor {
		out = append(out, src[i])
	}
	return []types.Vector{types.NewFloat32Vector(out)}, nil
}

func (b *DecimateTransform) Cleanup() error { return nil }
