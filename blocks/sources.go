// Package blocks holds the minimal reference source/transform/sink set
// needed to exercise and test the flow-graph engine — not a DSP block
// library, which stays an external collaborator.
package blocks

import (
	"context"
	"io"
	"time"

	"radioflow/block"
	"radioflow/types"
	"radioflow/x/timex"
)

// ByteSequenceSource emits a single fixed []byte vector, then io.EOF.
type ByteSequenceSource struct {
	block.Base
	data    []byte
	emitted bool
}

// NewByteSequenceSource builds a source that emits data exactly once.
func NewByteSequenceSource(id string, data []byte) *ByteSequenceSource {
	b := &ByteSequenceSource{
		Base: block.NewBase(id, "byte_sequence_source", nil, []block.Port{{Name: "out"}}),
		data: data,
	}
	b.AddSignature(block.Signature{Outputs: []block.TypeProducer{block.Fixed(types.Byte)}})
	return b
}

func (b *ByteSequenceSource) IsSource() bool { return true }

func (b *ByteSequenceSource) Initialize(ctx context.Context) error { return nil }

func (b *ByteSequenceSource) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	if b.emitted {
		return nil, io.EOF
	}
	b.emitted = true
	return []types.Vector{types.NewByteVector(b.data)}, nil
}

func (b *ByteSequenceSource) Cleanup() error { return nil }

// Float32ConstSource emits a single fixed []float32 vector, then io.EOF.
type Float32ConstSource struct {
	block.Base
	data    []float32
	emitted bool
}

// NewFloat32ConstSource builds a source that emits data exactly once.
func NewFloat32ConstSource(id string, data []float32) *Float32ConstSource {
	b := &Float32ConstSource{
		Base: block.NewBase(id, "float32_const_source", nil, []block.Port{{Name: "out"}}),
		data: data,
	}
	b.AddSignature(block.Signature{Outputs: []block.TypeProducer{block.Fixed(types.Float32Type)}})
	return b
}

func (b *Float32ConstSource) IsSource() bool { return true }

func (b *Float32ConstSource) Initialize(ctx context.Context) error { return nil }

func (b *Float32ConstSource) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	if b.emitted {
		return nil, io.EOF
	}
	b.emitted = true
	return []types.Vector{types.NewFloat32Vector(b.data)}, nil
}

func (b *Float32ConstSource) Cleanup() error { return nil }

// InfiniteCounterSource emits an ever-incrementing float32 counter in
// batches of batchSize, forever — it stops only when the worker's context
// is cancelled, observed by the worker between Process calls or by
// Process itself while it waits out its pacing period.
type InfiniteCounterSource struct {
	block.Base
	batchSize int
	next      float32
	rate      float64
}

// NewInfiniteCounterSource builds an unbounded counter source reporting
// sampleRate as its absolute rate (satisfies graph.RateSource).
func NewInfiniteCounterSource(id string, batchSize int, sampleRate float64) *InfiniteCounterSource {
	b := &InfiniteCounterSource{
		Base:      block.NewBase(id, "infinite_counter_source", nil, []block.Port{{Name: "out"}}),
		batchSize: batchSize,
		rate:      sampleRate,
	}
	b.AddSignature(block.Signature{Outputs: []block.TypeProducer{block.Fixed(types.Float32Type)}})
	return b
}

func (b *InfiniteCounterSource) IsSource() bool          { return true }
func (b *InfiniteCounterSource) SampleRate() float64     { return b.rate }
func (b *InfiniteCounterSource) Initialize(context.Context) error { return nil }

func (b *InfiniteCounterSource) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	if b.rate > 0 {
		period := time.Duration(timex.PeriodFromHz(uint32(b.rate))) * time.Duration(b.batchSize)
		t := time.NewTimer(period)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, io.EOF
		}
	}
	batch := make([]float32, b.batchSize)
	for i := range batch {
		batch[i] = b.next
		b.next++
	}
	return []types.Vector{types.NewFloat32Vector(batch)}, nil
}

func (b *InfiniteCounterSource) Cleanup() error { return nil }
