package blocks

import (
	"context"
	"io"

	"golang.org/x/time/rate"

	"radioflow/block"
	"radioflow/types"
)

// RawFileSource reads fixed-type samples from an already-open io.Reader
// (an embedder-supplied file descriptor, duplicated by the caller before
// Instantiate and consumed only by this block thereafter) in batches of
// up to batchSize elements.
type RawFileSource struct {
	block.Base
	r         io.Reader
	sampleTyp types.FixedType
	batchSize int
}

// NewRawFileSource builds a source reading t-typed samples from r.
func NewRawFileSource(id string, r io.Reader, t types.FixedType, batchSize int) *RawFileSource {
	b := &RawFileSource{
		Base:      block.NewBase(id, "raw_file_source", nil, []block.Port{{Name: "out"}}),
		r:         r,
		sampleTyp: t,
		batchSize: batchSize,
	}
	b.AddSignature(block.Signature{Outputs: []block.TypeProducer{block.Fixed(t)}})
	return b
}

func (b *RawFileSource) IsSource() bool                    { return true }
func (b *RawFileSource) Initialize(context.Context) error { return nil }

func (b *RawFileSource) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	first, err := b.sampleTyp.ReadElem(b.r)
	if err != nil {
		return nil, io.EOF
	}
	elems := []any{first}
	for len(elems) < b.batchSize {
		v, err := b.sampleTyp.ReadElem(b.r)
		if err != nil {
			break
		}
		elems = append(elems, v)
	}
	return []types.Vector{assembleFor(b.sampleTyp, elems)}, nil
}

func (b *RawFileSource) Cleanup() error { return nil }

// RawFileSink writes fixed-type samples raw to an already-open io.Writer.
type RawFileSink struct {
	block.Base
	w         io.Writer
	sampleTyp types.FixedType
}

// NewRawFileSink builds a sink writing t-typed samples to w.
func NewRawFileSink(id string, w io.Writer, t types.FixedType) *RawFileSink {
	b := &RawFileSink{
		Base:      block.NewBase(id, "raw_file_sink", []block.Port{{Name: "in"}}, nil),
		w:         w,
		sampleTyp: t,
	}
	b.AddSignature(block.Signature{Inputs: []block.TypeMatcher{block.Concrete(t)}})
	return b
}

func (b *RawFileSink) IsSink() bool                    { return true }
func (b *RawFileSink) Initialize(context.Context) error { return nil }

func (b *RawFileSink) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	v := in[0]
	for i := 0; i < v.Length; i++ {
		if err := b.sampleTyp.WriteElem(b.w, elemOf(v, i)); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (b *RawFileSink) Cleanup() error { return nil }

// ThrottledSink drains its input at a fixed sample rate, discarding the
// data — used to exercise graceful stop under sustained back-pressure.
type ThrottledSink struct {
	block.Base
	limiter *rate.Limiter
	count   int64
}

// NewThrottledSink builds a sink that admits at most samplesPerSec
// float32 samples per second, with a burst allowance of burst samples.
func NewThrottledSink(id string, samplesPerSec int, burst int) *ThrottledSink {
	b := &ThrottledSink{
		Base:    block.NewBase(id, "throttled_sink", []block.Port{{Name: "in"}}, nil),
		limiter: rate.NewLimiter(rate.Limit(samplesPerSec), burst),
	}
	b.AddSignature(block.Signature{Inputs: []block.TypeMatcher{block.Concrete(types.Float32Type)}})
	return b
}

func (b *ThrottledSink) IsSink() bool                    { return true }
func (b *ThrottledSink) Initialize(context.Context) error { return nil }

func (b *ThrottledSink) Process(ctx context.Context, in []types.Vector) ([]types.Vector, error) {
	v := in[0]
	if err := b.limiter.WaitN(ctx, v.Length); err != nil {
		if ctx.Err() != nil {
			return nil, io.EOF
		}
		return nil, err
	}
	b.count += int64(v.Length)
	return nil, nil
}

func (b *ThrottledSink) Cleanup() error { return nil }

// Count returns the number of samples admitted so far.
func (b *ThrottledSink) Count() int64 { return b.count }

func elemOf(v types.Vector, i int) any {
	switch d := v.Data.(type) {
	case []complex64:
		return d[i]
	case []float32:
		return d[i]
	case []byte:
		return d[i]
	default:
		return nil
	}
}

func assembleFor(t types.FixedType, elems []any) types.Vector {
	switch t.Name() {
	case "complex32":
		out := make([]complex64, len(elems))
		for i, e := range elems {
			out[i] = e.(complex64)
		}
		return types.NewComplex32Vector(out)
	case "float32":
		out := make([]float32, len(elems))
		for i, e := range elems {
			out[i] = e.(float32)
		}
		return types.NewFloat32Vector(out)
	case "bit":
		out := make([]byte, len(elems))
		for i, e := range elems {
			out[i] = e.(byte)
		}
		return types.NewBitVector(out)
	default:
		out := make([]byte, len(elems))
		for i, e := range elems {
			out[i] = e.(byte)
		}
		return types.NewByteVector(out)
	}
}
