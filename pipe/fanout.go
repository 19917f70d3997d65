package pipe

import (
	"io"

	"radioflow/types"
)

// FanOut duplicates one producer's output vectors across N consumer
// pipes. Each downstream gets its own independent copy of every Vector.
// Destinations are written one after another from the caller's
// goroutine, so a slow consumer's back-pressure blocks the whole Write,
// and a faster sibling receives nothing new until it clears.
type FanOut struct {
	outs []*Pipe
}

// NewFanOut wraps the given destination pipes, which must already share
// the same sample type as the producer.
func NewFanOut(outs ...*Pipe) *FanOut {
	return &FanOut{outs: outs}
}

// Write sends v to every destination, copying the backing slice per
// destination so each pipe's writer owns independent memory.
func (f *FanOut) Write(v types.Vector) error {
	for _, p := range f.outs {
		if err := p.WriteVector(cloneVector(v)); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every destination's write side, propagating EOF downstream.
func (f *FanOut) Close() error {
	var firstErr error
	for _, p := range f.outs {
		if err := p.CloseWrite(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func cloneVector(v types.Vector) types.Vector {
	switch d := v.Data.(type) {
	case []complex64:
		out := make([]complex64, len(d))
		copy(out, d)
		return types.Vector{Type: v.Type, Data: out, Length: v.Length}
	case []float32:
		out := make([]float32, len(d))
		copy(out, d)
		return types.Vector{Type: v.Type, Data: out, Length: v.Length}
	case []byte:
		out := make([]byte, len(d))
		copy(out, d)
		return types.Vector{Type: v.Type, Data: out, Length: v.Length}
	case []any:
		out := make([]any, len(d))
		copy(out, d)
		return types.Vector{Type: v.Type, Data: out, Length: v.Length}
	default:
		return v
	}
}

var _ io.Closer = (*FanOut)(nil)
