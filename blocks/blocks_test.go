package blocks

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"radioflow/types"
)

func TestByteSequenceSourceEmitsOnceThenEOF(t *testing.T) {
	src := NewByteSequenceSource("s1", []byte{1, 2, 3})
	require.NoError(t, src.Initialize(context.Background()))

	out, err := src.Process(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, out[0].Data.([]byte))

	_, err = src.Process(context.Background(), nil)
	require.ErrorIs(t, err, io.EOF)
}

func TestScaleTransformMultiplies(t *testing.T) {
	tr := NewScaleTransform("t1", 2.5)
	in := []types.Vector{types.NewFloat32Vector([]float32{1, 2, 4})}
	out, err := tr.Process(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, []float32{2.5, 5, 10}, out[0].Data.([]float32))
}

func TestRawFileSourceSinkRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink := NewRawFileSink("sink", &buf, types.Float32Type)
	_, err := sink.Process(context.Background(), []types.Vector{types.NewFloat32Vector([]float32{1, 2, 3})})
	require.NoError(t, err)

	src := NewRawFileSource("src", &buf, types.Float32Type, 16)
	out, err := src.Process(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, out[0].Data.([]float32))

	_, err = src.Process(context.Background(), nil)
	require.ErrorIs(t, err, io.EOF)
}

func TestThrottledSinkCountsSamples(t *testing.T) {
	sink := NewThrottledSink("sink", 1000, 1000)
	_, err := sink.Process(context.Background(), []types.Vector{types.NewFloat32Vector(make([]float32, 10))})
	require.NoError(t, err)
	require.Equal(t, int64(10), sink.Count())
}
