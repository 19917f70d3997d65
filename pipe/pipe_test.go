package pipe

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"radioflow/types"
)

func TestPipeFixedRoundTrip(t *testing.T) {
	p, err := New(types.Float32Type, 4, FramingBinary)
	require.NoError(t, err)

	want := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	go func() {
		require.NoError(t, p.WriteVector(types.NewFloat32Vector(want)))
		require.NoError(t, p.CloseWrite())
	}()

	var got []float32
	for {
		v, err := p.ReadVector()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, v.Data.([]float32)...)
	}
	require.Equal(t, want, got)
}

func TestPipeObjectFrameRoundTrip(t *testing.T) {
	ft := types.NewFrameType("frame")
	p, err := New(ft, 2, FramingBinary)
	require.NoError(t, err)

	samples := []any{
		types.Frame{Payload: []byte("hello"), Meta: map[string]any{"n": float64(1)}},
		types.Frame{Payload: []byte("world")},
	}
	go func() {
		require.NoError(t, p.WriteVector(types.NewObjectVector(ft, samples)))
		require.NoError(t, p.CloseWrite())
	}()

	var got []any
	for {
		v, err := p.ReadVector()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, v.Data.([]any)...)
	}
	require.Len(t, got, 2)
	require.Equal(t, []byte("hello"), got[0].(types.Frame).Payload)
	require.Equal(t, []byte("world"), got[1].(types.Frame).Payload)
}

func TestPipeEOFOnEmptyClose(t *testing.T) {
	p, err := New(types.Byte, 1, FramingBinary)
	require.NoError(t, err)
	require.NoError(t, p.CloseWrite())

	_, err = p.ReadVector()
	require.ErrorIs(t, err, io.EOF)
}

func TestFanOutDuplicatesIndependently(t *testing.T) {
	a, err := New(types.Byte, 4, FramingBinary)
	require.NoError(t, err)
	b, err := New(types.Byte, 4, FramingBinary)
	require.NoError(t, err)

	fo := NewFanOut(a, b)
	data := []byte{1, 2, 3}
	go func() {
		require.NoError(t, fo.Write(types.NewByteVector(data)))
		require.NoError(t, fo.Close())
	}()

	va, err := a.ReadVector()
	require.NoError(t, err)
	vb, err := b.ReadVector()
	require.NoError(t, err)
	require.Equal(t, data, va.Data.([]byte))
	require.Equal(t, data, vb.Data.([]byte))

	// Mutating one destination's backing slice must not affect the other.
	va.Data.([]byte)[0] = 99
	require.Equal(t, byte(1), vb.Data.([]byte)[0])
}
