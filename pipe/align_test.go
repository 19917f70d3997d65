package pipe

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"radioflow/types"
)

func TestAlignerDeliversFixedQuanta(t *testing.T) {
	p, err := New(types.Float32Type, 3, FramingBinary)
	require.NoError(t, err)
	a := NewAligner(p, types.Float32Type, 3)

	go func() {
		require.NoError(t, p.WriteVector(types.NewFloat32Vector([]float32{1, 2})))
		require.NoError(t, p.WriteVector(types.NewFloat32Vector([]float32{3, 4, 5, 6, 7})))
		require.NoError(t, p.CloseWrite())
	}()

	v, err := a.Take(3)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, v.Data.([]float32))

	v, err = a.Take(3)
	require.NoError(t, err)
	require.Equal(t, []float32{4, 5, 6}, v.Data.([]float32))

	v, err = a.Take(3)
	require.NoError(t, err)
	require.Equal(t, []float32{7}, v.Data.([]float32))

	_, err = a.Take(1)
	require.ErrorIs(t, err, io.EOF)
}
