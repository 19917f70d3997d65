package types

import "fmt"

// Vector is the unit batch of same-typed samples passed to Process and
// carried across a pipe in one read/write. For a FixedType, Data holds a
// concrete Go slice (e.g. []complex64, []float32, []byte); for an
// ObjectType, Data holds []any.
type Vector struct {
	Type   SampleType
	Data   any
	Length int
}

// NewComplex32Vector wraps a []complex64 as a Vector.
func NewComplex32Vector(d []complex64) Vector { return Vector{Type: Complex32, Data: d, Length: len(d)} }

// NewFloat32Vector wraps a []float32 as a Vector.
func NewFloat32Vector(d []float32) Vector { return Vector{Type: Float32Type, Data: d, Length: len(d)} }

// NewBitVector wraps a []byte of 0/1 values as a Vector.
func NewBitVector(d []byte) Vector { return Vector{Type: Bit, Data: d, Length: len(d)} }

// NewByteVector wraps a []byte as a Vector.
func NewByteVector(d []byte) Vector { return Vector{Type: Byte, Data: d, Length: len(d)} }

// NewObjectVector wraps a []any of object-typed samples as a Vector.
func NewObjectVector(t ObjectType, d []any) Vector { return Vector{Type: t, Data: d, Length: len(d)} }

// Empty reports whether the vector carries zero samples.
func (v Vector) Empty() bool { return v.Length == 0 }

// Slice returns the sub-vector [lo:hi) without copying backing storage.
func (v Vector) Slice(lo, hi int) (Vector, error) {
	if lo < 0 || hi > v.Length || lo > hi {
		return Vector{}, fmt.Errorf("types: slice [%d:%d) out of range for length %d", lo, hi, v.Length)
	}
	switch d := v.Data.(type) {
	case []complex64:
		return Vector{Type: v.Type, Data: d[lo:hi], Length: hi - lo}, nil
	case []float32:
		return Vector{Type: v.Type, Data: d[lo:hi], Length: hi - lo}, nil
	case []byte:
		return Vector{Type: v.Type, Data: d[lo:hi], Length: hi - lo}, nil
	case []any:
		return Vector{Type: v.Type, Data: d[lo:hi], Length: hi - lo}, nil
	default:
		return Vector{}, fmt.Errorf("types: unsupported vector backing %T", v.Data)
	}
}
