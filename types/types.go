// Package types describes radioflow's primitive sample types and the typed
// vector buffers passed between blocks.
package types

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// SampleType describes one kind of sample that can flow along an edge.
// Fixed types have a constant Size(); object types return -1 and carry
// their own framing (see ObjectType).
type SampleType interface {
	Name() string
	Size() int
	String(v any) string
}

// FixedType is a SampleType with a fixed, raw, unframed byte layout
// suitable for batch read/write over a pipe.
type FixedType interface {
	SampleType
	ElemSize() int
	WriteElem(w io.Writer, v any) error
	ReadElem(r io.Reader) (any, error)
}

// ObjectType is a SampleType with a variable-size, framed byte layout.
type ObjectType interface {
	SampleType
	EncodeFrame(w io.Writer, v any) error
	DecodeFrame(r io.Reader) (any, error)
	EncodeJSONLine(w io.Writer, v any) error
	DecodeJSONLine(line []byte) (any, error)
}

// ---- Complex32 ----

type complex32Type struct{}

// Complex32 is the canonical 8-byte little-endian complex sample type:
// two float32 values, real then imaginary.
var Complex32 FixedType = complex32Type{}

func (complex32Type) Name() string   { return "complex32" }
func (complex32Type) Size() int      { return 8 }
func (complex32Type) ElemSize() int  { return 8 }
func (complex32Type) String(v any) string {
	c := v.(complex64)
	return fmt.Sprintf("%g%+gi", real(c), imag(c))
}
func (complex32Type) WriteElem(w io.Writer, v any) error {
	c := v.(complex64)
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(real(c)))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(imag(c)))
	_, err := w.Write(buf[:])
	return err
}
func (complex32Type) ReadElem(r io.Reader) (any, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	re := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
	im := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))
	return complex(re, im), nil
}

// ---- Float32 ----

type float32Type struct{}

// Float32Type is the canonical 4-byte little-endian IEEE-754 sample type.
var Float32Type FixedType = float32Type{}

func (float32Type) Name() string  { return "float32" }
func (float32Type) Size() int     { return 4 }
func (float32Type) ElemSize() int { return 4 }
func (float32Type) String(v any) string {
	return fmt.Sprintf("%g", v.(float32))
}
func (float32Type) WriteElem(w io.Writer, v any) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v.(float32)))
	_, err := w.Write(buf[:])
	return err
}
func (float32Type) ReadElem(r io.Reader) (any, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

// ---- Bit ----

type bitType struct{}

// Bit is a 1-byte sample type holding 0 or 1.
var Bit FixedType = bitType{}

func (bitType) Name() string  { return "bit" }
func (bitType) Size() int     { return 1 }
func (bitType) ElemSize() int { return 1 }
func (bitType) String(v any) string {
	if v.(byte) != 0 {
		return "1"
	}
	return "0"
}
func (bitType) WriteElem(w io.Writer, v any) error {
	b := v.(byte)
	if b != 0 {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}
func (bitType) ReadElem(r io.Reader) (any, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if buf[0] != 0 {
		return byte(1), nil
	}
	return byte(0), nil
}

// ---- Byte ----

type byteType struct{}

// Byte is a 1-byte raw sample type.
var Byte FixedType = byteType{}

func (byteType) Name() string  { return "byte" }
func (byteType) Size() int     { return 1 }
func (byteType) ElemSize() int { return 1 }
func (byteType) String(v any) string {
	return fmt.Sprintf("0x%02x", v.(byte))
}
func (byteType) WriteElem(w io.Writer, v any) error {
	_, err := w.Write([]byte{v.(byte)})
	return err
}
func (byteType) ReadElem(r io.Reader) (any, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return buf[0], nil
}

// Same reports whether a and b are the identical registered SampleType.
func Same(a, b SampleType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name()
}
