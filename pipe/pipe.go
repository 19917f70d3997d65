// Package pipe implements radioflow's typed inter-worker byte stream:
// a genuine OS-provided anonymous pipe carrying either raw fixed-size
// samples or length-framed object samples, with real kernel
// back-pressure.
package pipe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"radioflow/types"
)

// defaultChunkBytes bounds how many bytes a single fixed-type batch read
// will request at once.
const defaultChunkBytes = 1048576

// minKernelBuf is the back-pressure floor: a bounded queue of at least 64 KiB.
const minKernelBuf = 64 * 1024

// Framing selects how object-typed samples are put on the wire.
type Framing int

const (
	// FramingBinary uses a uint32 little-endian length prefix per sample,
	// the default object wire format.
	FramingBinary Framing = iota
	// FramingJSONLines uses one JSON document per sample, newline
	// terminated, for JSON-speaking sinks.
	FramingJSONLines
)

// Pipe is one directed edge's transport: a read end and a write end of a
// single OS pipe, typed to one SampleType, with a declared read quantum.
type Pipe struct {
	r *os.File
	w *os.File

	typ     types.SampleType
	quantum int
	framing Framing

	bufR *bufio.Reader
}

// New creates a fresh OS pipe for sample type t with the given read
// quantum (the most samples one ReadVector returns, for fixed and object
// types alike; object samples are decoded one DecodeFrame/line call at a
// time up to that count). It best-effort raises the kernel pipe buffer to
// the back-pressure floor.
func New(t types.SampleType, quantum int, framing Framing) (*Pipe, error) {
	if quantum <= 0 {
		quantum = 1
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: os.Pipe: %w", err)
	}
	p := &Pipe{r: r, w: w, typ: t, quantum: quantum, framing: framing, bufR: bufio.NewReaderSize(r, 64*1024)}

	size := minKernelBuf
	if ft, ok := t.(types.FixedType); ok {
		if want := quantum * ft.ElemSize(); want > size {
			size = want
		}
	}
	tuneKernelBuffer(w, size)
	return p, nil
}

// Type returns the edge's resolved sample type.
func (p *Pipe) Type() types.SampleType { return p.typ }

// Quantum returns the edge's per-read sample quantum.
func (p *Pipe) Quantum() int { return p.quantum }

// CloseWrite closes the write end, which is how a worker signals EOF
// downstream: the producer closes its write side once it has nothing
// left to send.
func (p *Pipe) CloseWrite() error { return p.w.Close() }

// CloseRead closes the read end, used during forced teardown.
func (p *Pipe) CloseRead() error { return p.r.Close() }

// WriteVector writes one batch to the pipe, blocking on the kernel buffer
// if a slow consumer has filled it. If the reader has gone away (the
// consumer worker exited and closed its read end), the underlying
// broken-pipe error is translated to io.EOF: from the producer's point
// of view a reader-less pipe means there is no one left downstream, the
// same condition a normal EOF signals in the opposite direction.
func (p *Pipe) WriteVector(v types.Vector) error {
	if v.Empty() {
		return nil
	}
	var err error
	if ft, ok := p.typ.(types.FixedType); ok {
		err = writeFixed(p.w, ft, v)
	} else if ot, ok := p.typ.(types.ObjectType); ok {
		switch p.framing {
		case FramingJSONLines:
			err = writeObjectJSONLines(p.w, ot, v)
		default:
			err = writeObjectFrames(p.w, ot, v)
		}
	} else {
		return fmt.Errorf("pipe: type %q is neither fixed nor object", p.typ.Name())
	}
	return translateWriteErr(err)
}

func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.EPIPE) {
		return io.EOF
	}
	return err
}

// ReadVector reads up to one quantum's worth of samples, blocking until at
// least one sample is available or the write end is closed. It returns
// io.EOF once the pipe is drained and closed.
func (p *Pipe) ReadVector() (types.Vector, error) {
	if ft, ok := p.typ.(types.FixedType); ok {
		return readFixed(p.bufR, ft, p.quantum)
	}
	ot, ok := p.typ.(types.ObjectType)
	if !ok {
		return types.Vector{}, fmt.Errorf("pipe: type %q is neither fixed nor object", p.typ.Name())
	}
	switch p.framing {
	case FramingJSONLines:
		return readObjectJSONLines(p.bufR, ot, p.quantum)
	default:
		return readObjectFrames(p.bufR, ot, p.quantum)
	}
}

func writeFixed(w io.Writer, ft types.FixedType, v types.Vector) error {
	for i := 0; i < v.Length; i++ {
		elem, err := elemAt(v, i)
		if err != nil {
			return err
		}
		if err := ft.WriteElem(w, elem); err != nil {
			return err
		}
	}
	return nil
}

func readFixed(r io.Reader, ft types.FixedType, quantum int) (types.Vector, error) {
	first, err := ft.ReadElem(r)
	if err != nil {
		return types.Vector{}, err
	}
	elems := []any{first}
	for len(elems) < chunkLimit(quantum, ft.ElemSize()) {
		if br, ok := r.(*bufio.Reader); ok && br.Buffered() < ft.ElemSize() {
			break
		}
		v, err := ft.ReadElem(r)
		if err != nil {
			break
		}
		elems = append(elems, v)
	}
	return assembleFixed(ft, elems)
}

func chunkLimit(quantum, elemSize int) int {
	max := defaultChunkBytes / elemSize
	if quantum > max {
		return max
	}
	if quantum < 1 {
		return 1
	}
	return quantum
}

func elemAt(v types.Vector, i int) (any, error) {
	switch d := v.Data.(type) {
	case []complex64:
		return d[i], nil
	case []float32:
		return d[i], nil
	case []byte:
		return d[i], nil
	default:
		return nil, fmt.Errorf("pipe: unsupported fixed vector backing %T", v.Data)
	}
}

func assembleFixed(ft types.FixedType, elems []any) (types.Vector, error) {
	switch ft.Name() {
	case "complex32":
		out := make([]complex64, len(elems))
		for i, e := range elems {
			out[i] = e.(complex64)
		}
		return types.NewComplex32Vector(out), nil
	case "float32":
		out := make([]float32, len(elems))
		for i, e := range elems {
			out[i] = e.(float32)
		}
		return types.NewFloat32Vector(out), nil
	case "bit":
		out := make([]byte, len(elems))
		for i, e := range elems {
			out[i] = e.(byte)
		}
		return types.NewBitVector(out), nil
	case "byte":
		out := make([]byte, len(elems))
		for i, e := range elems {
			out[i] = e.(byte)
		}
		return types.NewByteVector(out), nil
	default:
		return types.Vector{}, fmt.Errorf("pipe: unknown fixed type %q", ft.Name())
	}
}

func writeObjectFrames(w io.Writer, ot types.ObjectType, v types.Vector) error {
	samples := v.Data.([]any)
	for _, s := range samples {
		if err := ot.EncodeFrame(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readObjectFrames(r io.Reader, ot types.ObjectType, quantum int) (types.Vector, error) {
	first, err := ot.DecodeFrame(r)
	if err != nil {
		return types.Vector{}, err
	}
	samples := []any{first}
	for len(samples) < quantum {
		if br, ok := r.(*bufio.Reader); ok && br.Buffered() == 0 {
			break
		}
		v, err := ot.DecodeFrame(r)
		if err != nil {
			break
		}
		samples = append(samples, v)
	}
	return types.NewObjectVector(ot, samples), nil
}

func writeObjectJSONLines(w io.Writer, ot types.ObjectType, v types.Vector) error {
	samples := v.Data.([]any)
	for _, s := range samples {
		if err := ot.EncodeJSONLine(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readObjectJSONLines(r *bufio.Reader, ot types.ObjectType, quantum int) (types.Vector, error) {
	var samples []any
	for len(samples) < quantum {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			trimmed := line
			if trimmed[len(trimmed)-1] == '\n' {
				trimmed = trimmed[:len(trimmed)-1]
			}
			if len(trimmed) > 0 {
				v, derr := ot.DecodeJSONLine(trimmed)
				if derr != nil {
					return types.Vector{}, derr
				}
				samples = append(samples, v)
			}
		}
		if err != nil {
			if len(samples) > 0 {
				break
			}
			return types.Vector{}, err
		}
		if r.Buffered() == 0 {
			break
		}
	}
	if len(samples) == 0 {
		return types.Vector{}, io.EOF
	}
	return types.NewObjectVector(ot, samples), nil
}
