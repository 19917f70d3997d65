package pipe

import (
	"io"

	"radioflow/types"
	"radioflow/x/mathx"
)

// Aligner bridges a fixed-type input Pipe to a byte-level ring so a
// multi-input block's several input ports can be read in lock-step: a
// background goroutine continuously drains the pipe into the ring, and
// Take blocks until exactly n samples are available, so each input port
// contributes exactly its edge's read quantum per Process call regardless
// of how the upstream producer happened to batch its writes.
type Aligner struct {
	p       *Pipe
	ft      types.FixedType
	ring    *ring
	readErr error
	done    chan struct{}
}

// NewAligner starts the background reader goroutine immediately. quantum
// sizes the ring to comfortably hold a few read bursts without stalling
// the producer on a full ring.
func NewAligner(p *Pipe, ft types.FixedType, quantum int) *Aligner {
	elemSize := ft.ElemSize()
	minBytes := quantum * elemSize * 4
	// Round up to a whole number of elements so the ring never has to
	// split a single element's bytes across its wrap point.
	elemAligned := int(mathx.CeilDiv(uint(minBytes), uint(elemSize))) * elemSize
	capBytes := nextPow2(elemAligned)
	a := &Aligner{p: p, ft: ft, ring: newRing(capBytes), done: make(chan struct{})}
	go a.pump()
	return a
}

func (a *Aligner) pump() {
	defer close(a.done)
	for {
		v, err := a.p.ReadVector()
		if err != nil {
			a.readErr = err
			return
		}
		raw := encodeFixed(a.ft, v)
		off := 0
		for off < len(raw) {
			n := a.ring.TryWriteFrom(raw[off:])
			if n == 0 {
				<-a.ring.Writable()
				continue
			}
			off += n
		}
	}
}

// Take blocks until n samples are available, or returns io.EOF once the
// pipe and ring are both drained, or the pipe's terminal non-EOF error.
func (a *Aligner) Take(n int) (types.Vector, error) {
	need := n * a.ft.ElemSize()
	buf := make([]byte, 0, need)
	for len(buf) < need {
		chunk := make([]byte, need-len(buf))
		got := a.ring.TryReadInto(chunk)
		if got > 0 {
			buf = append(buf, chunk[:got]...)
			continue
		}
		select {
		case <-a.ring.Readable():
		case <-a.done:
			if a.ring.Available() == 0 {
				if a.readErr != nil && a.readErr != io.EOF {
					return types.Vector{}, a.readErr
				}
				if len(buf) == 0 {
					return types.Vector{}, io.EOF
				}
				return decodeFixed(a.ft, buf), nil
			}
		}
	}
	return decodeFixed(a.ft, buf), nil
}

func nextPow2(n int) int {
	if n < 2 {
		return 2
	}
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}

func encodeFixed(ft types.FixedType, v types.Vector) []byte {
	w := &byteAppender{}
	for i := 0; i < v.Length; i++ {
		ft.WriteElem(w, elemAtAny(v, i))
	}
	return w.buf
}

func decodeFixed(ft types.FixedType, raw []byte) types.Vector {
	n := len(raw) / ft.ElemSize()
	r := &byteReader{buf: raw}
	elems := make([]any, n)
	for i := 0; i < n; i++ {
		e, _ := ft.ReadElem(r)
		elems[i] = e
	}
	v, err := assembleFixed(ft, elems)
	if err != nil {
		return types.Vector{Type: ft, Length: 0}
	}
	return v
}

func elemAtAny(v types.Vector, i int) any {
	e, _ := elemAt(v, i)
	return e
}

type byteAppender struct{ buf []byte }

func (b *byteAppender) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

type byteReader struct{ buf []byte }

func (b *byteReader) Read(p []byte) (int, error) {
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
