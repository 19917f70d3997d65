package types

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Frame is the reference object sample type: an opaque, variable-length
// decoded-frame payload (e.g. the output of a demodulator). radioflow's
// core does not know what a frame "means" — only how to put it on the
// wire; the library of concrete demodulators producing frames is an
// external collaborator.
type Frame struct {
	Payload []byte
	Meta    map[string]any
}

type frameType struct{ name string }

// NewFrameType returns an ObjectType named name whose samples are Frame
// values, framed as either uint32 length-prefixed binary or
// newline-delimited JSON for JSON sinks.
func NewFrameType(name string) ObjectType { return frameType{name: name} }

func (t frameType) Name() string      { return t.name }
func (t frameType) Size() int         { return -1 }
func (t frameType) String(v any) string {
	f := v.(Frame)
	return fmt.Sprintf("Frame{%d bytes}", len(f.Payload))
}

type wireFrame struct {
	Payload []byte         `json:"payload"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (t frameType) EncodeFrame(w io.Writer, v any) error {
	f := v.(Frame)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(f.Payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(f.Payload)
	return err
}

func (t frameType) DecodeFrame(r io.Reader) (any, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return Frame{Payload: payload}, nil
}

func (t frameType) EncodeJSONLine(w io.Writer, v any) error {
	f := v.(Frame)
	b, err := json.Marshal(wireFrame{Payload: f.Payload, Meta: f.Meta})
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write([]byte{'\n'})
	return err
}

func (t frameType) DecodeJSONLine(line []byte) (any, error) {
	var wf wireFrame
	if err := json.Unmarshal(line, &wf); err != nil {
		return nil, err
	}
	return Frame{Payload: wf.Payload, Meta: wf.Meta}, nil
}

// ScanJSONLines is a convenience for readers of JSONSink output.
func ScanJSONLines(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return sc
}
