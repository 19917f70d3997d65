// Package block defines the declarative unit of computation radioflow's
// graphs are built from: named typed ports, one or more type signatures,
// and the initialize/process/cleanup lifecycle a concrete block
// implements, with each graph node carrying its own polymorphic type
// signatures.
package block

import (
	"context"
	"fmt"

	"radioflow/errs"
	"radioflow/types"
)

// Port is a named attachment point on a block.
type Port struct {
	Name string
}

// Block is the interface every source, transform, and sink implements.
type Block interface {
	ID() string
	ClassName() string
	InputPorts() []Port
	OutputPorts() []Port
	Signatures() []Signature

	// Differentiate selects a registered signature for the given resolved
	// input types, in positional order, first-match-wins.
	Differentiate(in []types.SampleType) (int, error)

	// Initialize opens files/devices and allocates runtime state. It runs
	// inside the worker, after the worker goroutine starts, so no resource
	// acquired here is ever shared across workers.
	Initialize(ctx context.Context) error

	// Process consumes one Vector per input port and produces one Vector
	// per output port. Returning (nil, io.EOF) signals end of stream.
	Process(ctx context.Context, in []types.Vector) ([]types.Vector, error)

	// Cleanup releases resources. Must be idempotent and safe to call
	// after a partial Initialize.
	Cleanup() error
}

// Source is implemented by blocks with no input ports.
type Source interface {
	Block
	IsSource() bool
}

// Sink is implemented by blocks with no output ports.
type Sink interface {
	Block
	IsSink() bool
}

// Base is an embeddable implementation of the bookkeeping parts of Block
// (id, ports, signature storage/selection) so concrete blocks need only
// implement Initialize/Process/Cleanup — mirroring how teacher adaptors
// only implement Trigger/Collect/Control against a thin interface.
type Base struct {
	id         string
	class      string
	inputs     []Port
	outputs    []Port
	signatures []Signature
	Selected   int // index into signatures, set by Differentiate
}

// NewBase constructs a Base with the given id, class name, and ports.
func NewBase(id, class string, inputs, outputs []Port) Base {
	return Base{id: id, class: class, inputs: inputs, outputs: outputs, Selected: -1}
}

func (b *Base) ID() string            { return b.id }
func (b *Base) ClassName() string     { return b.class }
func (b *Base) InputPorts() []Port    { return b.inputs }
func (b *Base) OutputPorts() []Port   { return b.outputs }
func (b *Base) Signatures() []Signature { return b.signatures }

// AddSignature registers one acceptable signature; registration order
// breaks ties when more than one signature matches.
func (b *Base) AddSignature(sig Signature) {
	b.signatures = append(b.signatures, sig)
}

// Differentiate scans registered signatures in registration order and
// selects the first whose input matchers all accept in.
func (b *Base) Differentiate(in []types.SampleType) (int, error) {
	if len(b.signatures) == 0 {
		// A block with no declared signatures accepts any arity/types
		// as-is (e.g. a generic passthrough); this is intentionally
		// permissive rather than an error.
		return -1, nil
	}
	for i, sig := range b.signatures {
		if sig.accepts(in) {
			b.Selected = i
			return i, nil
		}
	}
	got := make([]string, len(in))
	for i, t := range in {
		got[i] = t.Name()
	}
	var expected []string
	for _, sig := range b.signatures {
		for _, m := range sig.Inputs {
			expected = append(expected, m.Label)
		}
	}
	return -1, &errs.TypeMismatch{Node: b.id, Got: got, Expected: expected, Reason: "no signature matched"}
}

func errPortIndex(i, n int) error {
	return fmt.Errorf("block: output producer referenced input index %d, only %d inputs resolved", i, n)
}
