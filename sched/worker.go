package sched

import (
	"context"
	"io"

	"radioflow/block"
	"radioflow/errs"
	"radioflow/graph"
	"radioflow/pipe"
	"radioflow/types"
)

// inputPort is one of a Worker's declared input ports, wired to the pipe
// carrying its resolved edge.
type inputPort struct {
	name    string
	pipe    *pipe.Pipe
	aligner *pipe.Aligner // non-nil for FixedType edges
	quantum int
}

// outputPort is one of a Worker's declared output ports, wired to every
// downstream pipe it fans out to.
type outputPort struct {
	name string
	fan  *pipe.FanOut
}

// Worker owns one block.Block instance and drives its
// initialize/process/cleanup lifecycle in its own goroutine: a single
// goroutine with no shared mutable state reached from outside except an
// atomic status field.
type Worker struct {
	Node graph.NodeID
	b    block.Block

	inputs  []*inputPort
	outputs []*outputPort

	state stateBox
}

// NewWorker builds a Worker for node, with pipes/aligners already created
// by the Scheduler for every declared port.
func NewWorker(node graph.NodeID, b block.Block, inputs []*inputPort, outputs []*outputPort) *Worker {
	return &Worker{Node: node, b: b, inputs: inputs, outputs: outputs}
}

// State returns the worker's current lifecycle stage without blocking.
func (w *Worker) State() WorkerState { return w.state.load() }

// Run executes the full lifecycle to completion and returns the
// terminal error, or nil on a clean end-of-stream.
func (w *Worker) Run(ctx context.Context) error {
	w.state.store(StateInitializing)
	if err := w.b.Initialize(ctx); err != nil {
		w.state.store(StateFailed)
		w.closeOutputs()
		return &errs.StartupError{Node: w.b.ID(), Cause: err}
	}
	w.state.store(StateRunning)

	runErr := w.loop(ctx)

	w.closeOutputs()
	w.closeInputs()
	// Cleanup failures are discarded, not fatal to the run result — the
	// block already produced or consumed what it could.
	_ = w.b.Cleanup()

	if runErr != nil {
		w.state.store(StateFailed)
		return runErr
	}
	w.state.store(StateDone)
	return nil
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		in := make([]types.Vector, len(w.inputs))
		for i, port := range w.inputs {
			v, err := w.readPort(port)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return &errs.RuntimeError{Node: w.b.ID(), Cause: err}
			}
			in[i] = v
		}

		out, err := w.b.Process(ctx, in)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errs.RuntimeError{Node: w.b.ID(), Cause: err}
		}

		for i, v := range out {
			if i >= len(w.outputs) {
				break
			}
			if err := w.outputs[i].fan.Write(v); err != nil {
				if err == io.EOF {
					// Downstream has gone away (its worker already exited and
					// closed its read end) — nothing left to produce for.
					return nil
				}
				return &errs.IoError{Node: w.b.ID(), Op: "write", Cause: err}
			}
		}

		if len(w.inputs) == 0 && len(out) == 0 {
			// A source with no output this cycle and no inputs to block on
			// is simply called again, so it spins until it produces output
			// or signals EOF via Process.
			continue
		}
	}
}

func (w *Worker) readPort(port *inputPort) (types.Vector, error) {
	if port.aligner != nil {
		return port.aligner.Take(port.quantum)
	}
	return port.pipe.ReadVector()
}

func (w *Worker) closeOutputs() {
	w.state.store(StateStopping)
	for _, o := range w.outputs {
		_ = o.fan.Close()
	}
}

// closeInputs closes every input pipe's read end once this worker is
// done with it. A producer still blocked writing to a now-reader-less
// pipe gets a broken-pipe error instead of hanging forever — the
// in-process equivalent of a downstream process exiting.
func (w *Worker) closeInputs() {
	for _, in := range w.inputs {
		_ = in.pipe.CloseRead()
	}
}
