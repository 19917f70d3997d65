package sched

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"radioflow/errs"
	"radioflow/graph"
	"radioflow/pipe"
	"radioflow/types"
)

// Scheduler spawns and reaps every worker of a frozen *graph.Plan. It
// uses golang.org/x/sync/errgroup exactly as intended — first-error-wins
// concurrent reap — rather than hand-rolling the same thing with a
// WaitGroup and a result channel.
type Scheduler struct {
	plan    *graph.Plan
	workers map[graph.NodeID]*Worker

	group  *errgroup.Group
	gctx   context.Context
	cancel context.CancelFunc
}

// NewScheduler builds a Scheduler for plan. No pipes exist yet; Spawn
// creates them.
func NewScheduler(plan *graph.Plan) *Scheduler {
	return &Scheduler{plan: plan, workers: map[graph.NodeID]*Worker{}}
}

// Spawn creates every pipe the plan's edges need, wires each node's
// Worker, and starts one goroutine per node via errgroup. If any worker
// fails to spawn partway through, already-started workers are cancelled
// and reaped before Spawn returns the error — no goroutine leaks out of
// a failed Spawn.
func (s *Scheduler) Spawn(ctx context.Context) error {
	gctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(gctx)
	s.group, s.gctx, s.cancel = group, gctx, cancel

	edgePipes := map[graph.PortRef]*pipe.Pipe{}
	for _, node := range s.plan.Order {
		outs := s.plan.OutputsOf(node)
		b := s.plan.Blocks[node]
		for _, port := range b.OutputPorts() {
			src := graph.PortRef{Node: node, Port: port.Name}
			dsts := outs[port.Name]
			if len(dsts) == 0 {
				continue
			}
			t := s.plan.EdgeType[src]
			q := s.plan.EdgeQuantum[src]
			if q <= 0 {
				q = 1
			}
			for _, dst := range dsts {
				p, err := pipe.New(t, q, framingFor(t))
				if err != nil {
					s.abort()
					return fmt.Errorf("sched: creating pipe for edge %s: %w", src, err)
				}
				edgePipes[dst] = p
			}
		}
	}

	for _, node := range s.plan.Order {
		b := s.plan.Blocks[node]

		var ins []*inputPort
		for _, port := range b.InputPorts() {
			dst := graph.PortRef{Node: node, Port: port.Name}
			p, ok := edgePipes[dst]
			if !ok {
				s.abort()
				return fmt.Errorf("sched: node %d input %q has no pipe", node, port.Name)
			}
			ip := &inputPort{name: port.Name, pipe: p, quantum: p.Quantum()}
			if ft, ok := p.Type().(types.FixedType); ok {
				ip.aligner = pipe.NewAligner(p, ft, p.Quantum())
			}
			ins = append(ins, ip)
		}

		var outs []*outputPort
		for _, port := range b.OutputPorts() {
			src := graph.PortRef{Node: node, Port: port.Name}
			var dests []*pipe.Pipe
			for _, dst := range s.plan.OutEdges[src] {
				if p, ok := edgePipes[dst]; ok {
					dests = append(dests, p)
				}
			}
			outs = append(outs, &outputPort{name: port.Name, fan: pipe.NewFanOut(dests...)})
		}

		w := NewWorker(node, b, ins, outs)
		s.workers[node] = w

		group.Go(func() error {
			return w.Run(gctx)
		})
	}
	return nil
}

// framingFor picks binary framing for every edge; the scheduler never
// wires an edge with JSON-line framing.
func framingFor(t types.SampleType) pipe.Framing {
	return pipe.FramingBinary
}

func (s *Scheduler) abort() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.group != nil {
		_ = s.group.Wait()
	}
}

// Wait blocks until every worker has exited and returns the first
// non-nil error reaped, matching "first non-zero status becomes the
// graph's terminal error".
func (s *Scheduler) Wait() error {
	if s.group == nil {
		return nil
	}
	err := s.group.Wait()
	if err == nil {
		return nil
	}
	if _, ok := err.(*errs.StartupError); ok {
		return err
	}
	return err
}

// Cancel requests every worker stop via context cancellation — the
// goroutine-worker equivalent of sending every process a terminating
// signal.
func (s *Scheduler) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Status returns a non-blocking snapshot of every worker's state.
func (s *Scheduler) Status() map[graph.NodeID]WorkerState {
	out := make(map[graph.NodeID]WorkerState, len(s.workers))
	for id, w := range s.workers {
		out[id] = w.State()
	}
	return out
}
