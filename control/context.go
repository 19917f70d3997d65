package control

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"radioflow/errs"
	"radioflow/graph"
	"radioflow/script"
	"radioflow/sched"
)

// Context is one re-entrant flow-graph run handle. Multiple Contexts
// coexist freely — there is no package-level mutable state anywhere in
// this API.
type Context struct {
	id  uuid.UUID
	log *zapLogger

	state stateBox

	registry *script.Registry
	handles  map[string]any

	plan    *graph.Plan
	sched   *sched.Scheduler
	lastErr error

	sigCancel   func()
	sigDone     chan struct{}
	sigStopOnce *sync.Once
}

// New returns a fresh Context in state Unloaded, tagged with a new
// correlation id used in every subsequent log line.
func New(reg *script.Registry, handles map[string]any) *Context {
	id := uuid.New()
	return &Context{
		id:       id,
		log:      newZapLogger(id),
		registry: reg,
		handles:  handles,
	}
}

// ID returns this run's correlation id.
func (c *Context) ID() uuid.UUID { return c.id }

// State returns the current lifecycle stage without blocking.
func (c *Context) State() State { return c.state.load() }

// Load parses script via package script, runs graph.Infer over the
// result, and stores the frozen Plan. On any failure the Context's state
// is left exactly as it was — load either fully succeeds or changes
// nothing.
func (c *Context) Load(ctx context.Context, doc io.Reader) error {
	if c.state.load() != Unloaded {
		return c.fail(&errs.E{C: errs.CodeStartupFail, Op: "Load", Msg: "Load called outside Unloaded state"})
	}

	g, err := script.Load(doc, c.registry, c.handles)
	if err != nil {
		c.lastErr = err
		return err
	}
	flat, err := graph.Flatten(g)
	if err != nil {
		c.lastErr = err
		return err
	}
	plan, err := graph.Infer(flat)
	if err != nil {
		c.lastErr = err
		return err
	}

	c.plan = plan
	c.state.store(Loaded)
	c.log.Infow("graph loaded", "nodes", len(plan.Order))
	return nil
}

// Start builds the Scheduler and spawns every worker. On a partial-spawn
// failure, already-spawned workers are cancelled and reaped before Start
// returns, and the Context transitions to Errored rather than Running.
func (c *Context) Start(ctx context.Context) error {
	if c.state.load() != Loaded {
		return c.fail(&errs.E{C: errs.CodeStartupFail, Op: "Start", Msg: "Start called outside Loaded state"})
	}
	s := sched.NewScheduler(c.plan)
	if err := s.Spawn(ctx); err != nil {
		c.lastErr = &errs.StartupError{Node: "*", Cause: err}
		c.state.store(Errored)
		return c.lastErr
	}
	c.sched = s
	c.state.store(Running)
	c.log.Infow("graph started")

	stop, cancel := sched.InstallSignalHandlers()
	c.sigCancel = cancel
	c.sigDone = make(chan struct{})
	c.sigStopOnce = &sync.Once{}
	go c.awaitSignal(stop)

	return nil
}

// awaitSignal watches for SIGINT/SIGTERM while the graph is running and
// triggers a graceful Stop on receipt. It exits without acting once
// sigDone is closed, whether that happens because Stop was called
// directly or because the run completed on its own via Wait.
func (c *Context) awaitSignal(stop <-chan os.Signal) {
	select {
	case sig, ok := <-stop:
		if !ok {
			return
		}
		c.log.Infow("signal received, stopping", "signal", sig.String())
		_ = c.Stop(context.Background(), 5*time.Second)
	case <-c.sigDone:
	}
}

// stopSignalWatch releases the signal handler and the awaitSignal
// goroutine. Guarded by sigStopOnce so it is safe to call from both Stop
// and Wait regardless of which one observes the run ending first.
func (c *Context) stopSignalWatch() {
	if c.sigStopOnce == nil {
		return
	}
	c.sigStopOnce.Do(func() {
		if c.sigCancel != nil {
			c.sigCancel()
		}
		if c.sigDone != nil {
			close(c.sigDone)
		}
	})
}

// Status reports whether the run is still active and a per-node
// lifecycle snapshot, both read without blocking.
func (c *Context) Status() (running bool, states map[string]string) {
	st := c.state.load()
	states = map[string]string{}
	if c.sched != nil {
		for node, ws := range c.sched.Status() {
			states[fmt.Sprintf("%d", node)] = ws.String()
		}
	}
	return st == Running || st == Stopping, states
}

// Wait blocks until every worker has exited, then transitions to Stopped
// or Errored depending on the aggregated result.
func (c *Context) Wait() error {
	if c.sched == nil {
		return nil
	}
	err := c.sched.Wait()
	c.stopSignalWatch()
	if err != nil {
		c.lastErr = err
		c.state.store(Errored)
		return err
	}
	c.state.cas(Running, Stopped)
	c.state.cas(Stopping, Stopped)
	c.log.Infow("graph finished")
	return nil
}

// Stop cancels the scheduler's context, which every worker observes as a
// request to exit, and waits up to deadline for them all to finish. If
// the deadline elapses first, Stop records a *errs.StopTimeout naming the
// workers still running and moves to Errored; those workers are not
// forcibly terminated and may still be running when Stop returns.
// Idempotent: a second call while Stopping or Stopped returns nil
// immediately.
func (c *Context) Stop(ctx context.Context, deadline time.Duration) error {
	st := c.state.load()
	if st == Stopping || st == Stopped {
		return nil
	}
	if st != Running {
		return c.fail(&errs.E{C: errs.CodeStartupFail, Op: "Stop", Msg: "Stop called outside Running state"})
	}
	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	c.state.store(Stopping)
	c.log.Infow("stop requested", "deadline", deadline.String())
	c.stopSignalWatch()

	c.sched.Cancel()

	done := make(chan error, 1)
	go func() { done <- c.sched.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			c.lastErr = err
			c.state.store(Errored)
			return err
		}
		c.state.store(Stopped)
		return nil
	case <-time.After(deadline):
		c.lastErr = &errs.StopTimeout{Nodes: c.stillRunningNodes()}
		c.state.store(Errored)
		return c.lastErr
	}
}

// stillRunningNodes lists the nodes that had not reached a terminal state
// by the time a Stop deadline elapsed.
func (c *Context) stillRunningNodes() []string {
	if c.sched == nil {
		return nil
	}
	var running []string
	for node, ws := range c.sched.Status() {
		if ws != sched.StateDone && ws != sched.StateFailed {
			running = append(running, fmt.Sprintf("%d", node))
		}
	}
	return running
}

// Free releases the plan and scheduler. Only valid from Loaded, Stopped,
// or Errored.
func (c *Context) Free() error {
	st := c.state.load()
	if st != Loaded && st != Stopped && st != Errored {
		return c.fail(&errs.E{C: errs.CodeStartupFail, Op: "Free", Msg: "Free called outside a terminal state"})
	}
	c.plan = nil
	c.sched = nil
	c.state.store(Unloaded)
	return nil
}

// Strerror returns the message of the last structured error recorded, or
// an empty string if none occurred.
func (c *Context) Strerror() string {
	if c.lastErr == nil {
		return ""
	}
	return c.lastErr.Error()
}

func (c *Context) fail(e error) error {
	c.lastErr = e
	return e
}
