// Package control is the embedding surface for a flow-graph run: load a
// description, start it, poll or wait on it, stop it, free it. It is the
// Go API a C façade (new/load/start/status/wait/stop/free) would wrap;
// that façade itself stays out of scope.
package control

import "sync/atomic"

// State is a Context's lifecycle stage.
type State int32

const (
	Unloaded State = iota
	Loaded
	Running
	Stopping
	Stopped
	Errored
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

type stateBox struct{ v atomic.Int32 }

func (b *stateBox) load() State   { return State(b.v.Load()) }
func (b *stateBox) store(s State) { b.v.Store(int32(s)) }
func (b *stateBox) cas(old, new State) bool {
	return b.v.CompareAndSwap(int32(old), int32(new))
}
