// Package sched drives a frozen *graph.Plan: it spawns one goroutine per
// block, wires every edge through a real OS pipe, and aggregates worker
// exit status the way a process supervisor would.
package sched

import "sync/atomic"

// WorkerState is a worker's lifecycle stage, readable without locking.
type WorkerState int32

const (
	StateIdle WorkerState = iota
	StateInitializing
	StateRunning
	StateStopping
	StateDone
	StateFailed
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type stateBox struct{ v atomic.Int32 }

func (b *stateBox) load() WorkerState  { return WorkerState(b.v.Load()) }
func (b *stateBox) store(s WorkerState) { b.v.Store(int32(s)) }

// ExitCode is the process-style terminal status a Scheduler run produces.
type ExitCode int

const (
	ExitOK ExitCode = iota
	ExitInitFail
	ExitRuntimeFail
	ExitStopTimeout
)
