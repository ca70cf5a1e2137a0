package tick

import (
	"sync/atomic"
)

// TickState represents the current state of the reactor.
//
// State machine:
//
//	StateAwake (0) → StateRunning (3)        [Run()]
//	StateRunning (3) → StateSleeping (2)     [poll() via CAS]
//	StateRunning (3) → StateTerminating (4)  [Shutdown()/Close()]
//	StateSleeping (2) → StateRunning (3)     [poll() wake via CAS]
//	StateSleeping (2) → StateTerminating (4) [Shutdown()/Close()]
//	StateTerminating (4) → StateTerminated (1) [shutdown complete]
//	StateTerminated (1) → (terminal)
//
// Use TryTransition (CAS) for the temporary states (Running, Sleeping); use
// Store only for the irreversible Terminated state.
type TickState uint64

const (
	// StateAwake indicates the reactor has been constructed but Run has not
	// been called yet.
	StateAwake TickState = 0
	// StateTerminated indicates the reactor has fully shut down.
	StateTerminated TickState = 1
	// StateSleeping indicates the reactor is blocked in the notifier wait.
	StateSleeping TickState = 2
	// StateRunning indicates the reactor is actively dispatching a turn.
	StateRunning TickState = 3
	// StateTerminating indicates shutdown has been requested but the final
	// turn has not yet completed.
	StateTerminating TickState = 4
)

// String returns a human-readable representation of the state.
func (s TickState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateSleeping:
		return "Sleeping"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state machine built on a single atomic word.
type fastState struct {
	v atomic.Uint64
}

// newFastState creates a new state machine in the Awake state.
func newFastState() *fastState {
	s := &fastState{}
	s.v.Store(uint64(StateAwake))
	return s
}

// Load returns the current state atomically.
func (s *fastState) Load() TickState {
	return TickState(s.v.Load())
}

// Store atomically stores a new state, bypassing transition validation.
// Only ever used to set StateTerminated.
func (s *fastState) Store(state TickState) {
	s.v.Store(uint64(state))
}

// TryTransition attempts to atomically move from one state to another.
func (s *fastState) TryTransition(from, to TickState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}
