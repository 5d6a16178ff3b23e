package capture

import "sync"

type probeState int

const (
	stateNotProbed probeState = iota
	stateAvailable
	stateUnavailable
)

// availability tracks the probe outcome of a lazily initialized backend.
// The state transitions away from NotProbed exactly once; an Unavailable
// backend is never retried for the rest of the process lifetime.
type availability struct {
	mu    sync.Mutex
	state probeState
	cause error
}

// disabled reports whether the backend was marked permanently unavailable,
// together with the recorded cause.
func (a *availability) disabled() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == stateUnavailable, a.cause
}

func (a *availability) markAvailable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateNotProbed {
		a.state = stateAvailable
	}
}

func (a *availability) markUnavailable(cause error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == stateNotProbed {
		a.state = stateUnavailable
		a.cause = cause
	}
}

// String describes the probe state for status reporting.
func (a *availability) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case stateAvailable:
		return "available"
	case stateUnavailable:
		return "unavailable: " + a.cause.Error()
	default:
		return "not probed"
	}
}
