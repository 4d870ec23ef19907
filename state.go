package pin

import "errors"

// State is the lifecycle state of a [Monitor].
//
//	idle ──Start/Up/Down──▶ running ──Stop/ctx cancel──▶ stopped
//	  └──────────────────Stop──────────────────────────────▲
//
// There is no transition out of stopped; create a new Monitor instead.
type State int

const (
	// StateIdle is the initial state: configured but not polling.
	StateIdle State = iota

	// StateRunning means the repeating timer is active.
	StateRunning

	// StateStopped is terminal.
	StateStopped
)

// String returns the lower-case name of the state.
// This implements the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Sentinel errors returned by [New], the options, and [Monitor.Start].
// Use errors.Is to test for them; returned errors usually wrap them with
// detail.
var (
	ErrInvalidURL         = errors.New("pin: invalid URL")
	ErrInvalidInterval    = errors.New("pin: interval must be positive")
	ErrInvalidMaxDuration = errors.New("pin: max duration must not be negative")
	ErrInvalidTimeout     = errors.New("pin: timeout must be positive")
	ErrInvalidHeader      = errors.New("pin: invalid header")
	ErrNilDriver          = errors.New("pin: driver must not be nil")
	ErrStopped            = errors.New("pin: monitor is stopped")
)
