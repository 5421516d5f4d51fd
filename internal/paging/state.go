package paging

import "time"

// DefaultRetryDelay is the fixed delay between entering Fail and the
// automatic re-entry into Loading. There is no backoff and no retry cap.
const DefaultRetryDelay = 3 * time.Second

// State is one of the six loading states. Exactly one is active per list.
type State int

// Loading states.
const (
	StateInitial State = iota
	StateReloading
	StateLoading
	StateIdle
	StateFail
	StateNoMore
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateReloading:
		return "reloading"
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateFail:
		return "fail"
	case StateNoMore:
		return "no_more"
	default:
		return "unknown"
	}
}

// IsBusy reports whether a fetch is pending or about to be retried.
func (s State) IsBusy() bool {
	return s == StateReloading || s == StateLoading || s == StateFail
}

// IsTerminalPerPage reports whether s ends a page cycle (Idle, NoMore or Fail).
func (s State) IsTerminalPerPage() bool {
	return s == StateIdle || s == StateNoMore || s == StateFail
}

// AllStates lists every state in declaration order.
func AllStates() []State {
	return []State{StateInitial, StateReloading, StateLoading, StateIdle, StateFail, StateNoMore}
}

// validNext is the transition table. The Initial -> Reloading edge is
// additionally guarded on a non-empty scope inside Step.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var validNext = map[State][]State{
	StateInitial:   {StateReloading},
	StateReloading: {StateLoading},
	StateLoading:   {StateFail, StateIdle, StateNoMore},
	StateIdle:      {StateReloading, StateLoading},
	StateFail:      {StateLoading},
	StateNoMore:    {StateReloading},
}

// CanTransition reports whether to is a valid next state of from.
func CanTransition(from, to State) bool {
	for _, s := range validNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Cursor is an opaque pagination token. The empty cursor means "start" when
// requesting a page and "no further pages" when returned by the service.
type Cursor string

// IsZero reports whether c is the empty cursor.
func (c Cursor) IsZero() bool {
	return c == ""
}

// Status is the complete value the transition function operates on.
type Status struct {
	// State is the active loading state.
	State State

	// Cursor is the token for the next page fetch.
	Cursor Cursor

	// Epoch counts Fail entries. A retry timer carries the epoch it was
	// scheduled for so a stale timer cannot re-enter Loading.
	Epoch uint64

	// Err is the cause of the most recent Fail entry. It is cleared when a
	// page loads.
	Err error
}

// Env is the read-only view of the owning list that Step needs. It is passed
// on every call rather than stored, so the machine holds no back-reference.
type Env struct {
	// Scope is the required scoping parameter (for example a user ID).
	Scope string

	// RetryDelay is the delay before a failed Loading is retried.
	// Zero means DefaultRetryDelay.
	RetryDelay time.Duration
}

func (e Env) retryDelay() time.Duration {
	if e.RetryDelay <= 0 {
		return DefaultRetryDelay
	}
	return e.RetryDelay
}
