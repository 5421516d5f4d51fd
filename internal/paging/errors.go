package paging

import "errors"

// Sentinel errors returned by Step and carried in Fail transitions.
var (
	// ErrInvalidTransition indicates the event is not accepted in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrScopeMissing indicates Loading was entered without the required
	// scoping parameter. The machine fails and keeps retrying, but cannot
	// succeed until the scope is supplied externally.
	ErrScopeMissing = errors.New("required scope parameter is missing")
)
