// Package paging implements the loading state machine that drives
// "load more" and "refresh" cycles for a remotely paginated list.
//
// The machine is a pure transition function:
//
//	Step(status, event, env) -> (status', effects, error)
//
// Step never performs I/O. Entry actions are returned as Effects that an
// interpreter (see internal/viewmodel) executes on its single logical thread:
// clearing the list, issuing a fetch, scheduling the fixed-delay retry, and
// stopping the refresh indicator.
//
// # States
//
//	Initial --> Reloading --> Loading --+--> Idle ----+--> Reloading
//	                             ^      |             +--> Loading
//	                             |      +--> NoMore ----> Reloading
//	                             |      +--> Fail
//	                             +-----------+  (after RetryDelay)
//
// Entering Reloading clears the list and the cursor and immediately enters
// Loading. Entering Loading without a scope (for example an empty account
// ID) goes straight to Fail. Entering Fail schedules exactly one retry.
package paging
