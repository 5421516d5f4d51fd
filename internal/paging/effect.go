package paging

import "time"

// EffectKind identifies a side effect requested by Step.
type EffectKind int

// Effect kinds.
const (
	// EffectClearList empties the record list and the enrichment list.
	EffectClearList EffectKind = iota
	// EffectFetch issues one asynchronous page fetch using Cursor.
	EffectFetch
	// EffectScheduleRetry arms a one-shot timer that delivers
	// RetryElapsed(Epoch) after Delay.
	EffectScheduleRetry
	// EffectStopRefreshing ends the refresh indicator.
	EffectStopRefreshing
)

// String returns the effect kind name.
func (k EffectKind) String() string {
	switch k {
	case EffectClearList:
		return "clear_list"
	case EffectFetch:
		return "fetch"
	case EffectScheduleRetry:
		return "schedule_retry"
	case EffectStopRefreshing:
		return "stop_refreshing"
	default:
		return "unknown"
	}
}

// Effect is an entry action the interpreter must execute, in order.
type Effect struct {
	Kind   EffectKind
	Scope  string
	Cursor Cursor
	Epoch  uint64
	Delay  time.Duration
}
