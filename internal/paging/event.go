package paging

import "fmt"

// EventKind identifies an input to the state machine.
type EventKind int

// Event kinds.
const (
	// EventReload is a user refresh or the initial load. It requests Reloading.
	EventReload EventKind = iota
	// EventLoadMore requests the next page. It requests Loading.
	EventLoadMore
	// EventPageLoaded reports a completed fetch, already merged into the list.
	EventPageLoaded
	// EventFetchFailed reports a failed page or enrichment fetch.
	EventFetchFailed
	// EventRetryElapsed reports that the Fail retry delay has passed.
	EventRetryElapsed
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventReload:
		return "reload"
	case EventLoadMore:
		return "load_more"
	case EventPageLoaded:
		return "page_loaded"
	case EventFetchFailed:
		return "fetch_failed"
	case EventRetryElapsed:
		return "retry_elapsed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Outcome summarizes a fetched page after it was merged into the list.
type Outcome struct {
	// Empty is true when the service returned zero records.
	Empty bool
	// Appended is true when at least one previously unseen record was added.
	Appended bool
	// Next is the cursor extracted from the response metadata.
	Next Cursor
}

// Event is a state machine input.
type Event struct {
	Kind    EventKind
	Outcome Outcome
	Err     error
	Epoch   uint64
}

// Reload returns an EventReload.
func Reload() Event { return Event{Kind: EventReload} }

// LoadMore returns an EventLoadMore.
func LoadMore() Event { return Event{Kind: EventLoadMore} }

// PageLoaded returns an EventPageLoaded carrying o.
func PageLoaded(o Outcome) Event { return Event{Kind: EventPageLoaded, Outcome: o} }

// FetchFailed returns an EventFetchFailed carrying err.
func FetchFailed(err error) Event { return Event{Kind: EventFetchFailed, Err: err} }

// RetryElapsed returns an EventRetryElapsed for the given Fail epoch.
func RetryElapsed(epoch uint64) Event { return Event{Kind: EventRetryElapsed, Epoch: epoch} }
