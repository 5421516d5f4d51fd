package viewmodel

import (
	"github.com/fedipage/fedipage/internal/paging"
)

// Snapshot is an immutable copy of a list screen handed to renderers.
type Snapshot[R Keyed, E Keyed] struct {
	ID          string
	Scope       string
	State       paging.State
	Cursor      paging.Cursor
	Epoch       uint64
	Records     []R
	Enrichments []E
	Refreshing  bool
	Pages       int
	Err         error
}

// Row pairs a record with its enrichment, if one was fetched.
type Row[R Keyed, E Keyed] struct {
	Record     R
	Enrichment E
	Enriched   bool
}

// Rows pairs every record with its enrichment by key, in record order.
func (s Snapshot[R, E]) Rows() []Row[R, E] {
	byKey := make(map[string]E, len(s.Enrichments))
	for _, e := range s.Enrichments {
		byKey[e.Key()] = e
	}

	rows := make([]Row[R, E], 0, len(s.Records))
	for _, r := range s.Records {
		e, ok := byKey[r.Key()]
		rows = append(rows, Row[R, E]{Record: r, Enrichment: e, Enriched: ok})
	}
	return rows
}

// Enrichment returns the enrichment for key.
func (s Snapshot[R, E]) Enrichment(key string) (E, bool) {
	for _, e := range s.Enrichments {
		if e.Key() == key {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// Len returns the number of records.
func (s Snapshot[R, E]) Len() int {
	return len(s.Records)
}

// Exhausted reports whether the service has no further pages.
func (s Snapshot[R, E]) Exhausted() bool {
	return s.State == paging.StateNoMore
}
