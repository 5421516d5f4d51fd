// Package viewmodel holds the in-memory state of one paginated list screen
// and interprets the paging state machine's effects.
//
// A ListViewModel owns the ordered, de-duplicated record list, the parallel
// enrichment list, and the machine status. All of them are mutated only by
// the goroutine running Run. Fetches execute on their own goroutine and hand
// their result back to Run before anything is merged, so no lock guards the
// lists themselves; renderers read immutable Snapshots instead.
package viewmodel
