package viewmodel

import (
	"context"

	"github.com/fedipage/fedipage/internal/paging"
)

// LoadAll performs the initial load and then requests the next page every
// time the list settles in Idle, until the service reports NoMore or
// maxPages pages have been merged (maxPages <= 0 means no limit).
//
// Failed fetches are retried by the model itself; LoadAll only returns early
// when ctx ends, in which case the latest snapshot is returned with ctx.Err().
// The model's Run loop must be running.
func LoadAll[R Keyed, E Keyed](ctx context.Context, m *ListViewModel[R, E], maxPages int) (Snapshot[R, E], error) {
	return LoadAllUntil(ctx, m, maxPages, nil)
}

// LoadAllUntil is LoadAll with a check on every failure: when giveUp
// reports the error as permanent, loading stops and that error is returned
// with the Fail snapshot. The model keeps its scheduled retry.
func LoadAllUntil[R Keyed, E Keyed](
	ctx context.Context,
	m *ListViewModel[R, E],
	maxPages int,
	giveUp func(error) bool,
) (Snapshot[R, E], error) {
	if m.Scope() == "" {
		return m.Snapshot(), paging.ErrScopeMissing
	}

	updates, cancel := m.Subscribe()
	defer cancel()
	// Discard the pre-reload snapshot so a stale Idle cannot trigger LoadMore.
	<-updates

	m.Refresh()
	requested := 0
	for {
		select {
		case <-ctx.Done():
			return m.Snapshot(), ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return m.Snapshot(), ErrClosed
			}
			switch snap.State {
			case paging.StateNoMore:
				return snap, nil
			case paging.StateIdle:
				if maxPages > 0 && snap.Pages >= maxPages {
					return snap, nil
				}
				if snap.Pages > requested {
					requested = snap.Pages
					m.LoadMore()
				}
			case paging.StateFail:
				if giveUp != nil && snap.Err != nil && giveUp(snap.Err) {
					return snap, snap.Err
				}
			case paging.StateInitial, paging.StateReloading, paging.StateLoading:
			}
		}
	}
}
