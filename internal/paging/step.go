package paging

import "fmt"

// Step applies ev to st and returns the new status together with the entry
// actions of every state entered along the way. Entry chains such as
// Reloading -> Loading -> Fail are resolved in a single call.
//
// A rejected event returns st unchanged, no effects, and an error wrapping
// ErrInvalidTransition.
func Step(st Status, ev Event, env Env) (Status, []Effect, error) {
	switch ev.Kind {
	case EventReload:
		if st.State == StateInitial && env.Scope == "" {
			return st, nil, fmt.Errorf("%w: %s -> %s: %w",
				ErrInvalidTransition, st.State, StateReloading, ErrScopeMissing)
		}
		return enter(st, StateReloading, env, nil)

	case EventLoadMore:
		return enter(st, StateLoading, env, nil)

	case EventPageLoaded:
		if st.State != StateLoading {
			return st, nil, rejected(st.State, ev.Kind)
		}
		return pageLoaded(st, ev.Outcome, env)

	case EventFetchFailed:
		if st.State != StateLoading {
			return st, nil, rejected(st.State, ev.Kind)
		}
		return enter(st, StateFail, env, ev.Err)

	case EventRetryElapsed:
		if st.State != StateFail || ev.Epoch != st.Epoch {
			return st, nil, fmt.Errorf("%w: stale retry for epoch %d (state %s, epoch %d)",
				ErrInvalidTransition, ev.Epoch, st.State, st.Epoch)
		}
		return enter(st, StateLoading, env, nil)

	default:
		return st, nil, rejected(st.State, ev.Kind)
	}
}

// pageLoaded resolves Loading after a fetch completed.
func pageLoaded(st Status, o Outcome, env Env) (Status, []Effect, error) {
	st.Err = nil

	if o.Empty {
		// An empty page resets the whole list, even mid-pagination.
		next, effects, err := enter(st, StateNoMore, env, nil)
		if err != nil {
			return st, nil, err
		}
		return next, append(effects, Effect{Kind: EffectClearList}), nil
	}

	st.Cursor = o.Next
	if o.Appended && !o.Next.IsZero() {
		return enter(st, StateIdle, env, nil)
	}
	return enter(st, StateNoMore, env, nil)
}

// enter moves st into to and runs its entry action. cause is recorded when
// entering Fail.
func enter(st Status, to State, env Env, cause error) (Status, []Effect, error) {
	if !CanTransition(st.State, to) {
		return st, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, st.State, to)
	}

	st.State = to

	switch to {
	case StateReloading:
		st.Cursor = ""
		effects := []Effect{{Kind: EffectClearList}}
		next, more, err := enter(st, StateLoading, env, nil)
		if err != nil {
			return st, nil, err
		}
		return next, append(effects, more...), nil

	case StateLoading:
		if env.Scope == "" {
			return enter(st, StateFail, env, ErrScopeMissing)
		}
		return st, []Effect{{Kind: EffectFetch, Scope: env.Scope, Cursor: st.Cursor}}, nil

	case StateFail:
		st.Epoch++
		st.Err = cause
		return st, []Effect{
			{Kind: EffectStopRefreshing},
			{Kind: EffectScheduleRetry, Epoch: st.Epoch, Delay: env.retryDelay()},
		}, nil

	case StateIdle, StateNoMore:
		return st, []Effect{{Kind: EffectStopRefreshing}}, nil

	case StateInitial:
		return st, nil, nil

	default:
		return st, nil, nil
	}
}

func rejected(s State, k EventKind) error {
	return fmt.Errorf("%w: %s not accepted in state %s", ErrInvalidTransition, k, s)
}
