package paging

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func genEvent(t *rapid.T, epoch uint64) Event {
	switch rapid.IntRange(0, 4).Draw(t, "kind") {
	case 0:
		return Reload()
	case 1:
		return LoadMore()
	case 2:
		return PageLoaded(Outcome{
			Empty:    rapid.Bool().Draw(t, "empty"),
			Appended: rapid.Bool().Draw(t, "appended"),
			Next:     Cursor(rapid.SampledFrom([]string{"", "a", "b"}).Draw(t, "next")),
		})
	case 3:
		return FetchFailed(errors.New("request failed"))
	default:
		// Mostly current epoch, sometimes stale.
		return RetryElapsed(epoch - uint64(rapid.IntRange(0, 1).Draw(t, "stale")))
	}
}

// Every accepted step only moves along edges of the transition table, and
// every rejected step leaves the status untouched.
func TestStep_FollowsTransitionTable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		scope := rapid.SampledFrom([]string{"", "user1"}).Draw(t, "scope")
		env := Env{Scope: scope}
		st := Status{}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			ev := genEvent(t, st.Epoch)
			next, effects, err := Step(st, ev, env)
			if err != nil {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("unexpected error kind: %v", err)
				}
				if next != st || len(effects) != 0 {
					t.Fatalf("rejected step changed status: %+v -> %+v", st, next)
				}
				continue
			}

			if next.State == st.State && next.State != StateLoading && next.State != StateFail {
				t.Fatalf("accepted %s without leaving %s", ev.Kind, st.State)
			}

			fetches := 0
			for _, e := range effects {
				if e.Kind == EffectFetch {
					fetches++
				}
			}
			if fetches > 1 {
				t.Fatalf("more than one fetch issued by a single step")
			}
			if fetches == 1 && next.State != StateLoading {
				t.Fatalf("fetch issued but state is %s", next.State)
			}
			if next.State == StateFail && next.Epoch == st.Epoch {
				t.Fatalf("entered Fail without advancing epoch")
			}
			if scope == "" && fetches > 0 {
				t.Fatalf("fetch issued without scope")
			}
			st = next
		}
	})
}
