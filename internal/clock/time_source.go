// Package clock provides an injectable time source so that timer-driven
// behavior (such as the fixed retry delay after a failed page fetch) can be
// exercised deterministically in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

type (
	// TimeSource is the minimal clock surface used by fedipage.
	TimeSource interface {
		Now() time.Time
		AfterFunc(d time.Duration, f func()) Timer
	}

	// Timer is a cancellable one-shot timer returned by AfterFunc.
	Timer interface {
		// Stop prevents the timer from firing. It returns false if the timer
		// already fired or was stopped.
		Stop() bool
	}

	// RealTimeSource delegates to the time package.
	RealTimeSource struct{}

	// EventTimeSource is a manually driven TimeSource. Timers fire
	// synchronously on the goroutine that calls Update or Advance.
	EventTimeSource struct {
		mu     sync.Mutex
		now    time.Time
		timers []*fakeTimer
	}

	fakeTimer struct {
		source   *EventTimeSource
		deadline time.Time
		callback func()
		done     bool
	}
)

var (
	_ TimeSource = RealTimeSource{}
	_ TimeSource = (*EventTimeSource)(nil)
)

// NewRealTimeSource returns a TimeSource backed by the wall clock.
func NewRealTimeSource() RealTimeSource {
	return RealTimeSource{}
}

// Now returns time.Now.
func (RealTimeSource) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (RealTimeSource) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NewEventTimeSource returns an EventTimeSource starting at the Unix epoch.
func NewEventTimeSource() *EventTimeSource {
	return &EventTimeSource{now: time.Unix(0, 0)}
}

// Now returns the current fake time.
func (ts *EventTimeSource) Now() time.Time {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.now
}

// AfterFunc registers f to run once the fake time reaches Now()+d.
// A non-positive d fires on the next Update or Advance.
func (ts *EventTimeSource) AfterFunc(d time.Duration, f func()) Timer {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t := &fakeTimer{
		source:   ts,
		deadline: ts.now.Add(d),
		callback: f,
	}
	ts.timers = append(ts.timers, t)
	return t
}

// Advance moves the fake time forward by d and fires due timers.
func (ts *EventTimeSource) Advance(d time.Duration) {
	ts.Update(ts.Now().Add(d))
}

// Update sets the fake time to now and fires every timer whose deadline has
// passed, in deadline order. Callbacks run without the lock held.
func (ts *EventTimeSource) Update(now time.Time) {
	ts.mu.Lock()
	ts.now = now

	var due []*fakeTimer
	pending := ts.timers[:0]
	for _, t := range ts.timers {
		switch {
		case t.done:
		case !t.deadline.After(now):
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	ts.timers = pending
	ts.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, t := range due {
		t.callback()
	}
}

// NumTimers returns the number of timers that have neither fired nor been stopped.
func (ts *EventTimeSource) NumTimers() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	n := 0
	for _, t := range ts.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.source.mu.Lock()
	defer t.source.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	return true
}
