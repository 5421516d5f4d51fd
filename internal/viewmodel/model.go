package viewmodel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/fedipage/fedipage/internal/clock"
	"github.com/fedipage/fedipage/internal/paging"
)

// inboxSize bounds the number of queued user, timer and fetch messages.
const inboxSize = 16

// ErrClosed is returned when the model's Run loop has exited.
var ErrClosed = errors.New("list view model closed")

// message is one input to the Run loop: either a machine event or the
// result of a fetch that still has to be merged.
type message[R Keyed, E Keyed] struct {
	event  paging.Event
	result *fetchResult[R, E]
}

type fetchResult[R Keyed, E Keyed] struct {
	page        Page[R]
	enrichments []E
	err         error
}

// Option configures a ListViewModel.
type Option func(*options)

type options struct {
	retryDelay time.Duration
	timeSource clock.TimeSource
	logger     zerolog.Logger
}

// WithRetryDelay overrides paging.DefaultRetryDelay.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.retryDelay = d }
}

// WithTimeSource sets the clock used for the Fail retry timer.
func WithTimeSource(ts clock.TimeSource) Option {
	return func(o *options) { o.timeSource = ts }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ListViewModel drives one paginated list. Create it with New and start
// Run on its own goroutine; Refresh, LoadMore, Snapshot and Subscribe may be
// called from any goroutine.
type ListViewModel[R Keyed, E Keyed] struct {
	id      string
	fetcher Fetcher[R, E]
	env     paging.Env
	clock   clock.TimeSource
	logger  zerolog.Logger

	inbox chan message[R, E]
	done  chan struct{}

	// Owned by the Run goroutine.
	status      paging.Status
	records     *RecordList[R]
	enrichments *RecordList[E]
	refreshing  bool
	pages       int
	fetchCancel context.CancelFunc
	retryTimer  clock.Timer

	mu      sync.RWMutex
	snap    Snapshot[R, E]
	subs    map[int]chan Snapshot[R, E]
	nextSub int
	closed  bool
}

// New creates a view model for the list identified by scope.
func New[R Keyed, E Keyed](fetcher Fetcher[R, E], scope string, opts ...Option) *ListViewModel[R, E] {
	o := options{
		retryDelay: paging.DefaultRetryDelay,
		timeSource: clock.NewRealTimeSource(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := ulid.Make().String()
	m := &ListViewModel[R, E]{
		id:          id,
		fetcher:     fetcher,
		env:         paging.Env{Scope: scope, RetryDelay: o.retryDelay},
		clock:       o.timeSource,
		logger:      o.logger.With().Str("list_id", id).Str("scope", scope).Logger(),
		inbox:       make(chan message[R, E], inboxSize),
		done:        make(chan struct{}),
		records:     NewRecordList[R](),
		enrichments: NewRecordList[E](),
		subs:        make(map[int]chan Snapshot[R, E]),
	}
	m.snap = m.buildSnapshot()
	return m
}

// ID returns the model's unique identifier.
func (m *ListViewModel[R, E]) ID() string {
	return m.id
}

// Scope returns the scoping parameter the list was created with.
func (m *ListViewModel[R, E]) Scope() string {
	return m.env.Scope
}

// Refresh requests a reload from the first page. From Initial this is the
// initial load; it is rejected when the scope is empty.
func (m *ListViewModel[R, E]) Refresh() {
	m.post(message[R, E]{event: paging.Reload()})
}

// LoadMore requests the next page. It is accepted in Idle and Fail only.
func (m *ListViewModel[R, E]) LoadMore() {
	m.post(message[R, E]{event: paging.LoadMore()})
}

// Snapshot returns the latest published snapshot.
func (m *ListViewModel[R, E]) Snapshot() Snapshot[R, E] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Subscribe returns a channel that receives the current snapshot and then
// the latest snapshot after every change. Slow readers only see the most
// recent value. The channel is closed by the returned cancel func or when
// Run exits.
func (m *ListViewModel[R, E]) Subscribe() (<-chan Snapshot[R, E], func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Snapshot[R, E], 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.snap

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
}

// Run is the model's single logical thread. It returns when ctx is done,
// cancelling any in-flight fetch and pending retry.
func (m *ListViewModel[R, E]) Run(ctx context.Context) error {
	m.logger.Debug().Msg("list view model started")
	defer m.shutdown()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug().Str("state", m.status.State.String()).Msg("list view model stopped")
			return ctx.Err()
		case msg := <-m.inbox:
			if msg.result != nil {
				m.completeFetch(ctx, msg.result)
				continue
			}
			m.dispatch(ctx, msg.event)
		}
	}
}

// post enqueues msg unless the Run loop has exited.
func (m *ListViewModel[R, E]) post(msg message[R, E]) {
	select {
	case m.inbox <- msg:
	case <-m.done:
	}
}

// dispatch feeds ev to the state machine and executes the resulting effects.
func (m *ListViewModel[R, E]) dispatch(ctx context.Context, ev paging.Event) {
	prev := m.status.State
	next, effects, err := paging.Step(m.status, ev, m.env)
	if err != nil {
		m.logger.Debug().Err(err).Str("event", ev.Kind.String()).Msg("event ignored")
		return
	}

	m.status = next
	if ev.Kind == paging.EventReload {
		m.refreshing = true
	}
	var retryIn time.Duration
	for _, effect := range effects {
		if effect.Kind == paging.EffectScheduleRetry {
			retryIn = effect.Delay
		}
		m.apply(ctx, effect)
	}

	logEvent := m.logger.Debug()
	if next.State == paging.StateFail {
		logEvent = m.logger.Warn().Err(next.Err).Dur("retry_in", retryIn)
	}
	logEvent.
		Str("event", ev.Kind.String()).
		Str("from", prev.String()).
		Str("to", next.State.String()).
		Int("records", m.records.Len()).
		Msg("state transition")

	m.publish()
}

// apply executes one entry action on the Run goroutine.
func (m *ListViewModel[R, E]) apply(ctx context.Context, effect paging.Effect) {
	switch effect.Kind {
	case paging.EffectClearList:
		m.records.Reset()
		m.enrichments.Reset()
		m.pages = 0

	case paging.EffectFetch:
		fetchCtx, cancel := context.WithCancel(ctx)
		m.fetchCancel = cancel
		go func() {
			res := m.fetch(fetchCtx, effect.Scope, effect.Cursor)
			m.post(message[R, E]{result: &res})
		}()

	case paging.EffectScheduleRetry:
		if m.retryTimer != nil {
			m.retryTimer.Stop()
		}
		epoch := effect.Epoch
		m.retryTimer = m.clock.AfterFunc(effect.Delay, func() {
			m.post(message[R, E]{event: paging.RetryElapsed(epoch)})
		})

	case paging.EffectStopRefreshing:
		m.refreshing = false
	}
}

// fetch runs off the Run goroutine and must not touch model state.
func (m *ListViewModel[R, E]) fetch(ctx context.Context, scope string, cursor paging.Cursor) fetchResult[R, E] {
	page, err := m.fetcher.FetchPage(ctx, scope, cursor)
	if err != nil {
		return fetchResult[R, E]{err: err}
	}
	if len(page.Records) == 0 {
		return fetchResult[R, E]{page: page}
	}

	enrichments, err := m.fetcher.FetchEnrichment(ctx, page.Records)
	if err != nil {
		return fetchResult[R, E]{err: err}
	}
	return fetchResult[R, E]{page: page, enrichments: enrichments}
}

// completeFetch merges a fetch result and resolves the Loading state.
func (m *ListViewModel[R, E]) completeFetch(ctx context.Context, res *fetchResult[R, E]) {
	if m.fetchCancel != nil {
		m.fetchCancel()
		m.fetchCancel = nil
	}
	if m.status.State != paging.StateLoading {
		m.logger.Debug().Str("state", m.status.State.String()).Msg("dropping fetch result outside loading")
		return
	}

	if res.err != nil {
		m.dispatch(ctx, paging.FetchFailed(res.err))
		return
	}

	outcome := paging.Outcome{
		Empty: len(res.page.Records) == 0,
		Next:  res.page.Next,
	}
	if !outcome.Empty {
		outcome.Appended = m.records.Merge(res.page.Records)
		m.enrichments.Merge(res.enrichments)
		m.pages++
	}
	m.dispatch(ctx, paging.PageLoaded(outcome))
}

func (m *ListViewModel[R, E]) buildSnapshot() Snapshot[R, E] {
	return Snapshot[R, E]{
		ID:          m.id,
		Scope:       m.env.Scope,
		State:       m.status.State,
		Cursor:      m.status.Cursor,
		Epoch:       m.status.Epoch,
		Records:     m.records.Items(),
		Enrichments: m.enrichments.Items(),
		Refreshing:  m.refreshing,
		Pages:       m.pages,
		Err:         m.status.Err,
	}
}

// publish stores a fresh snapshot and offers it to every subscriber,
// replacing any value the subscriber has not read yet.
func (m *ListViewModel[R, E]) publish() {
	snap := m.buildSnapshot()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = snap
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (m *ListViewModel[R, E]) shutdown() {
	close(m.done)
	if m.fetchCancel != nil {
		m.fetchCancel()
		m.fetchCancel = nil
	}
	if m.retryTimer != nil {
		m.retryTimer.Stop()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}
