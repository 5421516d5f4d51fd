package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fedipage/fedipage/internal/paging"
	"github.com/fedipage/fedipage/internal/viewmodel"
)

// Record kinds used in KeyParams.Kind.
const (
	kindPage       = "page"
	kindEnrichment = "enrichment"
)

// ErrOffline is returned when offline mode has no stored copy of a request.
var ErrOffline = errors.New("offline and not cached")

type storedPage[R viewmodel.Keyed] struct {
	Records []R    `json:"records"`
	Next    string `json:"next"`
}

// CachedFetcher decorates a viewmodel.Fetcher with write-through storage.
// Online, every successful response is stored. Offline, requests are served
// from the store only, ignoring expiry, and a miss fails with an error
// wrapping viewmodel.ErrRequestFailed so the list enters Fail like any
// other request error.
type CachedFetcher[R viewmodel.Keyed, E viewmodel.Keyed] struct {
	upstream  viewmodel.Fetcher[R, E]
	store     *FileStore
	namespace string
	pageSize  int
	offline   bool
	logger    zerolog.Logger
}

// CachedOption configures a CachedFetcher.
type CachedOption func(*cachedOptions)

type cachedOptions struct {
	offline  bool
	pageSize int
	logger   zerolog.Logger
}

// WithOffline serves requests from the store only.
func WithOffline(offline bool) CachedOption {
	return func(o *cachedOptions) { o.offline = offline }
}

// WithPageSize includes the page size in page keys.
func WithPageSize(n int) CachedOption {
	return func(o *cachedOptions) { o.pageSize = n }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) CachedOption {
	return func(o *cachedOptions) { o.logger = l }
}

// NewCachedFetcher wraps upstream. namespace separates stores for different
// servers and list kinds, e.g. "https://mastodon.social/following". upstream
// may be nil in offline mode.
func NewCachedFetcher[R viewmodel.Keyed, E viewmodel.Keyed](
	upstream viewmodel.Fetcher[R, E],
	store *FileStore,
	namespace string,
	opts ...CachedOption,
) *CachedFetcher[R, E] {
	o := cachedOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &CachedFetcher[R, E]{
		upstream:  upstream,
		store:     store,
		namespace: namespace,
		pageSize:  o.pageSize,
		offline:   o.offline,
		logger:    o.logger.With().Str("component", "store").Str("namespace", namespace).Logger(),
	}
}

// FetchPage implements viewmodel.Fetcher.
func (c *CachedFetcher[R, E]) FetchPage(ctx context.Context, scope string, cursor paging.Cursor) (viewmodel.Page[R], error) {
	key, err := GenerateKey(KeyParams{
		Instance: c.namespace,
		Kind:     kindPage,
		Scope:    scope,
		Cursor:   string(cursor),
		PageSize: c.pageSize,
	})
	if err != nil {
		return viewmodel.Page[R]{}, fmt.Errorf("%w: %w", viewmodel.ErrRequestFailed, err)
	}

	if c.offline {
		var sp storedPage[R]
		if err := c.load(key, &sp); err != nil {
			return viewmodel.Page[R]{}, err
		}
		c.logger.Debug().Str("cursor", string(cursor)).Int("records", len(sp.Records)).Msg("page served from store")
		return viewmodel.Page[R]{Records: sp.Records, Next: paging.Cursor(sp.Next)}, nil
	}

	page, err := c.upstream.FetchPage(ctx, scope, cursor)
	if err != nil {
		return page, err
	}
	c.save(key, storedPage[R]{Records: page.Records, Next: string(page.Next)})
	return page, nil
}

// FetchEnrichment implements viewmodel.Fetcher. Enrichments are stored per
// set of record keys.
func (c *CachedFetcher[R, E]) FetchEnrichment(ctx context.Context, records []R) ([]E, error) {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.Key())
	}
	key, err := GenerateKey(KeyParams{Instance: c.namespace, Kind: kindEnrichment, Keys: keys})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", viewmodel.ErrRequestFailed, err)
	}

	if c.offline {
		var out []E
		if err := c.load(key, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	out, err := c.upstream.FetchEnrichment(ctx, records)
	if err != nil {
		return nil, err
	}
	c.save(key, out)
	return out, nil
}

func (c *CachedFetcher[R, E]) load(key string, v any) error {
	entry, err := c.store.Peek(key)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", viewmodel.ErrRequestFailed, ErrOffline, err)
	}
	if err := entry.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding stored entry: %w", viewmodel.ErrRequestFailed, err)
	}
	return nil
}

// save stores v. Write failures are logged and otherwise ignored.
func (c *CachedFetcher[R, E]) save(key string, v any) {
	if !c.store.IsEnabled() {
		return
	}
	if err := c.store.SetJSON(key, v); err != nil {
		c.logger.Debug().Err(err).Msg("storing response failed")
	}
}
