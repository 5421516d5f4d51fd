package mastodon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fedipage/fedipage/internal/batch"
	"github.com/fedipage/fedipage/internal/paging"
	"github.com/fedipage/fedipage/internal/viewmodel"
)

// RelationshipBatchSize is the number of ids sent per relationships request.
const RelationshipBatchSize = 40

const defaultRelationshipConcurrency = 4

// ListKind selects the account list an AccountSource pages through.
type ListKind string

// Supported lists.
const (
	ListFollowing ListKind = "following"
	ListFollowers ListKind = "followers"
)

// ParseListKind validates s.
func ParseListKind(s string) (ListKind, error) {
	switch ListKind(s) {
	case ListFollowing, ListFollowers:
		return ListKind(s), nil
	default:
		return "", fmt.Errorf("unknown list %q", s)
	}
}

// AccountSource implements viewmodel.Fetcher for one account list. The
// scope passed to FetchPage is the id of the account whose list is shown.
type AccountSource struct {
	client      *Client
	kind        ListKind
	pageSize    int
	concurrency int
	processor   *batch.Processor[Account]
	skipRels    bool
	logger      zerolog.Logger
}

var _ viewmodel.Fetcher[Account, Relationship] = (*AccountSource)(nil)

// SourceOption configures an AccountSource.
type SourceOption func(*AccountSource)

// WithPageSize sets the limit sent with every page request.
func WithPageSize(n int) SourceOption {
	return func(s *AccountSource) {
		if n > 0 {
			s.pageSize = min(n, MaxPageSize)
		}
	}
}

// WithRelationshipConcurrency bounds parallel relationships requests.
func WithRelationshipConcurrency(n int) SourceOption {
	return func(s *AccountSource) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithoutRelationships skips the relationships lookup. Relationships need
// an access token, so anonymous listings use this.
func WithoutRelationships() SourceOption {
	return func(s *AccountSource) { s.skipRels = true }
}

// WithSourceLogger sets the logger.
func WithSourceLogger(l zerolog.Logger) SourceOption {
	return func(s *AccountSource) { s.logger = l }
}

// NewAccountSource creates a source for kind backed by client.
func NewAccountSource(client *Client, kind ListKind, opts ...SourceOption) *AccountSource {
	processor, _ := batch.NewProcessor[Account](RelationshipBatchSize)
	s := &AccountSource{
		client:      client,
		kind:        kind,
		pageSize:    DefaultPageSize,
		concurrency: defaultRelationshipConcurrency,
		processor:   processor,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the list the source pages through.
func (s *AccountSource) Kind() ListKind {
	return s.kind
}

// FetchPage returns the accounts after cursor. The next cursor is the
// max_id of the response's "next" link, empty when there is none.
func (s *AccountSource) FetchPage(ctx context.Context, scope string, cursor paging.Cursor) (viewmodel.Page[Account], error) {
	q := PageQuery{MaxID: string(cursor), Limit: s.pageSize}

	var (
		resp Response[[]Account]
		err  error
	)
	switch s.kind {
	case ListFollowers:
		resp, err = s.client.Followers(ctx, scope, q)
	default:
		resp, err = s.client.Following(ctx, scope, q)
	}
	if err != nil {
		return viewmodel.Page[Account]{}, err
	}

	s.logger.Debug().
		Str("list", string(s.kind)).
		Str("cursor", string(cursor)).
		Int("records", len(resp.Value)).
		Str("next", resp.Link.MaxID).
		Msg("page fetched")
	return viewmodel.Page[Account]{Records: resp.Value, Next: paging.Cursor(resp.Link.MaxID)}, nil
}

// FetchEnrichment fetches relationships for records in batches of
// RelationshipBatchSize, concurrently, preserving record order.
func (s *AccountSource) FetchEnrichment(ctx context.Context, records []Account) ([]Relationship, error) {
	if s.skipRels {
		return nil, nil
	}
	return batch.Map(ctx, s.processor, records, s.concurrency,
		func(ctx context.Context, accounts []Account) ([]Relationship, error) {
			ids := make([]string, 0, len(accounts))
			for _, a := range accounts {
				ids = append(ids, a.ID)
			}
			return s.client.Relationships(ctx, ids)
		})
}
