package viewmodel

import (
	"context"
	"errors"

	"github.com/fedipage/fedipage/internal/paging"
)

// ErrRequestFailed is the generic failure of a page or enrichment fetch.
// Service implementations wrap their transport and HTTP errors with it.
var ErrRequestFailed = errors.New("request failed")

// Page is one page of records and the cursor for the following page.
type Page[R Keyed] struct {
	Records []R
	Next    paging.Cursor
}

// Fetcher is the service contract consumed by the view model.
type Fetcher[R Keyed, E Keyed] interface {
	// FetchPage returns the page of records for scope starting at cursor.
	// An empty cursor requests the first page.
	FetchPage(ctx context.Context, scope string, cursor paging.Cursor) (Page[R], error)

	// FetchEnrichment returns secondary data for records, keyed like them.
	FetchEnrichment(ctx context.Context, records []R) ([]E, error)
}
