package pagination

import (
	"github.com/fedipage/fedipage/internal/mastodon"
	"github.com/fedipage/fedipage/internal/viewmodel"
)

// ListMeta describes how a rendered list was loaded.
type ListMeta struct {
	Instance string `json:"instance"           yaml:"instance"`
	Account  string `json:"account"            yaml:"account"`
	List     string `json:"list"               yaml:"list"`
	Count    int    `json:"count"              yaml:"count"`
	Loaded   int    `json:"loaded"             yaml:"loaded"`
	Pages    int    `json:"pages"              yaml:"pages"`
	Complete bool   `json:"complete"           yaml:"complete"`
	State    string `json:"state"              yaml:"state"`
	Cursor   string `json:"next_cursor,omitempty" yaml:"next_cursor,omitempty"`
	Offline  bool   `json:"offline,omitempty"  yaml:"offline,omitempty"`
}

// NewListMeta builds metadata for snap. rendered is the number of rows
// written after sorting and truncation.
func NewListMeta(
	instance string,
	account mastodon.Account,
	kind mastodon.ListKind,
	snap viewmodel.Snapshot[mastodon.Account, mastodon.Relationship],
	rendered int,
) ListMeta {
	return ListMeta{
		Instance: instance,
		Account:  account.Acct,
		List:     string(kind),
		Count:    rendered,
		Loaded:   snap.Len(),
		Pages:    snap.Pages,
		Complete: snap.Exhausted(),
		State:    snap.State.String(),
		Cursor:   string(snap.Cursor),
	}
}
