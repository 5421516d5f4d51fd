package pagination

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fedipage/fedipage/internal/mastodon"
	"github.com/fedipage/fedipage/internal/viewmodel"
)

// AccountRow is one loaded account with its relationship.
type AccountRow = viewmodel.Row[mastodon.Account, mastodon.Relationship]

type lessFunc func(a, b AccountRow) bool

//nolint:gochecknoglobals // Static sort field table.
var accountFields = map[string]lessFunc{
	"acct": func(a, b AccountRow) bool {
		return strings.ToLower(a.Record.Acct) < strings.ToLower(b.Record.Acct)
	},
	"name": func(a, b AccountRow) bool {
		return strings.ToLower(a.Record.Name()) < strings.ToLower(b.Record.Name())
	},
	"id": func(a, b AccountRow) bool {
		// Snowflake ids: longer is larger.
		if len(a.Record.ID) != len(b.Record.ID) {
			return len(a.Record.ID) < len(b.Record.ID)
		}
		return a.Record.ID < b.Record.ID
	},
	"followers": func(a, b AccountRow) bool { return a.Record.FollowersCount < b.Record.FollowersCount },
	"following": func(a, b AccountRow) bool { return a.Record.FollowingCount < b.Record.FollowingCount },
	"posts":     func(a, b AccountRow) bool { return a.Record.StatusesCount < b.Record.StatusesCount },
	"created":   func(a, b AccountRow) bool { return a.Record.CreatedAt.Before(b.Record.CreatedAt) },
	"relationship": func(a, b AccountRow) bool {
		return a.Enrichment.Label() < b.Enrichment.Label()
	},
}

// AccountSorter sorts loaded account rows.
type AccountSorter struct{}

// NewAccountSorter creates a sorter.
func NewAccountSorter() *AccountSorter {
	return &AccountSorter{}
}

// IsValidField reports whether rows can be sorted by field.
func (s *AccountSorter) IsValidField(field string) bool {
	_, ok := accountFields[field]
	return ok
}

// ValidFields lists the sort fields in order.
func (s *AccountSorter) ValidFields() []string {
	fields := make([]string, 0, len(accountFields))
	for f := range accountFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Validate returns ErrInvalidSortField for unknown fields. The empty field
// is valid and means server order.
func (s *AccountSorter) Validate(field string) error {
	if field == "" || s.IsValidField(field) {
		return nil
	}
	return fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(s.ValidFields(), ", "))
}

// Sort returns a sorted copy of rows. Equal rows keep server order. An
// unknown or empty field returns rows unchanged.
func (s *AccountSorter) Sort(rows []AccountRow, field, order string) []AccountRow {
	less, ok := accountFields[field]
	if !ok {
		return rows
	}

	sorted := make([]AccountRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortOrderDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// Truncate returns the first limit rows. limit <= 0 returns all of them.
func Truncate(rows []AccountRow, limit int) []AccountRow {
	if limit <= 0 || limit >= len(rows) {
		return rows
	}
	return rows[:limit]
}
