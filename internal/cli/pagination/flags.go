package pagination

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fedipage/fedipage/internal/mastodon"
)

// Flag limits and sort orders.
const (
	MinPageSize      = 1
	MaxPageSize      = mastodon.MaxPageSize
	DefaultSortField = ""
	DefaultSortOrder = SortOrderAsc
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
)

// Validation errors.
var (
	ErrInvalidPageSize   = fmt.Errorf("page-size must be between %d and %d", MinPageSize, MaxPageSize)
	ErrInvalidMaxPages   = errors.New("max-pages cannot be negative")
	ErrInvalidLimit      = errors.New("limit cannot be negative")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'followers:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// Params holds the list flags.
type Params struct {
	// PageSize is the limit sent per request. Zero uses the configured default.
	PageSize int

	// MaxPages stops loading after this many pages. Zero loads until the
	// server reports the end of the list.
	MaxPages int

	// Limit truncates the rendered rows after sorting. Zero renders all.
	Limit int

	SortField string
	SortOrder string
}

// NewParams returns the defaults.
func NewParams() *Params {
	return &Params{SortField: DefaultSortField, SortOrder: DefaultSortOrder}
}

// Validate checks the numeric bounds.
func (p Params) Validate() error {
	if p.PageSize != 0 && (p.PageSize < MinPageSize || p.PageSize > MaxPageSize) {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	if p.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if p.Limit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// EffectivePageSize returns PageSize, or fallback when it is unset.
func (p Params) EffectivePageSize(fallback int) int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	return fallback
}

const sortPartsMax = 2

// ParseSort parses "field" or "field:order". An empty string means no sort.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if strings.TrimSpace(sortStr) == "" {
		return DefaultSortField, DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}
