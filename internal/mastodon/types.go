package mastodon

import "time"

// Account is a Mastodon account.
type Account struct {
	ID             string    `json:"id" yaml:"id"`
	Username       string    `json:"username" yaml:"username"`
	Acct           string    `json:"acct" yaml:"acct"`
	DisplayName    string    `json:"display_name" yaml:"display_name"`
	Note           string    `json:"note,omitempty" yaml:"note,omitempty"`
	URL            string    `json:"url" yaml:"url"`
	Avatar         string    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Locked         bool      `json:"locked" yaml:"locked"`
	Bot            bool      `json:"bot" yaml:"bot"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	FollowersCount int       `json:"followers_count" yaml:"followers_count"`
	FollowingCount int       `json:"following_count" yaml:"following_count"`
	StatusesCount  int       `json:"statuses_count" yaml:"statuses_count"`
	LastStatusAt   string    `json:"last_status_at,omitempty" yaml:"last_status_at,omitempty"`
}

// Key identifies the account.
func (a Account) Key() string { return a.ID }

// Name returns the display name, or the username when it is empty.
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// Relationship is the authenticated user's relationship to an account.
type Relationship struct {
	ID         string `json:"id" yaml:"id"`
	Following  bool   `json:"following" yaml:"following"`
	FollowedBy bool   `json:"followed_by" yaml:"followed_by"`
	Requested  bool   `json:"requested" yaml:"requested"`
	Blocking   bool   `json:"blocking" yaml:"blocking"`
	BlockedBy  bool   `json:"blocked_by" yaml:"blocked_by"`
	Muting     bool   `json:"muting" yaml:"muting"`
	Endorsed   bool   `json:"endorsed" yaml:"endorsed"`
	Note       string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Key identifies the account the relationship describes.
func (r Relationship) Key() string { return r.ID }

// Mutual reports whether both sides follow each other.
func (r Relationship) Mutual() bool {
	return r.Following && r.FollowedBy
}

// Label summarizes the relationship in a few words.
func (r Relationship) Label() string {
	switch {
	case r.Blocking:
		return "blocked"
	case r.BlockedBy:
		return "blocks you"
	case r.Mutual():
		return "mutual"
	case r.Following:
		return "following"
	case r.Requested:
		return "requested"
	case r.FollowedBy:
		return "follows you"
	default:
		return ""
	}
}
