package mastodon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MinServerVersion is the oldest Mastodon version offering account lookup.
const MinServerVersion = "3.4.0"

// Instance describes a server, normalized from the v2 or v1 endpoint.
type Instance struct {
	Domain      string `json:"domain" yaml:"domain"`
	Title       string `json:"title" yaml:"title"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	SourceURL   string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Users       int    `json:"users,omitempty" yaml:"users,omitempty"`
	APIVersion  int    `json:"api_version" yaml:"api_version"`
}

type instanceV2 struct {
	Domain      string `json:"domain"`
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url"`
	Usage       struct {
		Users struct {
			ActiveMonth int `json:"active_month"`
		} `json:"users"`
	} `json:"usage"`
}

type instanceV1 struct {
	URI              string `json:"uri"`
	Title            string `json:"title"`
	Version          string `json:"version"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Stats            struct {
		UserCount int `json:"user_count"`
	} `json:"stats"`
}

// Instance fetches /api/v2/instance, falling back to /api/v1/instance when
// the server does not know the v2 endpoint.
func (c *Client) Instance(ctx context.Context) (Instance, error) {
	var v2 instanceV2
	_, err := c.get(ctx, "/api/v2/instance", nil, &v2)
	if err == nil {
		return Instance{
			Domain:      v2.Domain,
			Title:       v2.Title,
			Version:     v2.Version,
			Description: v2.Description,
			SourceURL:   v2.SourceURL,
			Users:       v2.Usage.Users.ActiveMonth,
			APIVersion:  2,
		}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Instance{}, err
	}

	c.logger.Debug().Msg("v2 instance endpoint unsupported, falling back to v1")
	var v1 instanceV1
	if _, err := c.get(ctx, "/api/v1/instance", nil, &v1); err != nil {
		return Instance{}, err
	}
	desc := v1.ShortDescription
	if desc == "" {
		desc = v1.Description
	}
	return Instance{
		Domain:      v1.URI,
		Title:       v1.Title,
		Version:     v1.Version,
		Description: desc,
		Users:       v1.Stats.UserCount,
		APIVersion:  1,
	}, nil
}

// SemVer parses the Mastodon version. Forks report strings such as
// "3.5.3 (compatible; Pleroma 2.5.0)" or "4.2.0+glitch"; the leading
// Mastodon-compatible version is used.
func (i Instance) SemVer() (*semver.Version, error) {
	fields := strings.Fields(i.Version)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty version", ErrIncompatible)
	}
	v, err := semver.NewVersion(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %w", ErrIncompatible, i.Version, err)
	}
	return v, nil
}

// CheckCompatibility returns an error wrapping ErrIncompatible when the
// server is older than MinServerVersion or its version cannot be parsed.
func CheckCompatibility(i Instance) error {
	v, err := i.SemVer()
	if err != nil {
		return err
	}
	minVersion := semver.MustParse(MinServerVersion)
	// Compare without prerelease so 4.0.0-beta.1 counts as 4.0.0.
	release, err := v.SetPrerelease("")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIncompatible, err)
	}
	if release.LessThan(minVersion) {
		return fmt.Errorf("%w: server runs %s, need %s or newer", ErrIncompatible, v, MinServerVersion)
	}
	return nil
}
