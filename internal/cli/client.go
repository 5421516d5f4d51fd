package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fedipage/fedipage/internal/config"
	"github.com/fedipage/fedipage/internal/logging"
	"github.com/fedipage/fedipage/internal/mastodon"
	"github.com/fedipage/fedipage/internal/store"
)

// ErrNoInstance is returned when no server URL is configured.
var ErrNoInstance = errors.New("no instance configured: use --instance, FEDIPAGE_INSTANCE or 'fedipage config set instance.url'")

// selfAccount resolves to the account the access token belongs to.
const selfAccount = "me"

const accountKind = "account"

// newClient builds a REST client from cfg.
func newClient(cmd *cobra.Command, cfg *config.Config) (*mastodon.Client, error) {
	if cfg.Instance.URL == "" {
		return nil, ErrNoInstance
	}

	ua := cfg.Instance.UserAgent
	if ua == "" {
		ua = "fedipage/" + cmd.Root().Version
	}
	return mastodon.NewClient(cfg.Instance.URL, cfg.Instance.Token,
		mastodon.WithTimeout(cfg.Timeout()),
		mastodon.WithUserAgent(ua),
		mastodon.WithLogger(logging.ComponentLogger(logging.FromContext(cmd.Context()), "mastodon")),
	)
}

// openStore opens the record store described by cfg and the environment.
func openStore(cfg *config.Config) (*store.FileStore, error) {
	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(
		store.DirFromEnv(dir),
		store.EnabledFromEnv(cfg.Cache.Enabled),
		store.TTLFromEnv(cfg.Cache.TTLSeconds),
		cfg.Cache.MaxSizeMB,
	)
}

// resolveAccount turns a handle, or "me", into an account. Online lookups
// are stored so the same handle resolves in offline mode.
func resolveAccount(
	ctx context.Context,
	client *mastodon.Client,
	st *store.FileStore,
	handle string,
	offline bool,
) (mastodon.Account, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	key, err := store.GenerateKey(store.KeyParams{Instance: client.BaseURL(), Kind: accountKind, Scope: handle})
	if err != nil {
		return mastodon.Account{}, err
	}

	if offline {
		entry, peekErr := st.Peek(key)
		if peekErr != nil {
			return mastodon.Account{}, fmt.Errorf("resolving %q: %w: %w", handle, store.ErrOffline, peekErr)
		}
		var a mastodon.Account
		if decodeErr := entry.Decode(&a); decodeErr != nil {
			return mastodon.Account{}, fmt.Errorf("resolving %q: %w", handle, decodeErr)
		}
		return a, nil
	}

	var a mastodon.Account
	if handle == selfAccount {
		a, err = client.VerifyCredentials(ctx)
	} else {
		a, err = client.LookupAccount(ctx, handle)
	}
	if err != nil {
		return mastodon.Account{}, fmt.Errorf("resolving %q: %w", handle, err)
	}

	if st.IsEnabled() {
		if setErr := st.SetJSON(key, a); setErr != nil {
			log := logging.FromContext(ctx)
			log.Debug().Err(setErr).Msg("storing account lookup failed")
		}
	}
	return a, nil
}

// pruneStore drops expired entries and enforces the size limit after an
// online run. Offline runs keep expired entries since they are all there is.
func pruneStore(ctx context.Context, st *store.FileStore) {
	if !st.IsEnabled() {
		return
	}
	log := logging.FromContext(ctx)
	n, err := st.Prune()
	if err != nil {
		log.Debug().Err(err).Msg("pruning record store failed")
		return
	}
	if n > 0 {
		log.Debug().Int("removed", n).Msg("pruned record store")
	}
}

// isPermanent reports whether a list error will not go away by retrying.
func isPermanent(err error) bool {
	return errors.Is(err, store.ErrOffline) ||
		errors.Is(err, mastodon.ErrUnauthorized) ||
		errors.Is(err, mastodon.ErrNotFound)
}
