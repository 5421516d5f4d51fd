package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fedipage/fedipage/internal/cli/pagination"
	"github.com/fedipage/fedipage/internal/config"
	"github.com/fedipage/fedipage/internal/logging"
	"github.com/fedipage/fedipage/internal/mastodon"
	"github.com/fedipage/fedipage/internal/store"
	"github.com/fedipage/fedipage/internal/tui"
	"github.com/fedipage/fedipage/internal/viewmodel"
)

// ErrIncomplete is returned when a list stopped loading before its end
// because of --timeout.
var ErrIncomplete = errors.New("list is incomplete")

type accountListFlags struct {
	params       *pagination.Params
	sort         string
	output       string
	timeout      time.Duration
	offline      bool
	interactive  bool
	checkVersion bool
}

// NewAccountListCmd creates the "following" or "followers" command.
func NewAccountListCmd(kind mastodon.ListKind) *cobra.Command {
	flags := accountListFlags{params: pagination.NewParams()}

	short := "List the accounts an account follows"
	if kind == mastodon.ListFollowers {
		short = "List the accounts following an account"
	}

	cmd := &cobra.Command{
		Use:   string(kind) + " <account>",
		Short: short,
		Long: short + `.

<account> is a handle such as alice or alice@example.social, or "me" for the
account of the configured access token. Pages are requested until the server
reports the end of the list, --max-pages pages were loaded, or --timeout
expires. Failed requests are retried every few seconds.`,
		Example: fmt.Sprintf(`  # All accounts, as a table
  fedipage %[1]s alice@mastodon.social

  # First two pages as JSON
  fedipage %[1]s me --max-pages 2 --output json

  # Sorted by follower count, top 10
  fedipage %[1]s me --sort followers:desc --limit 10

  # Served from the local record store only
  fedipage %[1]s me --offline`, kind),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountList(cmd, kind, args[0], &flags)
		},
	}

	cmd.Flags().IntVar(&flags.params.PageSize, "page-size", 0,
		fmt.Sprintf("accounts per request, %d-%d (default from config)", pagination.MinPageSize, pagination.MaxPageSize))
	cmd.Flags().IntVar(&flags.params.MaxPages, "max-pages", 0, "stop after this many pages (0 = until the end, default from config)")
	cmd.Flags().IntVar(&flags.params.Limit, "limit", 0, "render at most this many accounts after sorting (0 = all)")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "sort by field[:asc|desc]: acct, name, id, followers, following, posts, created, relationship")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output format: table, json or yaml (default from config)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "give up loading after this long (0 = no limit)")
	cmd.Flags().BoolVar(&flags.offline, "offline", false, "serve pages from the local record store only")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "browse the list in the terminal UI")
	cmd.Flags().BoolVar(&flags.checkVersion, "check-version", false, "fail if the server is older than the supported minimum")

	return cmd
}

//nolint:gocognit,funlen // Linear command flow: resolve, build, load, render.
func runAccountList(cmd *cobra.Command, kind mastodon.ListKind, handle string, flags *accountListFlags) error {
	cfg := config.GetGlobalConfig()

	if !cmd.Flags().Changed("max-pages") {
		flags.params.MaxPages = cfg.Paging.MaxPages
	}
	if err := flags.params.Validate(); err != nil {
		return err
	}
	field, order, err := pagination.ParseSort(flags.sort)
	if err != nil {
		return err
	}
	sorter := pagination.NewAccountSorter()
	if err := sorter.Validate(field); err != nil {
		return err
	}
	format, err := resolveFormat(flags.output, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}
	log := logging.FromContext(ctx)

	client, err := newClient(cmd, cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	offline := flags.offline || cfg.Cache.Offline
	if offline && !st.IsEnabled() {
		return fmt.Errorf("offline mode needs the record store: %w", store.ErrCacheDisabled)
	}

	if flags.checkVersion && !offline {
		inst, instErr := client.Instance(ctx)
		if instErr != nil {
			return fmt.Errorf("checking server version: %w", instErr)
		}
		if compatErr := mastodon.CheckCompatibility(inst); compatErr != nil {
			return compatErr
		}
	}

	account, err := resolveAccount(ctx, client, st, handle, offline)
	if err != nil {
		return err
	}

	pageSize := flags.params.EffectivePageSize(cfg.Paging.PageSize)
	srcOpts := []mastodon.SourceOption{
		mastodon.WithPageSize(pageSize),
		mastodon.WithSourceLogger(logging.ComponentLogger(log, "source")),
	}
	if !client.HasToken() {
		srcOpts = append(srcOpts, mastodon.WithoutRelationships())
	}

	var fetcher viewmodel.Fetcher[mastodon.Account, mastodon.Relationship] = mastodon.NewAccountSource(client, kind, srcOpts...)
	if st.IsEnabled() {
		fetcher = store.NewCachedFetcher[mastodon.Account, mastodon.Relationship](
			fetcher, st, client.BaseURL()+"/"+string(kind),
			store.WithOffline(offline),
			store.WithPageSize(pageSize),
			store.WithLogger(log),
		)
	}

	vm := viewmodel.New[mastodon.Account, mastodon.Relationship](fetcher, account.ID,
		viewmodel.WithRetryDelay(cfg.Paging.RetryDelay),
		viewmodel.WithLogger(logging.ComponentLogger(log, "viewmodel")),
	)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = vm.Run(runCtx) }()

	log.Debug().
		Str("list", string(kind)).
		Str("account", account.Acct).
		Str("account_id", account.ID).
		Bool("offline", offline).
		Int("page_size", pageSize).
		Msg("loading list")

	if flags.interactive {
		err := runAccountListTUI(ctx, kind, account, vm)
		if !offline {
			pruneStore(ctx, st)
		}
		return err
	}

	snap, loadErr := viewmodel.LoadAllUntil(ctx, vm, flags.params.MaxPages, isPermanent)
	if loadErr != nil && !errors.Is(loadErr, context.DeadlineExceeded) {
		return fmt.Errorf("loading %s of @%s: %w", kind, account.Acct, loadErr)
	}
	if loadErr != nil && snap.Len() == 0 {
		return fmt.Errorf("loading %s of @%s: %w", kind, account.Acct, describeTimeout(loadErr, snap.Err))
	}

	rows := pagination.Truncate(sorter.Sort(snap.Rows(), field, order), flags.params.Limit)
	meta := pagination.NewListMeta(client.BaseURL(), account, kind, snap, len(rows))
	meta.Offline = offline

	styled := tui.DetectOutputMode(false, false, false) != tui.OutputModePlain
	if err := renderAccounts(cmd.OutOrStdout(), format, meta, rows, styled); err != nil {
		return err
	}
	if !offline {
		pruneStore(ctx, st)
	}

	if loadErr != nil {
		cmd.PrintErrf("Warning: stopped after %s with %s loaded\n",
			flags.timeout, tui.FormatCount(snap.Len(), "account"))
		return fmt.Errorf("%w: %w", ErrIncomplete, describeTimeout(loadErr, snap.Err))
	}
	return nil
}

func describeTimeout(err, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("%w (last request error: %w)", err, lastErr)
	}
	return err
}

func runAccountListTUI(
	ctx context.Context,
	kind mastodon.ListKind,
	account mastodon.Account,
	vm *viewmodel.ListViewModel[mastodon.Account, mastodon.Relationship],
) error {
	updates, unsubscribe := vm.Subscribe()
	defer unsubscribe()

	title := fmt.Sprintf("%s of @%s", kind, account.Acct)
	p := tea.NewProgram(tui.NewAccountListModel(ctx, title, vm, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}
	return nil
}
