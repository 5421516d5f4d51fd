package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fedipage/fedipage/internal/logging"
	"github.com/fedipage/fedipage/internal/mastodon"
	"github.com/fedipage/fedipage/internal/paging"
	"github.com/fedipage/fedipage/internal/tui/listview"
	"github.com/fedipage/fedipage/internal/viewmodel"
)

// AccountRow is one account with its relationship.
type AccountRow = viewmodel.Row[mastodon.Account, mastodon.Relationship]

// AccountSnapshot is a published state of an account list.
type AccountSnapshot = viewmodel.Snapshot[mastodon.Account, mastodon.Relationship]

// ListController is the part of a list view model the screen drives.
type ListController interface {
	Refresh()
	LoadMore()
}

// ViewState is the screen currently shown.
type ViewState int

// Screens.
const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateQuitting
)

// snapshotMsg carries a snapshot read from the subscription.
type snapshotMsg struct {
	snap AccountSnapshot
}

// subscriptionClosedMsg means the view model stopped publishing.
type subscriptionClosedMsg struct{}

type keyMap struct {
	Refresh  key.Binding
	LoadMore key.Binding
	Open     key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
	nav      listview.KeyMap
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		LoadMore: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "load more")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		nav:      listview.DefaultKeyMap(),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nav.Up, k.nav.Down, k.Open, k.Refresh, k.LoadMore, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nav.Up, k.nav.Down, k.nav.PageUp, k.nav.PageDown, k.nav.Top, k.nav.Bottom},
		{k.Open, k.Back, k.Refresh, k.LoadMore},
		{k.Help, k.Quit},
	}
}

// AccountListModel shows a paged account list. It re-renders on every
// snapshot, asks for the next page when the end of the list comes into view
// and shows a spinner while a page is pending or being retried.
type AccountListModel struct {
	ctx     context.Context
	title   string
	ctrl    ListController
	updates <-chan AccountSnapshot

	snap    AccountSnapshot
	list    *listview.VirtualListModel[AccountRow]
	loading *LoadingState
	keys    keyMap
	help    help.Model
	state   ViewState
	closed  bool

	width  int
	height int
}

// NewAccountListModel creates the screen. updates is a subscription from the
// same view model ctrl controls.
func NewAccountListModel(
	ctx context.Context,
	title string,
	ctrl ListController,
	updates <-chan AccountSnapshot,
) AccountListModel {
	m := AccountListModel{
		ctx:     ctx,
		title:   title,
		ctrl:    ctrl,
		updates: updates,
		loading: NewLoadingState("loading accounts"),
		keys:    defaultKeyMap(),
		help:    help.New(),
		state:   ViewStateList,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.list = listview.NewVirtualListModel(nil, defaultHeight-chromeHeight, defaultWidth,
		renderAccountRow, func(r AccountRow) string { return r.Record.Key() })
	return m
}

// Init starts the spinner, the subscription reader and the first load.
func (m AccountListModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), waitForSnapshot(m.updates), refreshCmd(m.ctrl))
}

// Update implements tea.Model.
func (m AccountListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, msg.Height-chromeHeight)
		return m, m.maybeLoadMore()

	case snapshotMsg:
		return m.applySnapshot(msg.snap)

	case subscriptionClosedMsg:
		m.closed = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, m.loading.Update(msg)
}

func (m AccountListModel) applySnapshot(snap AccountSnapshot) (tea.Model, tea.Cmd) {
	prev := m.snap.State
	m.snap = snap
	m.list.SetItems(snap.Rows())
	if snap.State == paging.StateFail {
		m.loading.SetMessage("request failed, retrying")
	} else {
		m.loading.SetMessage("loading accounts")
	}

	if snap.State != prev {
		log := logging.FromContext(m.ctx)
		log.Debug().
			Str("component", "tui").
			Str("from", prev.String()).
			Str("to", snap.State.String()).
			Int("records", snap.Len()).
			Msg("list state changed")
	}

	return m, tea.Batch(waitForSnapshot(m.updates), m.maybeLoadMore())
}

func (m AccountListModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.state == ViewStateDetail {
		if key.Matches(msg, m.keys.Back) {
			m.state = ViewStateList
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, refreshCmd(m.ctrl)
	case key.Matches(msg, m.keys.LoadMore):
		return m, loadMoreCmd(m.ctrl)
	case key.Matches(msg, m.keys.Open):
		if m.list.SelectedItem() != nil {
			m.state = ViewStateDetail
		}
		return m, nil
	case m.list.HandleKey(msg):
		return m, m.maybeLoadMore()
	}
	return m, nil
}

// maybeLoadMore requests the next page when the list is Idle and its last
// row is on screen.
func (m AccountListModel) maybeLoadMore() tea.Cmd {
	if m.closed || m.snap.State != paging.StateIdle || !m.list.AtEnd() {
		return nil
	}
	return loadMoreCmd(m.ctrl)
}

// State returns the screen shown.
func (m AccountListModel) State() ViewState {
	return m.state
}

// Snapshot returns the last snapshot received.
func (m AccountListModel) Snapshot() AccountSnapshot {
	return m.snap
}

// SelectedAccount returns the row under the cursor.
func (m AccountListModel) SelectedAccount() (AccountRow, bool) {
	row := m.list.SelectedItem()
	if row == nil {
		return AccountRow{}, false
	}
	return *row, true
}

// waitForSnapshot reads the next snapshot. A closed channel yields
// subscriptionClosedMsg and ends the read loop.
func waitForSnapshot(updates <-chan AccountSnapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

// The controller may block until its run loop accepts the event, so the
// calls happen off the UI goroutine.
func refreshCmd(ctrl ListController) tea.Cmd {
	return func() tea.Msg {
		ctrl.Refresh()
		return nil
	}
}

func loadMoreCmd(ctrl ListController) tea.Cmd {
	return func() tea.Msg {
		ctrl.LoadMore()
		return nil
	}
}
