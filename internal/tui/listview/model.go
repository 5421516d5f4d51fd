package listview

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultBufferSize is the number of extra rows rendered above and below the viewport.
const defaultBufferSize = 5

const halfViewportDivisor = 2

// RenderFunc renders one item. selected marks the cursor row.
type RenderFunc[T any] func(item T, selected bool) string

// KeyFunc returns the identity of an item. Items with equal keys are the
// same row across snapshots.
type KeyFunc[T any] func(item T) string

// KeyMap holds the navigation bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

// DefaultKeyMap returns arrow, page and vim-style bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home/g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "bottom")),
	}
}

// VirtualListModel renders only the rows around the viewport, so long
// account lists scroll without re-rendering every row.
type VirtualListModel[T any] struct {
	items      []T
	renderFunc RenderFunc[T]
	keyFunc    KeyFunc[T]
	keys       KeyMap

	selected    int
	visibleFrom int
	visibleTo   int // exclusive
	height      int
	width       int
	bufferSize  int
}

// NewVirtualListModel creates a list of items in a height x width viewport.
// keyFunc may be nil, in which case SetItems keeps the cursor by index.
func NewVirtualListModel[T any](items []T, height, width int, renderFunc RenderFunc[T], keyFunc KeyFunc[T]) *VirtualListModel[T] {
	m := &VirtualListModel[T]{
		items:      items,
		renderFunc: renderFunc,
		keyFunc:    keyFunc,
		keys:       DefaultKeyMap(),
		height:     height,
		width:      width,
		bufferSize: defaultBufferSize,
	}
	m.updateVisibleRange()
	return m
}

// Init implements tea.Model.
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys and resizes.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.HandleKey(msg)
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}
	return m, nil
}

// HandleKey moves the cursor. It reports whether msg was a navigation key.
func (m *VirtualListModel[T]) HandleKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.SetSelected(m.selected - 1)
	case key.Matches(msg, m.keys.Down):
		m.SetSelected(m.selected + 1)
	case key.Matches(msg, m.keys.PageUp):
		m.SetSelected(m.selected - m.height)
	case key.Matches(msg, m.keys.PageDown):
		m.SetSelected(m.selected + m.height)
	case key.Matches(msg, m.keys.Top):
		m.SetSelected(0)
	case key.Matches(msg, m.keys.Bottom):
		m.SetSelected(len(m.items) - 1)
	default:
		return false
	}
	return true
}

// SetItems replaces the rows. The cursor follows the previously selected
// key when it is still present; otherwise it stays at the same index,
// clamped to the new length.
func (m *VirtualListModel[T]) SetItems(items []T) {
	idx := m.selected
	if m.keyFunc != nil {
		if cur := m.SelectedItem(); cur != nil {
			want := m.keyFunc(*cur)
			for i, it := range items {
				if m.keyFunc(it) == want {
					idx = i
					break
				}
			}
		}
	}
	m.items = items
	m.SetSelected(idx)
}

// SetSize resizes the viewport.
func (m *VirtualListModel[T]) SetSize(width, height int) {
	m.width = width
	m.height = max(height, 1)
	m.updateVisibleRange()
}

// updateVisibleRange centers the viewport on the cursor where possible.
func (m *VirtualListModel[T]) updateVisibleRange() {
	if len(m.items) == 0 {
		m.visibleFrom, m.visibleTo = 0, 0
		return
	}

	half := m.height / halfViewportDivisor
	from := m.selected - half
	to := m.selected + half

	if from < 0 {
		from = 0
		to = m.height
	}
	if to > len(m.items) {
		to = len(m.items)
		from = max(to-m.height, 0)
	}

	m.visibleFrom, m.visibleTo = from, to
}

// View renders the viewport plus the buffer rows.
func (m *VirtualListModel[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}

	from := max(m.visibleFrom-m.bufferSize, 0)
	to := min(m.visibleTo+m.bufferSize, len(m.items))

	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, m.renderFunc(m.items[i], i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// ItemCount returns the number of rows.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.items)
}

// Selected returns the cursor index.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected moves the cursor, clamped to the rows.
func (m *VirtualListModel[T]) SetSelected(index int) {
	switch {
	case len(m.items) == 0 || index < 0:
		m.selected = 0
	case index >= len(m.items):
		m.selected = len(m.items) - 1
	default:
		m.selected = index
	}
	m.updateVisibleRange()
}

// AtEnd reports whether the last row is inside the viewport. An empty list
// is at its end.
func (m *VirtualListModel[T]) AtEnd() bool {
	return m.visibleTo >= len(m.items)
}

// VisibleFrom returns the first visible index.
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.visibleFrom
}

// VisibleTo returns the index after the last visible row.
func (m *VirtualListModel[T]) VisibleTo() int {
	return m.visibleTo
}

// Height returns the viewport height.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *VirtualListModel[T]) Width() int {
	return m.width
}

// KeyMap returns the navigation bindings, for help rendering.
func (m *VirtualListModel[T]) KeyMap() KeyMap {
	return m.keys
}

// SelectedItem returns the row under the cursor, or nil when empty.
func (m *VirtualListModel[T]) SelectedItem() *T {
	if m.selected < 0 || m.selected >= len(m.items) {
		return nil
	}
	return &m.items[m.selected]
}
