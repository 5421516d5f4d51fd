package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fedipage/fedipage/internal/paging"
)

const (
	acctColumnWidth = 36
	nameColumnWidth = 28
)

// View implements tea.Model.
func (m AccountListModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateDetail:
		if row, ok := m.SelectedAccount(); ok {
			return RenderAccountDetail(row, m.width) + "\n" + m.help.View(m.keys)
		}
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(SubtleStyle.Render(FormatCount(m.snap.Len(), "account")))
	b.WriteString("\n\n")

	switch {
	case m.list.ItemCount() > 0:
		b.WriteString(m.list.View())
	case m.snap.State == paging.StateNoMore:
		b.WriteString(InfoStyle.Render("No accounts."))
	default:
		b.WriteString(RenderLoading(m.loading))
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m AccountListModel) renderStatusBar() string {
	parts := []string{m.snap.State.String()}
	if m.snap.State.IsBusy() {
		parts[0] = m.loading.spinner.View() + " " + parts[0]
	}
	if m.list.ItemCount() > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", m.list.Selected()+1, m.list.ItemCount()))
	}
	parts = append(parts, FormatCount(m.snap.Pages, "page"))
	if m.snap.Cursor != "" {
		parts = append(parts, "cursor "+string(m.snap.Cursor))
	}
	if m.snap.State == paging.StateNoMore {
		parts = append(parts, "end of list")
	}

	bar := StatusStyle.Render(strings.Join(parts, " · "))
	if m.snap.Err != nil && m.snap.State == paging.StateFail {
		bar += " " + ErrorStyle.Render(m.snap.Err.Error())
	}
	return bar
}

// renderAccountRow renders one list line: handle, name and relationship.
func renderAccountRow(row AccountRow, selected bool) string {
	acct := truncate("@"+row.Record.Acct, acctColumnWidth)
	name := truncate(row.Record.Name(), nameColumnWidth)
	line := fmt.Sprintf("%-*s %-*s", acctColumnWidth, acct, nameColumnWidth, name)

	if row.Enriched {
		label := row.Enrichment.Label()
		if row.Enrichment.Mutual() {
			label = MutualStyle.Render(label)
		} else {
			label = SubtleStyle.Render(label)
		}
		line += " " + label
	}

	if selected {
		return SelectedStyle.Render("> " + line)
	}
	return "  " + line
}

// RenderAccountDetail renders the detail box for one account.
func RenderAccountDetail(row AccountRow, width int) string {
	a := row.Record
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("ACCOUNT DETAIL"))
	content.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		content.WriteString(LabelStyle.Render(fmt.Sprintf("%-14s", label+":")))
		content.WriteString(ValueStyle.Render(value))
		content.WriteString("\n")
	}

	field("Handle", "@"+a.Acct)
	field("Name", a.Name())
	field("ID", a.ID)
	field("URL", a.URL)
	field("Followers", strconv.Itoa(a.FollowersCount))
	field("Following", strconv.Itoa(a.FollowingCount))
	field("Posts", strconv.Itoa(a.StatusesCount))
	if !a.CreatedAt.IsZero() {
		field("Joined", a.CreatedAt.Format("2006-01-02"))
	}
	field("Last post", a.LastStatusAt)

	var flags []string
	if a.Locked {
		flags = append(flags, "locked")
	}
	if a.Bot {
		flags = append(flags, "bot")
	}
	field("Flags", strings.Join(flags, ", "))

	if row.Enriched {
		field("Relationship", row.Enrichment.Label())
	}

	return BoxStyle.Width(max(width-borderPadding, lipgloss.Width("ACCOUNT DETAIL"))).Render(content.String())
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
