package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pinterval/internal/grid"
)

// renderHistory draws the history column: unique URLs newest first, the
// cursor, and the selected entry's thumbnail source.
func (m Model) renderHistory(width, height int) string {
	styles := m.theme.Styles()
	entries := m.sched.History().View(0)

	border := m.theme.Border
	if m.focus == FocusHistory {
		border = m.theme.BorderFocus
	}
	inner := max(4, width-4)

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("History"))
	b.WriteString(" ")
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("(%d)", m.sched.History().Len())))
	b.WriteString("\n")

	listHeight := max(1, height-6)
	cur := m.historyCursor(entries)
	start := 0
	if cur >= listHeight {
		start = cur - listHeight + 1
	}
	end := min(len(entries), start+listHeight)
	if len(entries) == 0 {
		b.WriteString(styles.FaintText.Render("nothing shown yet"))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		line := padRight(truncateMiddle(entries[i], inner), inner)
		if m.focus == FocusHistory && i == cur {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.MutedText.Render(line))
		}
		b.WriteString("\n")
	}

	if m.focus == FocusHistory {
		kind, source := m.preview.Source()
		if kind != grid.SourceNone {
			b.WriteString("\n")
			b.WriteString(styles.StatusStyle(kind.String()).Render(kind.String()))
			if source != "" {
				b.WriteString(" ")
				b.WriteString(styles.FaintText.Render(truncateMiddle(source, inner-8)))
			}
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(width - 2).
		Height(height - 2).
		Render(b.String())
}
