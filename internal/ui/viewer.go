package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pinterval/internal/grid"
	"github.com/five82/pinterval/internal/playback"
)

// gridFrame describes the scheduler's current group for the renderer.
func gridFrame(s *playback.Scheduler) grid.Frame {
	return grid.Frame{
		Items:     s.Items(),
		Index:     s.Index(),
		GridSize:  s.GridSize(),
		Visible:   s.Visible(),
		Grayscale: s.Grayscale(),
	}
}

// renderMain composes header, viewer, history pane and command bar.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderCommandBar()

	rows := []string{header}
	if m.queryOpen {
		rows = append(rows, m.query.View())
	}
	used := 0
	for _, r := range append(rows, footer) {
		used += lipgloss.Height(r)
	}
	bodyHeight := max(CardMinHeight, m.height-used)

	body := m.renderViewer(m.viewerWidth(), bodyHeight)
	if m.showHistoryPane() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderHistory(HistoryPaneWidth, bodyHeight))
	}
	rows = append(rows, body, footer)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) showHistoryPane() bool {
	return m.width >= LayoutCompactWidth
}

func (m Model) viewerWidth() int {
	if m.showHistoryPane() {
		return max(20, m.width-HistoryPaneWidth)
	}
	return max(20, m.width)
}

// renderViewer draws the slot grid, the gap countdown, or a placeholder,
// with the countdown bar underneath while an image is showing.
func (m Model) renderViewer(width, height int) string {
	styles := m.theme.Styles()
	snap := m.sched.Snapshot()

	border := m.theme.Border
	if m.focus == FocusViewer {
		border = m.theme.BorderFocus
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(width - 2).
		Height(height - 2)

	innerW := max(1, width-2)
	innerH := max(1, height-2)

	footer := ""
	if snap.ShowProgress {
		footer = m.renderCountdownBar(snap, innerW)
		innerH = max(1, innerH-1)
	}

	var content string
	switch {
	case snap.Mode != playback.ModeStandby && snap.Phase == playback.PhaseGap:
		content = m.renderGap(snap, innerW, innerH)
	case !snap.Visible:
		content = m.renderPlaceholder(snap, innerW, innerH)
	default:
		content = m.renderSlots(innerW, innerH)
	}
	if footer != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, footer)
	}
	return box.Render(styles.Text.Render(content))
}

// renderGap shows the whole-second interstitial countdown.
func (m Model) renderGap(snap playback.Snapshot, width, height int) string {
	styles := m.theme.Styles()
	digit := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true).
		Padding(1, 3).
		Border(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderMuted)).
		Render(fmt.Sprintf("%d", snap.GapCountdown))
	label := styles.MutedText.Render("next image in")
	if snap.Mode == playback.ModePaused {
		label = styles.WarningText.Render("paused")
	}
	block := lipgloss.JoinVertical(lipgloss.Center, label, digit)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}

// renderPlaceholder fills the viewer while nothing is visible.
func (m Model) renderPlaceholder(snap playback.Snapshot, width, height int) string {
	styles := m.theme.Styles()
	var lines []string
	switch {
	case m.searching:
		lines = append(lines, styles.WarningText.Render("Loading..."))
	case len(snap.Items) == 0:
		lines = append(lines,
			styles.Text.Bold(true).Render("No images loaded"),
			styles.MutedText.Render("space to search and play, s to search, / for a query"),
		)
	default:
		lines = append(lines,
			styles.Text.Bold(true).Render(fmt.Sprintf("%d images ready", len(snap.Items))),
			styles.MutedText.Render("space to play, → to preview the next group"),
		)
	}
	if m.notice != "" && m.noticeErr {
		lines = append(lines, "", styles.DangerText.Render(m.notice))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// renderSlots lays the current slots out as a square grid of cards.
func (m Model) renderSlots(width, height int) string {
	slots := m.renderer.Slots()
	cols := max(1, int(math.Sqrt(float64(len(slots)))))
	rows := max(1, (len(slots)+cols-1)/cols)
	cardW := max(8, width/cols)
	cardH := max(CardMinHeight, height/rows)

	lines := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		cards := make([]string, 0, cols)
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(slots) {
				break
			}
			cards = append(cards, m.renderCard(slots[i], cardW, cardH))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderCard renders one slot: title, source badge, and where the pixels live.
func (m Model) renderCard(slot grid.Slot, width, height int) string {
	styles := m.theme.Styles()
	inner := max(4, width-4)

	var b strings.Builder
	if slot.Visible() || slot.Kind == grid.SourcePending {
		b.WriteString(styles.Text.Bold(true).Render(truncate(slot.Pin.DisplayTitle(), inner)))
		b.WriteString("\n")
		b.WriteString(styles.StatusStyle(slot.Kind.String()).Render(slot.Kind.String()))
		b.WriteString(" ")
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("#%d", slot.ItemIndex+1)))
		if slot.Kind != grid.SourcePending {
			b.WriteString("\n")
			b.WriteString(styles.MutedText.Render(truncateMiddle(slot.Source, inner)))
		}
		if link := slot.Pin.LinkURL(); link != "" && height > CardMinHeight {
			b.WriteString("\n")
			b.WriteString(styles.AccentText.Render(truncateMiddle(link, inner)))
		}
	}

	return styles.Card.
		Width(max(1, width-2)).
		Height(max(1, height-2)).
		Render(b.String())
}

// renderCountdownBar draws the remaining interval, coloured by band.
func (m Model) renderCountdownBar(snap playback.Snapshot, width int) string {
	styles := m.theme.Styles()
	bar := m.bar
	bar.FullColor = m.theme.BandColor(snap.Band)
	bar.Width = max(4, width-8)
	return bar.ViewAs(snap.Progress) + " " + styles.MutedText.Render(snap.Countdown)
}
