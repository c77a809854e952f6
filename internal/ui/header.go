package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/pinterval/internal/pinboard"
	"github.com/five82/pinterval/internal/playback"
)

// renderHeader renders the status bar: mode, selection, and provider health.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	snap := m.sched.Snapshot()
	parts := []string{
		bg.Render("pinterval", styles.Logo),
		styles.StatusStyle(snap.Mode.String()).Render(strings.ToUpper(snap.Mode.String())),
	}
	if snap.Mode != playback.ModeStandby {
		parts = append(parts, styles.StatusStyle(snap.Phase.String()).Render(snap.Phase.String()))
	}

	parts = append(parts,
		bg.Render("board", styles.FaintText)+bg.Space()+bg.Render(m.boardLabel(), styles.Text),
	)
	if q := strings.TrimSpace(m.query.Value()); q != "" {
		parts = append(parts, bg.Render("query", styles.FaintText)+bg.Space()+bg.Render(truncate(q, 24), styles.AccentText))
	}
	parts = append(parts,
		bg.Render("every", styles.FaintText)+bg.Space()+bg.Render(playback.FormatMMSS(snap.Interval), styles.Text),
		bg.Render("grid", styles.FaintText)+bg.Space()+bg.Render(fmt.Sprintf("%d", snap.GridSize), styles.Text),
		bg.Render("order", styles.FaintText)+bg.Space()+bg.Render(m.prefs.Order, styles.Text),
	)
	if snap.Grayscale {
		parts = append(parts, bg.Render("GRAY", styles.InfoText.Bold(true)))
	}
	parts = append(parts,
		bg.Render("shown", styles.FaintText)+bg.Space()+bg.Render(fmt.Sprintf("%d", snap.Shown), styles.Text),
	)

	if health := m.formatHealth(styles, bg); health != "" {
		parts = append(parts, health)
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// formatHealth summarizes login and provider reachability.
func (m Model) formatHealth(styles Styles, bg BgStyle) string {
	switch {
	case m.snapshot.NeedsLogin():
		text := "NOT LOGGED IN"
		if m.loginURL != "" {
			text += " " + m.loginURL
		}
		return bg.Render(text, styles.DangerText)
	case m.snapshot.IsOffline():
		last := "soon"
		if !m.snapshot.LastUpdated.IsZero() {
			last = m.snapshot.LastUpdated.Format("15:04:05")
		}
		return bg.Render("PROVIDER "+classifyConnectionError(m.snapshot.LastError), styles.DangerText) +
			bg.Space() + bg.Render(last, styles.MutedText)
	case m.searching:
		return bg.Render("Loading...", styles.WarningText.Bold(true))
	}
	return ""
}

// boardLabel returns the selected board's display name.
func (m Model) boardLabel() string {
	if m.prefs.Board == "" || m.prefs.Board == pinboard.ScopeAll {
		return "All pins"
	}
	for _, b := range m.snapshot.Boards {
		if b.ID == m.prefs.Board {
			return truncate(b.Label(), 24)
		}
	}
	return truncate(m.prefs.Board, 24)
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.queryOpen:
		commands = []cmd{
			{"enter", "Search"},
			{"esc", "Cancel"},
		}
	case m.focus == FocusHistory:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Jump"},
			{"Tab", "Viewer"},
			{"Space", "Play/Pause"},
			{"?", "More"},
		}
	case m.sched.ControlsEnabled():
		commands = []cmd{
			{"Space", "Play"},
			{"s", "Search"},
			{"/", "Query"},
			{"b", "Board"},
			{"g", "Grid"},
			{"i", "Interval"},
			{"c", "Gray"},
			{"o", "Order"},
			{"Tab", "History"},
			{"?", "More"},
		}
	default:
		label := "Pause"
		if m.sched.Mode() == playback.ModePaused {
			label = "Resume"
		}
		commands = []cmd{
			{"Space", label},
			{"→", "Next"},
			{"←", "Prev"},
			{"esc", "Stop"},
			{"Tab", "History"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.notice != "" {
		style := styles.MutedText
		if m.noticeErr {
			style = styles.DangerText
		}
		segments = append(segments, bg.Render(truncate(m.notice, 60), style))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
