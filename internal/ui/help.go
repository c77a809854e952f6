package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	// Help content
	sections := []helpSection{
		{
			title: "Playback",
			items: []helpItem{
				{"space", "Play / pause / resume"},
				{"→/n", "Next group"},
				{"←/p", "Previous group"},
				{"esc", "Stop"},
			},
		},
		{
			title: "Selection (standby)",
			items: []helpItem{
				{"s/enter", "Search and play"},
				{"/", "Edit query"},
				{"b", "Cycle board"},
				{"o", "Cycle order"},
				{"g", "Cycle grid size"},
				{"i", "Cycle interval"},
				{"c", "Toggle grayscale"},
			},
		},
		{
			title: "History",
			items: []helpItem{
				{"tab", "Focus history"},
				{"j/k", "Move up/down"},
				{"enter", "Jump to entry"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	// Build help content
	var b strings.Builder

	// Title
	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		// Section title
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			// Key
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(12)
			b.WriteString(keyStyle.Render(item.key))
			// Description
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	if m.logPath != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("log " + truncateMiddle(m.logPath, 30)))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("pinterval logs --level warn"))
	}

	// Build the modal
	content := b.String()

	// Calculate modal dimensions
	modalWidth := 40

	// Modal style
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	// Center the modal
	modalContent := modal.Render(content)

	// Create overlay
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
