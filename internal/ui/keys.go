package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding

	// Playback
	PlayPause key.Binding
	Next      key.Binding
	Prev      key.Binding
	Stop      key.Binding

	// Selection (standby only)
	Search        key.Binding
	Query         key.Binding
	CycleGrid     key.Binding
	CycleInterval key.Binding
	Grayscale     key.Binding
	CycleOrder    key.Binding
	CycleBoard    key.Binding

	// History pane
	Up   key.Binding
	Down key.Binding
	Jump key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Focus history"),
		),

		// Playback
		PlayPause: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "Play/pause"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→", "Next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←", "Previous"),
		),
		Stop: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Stop"),
		),

		// Selection
		Search: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "Search"),
		),
		Query: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Query"),
		),
		CycleGrid: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "Grid size"),
		),
		CycleInterval: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Interval"),
		),
		Grayscale: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Grayscale"),
		),
		CycleOrder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Order"),
		),
		CycleBoard: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Board"),
		),

		// History
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Down"),
		),
		Jump: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Jump to entry"),
		),
	}
}
