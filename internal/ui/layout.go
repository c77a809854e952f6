package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the history pane is hidden.
	LayoutCompactWidth = 90

	// HistoryPaneWidth is the width of the history column.
	HistoryPaneWidth = 36
)

// Display limits.
const (
	// CardMinHeight is the smallest slot card height.
	CardMinHeight = 4
)

// Timing constants.
const (
	// DefaultUIInterval is the default catalog refresh interval.
	DefaultUIInterval = time.Second
)
