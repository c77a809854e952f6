// Package ui implements the Pinterval terminal viewer with Bubble Tea.
//
// The Model is the single owner of playback state. Key presses, timer
// ticks, search results and finished grayscale transforms all arrive as
// messages on the Bubble Tea loop, so the scheduler, grid renderer and
// thumbnail preview are never touched from two goroutines.
//
// # Layout
//
//   - header.go: mode and phase badges, current selection, provider health, command hints
//   - viewer.go: slot grid, gap countdown, interval progress bar
//   - history.go: recently shown URLs with a thumbnail preview of the cursor entry
//   - help.go: key binding overlay
//
// # Timer
//
// Playback ticks every playback.TickPeriod. Each tick message carries the
// scheduler's timer token; when the token no longer matches (pause, stop,
// a new search) the tick is dropped and the chain ends.
//
// # Grayscale
//
// Rendering starts a new grid generation. Slots without a cached grayscale
// copy are marked pending and a transform command is issued; results for an
// older generation are released on arrival.
package ui
