// Package app is the composition root for Pinterval.
//
// Run loads config and prefs, opens the runtime log file, and builds the
// pieces the viewer needs:
//
//	config.Load / prefs.Load
//	logging.OpenFile           runtime log on disk (the TUI owns the terminal)
//	pinboard.NewClient         provider API and image proxy
//	historydb.Open             optional SQLite history, seeds history.Log
//	grayscale.NewConverter     temp-file backed grayscale resources
//	imagecache.New             LRU of grayscale handles, released on eviction
//	eventbus.New + search      phased, switch-dispatched search workflow
//	playback.New               scheduler seeded from prefs
//	StartPoller                board list and login state refresh
//	ui.Run                     blocks until quit or context cancel
//
// Teardown runs in reverse: the cache releases every handle, then the
// converter removes its directory and the history database is closed.
//
// The poller refreshes boards every BoardPollEvery. Failures are recorded
// in the store and shown in the header; the next attempt waits for the
// following tick.
package app
