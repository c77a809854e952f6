// Package state provides thread-safe state management for the pinterval
// application.
//
// # Overview
//
// The Store shares the provider catalog (board list and login state) between
// the background board poller and the UI. Playback state is not kept here;
// it belongs to the playback scheduler, which the UI loop owns exclusively.
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌─────────────────┐
//	│ FetchBoards()  │            │                 │
//	│      ↓         │            │                 │
//	│ store.Update() │───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓          │
//	│  repeat...     │            │  render UI      │
//	└────────────────┘            └─────────────────┘
//
// # Update Semantics
//
//	// Success: replace boards, mark logged in, reset failures
//	store.Update(boards, nil)
//
//	// Transport error: keep boards, record error, count failure
//	store.Update(nil, err)
//
//	// Auth error (pinboard.ErrNotLoggedIn): keep boards, mark logged out
//	store.Update(nil, err)
//
// After two consecutive transport failures IsOffline reports true so the UI
// can show "could not reach the data provider". NeedsLogin drives the
// not-logged-in banner.
//
// # Defensive Copying
//
// Update and Snapshot clone the board slice and the error value so the UI
// and the poller never share mutable data. The zero Store is ready to use.
package state
