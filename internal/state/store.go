package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/pinterval/internal/pinboard"
)

// Snapshot represents the latest provider catalog available to the UI.
type Snapshot struct {
	Boards              []pinboard.Board
	HasBoards           bool
	LoggedIn            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the provider has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// NeedsLogin reports that the provider rejected the session.
func (s Snapshot) NeedsLogin() bool {
	return !s.LoggedIn && errors.Is(s.LastError, pinboard.ErrNotLoggedIn)
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored board list. When err is non-nil the previous
// boards are kept but the error is recorded for visibility. An
// authentication error also marks the session as logged out.
func (s *Store) Update(boards []pinboard.Board, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		if errors.Is(err, pinboard.ErrNotLoggedIn) {
			s.snapshot.LoggedIn = false
			s.snapshot.ConsecutiveFailures = 0
			return
		}
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Boards = cloneBoards(boards)
	s.snapshot.HasBoards = true
	s.snapshot.LoggedIn = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Boards = cloneBoards(s.snapshot.Boards)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// BoardChoices returns the "all" pseudo-board followed by the known boards.
func (s Snapshot) BoardChoices() []pinboard.Board {
	out := make([]pinboard.Board, 0, len(s.Boards)+1)
	out = append(out, pinboard.Board{ID: pinboard.ScopeAll, Name: "All pins"})
	for _, b := range s.Boards {
		if b.ID == "" || b.ID == pinboard.ScopeAll {
			continue
		}
		out = append(out, b)
	}
	return out
}

func cloneBoards(items []pinboard.Board) []pinboard.Board {
	if len(items) == 0 {
		return nil
	}
	dup := make([]pinboard.Board, len(items))
	copy(dup, items)
	return dup
}
