package playback

import (
	"fmt"
	"time"

	"github.com/five82/pinterval/internal/history"
	"github.com/five82/pinterval/internal/pinboard"
)

// Band classifies the remaining interval for colouring the progress bar.
type Band int

const (
	BandNormal Band = iota
	BandWarning
	BandDanger
)

// BandFor returns the band of a remaining-time ratio: at most 10% is danger,
// at most 50% warning.
func BandFor(ratio float64) Band {
	switch {
	case ratio <= 0.10:
		return BandDanger
	case ratio <= 0.50:
		return BandWarning
	default:
		return BandNormal
	}
}

// FormatMMSS renders d rounded up to whole seconds as MM:SS.
func FormatMMSS(d time.Duration) string {
	secs := max(ceilSeconds(d), 0)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Snapshot is a read-only view of the scheduler for rendering.
type Snapshot struct {
	Items           []pinboard.Pin
	Index           int
	GridSize        int
	Interval        time.Duration
	Phase           Phase
	Mode            Mode
	Remaining       time.Duration
	Shown           int
	HistoryLen      int
	Grayscale       bool
	Visible         bool
	ControlsEnabled bool
	Progress        float64
	ShowProgress    bool
	Band            Band
	Countdown       string
	GapCountdown    int
}

// Snapshot captures the current state.
func (s *Scheduler) Snapshot() Snapshot {
	progress, show := s.Progress()
	return Snapshot{
		Items:           s.items,
		Index:           s.idx,
		GridSize:        s.gridSize,
		Interval:        s.interval,
		Phase:           s.phase,
		Mode:            s.mode,
		Remaining:       s.Remaining(),
		Shown:           s.shown,
		HistoryLen:      s.history.Len(),
		Grayscale:       s.grayscale,
		Visible:         s.Visible(),
		ControlsEnabled: s.ControlsEnabled(),
		Progress:        progress,
		ShowProgress:    show,
		Band:            BandFor(progress),
		Countdown:       s.Countdown(),
		GapCountdown:    s.GapCountdown(),
	}
}

// Items returns the loaded sequence.
func (s *Scheduler) Items() []pinboard.Pin { return s.items }

// Index returns the first item index of the current group, negative before
// the first advance.
func (s *Scheduler) Index() int { return s.idx }

// GridSize returns the effective grid size.
func (s *Scheduler) GridSize() int { return s.gridSize }

// Interval returns the show duration.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Mode returns the playback mode.
func (s *Scheduler) Mode() Mode { return s.mode }

// Phase returns the playback phase.
func (s *Scheduler) Phase() Phase { return s.phase }

// Shown returns the number of slots advanced past, repeats included.
func (s *Scheduler) Shown() int { return s.shown }

// Grayscale reports whether grayscale display is on.
func (s *Scheduler) Grayscale() bool { return s.grayscale }

// History returns the scheduler's history log.
func (s *Scheduler) History() *history.Log { return s.history }
