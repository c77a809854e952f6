package playback

import (
	"math"
	"time"

	"github.com/five82/pinterval/internal/history"
	"github.com/five82/pinterval/internal/pinboard"
	"github.com/five82/pinterval/internal/prefs"
)

const (
	// GapDuration is the interstitial countdown before each show phase.
	GapDuration = 3000 * time.Millisecond
	// TickPeriod is the timer resolution.
	TickPeriod = 50 * time.Millisecond
)

// Phase is the position within a gap/show cycle.
type Phase int

const (
	PhaseGap Phase = iota
	PhaseShow
)

func (p Phase) String() string {
	if p == PhaseShow {
		return "show"
	}
	return "gap"
}

// Mode is the overall playback engagement.
type Mode int

const (
	ModeStandby Mode = iota
	ModePlay
	ModePaused
)

func (m Mode) String() string {
	switch m {
	case ModePlay:
		return "play"
	case ModePaused:
		return "paused"
	default:
		return "standby"
	}
}

// Options seeds a Scheduler.
type Options struct {
	IntervalSeconds int
	GridSize        int
	Grayscale       bool
	History         *history.Log
}

// Scheduler owns the playback state. Every mutation goes through its
// methods; it is driven from a single goroutine and is not safe for
// concurrent use.
type Scheduler struct {
	items     []pinboard.Pin
	idx       int
	gridSize  int
	interval  time.Duration
	phase     Phase
	mode      Mode
	remain    time.Duration
	shown     int
	grayscale bool
	token     uint64
	history   *history.Log
}

// New returns a scheduler in standby with no items.
func New(opts Options) *Scheduler {
	s := &Scheduler{
		gridSize:  prefs.CoerceGridSize(opts.GridSize),
		interval:  time.Duration(prefs.CoerceInterval(opts.IntervalSeconds)) * time.Second,
		grayscale: opts.Grayscale,
		history:   opts.History,
	}
	if s.history == nil {
		s.history = history.NewLog(nil)
	}
	s.idx = -s.gridSize
	return s
}

// SetItems replaces the sequence wholesale, resets the shown counter and
// returns to standby before the first group.
func (s *Scheduler) SetItems(items []pinboard.Pin) {
	s.StopPlay()
	s.items = items
	s.idx = -s.gridSize
	s.shown = 0
}

// EnterPlay starts playback with a gap countdown. It does nothing when no
// items are loaded.
func (s *Scheduler) EnterPlay() bool {
	if len(s.items) == 0 {
		return false
	}
	s.mode = ModePlay
	s.phase = PhaseGap
	s.remain = GapDuration
	s.token++
	return true
}

// PausePlay freezes the timer, keeping phase and remaining time.
func (s *Scheduler) PausePlay() bool {
	if s.mode != ModePlay {
		return false
	}
	s.mode = ModePaused
	s.token++
	return true
}

// ResumePlay continues a paused run without resetting the remaining time.
func (s *Scheduler) ResumePlay() bool {
	if s.mode != ModePaused || len(s.items) == 0 {
		return false
	}
	s.mode = ModePlay
	s.token++
	return true
}

// Toggle starts, pauses, or resumes depending on the mode.
func (s *Scheduler) Toggle() bool {
	switch s.mode {
	case ModePlay:
		return s.PausePlay()
	case ModePaused:
		return s.ResumePlay()
	default:
		return s.EnterPlay()
	}
}

// StopPlay returns to standby from any mode.
func (s *Scheduler) StopPlay() {
	s.token++
	s.mode = ModeStandby
	s.phase = PhaseGap
	s.remain = 0
}

// Advance moves to the next group, records the newly shown URLs in history
// and returns them. With reset it reloads the interval and enters the show
// phase. Past the last group it wraps to the first.
func (s *Scheduler) Advance(reset bool) []string {
	n := len(s.items)
	if n == 0 {
		return nil
	}
	step := s.gridSize
	next := s.idx + step
	if next >= n || next < 0 {
		next = 0
	}
	s.idx = next
	s.shown += step

	shown := make([]string, 0, min(step, n))
	for i := 0; i < min(step, n); i++ {
		u := s.items[(s.idx+i)%n].Image
		if s.history.Append(u) {
			shown = append(shown, u)
		}
	}

	if reset {
		s.remain = s.interval
		s.phase = PhaseShow
	}
	return shown
}

// Retreat moves to the previous group, wrapping to the last one. The timer
// and history are left alone.
func (s *Scheduler) Retreat() {
	n := len(s.items)
	if n == 0 {
		return
	}
	step := s.gridSize
	prev := s.idx - step
	if prev < 0 {
		prev = ((n - 1) / step) * step
	}
	s.idx = prev
}

// TimerToken identifies the current timer run. A tick carrying an older
// token belongs to a stopped timer.
func (s *Scheduler) TimerToken() uint64 { return s.token }

// Running reports whether the timer should be ticking.
func (s *Scheduler) Running() bool { return s.mode == ModePlay }

// Tick advances the timer by one period. It returns the URLs newly shown by
// a gap expiry, and false when the token is stale or playback is not running.
func (s *Scheduler) Tick(token uint64) ([]string, bool) {
	if token != s.token || s.mode != ModePlay {
		return nil, false
	}
	s.remain -= TickPeriod
	if s.remain > 0 {
		return nil, true
	}
	if s.phase == PhaseGap {
		return s.Advance(true), true
	}
	s.phase = PhaseGap
	s.remain = GapDuration
	return nil, true
}

// SetGridSize coerces n and realigns the index to the start of its group.
func (s *Scheduler) SetGridSize(n int) {
	g := prefs.CoerceGridSize(n)
	if s.idx < 0 {
		s.idx = -g
	} else {
		s.idx = (s.idx / g) * g
	}
	s.gridSize = g
}

// SetInterval coerces seconds to a supported interval. The current phase
// keeps its remaining time.
func (s *Scheduler) SetInterval(seconds int) {
	s.interval = time.Duration(prefs.CoerceInterval(seconds)) * time.Second
}

// SetGrayscale toggles the grayscale flag.
func (s *Scheduler) SetGrayscale(on bool) { s.grayscale = on }

// JumpTo moves to the group containing the first item whose image is url.
// Mode, phase and timer are unchanged.
func (s *Scheduler) JumpTo(url string) bool {
	for i, it := range s.items {
		if it.Image == url {
			s.idx = (i / s.gridSize) * s.gridSize
			return true
		}
	}
	return false
}

// ControlsEnabled reports whether selection controls accept input.
func (s *Scheduler) ControlsEnabled() bool { return s.mode == ModeStandby }

// Visible reports whether image slots are shown.
func (s *Scheduler) Visible() bool {
	return s.phase == PhaseShow && s.idx >= 0 && len(s.items) > 0
}

// Remaining returns the time left in the current phase, never negative.
func (s *Scheduler) Remaining() time.Duration { return max(s.remain, 0) }

// Progress returns the fraction of the interval left, or false when the bar
// is hidden (standby or gap).
func (s *Scheduler) Progress() (float64, bool) {
	if s.mode == ModeStandby || s.phase == PhaseGap || s.interval <= 0 {
		return 0, false
	}
	ratio := float64(s.Remaining()) / float64(s.interval)
	return min(max(ratio, 0), 1), true
}

// GapCountdown returns the whole seconds shown during the gap, at least 1.
func (s *Scheduler) GapCountdown() int {
	return max(1, ceilSeconds(s.Remaining()))
}

// Countdown formats the remaining time as MM:SS.
func (s *Scheduler) Countdown() string {
	return FormatMMSS(s.Remaining())
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(time.Second)))
}
