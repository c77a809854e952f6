package playback

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/five82/pinterval/internal/history"
	"github.com/five82/pinterval/internal/pinboard"
)

func pins(n int) []pinboard.Pin {
	out := make([]pinboard.Pin, n)
	for i := range out {
		out[i] = pinboard.Pin{ID: fmt.Sprintf("p%d", i), Image: fmt.Sprintf("p%d", i)}
	}
	return out
}

// runUntilShow ticks until the scheduler leaves the gap phase.
func runUntilShow(t *testing.T, s *Scheduler) {
	t.Helper()
	for i := 0; i < int(GapDuration/TickPeriod)+1; i++ {
		if s.Phase() == PhaseShow {
			return
		}
		if _, ok := s.Tick(s.TimerToken()); !ok {
			t.Fatalf("tick %d rejected", i)
		}
	}
	if s.Phase() != PhaseShow {
		t.Fatal("gap never expired")
	}
}

func TestEnterPlayRequiresItems(t *testing.T) {
	s := New(Options{})
	if s.EnterPlay() {
		t.Fatal("EnterPlay succeeded without items")
	}
	if s.Mode() != ModeStandby || !s.ControlsEnabled() {
		t.Fatalf("mode = %v", s.Mode())
	}
}

func TestSingleSlotSequence(t *testing.T) {
	s := New(Options{IntervalSeconds: 30, GridSize: 1})
	s.SetItems(pins(4))

	if !s.EnterPlay() {
		t.Fatal("EnterPlay failed")
	}
	if s.Phase() != PhaseGap || s.Remaining() != GapDuration || s.ControlsEnabled() {
		t.Fatalf("after EnterPlay: %+v", s.Snapshot())
	}
	if s.Visible() {
		t.Fatal("slot visible during gap")
	}

	runUntilShow(t, s)
	if s.Index() != 0 || !s.Visible() {
		t.Fatalf("after gap: idx=%d visible=%v", s.Index(), s.Visible())
	}
	if s.Remaining() != 30*time.Second {
		t.Fatalf("remaining = %v", s.Remaining())
	}

	s.Advance(true)
	if s.Index() != 1 {
		t.Fatalf("idx = %d", s.Index())
	}
	if got := s.History().Entries(); !slices.Equal(got, []string{"p0", "p1"}) {
		t.Fatalf("history = %v", got)
	}
	if s.Shown() != 2 {
		t.Fatalf("shown = %d", s.Shown())
	}

	s.StopPlay()
	if s.Mode() != ModeStandby || s.Remaining() != 0 || s.Visible() || !s.ControlsEnabled() {
		t.Fatalf("after stop: %+v", s.Snapshot())
	}
}

func TestGridAdvanceWraps(t *testing.T) {
	s := New(Options{GridSize: 4})
	s.SetItems(pins(6))

	s.Advance(true)
	if s.Index() != 0 {
		t.Fatalf("first idx = %d", s.Index())
	}
	shown := s.Advance(true)
	if s.Index() != 4 {
		t.Fatalf("second idx = %d", s.Index())
	}
	if !slices.Equal(shown, []string{"p4", "p5", "p0", "p1"}) {
		t.Fatalf("shown = %v", shown)
	}
	if s.Shown() != 8 {
		t.Fatalf("shown count = %d", s.Shown())
	}
	s.Advance(true)
	if s.Index() != 0 {
		t.Fatalf("wrapped idx = %d", s.Index())
	}
}

func TestAdvanceCyclicCoverage(t *testing.T) {
	for _, g := range []int{1, 4, 9, 16} {
		for _, n := range []int{1, 3, 6, 10, 17, 33} {
			t.Run(fmt.Sprintf("g%d_n%d", g, n), func(t *testing.T) {
				s := New(Options{GridSize: g})
				s.SetItems(pins(n))
				for start := 0; start < 3; start++ {
					s.Advance(true)
				}
				sawZero := false
				for i := 0; i < n+2; i++ {
					s.Advance(true)
					if s.Index()%g != 0 {
						t.Fatalf("idx %d not a multiple of %d", s.Index(), g)
					}
					if s.Index() < 0 || s.Index() >= n {
						t.Fatalf("idx %d out of range", s.Index())
					}
					if s.Index() == 0 {
						sawZero = true
					}
				}
				if !sawZero {
					t.Fatal("advance never revisited the first group")
				}
			})
		}
	}
}

func TestRetreatWrapsWithoutTouchingTimerOrHistory(t *testing.T) {
	s := New(Options{GridSize: 4})
	s.SetItems(pins(10))
	s.EnterPlay()
	s.Advance(true)
	remain, entries, shown := s.Remaining(), s.History().Len(), s.Shown()

	s.Retreat()
	if s.Index() != 8 {
		t.Fatalf("retreat from 0 = %d, want 8", s.Index())
	}
	s.Retreat()
	if s.Index() != 4 {
		t.Fatalf("retreat = %d", s.Index())
	}
	if s.Remaining() != remain || s.History().Len() != entries || s.Shown() != shown {
		t.Fatal("retreat changed timer or history")
	}
}

func TestPauseResumePreservesPhaseAndRemaining(t *testing.T) {
	s := New(Options{IntervalSeconds: 5})
	s.SetItems(pins(3))
	s.EnterPlay()
	runUntilShow(t, s)
	for i := 0; i < 7; i++ {
		s.Tick(s.TimerToken())
	}
	phase, remain := s.Phase(), s.Remaining()

	if !s.PausePlay() {
		t.Fatal("PausePlay failed")
	}
	if s.ControlsEnabled() {
		t.Fatal("controls enabled while paused")
	}
	if !s.ResumePlay() {
		t.Fatal("ResumePlay failed")
	}
	if s.Phase() != phase || s.Remaining() != remain {
		t.Fatalf("phase %v→%v remaining %v→%v", phase, s.Phase(), remain, s.Remaining())
	}
}

func TestInvalidTransitions(t *testing.T) {
	s := New(Options{})
	if s.PausePlay() || s.ResumePlay() {
		t.Fatal("pause/resume accepted from standby")
	}
	s.SetItems(pins(1))
	s.EnterPlay()
	if s.ResumePlay() {
		t.Fatal("resume accepted while playing")
	}
	s.PausePlay()
	if s.PausePlay() {
		t.Fatal("pause accepted while paused")
	}
}

func TestToggle(t *testing.T) {
	s := New(Options{})
	s.SetItems(pins(2))
	want := []Mode{ModePlay, ModePaused, ModePlay}
	for i, m := range want {
		s.Toggle()
		if s.Mode() != m {
			t.Fatalf("toggle %d: mode = %v, want %v", i, s.Mode(), m)
		}
	}
}

func TestTickIgnoresStaleToken(t *testing.T) {
	s := New(Options{})
	s.SetItems(pins(2))
	s.EnterPlay()
	old := s.TimerToken()
	s.PausePlay()
	s.ResumePlay()
	before := s.Remaining()

	if _, ok := s.Tick(old); ok {
		t.Fatal("stale tick accepted")
	}
	if s.Remaining() != before {
		t.Fatal("stale tick changed remaining")
	}

	s.PausePlay()
	if _, ok := s.Tick(s.TimerToken()); ok {
		t.Fatal("tick accepted while paused")
	}
}

func TestShowExpiresIntoGap(t *testing.T) {
	s := New(Options{IntervalSeconds: 5})
	s.SetItems(pins(2))
	s.EnterPlay()
	runUntilShow(t, s)
	for i := 0; i < int(5*time.Second/TickPeriod); i++ {
		s.Tick(s.TimerToken())
	}
	if s.Phase() != PhaseGap || s.Remaining() != GapDuration {
		t.Fatalf("phase=%v remaining=%v", s.Phase(), s.Remaining())
	}
	if s.Visible() {
		t.Fatal("visible during gap")
	}
	if _, ok := s.Progress(); ok {
		t.Fatal("progress shown during gap")
	}
}

func TestCoercion(t *testing.T) {
	for _, g := range []int{0, 2, 3, 5, -4, 25} {
		if got := New(Options{GridSize: g}).GridSize(); got != 1 {
			t.Errorf("GridSize(%d) = %d, want 1", g, got)
		}
	}
	s := New(Options{IntervalSeconds: 7})
	if s.Interval() != 300*time.Second {
		t.Fatalf("interval = %v", s.Interval())
	}
	s.SetInterval(45)
	if s.Interval() != 45*time.Second {
		t.Fatalf("interval = %v", s.Interval())
	}
}

func TestSetGridSizeRealigns(t *testing.T) {
	s := New(Options{GridSize: 1})
	s.SetItems(pins(20))
	s.SetGridSize(4)
	if s.Index() != -4 {
		t.Fatalf("pre-advance idx = %d", s.Index())
	}
	s.Advance(false)
	if s.Index() != 0 {
		t.Fatalf("first advance idx = %d", s.Index())
	}

	s.SetGridSize(1)
	for i := 0; i < 6; i++ {
		s.Advance(false)
	}
	s.SetGridSize(4)
	if s.Index() != 4 {
		t.Fatalf("realigned idx = %d, want 4", s.Index())
	}
	s.SetGridSize(7)
	if s.GridSize() != 1 || s.Index() != 4 {
		t.Fatalf("invalid size: g=%d idx=%d", s.GridSize(), s.Index())
	}
}

func TestJumpTo(t *testing.T) {
	s := New(Options{GridSize: 4})
	s.SetItems(pins(10))
	s.EnterPlay()
	mode, phase, remain := s.Mode(), s.Phase(), s.Remaining()

	if !s.JumpTo("p6") {
		t.Fatal("JumpTo failed")
	}
	if s.Index() != 4 {
		t.Fatalf("idx = %d", s.Index())
	}
	if s.Mode() != mode || s.Phase() != phase || s.Remaining() != remain {
		t.Fatal("JumpTo changed timer state")
	}
	if s.JumpTo("missing") {
		t.Fatal("JumpTo found a missing url")
	}
}

func TestProgressAndCountdown(t *testing.T) {
	s := New(Options{IntervalSeconds: 10})
	if _, ok := s.Progress(); ok {
		t.Fatal("progress shown in standby")
	}
	s.SetItems(pins(1))
	s.EnterPlay()
	if got := s.GapCountdown(); got != 3 {
		t.Fatalf("gap countdown = %d", got)
	}
	s.Tick(s.TimerToken())
	if got := s.GapCountdown(); got != 3 {
		t.Fatalf("gap countdown after tick = %d", got)
	}
	runUntilShow(t, s)

	ratio, ok := s.Progress()
	if !ok || ratio != 1 {
		t.Fatalf("progress = %v %v", ratio, ok)
	}
	if got := s.Countdown(); got != "00:10" {
		t.Fatalf("countdown = %q", got)
	}
	s.Tick(s.TimerToken())
	if got := s.Countdown(); got != "00:10" {
		t.Fatalf("countdown after tick = %q", got)
	}
	snap := s.Snapshot()
	if !snap.ShowProgress || snap.Band != BandNormal || snap.HistoryLen != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestBandAndFormat(t *testing.T) {
	bands := []struct {
		ratio float64
		want  Band
	}{
		{1, BandNormal},
		{0.51, BandNormal},
		{0.5, BandWarning},
		{0.11, BandWarning},
		{0.1, BandDanger},
		{0, BandDanger},
	}
	for _, tt := range bands {
		if got := BandFor(tt.ratio); got != tt.want {
			t.Errorf("BandFor(%v) = %v, want %v", tt.ratio, got, tt.want)
		}
	}

	formats := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{50 * time.Millisecond, "00:01"},
		{time.Second, "00:01"},
		{90 * time.Second, "01:30"},
		{1800 * time.Second, "30:00"},
		{-time.Second, "00:00"},
	}
	for _, tt := range formats {
		if got := FormatMMSS(tt.d); got != tt.want {
			t.Errorf("FormatMMSS(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestSharedHistoryLog(t *testing.T) {
	log := history.NewLog([]string{"old"})
	s := New(Options{History: log})
	s.SetItems(pins(2))
	s.Advance(true)
	if got := log.Entries(); !slices.Equal(got, []string{"old", "p0"}) {
		t.Fatalf("entries = %v", got)
	}
}
