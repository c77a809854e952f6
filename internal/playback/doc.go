// Package playback implements the gap/show scheduler that drives the viewer.
//
// A Scheduler moves between three modes:
//
//	standby --EnterPlay--> play --PausePlay--> paused --ResumePlay--> play
//	play|paused --StopPlay--> standby
//
// While playing, the timer alternates a fixed 3 s gap (nothing visible, a
// whole-second countdown) with a show phase lasting the configured interval.
// When the gap expires the scheduler advances one group of gridSize items,
// records the shown URLs, and enters show. When show expires it returns to
// gap. Pausing freezes phase and remaining time; resuming continues them.
//
// The index always points at the first item of a group and stays a multiple
// of the grid size. Advancing past the last group wraps to the first and
// retreating before the first wraps to the last. Retreat never touches the
// timer or history.
//
// The timer is external. The caller schedules ticks every TickPeriod carrying
// TimerToken(); any mode change bumps the token so ticks from a previous run
// are ignored and two timer chains never overlap.
package playback
