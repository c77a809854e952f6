package ui

import (
	"errors"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pinterval/internal/eventbus"
	"github.com/five82/pinterval/internal/pinboard"
	"github.com/five82/pinterval/internal/playback"
	"github.com/five82/pinterval/internal/prefs"
	"github.com/five82/pinterval/internal/search"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle help overlay
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.queryOpen {
		return m.handleQueryKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.focus == FocusViewer {
			m.focus = FocusHistory
			cmd := m.selectHistory(m.historyCursor(m.sched.History().View(0)))
			return m, cmd
		}
		m.focus = FocusViewer
		m.preview.Abandon()
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		return m.playPause()

	case key.Matches(msg, m.keys.Next):
		shown := m.sched.Advance(true)
		follow := m.followHistory()
		return m, tea.Batch(m.render(), persistCmd(m.sink, m.logger, shown), follow)

	case key.Matches(msg, m.keys.Prev):
		m.sched.Retreat()
		return m, m.render()

	case key.Matches(msg, m.keys.Stop):
		m.sched.StopPlay()
		return m, m.render()
	}

	if m.focus == FocusHistory {
		if cmd, ok := m.handleHistoryKey(msg); ok {
			return m, cmd
		}
	}

	// Selection controls only respond in standby.
	if !m.sched.ControlsEnabled() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		return m.startSearch()

	case key.Matches(msg, m.keys.Query):
		m.queryOpen = true
		m.query.SetValue(m.prefsQuery())
		return m, m.query.Focus()

	case key.Matches(msg, m.keys.CycleGrid):
		m.prefs.GridSize = nextInt(prefs.GridSizes, m.prefs.GridSize)
		m.sched.SetGridSize(m.prefs.GridSize)
		m.savePrefs()
		return m, m.render()

	case key.Matches(msg, m.keys.CycleInterval):
		m.prefs.IntervalSeconds = nextInt(prefs.IntervalOptions, m.prefs.IntervalSeconds)
		m.sched.SetInterval(m.prefs.IntervalSeconds)
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Grayscale):
		m.prefs.Grayscale = !m.prefs.Grayscale
		m.sched.SetGrayscale(m.prefs.Grayscale)
		m.savePrefs()
		cmds := []tea.Cmd{m.render()}
		if m.focus == FocusHistory {
			cmds = append(cmds, m.selectHistory(m.historyCursor(m.sched.History().View(0))))
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.CycleOrder):
		m.prefs.Order = string(pinboard.ParseOrder(m.prefs.Order).Next())
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.CycleBoard):
		m.prefs.Board = m.nextBoard()
		m.savePrefs()
		return m, nil
	}

	return m, nil
}

// handleQueryKey edits the free-text query.
func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.queryOpen = false
		m.query.Blur()
		return m, nil
	case "enter":
		m.queryOpen = false
		m.query.Blur()
		return m.startSearch()
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

// handleHistoryKey moves the history cursor and jumps to the selected entry.
func (m *Model) handleHistoryKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	entries := m.sched.History().View(0)
	cur := m.historyCursor(entries)
	switch {
	case key.Matches(msg, m.keys.Up):
		if cur > 0 {
			return m.selectHistory(cur - 1), true
		}
		return nil, true
	case key.Matches(msg, m.keys.Down):
		if cur < len(entries)-1 {
			return m.selectHistory(cur + 1), true
		}
		return nil, true
	case key.Matches(msg, m.keys.Jump):
		if cur < len(entries) && m.sched.JumpTo(entries[cur]) {
			return m.render(), true
		}
		return nil, true
	}
	return nil, false
}

// historyCursor returns the row of the selected URL in entries. New
// entries are prepended as playback runs, so the row is looked up by URL
// each time; a URL that left the view falls back to the top row.
func (m Model) historyCursor(entries []string) int {
	if m.historySel == "" {
		return 0
	}
	if i := slices.Index(entries, m.historySel); i >= 0 {
		return i
	}
	return 0
}

// selectHistory points the cursor and the thumbnail preview at history entry i.
func (m *Model) selectHistory(i int) tea.Cmd {
	entries := m.sched.History().View(0)
	if len(entries) == 0 {
		m.historySel = ""
		m.preview.Abandon()
		return nil
	}
	i = min(max(i, 0), len(entries)-1)
	m.historySel = entries[i]
	req, ok := m.preview.Select(m.historySel, m.sched.Grayscale())
	if !ok || m.converter == nil {
		return nil
	}
	return previewCmd(m.ctx, m.converter, req)
}

// followHistory keeps the preview in step with the cursor after history
// grows: the first entry is selected once one exists, and a selection that
// scrolled out of the view moves to the top row.
func (m *Model) followHistory() tea.Cmd {
	if m.focus != FocusHistory {
		return nil
	}
	entries := m.sched.History().View(0)
	if m.historySel != "" && slices.Contains(entries, m.historySel) {
		return nil
	}
	return m.selectHistory(0)
}

// playPause toggles playback, fetching a sequence first when none is loaded.
func (m Model) playPause() (tea.Model, tea.Cmd) {
	if m.sched.Mode() == playback.ModeStandby && len(m.sched.Items()) == 0 {
		return m.startSearch()
	}
	if !m.sched.Toggle() {
		return m, nil
	}
	var cmd tea.Cmd
	if m.sched.Running() {
		cmd = timerCmd(m.sched.TimerToken())
	}
	return m, tea.Batch(cmd, m.render())
}

// startSearch dispatches a search for the current selection. A successful
// search starts playback with a gap countdown.
func (m Model) startSearch() (tea.Model, tea.Cmd) {
	if m.search == nil || m.sched.Mode() == playback.ModePlay {
		return m, nil
	}
	m.searching = true
	m.notice, m.noticeErr = "Loading...", false
	req := search.Request{
		Board: m.prefs.Board,
		Query: m.prefsQuery(),
		Order: pinboard.ParseOrder(m.prefs.Order),
	}
	return m, searchCmd(m.ctx, m.search, req)
}

// handleSearchDone loads the result and starts playback with a gap.
func (m Model) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, eventbus.ErrSuperseded) {
		return m, nil
	}
	m.searching = false

	if msg.err != nil {
		m.sched.SetItems(nil)
		m.notice, m.noticeErr = searchErrorText(msg.err, m.loginURL), true
		return m, m.render()
	}

	m.sched.SetItems(msg.result.Items)
	m.notice, m.noticeErr = "", false
	var cmd tea.Cmd
	if m.sched.EnterPlay() {
		cmd = timerCmd(m.sched.TimerToken())
	}
	return m, tea.Batch(cmd, m.render())
}

// handleTimer applies one scheduler tick and keeps the chain alive while the
// token is current.
func (m Model) handleTimer(msg timerMsg) (tea.Model, tea.Cmd) {
	shown, ok := m.sched.Tick(msg.token)
	if !ok {
		return m, nil
	}
	cmds := []tea.Cmd{timerCmd(msg.token)}
	if shown != nil || m.sched.Visible() != m.lastVisible || m.sched.Index() != m.lastIndex {
		cmds = append(cmds, m.render(), persistCmd(m.sink, m.logger, shown))
		if len(shown) > 0 {
			cmds = append(cmds, m.followHistory())
		}
	}
	return m, tea.Batch(cmds...)
}

// render starts a new render generation and queues any grayscale transforms.
func (m *Model) render() tea.Cmd {
	m.renderer.Render(gridFrame(m.sched))
	m.lastIndex = m.sched.Index()
	m.lastVisible = m.sched.Visible()

	reqs := m.renderer.DrainRequests()
	if len(reqs) == 0 || m.converter == nil {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		cmds = append(cmds, transformCmd(m.ctx, m.converter, req))
	}
	return tea.Batch(cmds...)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

func (m Model) prefsQuery() string {
	return m.query.Value()
}

// nextBoard cycles through "all" and the known boards.
func (m Model) nextBoard() string {
	choices := m.snapshot.BoardChoices()
	for i, b := range choices {
		if b.ID == m.prefs.Board {
			return choices[(i+1)%len(choices)].ID
		}
	}
	return choices[0].ID
}

// nextInt returns the option after current, wrapping around.
func nextInt(options []int, current int) int {
	for i, v := range options {
		if v == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func searchErrorText(err error, loginURL string) string {
	switch {
	case errors.Is(err, pinboard.ErrNotLoggedIn):
		if loginURL != "" {
			return "Not logged in: open " + loginURL
		}
		return "Not logged in"
	case errors.Is(err, search.ErrEmptySelection):
		return "No results for this selection"
	default:
		return "Could not reach the data provider"
	}
}
