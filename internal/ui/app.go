package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/pinterval/internal/grid"
	"github.com/five82/pinterval/internal/logging"
	"github.com/five82/pinterval/internal/playback"
	"github.com/five82/pinterval/internal/prefs"
	"github.com/five82/pinterval/internal/search"
	"github.com/five82/pinterval/internal/state"
)

// Focus identifies the pane receiving navigation keys.
type Focus int

const (
	FocusViewer Focus = iota
	FocusHistory
)

// HistorySink persists shown URLs.
type HistorySink interface {
	Append(urls ...string) error
}

// Searcher runs the search workflow.
type Searcher interface {
	Run(ctx context.Context, req search.Request) (search.Result, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Search    Searcher
	Scheduler *playback.Scheduler
	Renderer  *grid.Renderer
	Preview   *grid.Preview
	Converter grid.Converter
	History   HistorySink
	Prefs     prefs.Prefs
	PrefsPath string
	LoginURL  string
	LogPath   string
	Logger    *slog.Logger
	PollTick  time.Duration
}

// Model is the root application state for Bubble Tea. It is the only owner
// of the scheduler, renderer and preview; transforms and searches run as
// commands and report back through messages.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	search    Searcher
	sched     *playback.Scheduler
	renderer  *grid.Renderer
	preview   *grid.Preview
	converter grid.Converter
	sink      HistorySink
	prefsPath string
	loginURL  string
	logPath   string
	logger    *slog.Logger
	pollTick  time.Duration

	// UI state
	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	focus    Focus
	showHelp bool

	// Selection
	prefs      prefs.Prefs
	query      textinput.Model
	queryOpen  bool
	searching  bool
	historySel string // URL under the history cursor

	// Countdown bar
	bar progress.Model

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
	notice      string
	noticeErr   bool
	lastIndex   int
	lastVisible bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	p := opts.Prefs.Normalize()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = playback.New(playback.Options{
			IntervalSeconds: p.IntervalSeconds,
			GridSize:        p.GridSize,
			Grayscale:       p.Grayscale,
		})
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = grid.NewRenderer(nil, logger, grid.Options{})
	}
	preview := opts.Preview
	if preview == nil {
		preview = grid.NewPreview(nil, 0)
	}

	query := textinput.New()
	query.Placeholder = "search pins"
	query.CharLimit = 120
	query.Prompt = "/ "

	bar := progress.New(progress.WithSolidFill("#81b29a"), progress.WithoutPercentage())

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		search:    opts.Search,
		sched:     sched,
		renderer:  renderer,
		preview:   preview,
		converter: opts.Converter,
		sink:      opts.History,
		prefsPath: prefsPath,
		loginURL:  opts.LoginURL,
		logPath:   opts.LogPath,
		logger:    logger.With("component", "ui"),
		pollTick:  pollTick,
		theme:     GetTheme(p.Theme),
		keys:      DefaultKeyMap(),
		prefs:     p,
		query:     query,
		bar:       bar,
		lastIndex: sched.Index(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		pollCmd(m.pollTick),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.bar.Width = max(10, m.viewerWidth()-4)
		return m, nil

	case pollMsg:
		var cmd tea.Cmd
		if m.store != nil {
			cmd = fetchSnapshotCmd(m.store)
		}
		return m, tea.Batch(cmd, pollCmd(m.pollTick))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		return m, nil

	case timerMsg:
		return m.handleTimer(msg)

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case transformMsg:
		m.renderer.Complete(grid.Result(msg))
		return m, nil

	case previewMsg:
		m.preview.Complete(grid.Result(msg))
		return m, nil
	}

	if m.queryOpen {
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// Messages

type pollMsg time.Time

type snapshotMsg state.Snapshot

// timerMsg is one playback tick stamped with the timer token that scheduled it.
type timerMsg struct{ token uint64 }

type searchDoneMsg struct {
	result search.Result
	err    error
}

type transformMsg grid.Result

type previewMsg grid.Result

// Commands

func pollCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func timerCmd(token uint64) tea.Cmd {
	return tea.Tick(playback.TickPeriod, func(time.Time) tea.Msg {
		return timerMsg{token: token}
	})
}

func searchCmd(ctx context.Context, s Searcher, req search.Request) tea.Cmd {
	return func() tea.Msg {
		res, err := s.Run(ctx, req)
		return searchDoneMsg{result: res, err: err}
	}
}

func transformCmd(ctx context.Context, conv grid.Converter, req grid.Request) tea.Cmd {
	return func() tea.Msg {
		return transformMsg(grid.Execute(ctx, conv, req))
	}
}

func previewCmd(ctx context.Context, conv grid.Converter, req grid.Request) tea.Cmd {
	return func() tea.Msg {
		return previewMsg(grid.Execute(ctx, conv, req))
	}
}

func persistCmd(sink HistorySink, logger *slog.Logger, urls []string) tea.Cmd {
	if sink == nil || len(urls) == 0 {
		return nil
	}
	return func() tea.Msg {
		if err := sink.Append(urls...); err != nil {
			logger.Warn("persist history failed", "error", err)
		}
		return nil
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
