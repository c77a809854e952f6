package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/five82/pinterval/internal/config"
	"github.com/five82/pinterval/internal/eventbus"
	"github.com/five82/pinterval/internal/grayscale"
	"github.com/five82/pinterval/internal/grid"
	"github.com/five82/pinterval/internal/history"
	"github.com/five82/pinterval/internal/historydb"
	"github.com/five82/pinterval/internal/imagecache"
	"github.com/five82/pinterval/internal/logging"
	"github.com/five82/pinterval/internal/pinboard"
	"github.com/five82/pinterval/internal/playback"
	"github.com/five82/pinterval/internal/prefs"
	"github.com/five82/pinterval/internal/search"
	"github.com/five82/pinterval/internal/state"
	"github.com/five82/pinterval/internal/ui"
)

// Options configure the Pinterval application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/pinterval/prefs.toml
	LogLevel   string // overrides the config file when set
}

// Run boots the Pinterval TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	logFile, err := logging.OpenFile(cfg.LogDir, "pinterval.log")
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Writer: logFile})
	logger.Info("starting", "api_base", cfg.APIBase, "grid", userPrefs.GridSize, "interval_seconds", userPrefs.IntervalSeconds)

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	var sink ui.HistorySink
	var seed []string
	if cfg.PersistHistory {
		db, err := historydb.Open(cfg.HistoryDB, historydb.DefaultCap)
		if err != nil {
			// Persistence is optional; the session keeps an in-memory history.
			logger.Warn("history db unavailable", "path", cfg.HistoryDB, "error", err)
		} else {
			defer db.Close()
			if seed, err = db.Load(); err != nil {
				logger.Warn("load history failed", "error", err)
			}
			sink = db
		}
	}

	conv, err := grayscale.NewConverter(client, cfg.ResourceDir)
	if err != nil {
		return fmt.Errorf("init converter: %w", err)
	}
	defer conv.Close()

	cache, err := imagecache.New[*grayscale.Handle](cfg.CacheCapacity, logger)
	if err != nil {
		return fmt.Errorf("init image cache: %w", err)
	}
	defer cache.Close()

	bus := eventbus.New()
	searcher := search.NewService(bus, client, logger, search.WithDefaultLimit(cfg.FetchLimit))

	sched := playback.New(playback.Options{
		IntervalSeconds: userPrefs.IntervalSeconds,
		GridSize:        userPrefs.GridSize,
		Grayscale:       userPrefs.Grayscale,
		History:         history.NewLog(seed),
	})

	store := &state.Store{}
	StartPoller(ctx, store, client, cfg.BoardPollEvery, logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Search:    searcher,
		Scheduler: sched,
		Renderer:  grid.NewRenderer(cache, logger, grid.Options{ViewerLimit: cfg.ViewerMaxDim, ThumbLimit: cfg.ThumbMaxDim}),
		Preview:   grid.NewPreview(cache, cfg.ThumbMaxDim),
		Converter: conv,
		History:   sink,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LoginURL:  client.LoginURL(),
		LogPath:   cfg.LogPath(),
		Logger:    logger,
	})
}

func newClient(cfg config.Config) (*pinboard.Client, error) {
	client, err := pinboard.NewClient(cfg.APIBase,
		pinboard.WithTimeout(cfg.RequestTimeout),
		pinboard.WithProxyPath(cfg.ProxyPath),
	)
	if err != nil {
		return nil, fmt.Errorf("init pin client: %w", err)
	}
	return client, nil
}

func discardIfNil(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return logging.Discard()
	}
	return logger
}
