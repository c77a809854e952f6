package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/five82/pinterval/internal/config"
	"github.com/five82/pinterval/internal/history"
	"github.com/five82/pinterval/internal/historydb"
	"github.com/five82/pinterval/internal/logtail"
)

// PrintHistory writes the persisted history, most recent first, or clears
// it when clear is set.
func PrintHistory(configPath string, w io.Writer, clear bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := historydb.Open(cfg.HistoryDB, historydb.DefaultCap)
	if err != nil {
		return err
	}
	defer db.Close()

	if clear {
		n, err := db.Count()
		if err != nil {
			return err
		}
		if err := db.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(w, "history cleared (%d rows)\n", n)
		return nil
	}

	urls, err := db.Load()
	if err != nil {
		return err
	}
	for _, u := range history.NewLog(urls).View(0) {
		fmt.Fprintln(w, u)
	}
	return nil
}

// PrintBoards lists the provider boards as a table.
func PrintBoards(ctx context.Context, configPath string, w io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	boards, err := client.FetchBoards(ctx)
	if err != nil {
		return fmt.Errorf("fetch boards: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, b := range boards {
		fmt.Fprintf(tw, "%s\t%s\n", b.ID, b.Label())
	}
	return tw.Flush()
}

// PrintLogs writes the last n runtime log records at or above level.
func PrintLogs(configPath string, w io.Writer, n int, level string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var minLevel slog.Level
	if level != "" {
		if err := minLevel.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid level %q", level)
		}
	}
	lines, err := logtail.Read(cfg.LogPath(), n)
	if err != nil {
		return err
	}
	for _, e := range logtail.Filter(lines, minLevel) {
		fmt.Fprintln(w, logtail.Format(e))
	}
	return nil
}
