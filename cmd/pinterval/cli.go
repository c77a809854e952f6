package main

import (
	"context"
	"errors"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/five82/pinterval/internal/app"
)

type deps struct {
	RunViewer    func(context.Context, app.Options) error
	PrintHistory func(configPath string, w io.Writer, clear bool) error
	PrintBoards  func(ctx context.Context, configPath string, w io.Writer) error
	PrintLogs    func(configPath string, w io.Writer, n int, level string) error
}

func buildApp(d deps) *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "config file path (default ~/.config/pinterval/config.toml)",
	}

	runViewer := func(ctx *cli.Context) error {
		if d.RunViewer == nil {
			return errors.New("viewer is not configured")
		}
		return d.RunViewer(ctx.Context, app.Options{
			ConfigPath: ctx.String("config"),
			PrefsPath:  ctx.String("prefs"),
			LogLevel:   ctx.String("log-level"),
		})
	}

	return &cli.App{
		Name:  "pinterval",
		Usage: "timed pin slideshow for figure drawing practice",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{Name: "prefs", Usage: "prefs file path (default ~/.config/pinterval/prefs.toml)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Action: runViewer,
		Commands: []*cli.Command{
			{
				Name:   "view",
				Usage:  "start the viewer",
				Action: runViewer,
			},
			{
				Name:  "history",
				Usage: "print shown images, most recent first",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "clear", Usage: "delete the stored history"},
				},
				Action: func(ctx *cli.Context) error {
					if d.PrintHistory == nil {
						return errors.New("history is not configured")
					}
					return d.PrintHistory(ctx.String("config"), ctx.App.Writer, ctx.Bool("clear"))
				},
			},
			{
				Name:  "boards",
				Usage: "list boards of the signed-in user",
				Action: func(ctx *cli.Context) error {
					if d.PrintBoards == nil {
						return errors.New("boards is not configured")
					}
					return d.PrintBoards(ctx.Context, ctx.String("config"), ctx.App.Writer)
				},
			},
			{
				Name:  "logs",
				Usage: "print recent runtime log records",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "lines", Aliases: []string{"n"}, Value: 200, Usage: "lines to read from the end of the log"},
					&cli.StringFlag{Name: "level", Value: "info", Usage: "minimum level"},
				},
				Action: func(ctx *cli.Context) error {
					if d.PrintLogs == nil {
						return errors.New("logs is not configured")
					}
					return d.PrintLogs(ctx.String("config"), ctx.App.Writer, ctx.Int("lines"), ctx.String("level"))
				},
			},
		},
	}
}
