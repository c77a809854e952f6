package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/pinterval/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cliApp := buildApp(deps{
		RunViewer:    app.Run,
		PrintHistory: app.PrintHistory,
		PrintBoards:  app.PrintBoards,
		PrintLogs:    app.PrintLogs,
	})
	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pinterval: %v\n", err)
		return 1
	}
	return 0
}
