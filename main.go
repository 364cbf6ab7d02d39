package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/neutral/cli"
	"github.com/ardnew/neutral/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.ErrorContext(ctx, "run failed", slog.Any("error", err))
		os.Exit(1)
	}
}
