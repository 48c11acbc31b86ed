package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jobboard/internal/app"
	"jobboard/internal/config"
	"jobboard/internal/logging"
)

func main() {
	boot := logging.New(os.Stderr, false)

	cfg, err := config.Load()
	if err != nil {
		boot.Error(context.Background(), "failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.IsProduction()).With("app", cfg.App.AppName, "env", cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, cleanup, err := app.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to bootstrap app", "error", err)
		os.Exit(1)
	}

	runErr := server.Run(ctx)
	if err := cleanup(); err != nil {
		logger.Error(context.Background(), "cleanup error", "error", err)
	}
	if runErr != nil {
		logger.Error(context.Background(), "server error", "error", runErr)
		os.Exit(1)
	}
	logger.Info(context.Background(), "server stopped")
}
