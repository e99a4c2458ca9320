package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open catalog", "err", err)
		os.Exit(1)
	}

	root := newRootCmd(a)
	err = root.ExecuteContext(ctx)
	a.close()
	if err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
