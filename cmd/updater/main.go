package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/showleague/standings/internal/app"
	"github.com/showleague/standings/internal/config"
	"github.com/showleague/standings/internal/platform/logging"
)

func main() {
	once := flag.Bool("once", false, "run a single refresh cycle and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if *once {
		cfg.RunOnce = true
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName+"-updater",
		"version", cfg.ServiceVersion,
	)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresh, err := app.NewRefreshService(ctx, cfg, logger)
	if err != nil {
		logger.Error("build updater", "error", err)
		os.Exit(1)
	}

	if cfg.RunOnce {
		if err := refresh.Refresh(ctx); err != nil {
			logger.Error("refresh failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("updater starting", "interval", cfg.UpdateInterval.String())
	if err := refresh.Refresh(ctx); err != nil {
		logger.Error("refresh failed", "error", err)
	}

	ticker := time.NewTicker(cfg.UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("updater stopped")
			return
		case <-ticker.C:
			if err := refresh.Refresh(ctx); err != nil {
				logger.Error("refresh failed", "error", err)
			}
		}
	}
}
