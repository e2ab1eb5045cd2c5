// Package app wires configuration into the two runnable pieces: the HTTP
// server that serves the published snapshot, and the updater that
// refreshes it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/showleague/standings/external/theshow"
	"github.com/showleague/standings/internal/config"
	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/infrastructure/snapshot"
	"github.com/showleague/standings/internal/infrastructure/staticdata"
	"github.com/showleague/standings/internal/interfaces/httpapi"
	"github.com/showleague/standings/internal/platform/cache"
	"github.com/showleague/standings/internal/platform/logging"
	"github.com/showleague/standings/internal/platform/resilience"
	"github.com/showleague/standings/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	location, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("load report timezone %q: %w", cfg.ReportTimezone, err)
	}

	store, err := snapshot.NewStore(cfg.SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	var reportCache *cache.Store
	if cfg.CacheEnabled {
		reportCache = cache.NewStore(cfg.CacheTTL)
	}

	handler := httpapi.NewHandler(store, staticdata.NewDir(cfg.DataDir), location, reportCache, cfg.CacheEnabled, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

// NewRefreshService builds the full updater pipeline: fetch client, league
// definition, standings and same-day services, exclusions, snapshot store.
func NewRefreshService(ctx context.Context, cfg config.Config, logger *logging.Logger) (*usecase.RefreshService, error) {
	location, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("load report timezone %q: %w", cfg.ReportTimezone, err)
	}
	window, err := game.ParseDayWindow(cfg.DayWindowMode)
	if err != nil {
		return nil, fmt.Errorf("parse REPORT_DAY_WINDOW: %w", err)
	}

	lg, err := staticdata.LoadLeague(ctx, cfg.LeagueFile)
	if err != nil {
		return nil, fmt.Errorf("load league: %w", err)
	}

	client := theshow.NewClient(theshow.ClientConfig{
		BaseURL:    cfg.TheShowBaseURL,
		Platform:   cfg.TheShowPlatform,
		Timeout:    cfg.TheShowTimeout,
		MaxRetries: cfg.TheShowMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.TheShowCircuitEnabled,
			FailureThreshold: cfg.TheShowCircuitFailureCount,
			OpenTimeout:      cfg.TheShowCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.TheShowCircuitHalfOpenMaxReq,
		},
	})

	standingsSvc, err := usecase.NewStandingsService(client, lg, usecase.StandingsConfig{
		GameMode:       cfg.GameMode,
		SeasonStart:    cfg.SeasonStart,
		Pages:          cfg.HistoryPages,
		ScheduledGames: cfg.ScheduledGames,
		MaxWorkers:     cfg.MaxWorkers,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("standings service: %w", err)
	}

	sameDaySvc, err := usecase.NewSameDayService(client, lg, usecase.SameDayConfig{
		GameMode: cfg.GameMode,
		Pages:    cfg.HistoryPages,
		Timezone: location,
		Window:   window,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("same-day service: %w", err)
	}

	exclusions, err := staticdata.NewDir(cfg.DataDir).Exclusions()
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	store, err := snapshot.NewStore(cfg.SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	refresh, err := usecase.NewRefreshService(standingsSvc, sameDaySvc, store, exclusions, location, logger)
	if err != nil {
		return nil, fmt.Errorf("refresh service: %w", err)
	}
	return refresh, nil
}
