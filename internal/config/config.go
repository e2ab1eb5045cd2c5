package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/showleague/standings/internal/platform/logging"
)

// Config stores runtime configuration for both binaries.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level

	CacheEnabled bool
	CacheTTL     time.Duration

	TheShowBaseURL               string
	TheShowPlatform              string
	TheShowTimeout               time.Duration
	TheShowMaxRetries            int
	TheShowCircuitEnabled        bool
	TheShowCircuitFailureCount   int
	TheShowCircuitOpenTimeout    time.Duration
	TheShowCircuitHalfOpenMaxReq int

	HistoryPages   int
	GameMode       string
	SeasonStart    time.Time
	ScheduledGames int
	MaxWorkers     int

	ReportTimezone string
	DayWindowMode  string

	DataDir      string
	LeagueFile   string
	SnapshotFile string

	UpdateInterval time.Duration
	RunOnce        bool
}

const seasonStartLayout = "2006-01-02"

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "show-standings"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		TheShowBaseURL:     getEnv("THESHOW_BASE_URL", "https://mlb25.theshow.com/apis"),
		TheShowPlatform:    getEnv("THESHOW_PLATFORM", "psn"),
		GameMode:           getEnv("LEAGUE_GAME_MODE", "LEAGUE"),
		ReportTimezone:     getEnv("REPORT_TIMEZONE", "America/Santiago"),
		DayWindowMode:      getEnv("REPORT_DAY_WINDOW", "calendar"),
		DataDir:            getEnv("DATA_DIR", "data"),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	cfg.LeagueFile = getEnv("LEAGUE_FILE", filepath.Join(cfg.DataDir, "league.yaml"))
	cfg.SnapshotFile = getEnv("SNAPSHOT_FILE", filepath.Join(cfg.DataDir, "snapshot.json"))

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	theShowTimeout, err := time.ParseDuration(getEnv("THESHOW_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse THESHOW_TIMEOUT: %w", err)
	}
	theShowMaxRetries, err := getEnvAsInt("THESHOW_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse THESHOW_MAX_RETRIES: %w", err)
	}
	if theShowMaxRetries < 0 {
		return Config{}, fmt.Errorf("THESHOW_MAX_RETRIES must be >= 0")
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("THESHOW_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse THESHOW_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("THESHOW_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse THESHOW_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return Config{}, fmt.Errorf("THESHOW_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("THESHOW_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse THESHOW_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("THESHOW_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("THESHOW_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse THESHOW_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("THESHOW_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	cfg.TheShowTimeout = theShowTimeout
	cfg.TheShowMaxRetries = theShowMaxRetries
	cfg.TheShowCircuitEnabled = circuitEnabled
	cfg.TheShowCircuitFailureCount = circuitFailureCount
	cfg.TheShowCircuitOpenTimeout = circuitOpenTimeout
	cfg.TheShowCircuitHalfOpenMaxReq = circuitHalfOpenMaxReq

	historyPages, err := getEnvAsInt("LEAGUE_HISTORY_PAGES", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUE_HISTORY_PAGES: %w", err)
	}
	if historyPages < 1 {
		return Config{}, fmt.Errorf("LEAGUE_HISTORY_PAGES must be >= 1")
	}
	seasonStart, err := time.Parse(seasonStartLayout, getEnv("LEAGUE_SEASON_START", "2025-09-20"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUE_SEASON_START: %w", err)
	}
	scheduledGames, err := getEnvAsInt("LEAGUE_SCHEDULED_GAMES", 45)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUE_SCHEDULED_GAMES: %w", err)
	}
	if scheduledGames < 1 {
		return Config{}, fmt.Errorf("LEAGUE_SCHEDULED_GAMES must be >= 1")
	}
	maxWorkers, err := getEnvAsInt("LEAGUE_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUE_MAX_WORKERS: %w", err)
	}
	if maxWorkers < 1 {
		return Config{}, fmt.Errorf("LEAGUE_MAX_WORKERS must be >= 1")
	}
	cfg.HistoryPages = historyPages
	cfg.SeasonStart = seasonStart
	cfg.ScheduledGames = scheduledGames
	cfg.MaxWorkers = maxWorkers

	updateInterval, err := time.ParseDuration(getEnv("UPDATE_INTERVAL", "300s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPDATE_INTERVAL: %w", err)
	}
	if updateInterval <= 0 {
		return Config{}, fmt.Errorf("UPDATE_INTERVAL must be > 0")
	}
	runOnce, err := strconv.ParseBool(getEnv("RUN_ONCE", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RUN_ONCE: %w", err)
	}
	cfg.UpdateInterval = updateInterval
	cfg.RunOnce = runOnce

	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
