package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/domain/league"
	"github.com/showleague/standings/internal/platform/logging"
)

// SameDayConfig carries the reporting parameters for the daily game report.
type SameDayConfig struct {
	GameMode string
	Pages    int
	// Timezone is the league's reporting timezone. Remote timestamps carry
	// no zone and are treated as UTC before conversion.
	Timezone *time.Location
	Window   game.DayWindow
}

// SameDayService lists the roster-vs-roster games played on the current
// reporting day.
type SameDayService struct {
	fetcher HistoryFetcher
	league  *league.League
	cfg     SameDayConfig
	logger  *logging.Logger

	now func() time.Time
}

func NewSameDayService(fetcher HistoryFetcher, lg *league.League, cfg SameDayConfig, logger *logging.Logger) (*SameDayService, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is required", ErrInvalidInput)
	}
	if lg == nil {
		return nil, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}
	if strings.TrimSpace(cfg.GameMode) == "" {
		return nil, fmt.Errorf("%w: game mode is required", ErrInvalidInput)
	}
	if cfg.Pages <= 0 {
		return nil, fmt.Errorf("%w: pages must be positive", ErrInvalidInput)
	}
	if cfg.Timezone == nil {
		return nil, fmt.Errorf("%w: timezone is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SameDayService{fetcher: fetcher, league: lg, cfg: cfg, logger: logger, now: time.Now}, nil
}

// GamesToday returns the current reporting day's games between two roster
// members, ordered by local end time. Games against the automated opponent
// never appear here.
func (s *SameDayService) GamesToday(ctx context.Context) ([]game.SameDayGame, error) {
	ctx, span := startUsecaseSpan(ctx, "SameDayService.GamesToday")
	defer span.End()

	var all []game.Record
	for _, entry := range s.league.Roster() {
		all = append(all, fetchPages(ctx, s.fetcher, s.logger, []string{entry.Identity}, s.cfg.Pages)...)
	}

	now := s.now().In(s.cfg.Timezone)
	seen := make(map[game.ContentKey]struct{})
	var out []game.SameDayGame
	for _, r := range game.DedupByID(all) {
		if !strings.EqualFold(strings.TrimSpace(r.GameMode), s.cfg.GameMode) {
			continue
		}
		playedAt, ok := game.ParseDisplayDate(r.DisplayDate)
		if !ok {
			continue
		}
		local := playedAt.In(s.cfg.Timezone)
		if !s.cfg.Window.SameReportingDay(local, now) {
			continue
		}
		if !s.league.IsMember(r.HomeName) || !s.league.IsMember(r.AwayName) {
			continue
		}
		key := r.ContentKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, game.NewSameDayGame(r, local))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayedAt.Before(out[j].PlayedAt)
	})
	s.logger.DebugContext(ctx, "same-day report built", "games", len(out))
	return out, nil
}
