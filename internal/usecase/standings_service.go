package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/domain/league"
	"github.com/showleague/standings/internal/domain/standings"
	"github.com/showleague/standings/internal/platform/logging"
)

// Base point rates per result. The league currently scores on adjustments
// alone, so both rates sit at zero.
const (
	basePointsPerWin  = 0
	basePointsPerLoss = 0
)

// StandingsConfig carries the season parameters for the standings table.
type StandingsConfig struct {
	GameMode       string
	SeasonStart    time.Time
	Pages          int
	ScheduledGames int
	MaxWorkers     int
}

// StandingsService computes the league table from remote game history.
type StandingsService struct {
	fetcher HistoryFetcher
	league  *league.League
	cfg     StandingsConfig
	logger  *logging.Logger
}

func NewStandingsService(fetcher HistoryFetcher, lg *league.League, cfg StandingsConfig, logger *logging.Logger) (*StandingsService, error) {
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
	if cfg.ScheduledGames <= 0 {
		return nil, fmt.Errorf("%w: scheduled games must be positive", ErrInvalidInput)
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StandingsService{fetcher: fetcher, league: lg, cfg: cfg, logger: logger}, nil
}

// ComputeRows builds the ranked standings table. Teams are aggregated
// concurrently; each row lands at its roster index so ties keep roster
// order after ranking.
func (s *StandingsService) ComputeRows(ctx context.Context) ([]standings.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "StandingsService.ComputeRows")
	defer span.End()

	roster := s.league.Roster()
	rows := make([]standings.Row, len(roster))

	workers := s.cfg.MaxWorkers
	if workers > len(roster) {
		workers = len(roster)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, entry := range roster {
		i, entry := i, entry
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			rows[i] = s.computeTeamRow(ctx, entry)
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit team to worker pool: %w", err)
		}
	}
	wg.Wait()

	standings.Rank(rows)
	return rows, nil
}

func (s *StandingsService) computeTeamRow(ctx context.Context, entry league.Entry) standings.Row {
	identities := s.league.FetchIdentities(entry.Identity)
	records := game.DedupByID(fetchPages(ctx, s.fetcher, s.logger, identities, s.cfg.Pages))

	target := game.NormalizeTeam(entry.Team)
	wins, losses := 0, 0
	for _, r := range records {
		if !s.eligible(r, target) {
			continue
		}
		winner, loser, ok := r.Winner()
		if !ok {
			continue
		}
		switch target {
		case game.NormalizeTeam(winner):
			wins++
		case game.NormalizeTeam(loser):
			losses++
		}
	}

	recordAdj := s.league.RecordAdjustment(entry.Team)
	wins += recordAdj.Wins
	losses += recordAdj.Losses

	played := wins + losses
	if played < 0 {
		played = 0
	}
	remaining := s.cfg.ScheduledGames - played
	if remaining < 0 {
		remaining = 0
	}

	pointsBase := basePointsPerWin*wins + basePointsPerLoss*losses
	pointAdj := s.league.PointAdjustment(entry.Team)

	row := standings.Row{
		Team:         entry.Team,
		Player:       entry.Identity,
		Scheduled:    s.cfg.ScheduledGames,
		Played:       played,
		Wins:         wins,
		Losses:       losses,
		Remaining:    remaining,
		Points:       pointsBase + pointAdj.Points,
		PointsBase:   pointsBase,
		PointsExtra:  pointAdj.Points,
		PointsReason: pointAdj.Reason,
	}
	s.logger.DebugContext(ctx, "team row computed",
		"team", entry.Team, "wins", wins, "losses", losses, "points", row.Points)
	return row
}

// eligible keeps league-mode games on or after season start in which the
// target team plays either against another roster member or against the
// automated opponent.
func (s *StandingsService) eligible(r game.Record, target string) bool {
	if !strings.EqualFold(strings.TrimSpace(r.GameMode), s.cfg.GameMode) {
		return false
	}
	playedAt, ok := game.ParseDisplayDate(r.DisplayDate)
	if !ok || playedAt.Before(s.cfg.SeasonStart) {
		return false
	}
	if game.NormalizeTeam(r.HomeTeam) != target && game.NormalizeTeam(r.AwayTeam) != target {
		return false
	}
	homeMember := s.league.IsMember(r.HomeName)
	awayMember := s.league.IsMember(r.AwayName)
	switch {
	case homeMember && awayMember:
		return true
	case game.IsCPU(r.HomeName) && awayMember:
		return true
	case game.IsCPU(r.AwayName) && homeMember:
		return true
	}
	return false
}
