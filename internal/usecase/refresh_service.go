package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/domain/standings"
	"github.com/showleague/standings/internal/platform/logging"
)

const generatedAtLayout = "2006-01-02 15:04:05"

// SnapshotWriter persists a finished refresh for the serving layer.
type SnapshotWriter interface {
	Write(rows []standings.Row, gamesToday []game.SameDayGame, lastUpdated string) error
}

// RefreshService runs one full refresh cycle: standings, same-day report,
// exclusions, snapshot.
type RefreshService struct {
	standings  *StandingsService
	sameDay    *SameDayService
	store      SnapshotWriter
	exclusions game.Exclusions
	timezone   *time.Location
	logger     *logging.Logger

	now func() time.Time
}

func NewRefreshService(standingsSvc *StandingsService, sameDaySvc *SameDayService, store SnapshotWriter, exclusions game.Exclusions, tz *time.Location, logger *logging.Logger) (*RefreshService, error) {
	if standingsSvc == nil {
		return nil, fmt.Errorf("%w: standings service is required", ErrInvalidInput)
	}
	if sameDaySvc == nil {
		return nil, fmt.Errorf("%w: same-day service is required", ErrInvalidInput)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: snapshot writer is required", ErrInvalidInput)
	}
	if tz == nil {
		return nil, fmt.Errorf("%w: timezone is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RefreshService{
		standings:  standingsSvc,
		sameDay:    sameDaySvc,
		store:      store,
		exclusions: exclusions,
		timezone:   tz,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Refresh computes a fresh snapshot and persists it. A failed standings
// computation aborts the cycle; a failed same-day report degrades to an
// empty list so the table still updates.
func (s *RefreshService) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "RefreshService.Refresh")
	defer span.End()

	started := s.now()

	rows, err := s.standings.ComputeRows(ctx)
	if err != nil {
		return fmt.Errorf("compute standings: %w", err)
	}

	gamesToday, err := s.sameDay.GamesToday(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "same-day report failed, publishing empty list", "error", err)
		gamesToday = nil
	}
	gamesToday = s.exclusions.Apply(gamesToday)
	if gamesToday == nil {
		gamesToday = []game.SameDayGame{}
	}

	lastUpdated := s.now().In(s.timezone).Format(generatedAtLayout)
	if err := s.store.Write(rows, gamesToday, lastUpdated); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "snapshot refreshed",
		"teams", len(rows),
		"games_today", len(gamesToday),
		"last_updated", lastUpdated,
		"took_ms", s.now().Sub(started).Milliseconds())
	return nil
}
