package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/domain/league"
)

type stubFetcher struct {
	mu    sync.Mutex
	pages map[string][]game.Record
	errs  map[string]error
	calls []string
}

func (f *stubFetcher) GameHistory(_ context.Context, username string, page int) ([]game.Record, error) {
	key := fmt.Sprintf("%s/%d", username, page)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.pages[key], nil
}

func testLeague(t *testing.T) *league.League {
	t.Helper()
	lg, err := league.New(league.Config{
		Roster: []league.Entry{
			{Identity: "alpha", Team: "Yankees"},
			{Identity: "bravo", Team: "Mets"},
		},
		Aliases:           map[string][]string{"alpha": {"alpha2"}},
		RecordAdjustments: map[string]league.RecordAdjustment{"Mets": {Wins: 1}},
		PointAdjustments:  map[string]league.PointAdjustment{"Yankees": {Points: 2, Reason: "fair play"}},
	})
	if err != nil {
		t.Fatalf("league.New: %v", err)
	}
	return lg
}

func leagueGame(id, date, homeName, homeTeam, awayName, awayTeam, homeRes, awayRes string) game.Record {
	return game.Record{
		ID:          id,
		GameMode:    "LEAGUE",
		DisplayDate: date,
		HomeName:    homeName,
		HomeTeam:    homeTeam,
		AwayName:    awayName,
		AwayTeam:    awayTeam,
		HomeResult:  homeRes,
		AwayResult:  awayRes,
	}
}

func TestStandingsServiceComputeRows(t *testing.T) {
	t.Parallel()

	headToHead := leagueGame("100", "9/25/2025 18:00:00", "^b5^Alpha", "Yankees", "bravo", "Mets", "W", "L")
	fetcher := &stubFetcher{pages: map[string][]game.Record{
		"alpha/1": {
			headToHead,
			// CPU opponent still counts toward the member's record.
			leagueGame("101", "9/26/2025 12:00", "CPU", "Twins", "alpha", "Yankees", "L", "W"),
			// Before season start.
			leagueGame("102", "9/10/2025 12:00", "alpha", "Yankees", "bravo", "Mets", "W", "L"),
			// Wrong mode.
			{ID: "103", GameMode: "EXHIBITION", DisplayDate: "9/27/2025 12:00", HomeName: "alpha", HomeTeam: "Yankees", AwayName: "bravo", AwayTeam: "Mets", HomeResult: "W", AwayResult: "L"},
			// Both sides marked winner: no credit either way.
			leagueGame("104", "9/27/2025 13:00", "alpha", "Yankees", "bravo", "Mets", "W", "W"),
		},
		"alpha2/1": {
			leagueGame("105", "9/28/2025 12:00", "alpha2", "Yankees", "bravo", "Mets", "W", "L"),
		},
		"bravo/1": {headToHead},
	}}

	svc, err := NewStandingsService(fetcher, testLeague(t), StandingsConfig{
		GameMode:       "LEAGUE",
		SeasonStart:    time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC),
		Pages:          1,
		ScheduledGames: 45,
		MaxWorkers:     2,
	}, nil)
	if err != nil {
		t.Fatalf("NewStandingsService: %v", err)
	}

	rows, err := svc.ComputeRows(context.Background())
	if err != nil {
		t.Fatalf("ComputeRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	yankees, mets := rows[0], rows[1]
	if yankees.Team != "Yankees" || yankees.Position != 1 {
		t.Fatalf("expected Yankees first, got %+v", rows)
	}
	if yankees.Wins != 3 || yankees.Losses != 0 {
		t.Fatalf("Yankees record = %d-%d, want 3-0", yankees.Wins, yankees.Losses)
	}
	if yankees.Points != 2 || yankees.PointsExtra != 2 || yankees.PointsReason != "fair play" {
		t.Fatalf("Yankees points = %+v", yankees)
	}
	if yankees.Played != 3 || yankees.Remaining != 42 {
		t.Fatalf("Yankees played/remaining = %d/%d", yankees.Played, yankees.Remaining)
	}

	if mets.Team != "Mets" || mets.Position != 2 {
		t.Fatalf("expected Mets second, got %+v", rows)
	}
	// One real loss, one win from the record adjustment.
	if mets.Wins != 1 || mets.Losses != 1 {
		t.Fatalf("Mets record = %d-%d, want 1-1", mets.Wins, mets.Losses)
	}
}

func TestStandingsServiceRecordAdjustments(t *testing.T) {
	t.Parallel()

	lg, err := league.New(league.Config{
		Roster: []league.Entry{
			{Identity: "alpha", Team: "Yankees"},
			{Identity: "bravo", Team: "Mets"},
			{Identity: "charlie", Team: "Cubs"},
		},
		RecordAdjustments: map[string]league.RecordAdjustment{
			"Yankees": {Wins: -1},
			"Mets":    {Wins: -2},
		},
	})
	if err != nil {
		t.Fatalf("league.New: %v", err)
	}

	fetcher := &stubFetcher{pages: map[string][]game.Record{
		"alpha/1": {
			leagueGame("300", "9/21/2025 12:00", "alpha", "Yankees", "CPU", "Twins", "W", "L"),
			leagueGame("301", "9/22/2025 12:00", "alpha", "Yankees", "CPU", "Twins", "W", "L"),
			leagueGame("302", "9/23/2025 12:00", "alpha", "Yankees", "CPU", "Twins", "W", "L"),
			leagueGame("303", "9/24/2025 12:00", "alpha", "Yankees", "CPU", "Twins", "L", "W"),
			leagueGame("304", "9/25/2025 12:00", "alpha", "Yankees", "CPU", "Twins", "L", "W"),
		},
	}}

	svc, err := NewStandingsService(fetcher, lg, StandingsConfig{
		GameMode:       "LEAGUE",
		SeasonStart:    time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC),
		Pages:          1,
		ScheduledGames: 45,
	}, nil)
	if err != nil {
		t.Fatalf("NewStandingsService: %v", err)
	}

	rows, err := svc.ComputeRows(context.Background())
	if err != nil {
		t.Fatalf("ComputeRows: %v", err)
	}

	byTeam := make(map[string]int)
	for i, row := range rows {
		byTeam[row.Team] = i
	}

	// 3-2 on the field minus one win from the adjustment.
	yankees := rows[byTeam["Yankees"]]
	if yankees.Wins != 2 || yankees.Losses != 2 {
		t.Fatalf("Yankees record = %d-%d, want 2-2", yankees.Wins, yankees.Losses)
	}
	if yankees.Played != 4 || yankees.Remaining != 41 {
		t.Fatalf("Yankees played/remaining = %d/%d, want 4/41", yankees.Played, yankees.Remaining)
	}

	// No games at all keeps the full schedule ahead.
	cubs := rows[byTeam["Cubs"]]
	if cubs.Wins != 0 || cubs.Losses != 0 {
		t.Fatalf("Cubs record = %d-%d, want 0-0", cubs.Wins, cubs.Losses)
	}
	if cubs.Played != 0 || cubs.Remaining != 45 {
		t.Fatalf("Cubs played/remaining = %d/%d, want 0/45", cubs.Played, cubs.Remaining)
	}

	// An adjustment on a team with no games can push wins negative, but
	// played and remaining never drop below zero.
	mets := rows[byTeam["Mets"]]
	if mets.Wins != -2 || mets.Losses != 0 {
		t.Fatalf("Mets record = %d-%d, want -2-0", mets.Wins, mets.Losses)
	}
	if mets.Played != 0 || mets.Remaining != 45 {
		t.Fatalf("Mets played/remaining = %d/%d, want 0/45", mets.Played, mets.Remaining)
	}

	// All points are level, so wins break the tie.
	if rows[0].Team != "Yankees" || rows[1].Team != "Cubs" || rows[2].Team != "Mets" {
		t.Fatalf("unexpected order %+v", rows)
	}
}

func TestStandingsServiceDegradesFailedPages(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		pages: map[string][]game.Record{
			"alpha/2": {leagueGame("200", "9/25/2025 18:00:00", "alpha", "Yankees", "CPU", "Twins", "W", "L")},
		},
		errs: map[string]error{
			"alpha/1": errors.New("upstream 502"),
		},
	}

	svc, err := NewStandingsService(fetcher, testLeague(t), StandingsConfig{
		GameMode:       "LEAGUE",
		SeasonStart:    time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC),
		Pages:          2,
		ScheduledGames: 45,
	}, nil)
	if err != nil {
		t.Fatalf("NewStandingsService: %v", err)
	}

	rows, err := svc.ComputeRows(context.Background())
	if err != nil {
		t.Fatalf("ComputeRows: %v", err)
	}
	for _, row := range rows {
		if row.Team == "Yankees" && row.Wins != 1 {
			t.Fatalf("expected surviving page to count, got %+v", row)
		}
	}
}

func TestNewStandingsServiceValidation(t *testing.T) {
	t.Parallel()

	lg := testLeague(t)
	cfg := StandingsConfig{GameMode: "LEAGUE", SeasonStart: time.Now(), Pages: 1, ScheduledGames: 45}

	if _, err := NewStandingsService(nil, lg, cfg, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil fetcher: %v", err)
	}
	if _, err := NewStandingsService(&stubFetcher{}, nil, cfg, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil league: %v", err)
	}
	bad := cfg
	bad.Pages = 0
	if _, err := NewStandingsService(&stubFetcher{}, lg, bad, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero pages: %v", err)
	}
}
