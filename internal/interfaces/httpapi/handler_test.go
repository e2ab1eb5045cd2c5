package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/domain/schedule"
	"github.com/showleague/standings/internal/domain/standings"
	"github.com/showleague/standings/internal/infrastructure/snapshot"
	"github.com/showleague/standings/internal/platform/cache"
	"github.com/showleague/standings/internal/platform/logging"
)

type stubSnapshots struct {
	snap    snapshot.Snapshot
	modTime time.Time
	err     error
	loads   int
}

func (s *stubSnapshots) Load() (snapshot.Snapshot, time.Time, error) {
	s.loads++
	return s.snap, s.modTime, s.err
}

type stubSchedule struct {
	weeks        *schedule.Weeks
	weeksErr     error
	overrides    map[string]schedule.Override
	overridesErr error
}

func (s *stubSchedule) Weeks() (*schedule.Weeks, error) {
	return s.weeks, s.weeksErr
}

func (s *stubSchedule) Overrides() (map[string]schedule.Override, error) {
	return s.overrides, s.overridesErr
}

func testSnapshot() snapshot.Snapshot {
	played := game.NewSameDayGame(game.Record{
		HomeTeam: "Yankees", AwayTeam: "Mets", HomeRuns: "3", AwayRuns: "2",
	}, time.Date(2025, 9, 25, 15, 30, 0, 0, time.UTC))
	return snapshot.Snapshot{
		Standings:   []standings.Row{{Position: 1, Team: "Yankees", Player: "alpha", Wins: 3}},
		GamesToday:  []game.SameDayGame{played},
		LastUpdated: "2025-09-25 20:00:00",
	}
}

func getFullReport(t *testing.T, h *Handler) (*httptest.ResponseRecorder, fullResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/full", nil)
	rec := httptest.NewRecorder()
	h.FullReport(rec, req)

	var body fullResponse
	if rec.Code == http.StatusOK {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, body
}

func TestFullReportNotReady(t *testing.T) {
	t.Parallel()

	h := NewHandler(&stubSnapshots{err: snapshot.ErrNotReady}, nil, time.UTC, nil, false, logging.NewNop())
	rec, _ := getFullReport(t, h)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Data not available yet") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestFullReportUnreadableSnapshot(t *testing.T) {
	t.Parallel()

	h := NewHandler(&stubSnapshots{err: errors.New("corrupt file")}, nil, time.UTC, nil, false, logging.NewNop())
	rec, _ := getFullReport(t, h)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to read cached data") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestFullReportServesSnapshot(t *testing.T) {
	t.Parallel()

	loads := &stubSnapshots{
		snap:    testSnapshot(),
		modTime: time.Date(2025, 9, 25, 23, 45, 0, 0, time.UTC),
	}
	h := NewHandler(loads, nil, time.UTC, nil, false, logging.NewNop())
	rec, body := getFullReport(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(body.Standings) != 1 || body.Standings[0].Team != "Yankees" {
		t.Fatalf("standings: %+v", body.Standings)
	}
	// Freshness comes from the snapshot file itself, not the stored field.
	if body.LastUpdated != "2025-09-25 23:45:00" {
		t.Fatalf("last_updated = %q", body.LastUpdated)
	}
	if body.WeeksError != "" || body.CurrentWeek != "" {
		t.Fatalf("unexpected schedule fields without a source: %+v", body)
	}
}

func TestFullReportWeeksOverlay(t *testing.T) {
	t.Parallel()

	sched := &stubSchedule{
		weeks: &schedule.Weeks{
			CurrentWeek: "week2",
			Weeks: map[string][]schedule.Game{
				"week2": {
					{Home: "Yankees", Away: "Mets", Status: schedule.StatusPending},
					{Home: "Cubs", Away: "Twins", Status: schedule.StatusPending},
				},
			},
		},
		overrides: map[string]schedule.Override{
			"Cubs|Twins": {Home: "Cubs", Away: "Twins", Result: "9-0", Status: schedule.StatusPlayed},
		},
	}
	h := NewHandler(&stubSnapshots{snap: testSnapshot()}, sched, time.UTC, nil, false, logging.NewNop())
	rec, body := getFullReport(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body.CurrentWeek != "week2" {
		t.Fatalf("current_week = %q", body.CurrentWeek)
	}

	games := body.Weeks["week2"]
	if len(games) != 2 {
		t.Fatalf("weeks payload: %+v", body.Weeks)
	}
	if games[0].Status != schedule.StatusPlayed || games[0].Result != "3-2" {
		t.Fatalf("detected game not marked played: %+v", games[0])
	}
	if games[1].Status != schedule.StatusPlayed || games[1].Result != "9-0" {
		t.Fatalf("override not applied: %+v", games[1])
	}
}

func TestFullReportScheduleErrorsAreNonFatal(t *testing.T) {
	t.Parallel()

	sched := &stubSchedule{weeksErr: errors.New("weeks.json is broken")}
	h := NewHandler(&stubSnapshots{snap: testSnapshot()}, sched, time.UTC, nil, false, logging.NewNop())
	rec, body := getFullReport(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body.WeeksError == "" {
		t.Fatal("expected weeks_error note")
	}

	sched = &stubSchedule{
		weeks:        &schedule.Weeks{CurrentWeek: "week1", Weeks: map[string][]schedule.Game{"week1": {}}},
		overridesErr: errors.New("manual_overrides.json is broken"),
	}
	h = NewHandler(&stubSnapshots{snap: testSnapshot()}, sched, time.UTC, nil, false, logging.NewNop())
	rec, body = getFullReport(t, h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body.OverridesError == "" || body.CurrentWeek != "week1" {
		t.Fatalf("expected overrides_error with weeks kept: %+v", body)
	}
}

func TestFullReportCaching(t *testing.T) {
	t.Parallel()

	loads := &stubSnapshots{snap: testSnapshot()}
	h := NewHandler(loads, nil, time.UTC, cache.NewStore(time.Minute), true, logging.NewNop())

	for i := 0; i < 3; i++ {
		rec, _ := getFullReport(t, h)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
	if loads.loads != 1 {
		t.Fatalf("expected one snapshot load, got %d", loads.loads)
	}
}

func TestFullReportErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	loads := &stubSnapshots{err: snapshot.ErrNotReady}
	h := NewHandler(loads, nil, time.UTC, cache.NewStore(time.Minute), true, logging.NewNop())

	if rec, _ := getFullReport(t, h); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("first call status = %d", rec.Code)
	}

	loads.err = nil
	loads.snap = testSnapshot()
	if rec, _ := getFullReport(t, h); rec.Code != http.StatusOK {
		t.Fatalf("second call status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := NewHandler(&stubSnapshots{}, nil, time.UTC, nil, false, logging.NewNop())
	router := NewRouter(h, logging.NewNop(), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
