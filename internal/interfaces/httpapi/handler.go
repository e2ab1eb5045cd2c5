package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/domain/schedule"
	"github.com/showleague/standings/internal/domain/standings"
	"github.com/showleague/standings/internal/infrastructure/snapshot"
	"github.com/showleague/standings/internal/platform/cache"
	"github.com/showleague/standings/internal/platform/logging"
)

const (
	notReadyMessage    = "Data not available yet, please try again in a few minutes."
	lastUpdatedLayout  = "2006-01-02 15:04:05"
	fullReportCacheKey = "httpapi:full-report"
)

// SnapshotLoader reads the last published snapshot.
type SnapshotLoader interface {
	Load() (snapshot.Snapshot, time.Time, error)
}

// ScheduleSource reads the operator-maintained weekly schedule files.
type ScheduleSource interface {
	Weeks() (*schedule.Weeks, error)
	Overrides() (map[string]schedule.Override, error)
}

type Handler struct {
	snapshots    SnapshotLoader
	schedule     ScheduleSource
	timezone     *time.Location
	cache        *cache.Store
	cacheEnabled bool
	logger       *logging.Logger
}

func NewHandler(snapshots SnapshotLoader, scheduleSource ScheduleSource, timezone *time.Location, reportCache *cache.Store, cacheEnabled bool, logger *logging.Logger) *Handler {
	if timezone == nil {
		timezone = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		snapshots:    snapshots,
		schedule:     scheduleSource,
		timezone:     timezone,
		cache:        reportCache,
		cacheEnabled: cacheEnabled && reportCache != nil,
		logger:       logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type fullResponse struct {
	Standings      []standings.Row            `json:"standings"`
	GamesToday     []game.SameDayGame         `json:"games_today"`
	LastUpdated    string                     `json:"last_updated"`
	CurrentWeek    string                     `json:"current_week,omitempty"`
	Weeks          map[string][]schedule.Game `json:"weeks,omitempty"`
	WeeksError     string                     `json:"weeks_error,omitempty"`
	OverridesError string                     `json:"overrides_error,omitempty"`
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string { return e.message }

func (h *Handler) FullReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FullReport")
	defer span.End()

	payload, err := h.loadFullReport(ctx)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			writeError(ctx, w, se.status, se.message)
			return
		}
		h.logger.ErrorContext(ctx, "full report failed", "error", err)
		writeInternalError(ctx, w)
		return
	}

	writeJSON(ctx, w, http.StatusOK, payload)
}

func (h *Handler) loadFullReport(ctx context.Context) (fullResponse, error) {
	if !h.cacheEnabled {
		return h.buildFullReport(ctx)
	}

	value, err := h.cache.GetOrLoad(ctx, fullReportCacheKey, func(ctx context.Context) (any, error) {
		return h.buildFullReport(ctx)
	})
	if err != nil {
		return fullResponse{}, err
	}
	payload, ok := value.(fullResponse)
	if !ok {
		return fullResponse{}, errors.New("unexpected cached payload type")
	}
	return payload, nil
}

func (h *Handler) buildFullReport(ctx context.Context) (fullResponse, error) {
	snap, modTime, err := h.snapshots.Load()
	if err != nil {
		if errors.Is(err, snapshot.ErrNotReady) {
			return fullResponse{}, &statusError{status: http.StatusServiceUnavailable, message: notReadyMessage}
		}
		h.logger.ErrorContext(ctx, "read snapshot failed", "error", err)
		return fullResponse{}, &statusError{
			status:  http.StatusInternalServerError,
			message: fmt.Sprintf("Failed to read cached data: %v", err),
		}
	}

	resp := fullResponse{
		Standings:   snap.Standings,
		GamesToday:  snap.GamesToday,
		LastUpdated: snap.LastUpdated,
	}
	if !modTime.IsZero() {
		resp.LastUpdated = modTime.In(h.timezone).Format(lastUpdatedLayout)
	}

	h.overlaySchedule(ctx, &resp, snap.GamesToday)
	return resp, nil
}

// overlaySchedule folds the weekly schedule into the payload. Schedule
// problems never fail the request; they surface as note fields instead.
func (h *Handler) overlaySchedule(ctx context.Context, resp *fullResponse, gamesToday []game.SameDayGame) {
	if h.schedule == nil {
		return
	}

	weeks, err := h.schedule.Weeks()
	if err != nil {
		h.logger.WarnContext(ctx, "weeks overlay failed", "error", err)
		resp.WeeksError = err.Error()
		return
	}
	if weeks == nil {
		return
	}

	weeks.MarkPlayed(gamesToday)

	overrides, err := h.schedule.Overrides()
	if err != nil {
		h.logger.WarnContext(ctx, "overrides overlay failed", "error", err)
		resp.OverridesError = err.Error()
	} else if len(overrides) > 0 {
		weeks.ApplyOverrides(overrides)
	}

	resp.CurrentWeek = weeks.CurrentWeek
	resp.Weeks = weeks.Weeks
}
