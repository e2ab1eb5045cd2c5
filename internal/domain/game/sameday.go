package game

import (
	"fmt"
	"strings"
	"time"
)

// SameDayGame is one game completed inside the reporting-day window, carried
// as a structured record so downstream consumers never have to re-parse the
// rendered line.
type SameDayGame struct {
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	HomeRuns string    `json:"home_runs"`
	AwayRuns string    `json:"away_runs"`
	PlayedAt time.Time `json:"played_at"`
	Rendered string    `json:"rendered"`
}

const renderedTimeLayout = "02-01-2006 - 3:04 pm"

// NewSameDayGame builds the structured record plus its display line.
// playedAt must already be converted to the reporting timezone.
func NewSameDayGame(r Record, playedAt time.Time) SameDayGame {
	g := SameDayGame{
		HomeTeam: strings.TrimSpace(r.HomeTeam),
		AwayTeam: strings.TrimSpace(r.AwayTeam),
		HomeRuns: runsOrZero(r.HomeRuns),
		AwayRuns: runsOrZero(r.AwayRuns),
		PlayedAt: playedAt,
	}
	g.Rendered = fmt.Sprintf("%s %s - %s %s  - %s (hora Chile)",
		g.HomeTeam, g.HomeRuns, g.AwayTeam, g.AwayRuns, playedAt.Format(renderedTimeLayout))
	return g
}

// DayWindow selects how "today" is computed in the reporting timezone.
type DayWindow string

const (
	// DayWindowCalendar counts 00:00-23:59 local as one reporting day.
	DayWindowCalendar DayWindow = "calendar"
	// DayWindowSports counts 06:00 local through 05:59 the next day as one
	// reporting day, matching how late-night league games are scored.
	DayWindowSports DayWindow = "sports"
)

const sportsDayOffset = 6 * time.Hour

func ParseDayWindow(s string) (DayWindow, error) {
	switch DayWindow(strings.ToLower(strings.TrimSpace(s))) {
	case DayWindowCalendar:
		return DayWindowCalendar, nil
	case DayWindowSports:
		return DayWindowSports, nil
	default:
		return "", fmt.Errorf("invalid day window %q: valid values are %s, %s", s, DayWindowCalendar, DayWindowSports)
	}
}

// SameReportingDay reports whether ts falls in the reporting-day window
// containing now. Both times must already be in the reporting timezone.
func (w DayWindow) SameReportingDay(ts, now time.Time) bool {
	if w == DayWindowSports {
		ts = ts.Add(-sportsDayOffset)
		now = now.Add(-sportsDayOffset)
	}
	ty, tm, td := ts.Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}
