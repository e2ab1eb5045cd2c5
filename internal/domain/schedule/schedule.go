package schedule

import (
	"fmt"
	"strings"

	"github.com/showleague/standings/internal/domain/game"
)

// Game statuses as stored in the weeks file and served to clients.
const (
	StatusPending = "pending"
	StatusPlayed  = "played"
)

// Game is one scheduled series game inside a week.
type Game struct {
	Home   string `json:"home"`
	Away   string `json:"away"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
}

// Weeks is the season series schedule. Only the current week is enriched at
// serve time; past weeks are served as recorded.
type Weeks struct {
	CurrentWeek string            `json:"current_week"`
	Weeks       map[string][]Game `json:"weeks"`
}

// Override replaces a scheduled game's recorded result and/or status. The
// map key in the overrides file is a free-form label; matching is by the
// (home, away) pair.
type Override struct {
	Home   string `json:"home"`
	Away   string `json:"away"`
	Result string `json:"result,omitempty"`
	Status string `json:"status,omitempty"`
}

// MarkPlayed walks the current week's pending games and flags those whose
// (home, away) pair matches a detected same-day game, recording the score
// as "home-away". Each detected game is consumed at most once so a doubled
// schedule entry cannot borrow the same result twice.
func (w *Weeks) MarkPlayed(games []game.SameDayGame) {
	if w == nil || len(games) == 0 {
		return
	}
	week, ok := w.Weeks[w.CurrentWeek]
	if !ok {
		return
	}

	used := make([]bool, len(games))
	for i := range week {
		if week[i].Status != StatusPending {
			continue
		}
		for j, g := range games {
			if used[j] {
				continue
			}
			if strings.TrimSpace(g.HomeRuns) == "" || strings.TrimSpace(g.AwayRuns) == "" {
				continue
			}
			if !teamsEqual(g.HomeTeam, week[i].Home) || !teamsEqual(g.AwayTeam, week[i].Away) {
				continue
			}
			week[i].Status = StatusPlayed
			week[i].Result = fmt.Sprintf("%s-%s", g.HomeRuns, g.AwayRuns)
			used[j] = true
			break
		}
	}
}

// ApplyOverrides overwrites current-week games matching an override's team
// pair. Overrides run after MarkPlayed so a manual ruling always has the
// last word.
func (w *Weeks) ApplyOverrides(overrides map[string]Override) {
	if w == nil || len(overrides) == 0 {
		return
	}
	week, ok := w.Weeks[w.CurrentWeek]
	if !ok {
		return
	}

	for _, override := range overrides {
		for i := range week {
			if !teamsEqual(week[i].Home, override.Home) || !teamsEqual(week[i].Away, override.Away) {
				continue
			}
			if strings.TrimSpace(override.Result) != "" {
				week[i].Result = override.Result
			}
			if strings.TrimSpace(override.Status) != "" {
				week[i].Status = override.Status
			}
		}
	}
}

func teamsEqual(a, b string) bool {
	return game.NormalizeTeam(a) == game.NormalizeTeam(b)
}
