package game

import (
	"strconv"
	"strings"
)

// Exclusions drops specific games from the same-day report: disputed
// results, test games, anything the league rules out by hand.
type Exclusions struct {
	// Rendered entries match a game's full display line exactly.
	Rendered []string `json:"rendered"`
	// Rules match on structured fields.
	Rules []ExcludeRule `json:"rules"`
}

// ExcludeRule matches a same-day game field by field. Nil/empty fields are
// ignored; every populated field must match.
type ExcludeRule struct {
	HomeTeam             string `json:"home_team"`
	AwayTeam             string `json:"away_team"`
	HomeScore            *int   `json:"home_score"`
	AwayScore            *int   `json:"away_score"`
	EndedAtLocalContains string `json:"ended_at_local_contains"`
}

func (e Exclusions) Excludes(g SameDayGame) bool {
	for _, rendered := range e.Rendered {
		if strings.TrimSpace(rendered) == strings.TrimSpace(g.Rendered) {
			return true
		}
	}
	for _, rule := range e.Rules {
		if rule.matches(g) {
			return true
		}
	}
	return false
}

// Apply returns the games that survive the exclusion list, preserving
// order. A nil exclusion set passes everything through.
func (e Exclusions) Apply(games []SameDayGame) []SameDayGame {
	if len(e.Rendered) == 0 && len(e.Rules) == 0 {
		return games
	}
	out := make([]SameDayGame, 0, len(games))
	for _, g := range games {
		if !e.Excludes(g) {
			out = append(out, g)
		}
	}
	return out
}

func (r ExcludeRule) matches(g SameDayGame) bool {
	if r.HomeTeam != "" && NormalizeTeam(r.HomeTeam) != NormalizeTeam(g.HomeTeam) {
		return false
	}
	if r.AwayTeam != "" && NormalizeTeam(r.AwayTeam) != NormalizeTeam(g.AwayTeam) {
		return false
	}
	if r.HomeScore != nil && strconv.Itoa(*r.HomeScore) != g.HomeRuns {
		return false
	}
	if r.AwayScore != nil && strconv.Itoa(*r.AwayScore) != g.AwayRuns {
		return false
	}
	if r.EndedAtLocalContains != "" && !strings.Contains(g.PlayedAt.Format(renderedTimeLayout), r.EndedAtLocalContains) {
		return false
	}
	return true
}
