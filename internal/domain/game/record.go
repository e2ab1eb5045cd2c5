package game

import (
	"strings"
	"time"
)

// Record is one game-history row as returned by the remote stats API.
// All fields arrive as free text and must be treated as untrusted: ids can
// be missing, dates come in more than one layout, and identity strings may
// carry decorative markup.
type Record struct {
	ID          string
	GameMode    string
	DisplayDate string
	HomeName    string
	AwayName    string
	HomeTeam    string
	AwayTeam    string
	HomeResult  string
	AwayResult  string
	HomeRuns    string
	AwayRuns    string
	PitcherInfo string
}

// WinnerMarker is the result value the API uses for the winning side.
const WinnerMarker = "W"

// Winner resolves the winning and losing team names. ok is false when no
// side is marked winner, and also when both are: a double-winner record is
// malformed and must count for nobody.
func (r Record) Winner() (winner, loser string, ok bool) {
	home := strings.TrimSpace(r.HomeTeam)
	away := strings.TrimSpace(r.AwayTeam)
	homeWon := strings.EqualFold(strings.TrimSpace(r.HomeResult), WinnerMarker)
	awayWon := strings.EqualFold(strings.TrimSpace(r.AwayResult), WinnerMarker)

	switch {
	case homeWon && awayWon:
		return "", "", false
	case homeWon:
		return home, away, true
	case awayWon:
		return away, home, true
	default:
		return "", "", false
	}
}

var displayDateLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// ParseDisplayDate parses the API's timezone-naive display_date. The second
// return is false when no accepted layout matches; callers soft-skip such
// records.
func ParseDisplayDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range displayDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeTeam canonicalizes a team name for comparison.
func NormalizeTeam(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ContentKey identifies a game by its visible content. It is the secondary
// dedup key for duplicate fetches that the API assigned different or
// missing ids to.
type ContentKey struct {
	HomeTeam    string
	AwayTeam    string
	HomeRuns    string
	AwayRuns    string
	PitcherInfo string
}

func (r Record) ContentKey() ContentKey {
	return ContentKey{
		HomeTeam:    strings.TrimSpace(r.HomeTeam),
		AwayTeam:    strings.TrimSpace(r.AwayTeam),
		HomeRuns:    runsOrZero(r.HomeRuns),
		AwayRuns:    runsOrZero(r.AwayRuns),
		PitcherInfo: strings.TrimSpace(r.PitcherInfo),
	}
}

func runsOrZero(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "0"
	}
	return s
}
