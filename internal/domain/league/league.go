package league

import (
	"fmt"

	"github.com/showleague/standings/internal/domain/game"
)

// Entry pairs a participant identity with the team they play as. Roster
// order is significant: it is the final tie-break in the standings.
type Entry struct {
	Identity string `yaml:"identity" json:"identity" validate:"required"`
	Team     string `yaml:"team" json:"team" validate:"required"`
}

// RecordAdjustment is a fixed algebraic win/loss correction for one team,
// applied after counting.
type RecordAdjustment struct {
	Wins   int `yaml:"wins" json:"wins"`
	Losses int `yaml:"losses" json:"losses"`
}

// PointAdjustment is a manual point delta with the reason shown alongside
// the table (disconnections, sanctions, fair-play bonuses).
type PointAdjustment struct {
	Points int    `yaml:"points" json:"points"`
	Reason string `yaml:"reason" json:"reason"`
}

// Config is the static league definition loaded from the league file.
type Config struct {
	Roster []Entry `yaml:"roster" validate:"required,min=1,dive"`
	// Aliases maps a roster identity to alternate accounts whose games are
	// merged into the same entry without double counting.
	Aliases map[string][]string `yaml:"aliases"`
	// ExtraMembers lists historical identities that still satisfy the
	// membership filter but own no roster entry of their own.
	ExtraMembers      []string                    `yaml:"extra_members"`
	RecordAdjustments map[string]RecordAdjustment `yaml:"record_adjustments"`
	PointAdjustments  map[string]PointAdjustment  `yaml:"point_adjustments"`
}

// League is the immutable runtime view of a Config: the ordered roster plus
// precomputed membership and adjustment lookups. It is built once at
// startup and shared read-only by every aggregation run.
type League struct {
	roster            []Entry
	aliases           map[string][]string
	members           map[string]struct{}
	recordAdjustments map[string]RecordAdjustment
	pointAdjustments  map[string]PointAdjustment
}

func New(cfg Config) (*League, error) {
	if len(cfg.Roster) == 0 {
		return nil, fmt.Errorf("league roster cannot be empty")
	}

	l := &League{
		roster:            make([]Entry, len(cfg.Roster)),
		aliases:           make(map[string][]string, len(cfg.Aliases)),
		members:           make(map[string]struct{}, len(cfg.Roster)*2),
		recordAdjustments: make(map[string]RecordAdjustment, len(cfg.RecordAdjustments)),
		pointAdjustments:  make(map[string]PointAdjustment, len(cfg.PointAdjustments)),
	}
	copy(l.roster, cfg.Roster)

	seenIdentities := make(map[string]struct{}, len(cfg.Roster))
	seenTeams := make(map[string]struct{}, len(cfg.Roster))
	for _, entry := range cfg.Roster {
		identity := game.NormalizeIdentity(entry.Identity)
		team := game.NormalizeTeam(entry.Team)
		if identity == "" {
			return nil, fmt.Errorf("roster entry for team %q has an empty identity", entry.Team)
		}
		if team == "" {
			return nil, fmt.Errorf("roster entry %q has an empty team", entry.Identity)
		}
		if _, dup := seenIdentities[identity]; dup {
			return nil, fmt.Errorf("duplicate roster identity %q", entry.Identity)
		}
		if _, dup := seenTeams[team]; dup {
			return nil, fmt.Errorf("duplicate roster team %q", entry.Team)
		}
		seenIdentities[identity] = struct{}{}
		seenTeams[team] = struct{}{}
		l.members[identity] = struct{}{}
	}

	for base, alts := range cfg.Aliases {
		key := game.NormalizeIdentity(base)
		if _, ok := seenIdentities[key]; !ok {
			return nil, fmt.Errorf("alias owner %q is not on the roster", base)
		}
		for _, alt := range alts {
			normalized := game.NormalizeIdentity(alt)
			if normalized == "" {
				return nil, fmt.Errorf("empty alias for %q", base)
			}
			l.aliases[key] = append(l.aliases[key], alt)
			l.members[normalized] = struct{}{}
		}
	}

	for _, extra := range cfg.ExtraMembers {
		normalized := game.NormalizeIdentity(extra)
		if normalized == "" {
			return nil, fmt.Errorf("empty extra member identity")
		}
		l.members[normalized] = struct{}{}
	}

	for team, adj := range cfg.RecordAdjustments {
		l.recordAdjustments[game.NormalizeTeam(team)] = adj
	}
	for team, adj := range cfg.PointAdjustments {
		l.pointAdjustments[game.NormalizeTeam(team)] = adj
	}

	return l, nil
}

// Roster returns the roster in declared order.
func (l *League) Roster() []Entry {
	out := make([]Entry, len(l.roster))
	copy(out, l.roster)
	return out
}

// FetchIdentities returns the identities to fetch history for: the entry's
// primary identity followed by its aliases.
func (l *League) FetchIdentities(identity string) []string {
	out := []string{identity}
	return append(out, l.aliases[game.NormalizeIdentity(identity)]...)
}

// IsMember reports whether a raw identity string (markup allowed) belongs
// to the league: roster, alias, or extra member.
func (l *League) IsMember(raw string) bool {
	_, ok := l.members[game.NormalizeIdentity(raw)]
	return ok
}

// RecordAdjustment returns the win/loss correction for a team, zero-valued
// when none is configured.
func (l *League) RecordAdjustment(team string) RecordAdjustment {
	return l.recordAdjustments[game.NormalizeTeam(team)]
}

// PointAdjustment returns the manual point delta for a team, zero-valued
// when none is configured.
func (l *League) PointAdjustment(team string) PointAdjustment {
	return l.pointAdjustments[game.NormalizeTeam(team)]
}
