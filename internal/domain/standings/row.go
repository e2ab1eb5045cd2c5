package standings

import "sort"

// Row is one standings-table line for a roster entry. Rows are recomputed
// from scratch every aggregation run and never mutated incrementally.
type Row struct {
	Position     int    `json:"position"`
	Team         string `json:"team"`
	Player       string `json:"player"`
	Scheduled    int    `json:"scheduled"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Remaining    int    `json:"remaining"`
	Points       int    `json:"points"`
	PointsBase   int    `json:"points_base"`
	PointsExtra  int    `json:"points_extra"`
	PointsReason string `json:"points_reason,omitempty"`
}

// Rank orders rows by points descending, then wins descending, then losses
// ascending. The comparator alone is not total, so the sort must be stable:
// remaining ties keep the caller's (roster-declared) order. Positions are
// assigned 1..n afterwards.
func Rank(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Losses < b.Losses
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
}
