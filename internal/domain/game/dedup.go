package game

import "strings"

// DedupByID keeps the first occurrence of every non-empty id. Records
// without an id are always kept: the absence of an id alone never makes two
// records equal. The pass is order-preserving and idempotent.
func DedupByID(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		id := strings.TrimSpace(r.ID)
		if id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}
