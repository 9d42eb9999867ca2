package activity

import (
	"sort"

	"activityScope/internal/model"
)

// Merge combines event arrays from parallel queries or sources. Records
// are keyed by upstream event id with first occurrence winning, sorted by
// ledger descending (ties keep input order), and truncated to limit.
// Merging is idempotent: merging a merged result with its inputs changes
// nothing. A limit <= 0 means no truncation.
func Merge(limit int, groups ...[]model.ActivityEvent) []model.ActivityEvent {
	seen := make(map[string]struct{})
	merged := make([]model.ActivityEvent, 0)

	for _, group := range groups {
		for _, ev := range group {
			if _, ok := seen[ev.ID]; ok {
				continue
			}
			seen[ev.ID] = struct{}{}
			merged = append(merged, ev)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Ledger > merged[j].Ledger
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
