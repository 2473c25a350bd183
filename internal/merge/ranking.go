package merge

import (
	"sort"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
)

// Filter narrows ranking to one category. Zero-value fields match everything.
type Filter struct {
	Gender      string
	WeightClass string
}

// Rank filters merged results by category, re-sorts by total descending and
// assigns dense ranks 1..N. The sort is stable: equal totals keep their
// pre-filter relative order, so the earlier array position takes the better
// rank. Ranking an already-ranked, already-sorted list reproduces the same
// ranks, which makes re-ranking after every merge safe.
//
// The input slice is not mutated; results come back as copies.
func Rank(results []*models.MergedResult, filter *Filter) []*models.MergedResult {
	ranked := make([]*models.MergedResult, 0, len(results))
	for _, r := range results {
		if filter != nil {
			if filter.Gender != "" && r.Gender != filter.Gender {
				continue
			}
			if filter.WeightClass != "" && r.WeightClass != filter.WeightClass {
				continue
			}
		}
		clone := *r
		ranked = append(ranked, &clone)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})

	for i, r := range ranked {
		r.Rank = i + 1
	}
	return ranked
}
