// Package merge combines per-platform attempt and athlete data into one
// authoritative result set per competition.
//
// Merge is a pure function over its inputs: re-running it over the same
// snapshot returns identical output, and concurrent calls share no state.
// Conflicts between platforms are expected, not prevented; they are
// resolved here, after the fact, by the configured strategy.
package merge

import (
	"fmt"
	"sort"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/sync/conflict"
)

// Diagnostic reports a record dropped during merge. A bad record never
// aborts merging the rest of the competition.
type Diagnostic struct {
	RecordID models.UUID `json:"record_id"`
	Reason   string      `json:"reason"`
}

// slotCount is the number of attempts per lift.
const slotCount = 3

// Merge produces one MergedResult per athlete from the competition-wide
// attempt stream. Attempts are bucketed per (lift, attempt number); a bucket
// holding records from more than one write marks the athlete as having
// conflicting data, and the strategy picks the bucket's winner. Under the
// manual strategy a contested bucket contributes no winner at all.
//
// The returned results are sorted by total descending. This order is
// advisory; authoritative ranks come from Rank.
func Merge(athletes []*models.Athlete, attempts []*models.Attempt, platforms []*models.Platform, strategy conflict.Strategy) ([]*models.MergedResult, []Diagnostic) {
	resolver := conflict.NewResolver(strategy)

	platformNames := make(map[models.UUID]string, len(platforms))
	for _, p := range platforms {
		platformNames[p.ID] = p.Name
	}

	var diagnostics []Diagnostic
	byAthlete := make(map[models.UUID][]*models.Attempt)
	for _, at := range attempts {
		if err := at.Validate(); err != nil {
			diagnostics = append(diagnostics, Diagnostic{RecordID: at.ID, Reason: err.Error()})
			continue
		}
		byAthlete[at.AthleteID] = append(byAthlete[at.AthleteID], at)
	}

	results := make([]*models.MergedResult, 0, len(athletes))
	for _, athlete := range athletes {
		results = append(results, mergeAthlete(athlete, byAthlete[athlete.ID], platformNames, resolver))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total > results[j].Total
	})

	return results, diagnostics
}

// mergeAthlete builds one athlete's merged result from their attempts.
func mergeAthlete(athlete *models.Athlete, attempts []*models.Attempt, platformNames map[models.UUID]string, resolver *conflict.Resolver) *models.MergedResult {
	result := &models.MergedResult{
		AthleteID:   athlete.ID,
		AthleteName: athlete.FullName(),
		Gender:      athlete.Gender,
		WeightClass: athlete.WeightClass,
		Division:    athlete.Division,
		AgeCategory: athlete.AgeCategory,
		PlatformID:  athlete.PlatformID,
		LastUpdated: athlete.CreatedAt,
	}
	// A platform deleted from the registry leaves the name unresolved;
	// that is a display gap, not an error.
	if name, ok := platformNames[athlete.PlatformID]; ok {
		result.PlatformName = name
	}

	for _, lift := range models.LiftTypes {
		winners, contested := mergeLift(attempts, lift, resolver)
		if contested {
			result.HasConflictingData = true
		}

		switch lift {
		case models.LiftSquat:
			result.SquatAttempts = winners
			result.BestSquat = bestAttempt(winners)
		case models.LiftBench:
			result.BenchAttempts = winners
			result.BestBench = bestAttempt(winners)
		case models.LiftDeadlift:
			result.DeadliftAttempts = winners
			result.BestDeadlift = bestAttempt(winners)
		}

		for _, w := range winners {
			if w.Timestamp > result.LastUpdated {
				result.LastUpdated = w.Timestamp
			}
		}
	}

	result.Total = result.BestSquat + result.BestBench + result.BestDeadlift
	return result
}

// mergeLift buckets one lift's attempts by attempt number and resolves each
// contested bucket. Winners come back sorted by attempt number; contested
// reports whether any bucket held more than one record before resolution.
func mergeLift(attempts []*models.Attempt, lift models.LiftType, resolver *conflict.Resolver) ([]models.Attempt, bool) {
	var buckets [slotCount][]*models.Attempt
	for _, at := range attempts {
		if at.LiftType != lift {
			continue
		}
		idx := at.AttemptNumber - 1
		buckets[idx] = append(buckets[idx], at)
	}

	winners := make([]models.Attempt, 0, slotCount)
	contested := false
	for num := 0; num < slotCount; num++ {
		bucket := buckets[num]
		if len(bucket) > 1 {
			contested = true
		}
		if winner, ok := resolver.PickAttempt(bucket); ok {
			winners = append(winners, *winner)
		}
	}

	// Buckets are visited in attempt-number order, so winners are sorted.
	return winners, contested
}

// bestAttempt returns the maximum weight among successful attempts, 0 if none.
func bestAttempt(attempts []models.Attempt) float64 {
	best := 0.0
	for _, at := range attempts {
		if at.Successful && at.WeightKg > best {
			best = at.WeightKg
		}
	}
	return best
}

// DetectConflicts filters merged results to athletes whose data conflicted
// across platforms, for surfacing to a meet director.
func DetectConflicts(results []*models.MergedResult) []*models.MergedResult {
	var conflicted []*models.MergedResult
	for _, r := range results {
		if r.HasConflictingData {
			conflicted = append(conflicted, r)
		}
	}
	return conflicted
}

// HasMultiplePlatformAttempts reports whether an athlete has attempts tagged
// with more than one platform, the telltale of a double-entered athlete.
func HasMultiplePlatformAttempts(athleteID models.UUID, attempts []*models.Attempt) bool {
	seen := make(map[models.UUID]struct{})
	for _, at := range attempts {
		if at.AthleteID != athleteID || at.PlatformID == "" {
			continue
		}
		seen[at.PlatformID] = struct{}{}
	}
	return len(seen) > 1
}

// ApplyResolutions filters the attempt stream through recorded human
// decisions: for each resolved slot, every competing record except the
// chosen winner is dropped. Feeding the filtered stream back into Merge
// resumes after manual conflict resolution.
func ApplyResolutions(attempts []*models.Attempt, resolutions []conflict.Resolution) []*models.Attempt {
	if len(resolutions) == 0 {
		return attempts
	}

	winnerBySlot := make(map[string]models.UUID, len(resolutions))
	for _, res := range resolutions {
		key := slotKey(res.AthleteID, res.LiftType, res.AttemptNumber)
		winnerBySlot[key] = res.WinnerID
	}

	filtered := make([]*models.Attempt, 0, len(attempts))
	for _, at := range attempts {
		key := slotKey(at.AthleteID, at.LiftType, at.AttemptNumber)
		if winner, ok := winnerBySlot[key]; ok && at.ID != winner {
			continue
		}
		filtered = append(filtered, at)
	}
	return filtered
}

func slotKey(athleteID models.UUID, lift models.LiftType, attemptNumber int) string {
	return fmt.Sprintf("%s/%s/%d", athleteID, lift, attemptNumber)
}
