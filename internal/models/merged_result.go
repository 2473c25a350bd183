package models

// MergedResult is the per-athlete outcome of merging attempt streams from
// every platform of a competition. It is derived data, recomputed on demand;
// the athlete and attempt tables stay the system of record.
type MergedResult struct {
	AthleteID    UUID   `json:"athlete_id"`
	AthleteName  string `json:"athlete_name"`
	Gender       string `json:"gender"`
	WeightClass  string `json:"weight_class"`
	Division     string `json:"division"`
	AgeCategory  string `json:"age_category"`
	PlatformID   UUID   `json:"platform_id,omitempty"`
	PlatformName string `json:"platform_name,omitempty"`

	SquatAttempts    []Attempt `json:"squat_attempts"`
	BenchAttempts    []Attempt `json:"bench_attempts"`
	DeadliftAttempts []Attempt `json:"deadlift_attempts"`

	BestSquat    float64 `json:"best_squat"`
	BestBench    float64 `json:"best_bench"`
	BestDeadlift float64 `json:"best_deadlift"`
	Total        float64 `json:"total"`

	HasConflictingData bool  `json:"has_conflicting_data"`
	LastUpdated        int64 `json:"last_updated"` // Unix milliseconds

	// Rank is assigned by the ranking assembler; zero means unranked.
	Rank int `json:"rank,omitempty"`
}

// Attempts returns all winning attempts of the result, in lift order.
func (r *MergedResult) Attempts() []Attempt {
	all := make([]Attempt, 0, len(r.SquatAttempts)+len(r.BenchAttempts)+len(r.DeadliftAttempts))
	all = append(all, r.SquatAttempts...)
	all = append(all, r.BenchAttempts...)
	all = append(all, r.DeadliftAttempts...)
	return all
}
