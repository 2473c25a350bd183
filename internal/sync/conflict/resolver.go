// Package conflict provides conflict resolution for multi-platform
// synchronization. A conflict is two or more platform-sourced records
// claiming the same logical fact with different content.
package conflict

import (
	"fmt"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/config"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
)

// Strategy defines how competing versions of the same fact are resolved.
type Strategy string

const (
	// StrategyLatest picks the version with the newer timestamp.
	StrategyLatest Strategy = "latest"
	// StrategySourcePriority always trusts the designated source of truth.
	StrategySourcePriority Strategy = "source_priority"
	// StrategyManual never guesses; a human has to decide.
	StrategyManual Strategy = "manual"
)

// ParseStrategy validates a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case config.StrategyLatest:
		return StrategyLatest, nil
	case config.StrategySourcePriority:
		return StrategySourcePriority, nil
	case config.StrategyManual:
		return StrategyManual, nil
	}
	return "", fmt.Errorf("unknown conflict resolution strategy %q", s)
}

// Versioned is any record carrying a comparable modification timestamp.
// Attempts expose their refereed timestamp, athletes their updated_at.
type Versioned interface {
	VersionTimestamp() int64
}

// Outcome is the result of resolving one pair of competing versions.
type Outcome struct {
	// Winner is the version to keep. Nil when Decided is false.
	Winner Versioned
	// Loser is the overwritten version. Nil when Decided is false.
	Loser Versioned
	// Decided is false under the manual strategy: the resolver signals
	// that human intervention is required instead of guessing.
	Decided  bool
	Strategy Strategy
}

// Resolver applies a fixed strategy to competing record versions.
// It is pure: no clock, no storage, only the timestamps passed in.
type Resolver struct {
	strategy Strategy
}

// NewResolver creates a Resolver with the specified strategy.
func NewResolver(strategy Strategy) *Resolver {
	return &Resolver{strategy: strategy}
}

// Strategy returns the resolver's configured strategy.
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// Resolve decides between a local and a remote version of the same fact.
//
// source_priority always returns remote: the platform acting as source of
// truth for the fact wins. latest compares timestamps and returns the newer
// version; an exact tie returns local, the stable default. manual returns
// an undecided outcome.
func (r *Resolver) Resolve(local, remote Versioned) Outcome {
	switch r.strategy {
	case StrategySourcePriority:
		return Outcome{Winner: remote, Loser: local, Decided: true, Strategy: r.strategy}

	case StrategyLatest:
		if remote.VersionTimestamp() > local.VersionTimestamp() {
			return Outcome{Winner: remote, Loser: local, Decided: true, Strategy: r.strategy}
		}
		return Outcome{Winner: local, Loser: remote, Decided: true, Strategy: r.strategy}

	default: // StrategyManual
		return Outcome{Decided: false, Strategy: r.strategy}
	}
}

// PickAttempt selects the winning attempt from a contested
// (athlete, lift, attempt number) slot during merge.
//
// Under latest, the record with the maximum timestamp wins. Under
// source_priority, the first record in input order wins: the merge reads
// records in canonical source order, so position encodes authority. Under
// manual with more than one record, no winner is picked and the slot stays
// empty; a single record is never contested.
func (r *Resolver) PickAttempt(records []*models.Attempt) (*models.Attempt, bool) {
	switch len(records) {
	case 0:
		return nil, false
	case 1:
		return records[0], true
	}

	switch r.strategy {
	case StrategyLatest:
		winner := records[0]
		for _, rec := range records[1:] {
			if rec.Timestamp > winner.Timestamp {
				winner = rec
			}
		}
		return winner, true

	case StrategySourcePriority:
		return records[0], true

	default: // StrategyManual
		return nil, false
	}
}

// Resolution records a human decision for a slot the manual strategy left
// empty. Feeding resolutions back into a merge drops every competing record
// except the chosen winner.
type Resolution struct {
	AthleteID     models.UUID     `json:"athlete_id"`
	LiftType      models.LiftType `json:"lift_type"`
	AttemptNumber int             `json:"attempt_number"`
	WinnerID      models.UUID     `json:"winner_id"`
}
