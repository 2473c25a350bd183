// Package conflict provides unit tests for conflict resolution.
package conflict

import (
	"testing"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
)

// TestParseStrategy tests strategy parsing from configuration strings.
func TestParseStrategy(t *testing.T) {
	cases := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"latest", StrategyLatest, false},
		{"source_priority", StrategySourcePriority, false},
		{"manual", StrategyManual, false},
		{"newest", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseStrategy(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParseStrategy(%q) should fail", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategy(%q) failed: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseStrategy(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

// TestResolveSourcePriority verifies remote always wins as source of truth.
func TestResolveSourcePriority(t *testing.T) {
	resolver := NewResolver(StrategySourcePriority)

	local := &models.Attempt{ID: "local", Timestamp: 2000}
	remote := &models.Attempt{ID: "remote", Timestamp: 1000} // older, still wins

	outcome := resolver.Resolve(local, remote)
	if !outcome.Decided {
		t.Fatal("source_priority must always decide")
	}
	if outcome.Winner != remote {
		t.Error("Remote version should win under source_priority")
	}
	if outcome.Loser != local {
		t.Error("Local version should lose under source_priority")
	}
}

// TestResolveLatest verifies the newer timestamp wins.
func TestResolveLatest(t *testing.T) {
	resolver := NewResolver(StrategyLatest)

	older := &models.Attempt{ID: "older", Timestamp: 1000}
	newer := &models.Attempt{ID: "newer", Timestamp: 2000}

	// Remote newer: remote wins
	outcome := resolver.Resolve(older, newer)
	if !outcome.Decided || outcome.Winner != newer {
		t.Error("Newer remote version should win under latest")
	}

	// Local newer: local wins
	outcome = resolver.Resolve(newer, older)
	if !outcome.Decided || outcome.Winner != newer {
		t.Error("Newer local version should win under latest")
	}
}

// TestResolveLatestTie verifies the documented tie default: local wins.
func TestResolveLatestTie(t *testing.T) {
	resolver := NewResolver(StrategyLatest)

	local := &models.Attempt{ID: "local", Timestamp: 1500}
	remote := &models.Attempt{ID: "remote", Timestamp: 1500}

	outcome := resolver.Resolve(local, remote)
	if !outcome.Decided {
		t.Fatal("latest must decide on a tie")
	}
	if outcome.Winner != local {
		t.Error("Exact timestamp tie should keep the local version")
	}
}

// TestResolveLatestAthleteFallback verifies updated_at drives athlete
// comparison, with created_at as fallback.
func TestResolveLatestAthleteFallback(t *testing.T) {
	resolver := NewResolver(StrategyLatest)

	local := &models.Athlete{ID: "a-local", CreatedAt: 1000} // never edited
	remote := &models.Athlete{ID: "a-remote", CreatedAt: 500, UpdatedAt: 3000}

	outcome := resolver.Resolve(local, remote)
	if outcome.Winner != remote {
		t.Error("Edited remote athlete should win over never-edited local")
	}
}

// TestResolveManual verifies the resolver never guesses.
func TestResolveManual(t *testing.T) {
	resolver := NewResolver(StrategyManual)

	local := &models.Attempt{ID: "local", Timestamp: 1000}
	remote := &models.Attempt{ID: "remote", Timestamp: 2000}

	outcome := resolver.Resolve(local, remote)
	if outcome.Decided {
		t.Error("manual strategy must not decide")
	}
	if outcome.Winner != nil || outcome.Loser != nil {
		t.Error("Undecided outcome must carry no winner or loser")
	}
}

// TestPickAttemptLatest verifies bucket resolution under latest: maximum
// timestamp wins regardless of input order.
func TestPickAttemptLatest(t *testing.T) {
	resolver := NewResolver(StrategyLatest)

	a := &models.Attempt{ID: "t1", Timestamp: 1000}
	b := &models.Attempt{ID: "t2", Timestamp: 2000}

	for name, bucket := range map[string][]*models.Attempt{
		"newest last":  {a, b},
		"newest first": {b, a},
	} {
		t.Run(name, func(t *testing.T) {
			winner, ok := resolver.PickAttempt(bucket)
			if !ok {
				t.Fatal("Expected a winner")
			}
			if winner.ID != "t2" {
				t.Errorf("Expected t2 (newest) to win, got %s", winner.ID)
			}
		})
	}
}

// TestPickAttemptSourcePriority verifies the first record in input order
// wins regardless of timestamps.
func TestPickAttemptSourcePriority(t *testing.T) {
	resolver := NewResolver(StrategySourcePriority)

	first := &models.Attempt{ID: "first", Timestamp: 1000}
	second := &models.Attempt{ID: "second", Timestamp: 9000} // newer, still loses

	winner, ok := resolver.PickAttempt([]*models.Attempt{first, second})
	if !ok {
		t.Fatal("Expected a winner")
	}
	if winner.ID != "first" {
		t.Errorf("Expected first-in-order to win, got %s", winner.ID)
	}
}

// TestPickAttemptManual verifies contested slots stay empty under manual.
func TestPickAttemptManual(t *testing.T) {
	resolver := NewResolver(StrategyManual)

	a := &models.Attempt{ID: "a", Timestamp: 1000}
	b := &models.Attempt{ID: "b", Timestamp: 2000}

	if _, ok := resolver.PickAttempt([]*models.Attempt{a, b}); ok {
		t.Error("manual strategy must not pick a winner from a contested slot")
	}

	// An uncontested slot is never a conflict
	winner, ok := resolver.PickAttempt([]*models.Attempt{a})
	if !ok || winner.ID != "a" {
		t.Error("A single record should always win, even under manual")
	}
}

// TestPickAttemptEmpty verifies the empty bucket case.
func TestPickAttemptEmpty(t *testing.T) {
	resolver := NewResolver(StrategyLatest)
	if _, ok := resolver.PickAttempt(nil); ok {
		t.Error("Empty bucket should yield no winner")
	}
}
