package models

import (
	"fmt"
	"time"
)

// LiftType identifies one of the three competition lifts.
type LiftType string

const (
	LiftSquat    LiftType = "squat"
	LiftBench    LiftType = "bench"
	LiftDeadlift LiftType = "deadlift"
)

// LiftTypes lists all lifts in competition order.
var LiftTypes = []LiftType{LiftSquat, LiftBench, LiftDeadlift}

// Valid reports whether the lift type is one of the three known lifts.
func (l LiftType) Valid() bool {
	switch l {
	case LiftSquat, LiftBench, LiftDeadlift:
		return true
	}
	return false
}

// Attempt represents a single refereed attempt produced by a scoring station.
// A platform may later emit a replacement record for the same
// (athlete, lift, attempt number) slot; the merge layer resolves those.
type Attempt struct {
	ID            UUID     `db:"id" json:"id"`
	AthleteID     UUID     `db:"athlete_id" json:"athlete_id"`
	PlatformID    UUID     `db:"platform_id" json:"platform_id,omitempty"`
	LiftType      LiftType `db:"lift_type" json:"lift_type"`
	AttemptNumber int      `db:"attempt_number" json:"attempt_number"`
	WeightKg      float64  `db:"weight_kg" json:"weight_kg"`
	Successful    bool     `db:"successful" json:"successful"`
	Timestamp     int64    `db:"timestamp" json:"timestamp"` // Unix milliseconds
}

// TableName returns the table name for Attempt.
func (Attempt) TableName() string {
	return "attempts"
}

// TimestampTime returns the attempt timestamp as time.Time.
func (a *Attempt) TimestampTime() time.Time {
	return time.UnixMilli(a.Timestamp)
}

// VersionTimestamp returns the timestamp conflict resolution compares.
func (a *Attempt) VersionTimestamp() int64 {
	return a.Timestamp
}

// Validate checks the domain constraints on an attempt record.
func (a *Attempt) Validate() error {
	if a.AthleteID == "" {
		return fmt.Errorf("attempt %s: missing athlete_id", a.ID)
	}
	if !a.LiftType.Valid() {
		return fmt.Errorf("attempt %s: unknown lift_type %q", a.ID, a.LiftType)
	}
	if a.AttemptNumber < 1 || a.AttemptNumber > 3 {
		return fmt.Errorf("attempt %s: attempt_number %d out of range 1..3", a.ID, a.AttemptNumber)
	}
	if a.WeightKg <= 0 {
		return fmt.Errorf("attempt %s: weight_kg must be positive, got %g", a.ID, a.WeightKg)
	}
	return nil
}
