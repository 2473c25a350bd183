package models

import (
	"encoding/json"
	"time"
)

// SyncType identifies the kind of change a sync log entry propagates.
type SyncType string

const (
	SyncTypeAthleteUpdate SyncType = "athlete_update"
	SyncTypeAttemptResult SyncType = "attempt_result"
	SyncTypeOrderChange   SyncType = "order_change"
)

// SyncLogEntry is one row of the append-only cross-platform change ledger.
// Entries are immutable once created except for the Synced flag, which
// transitions false to true exactly once per successful delivery.
//
// TargetPlatformID is empty for entries whose fan-out target was not
// resolved at dispatch time.
type SyncLogEntry struct {
	ID               UUID            `db:"id" json:"id"`
	CompetitionID    UUID            `db:"competition_id" json:"competition_id"`
	SourcePlatformID UUID            `db:"source_platform_id" json:"source_platform_id"`
	TargetPlatformID UUID            `db:"target_platform_id" json:"target_platform_id,omitempty"`
	SyncType         SyncType        `db:"sync_type" json:"sync_type"`
	Data             json.RawMessage `db:"data" json:"data"`
	Synced           bool            `db:"synced" json:"synced"`
	Timestamp        int64           `db:"timestamp" json:"timestamp"` // Unix milliseconds
}

// TableName returns the table name for SyncLogEntry.
func (SyncLogEntry) TableName() string {
	return "sync_log"
}

// TimestampTime returns the entry timestamp as time.Time.
func (e *SyncLogEntry) TimestampTime() time.Time {
	return time.UnixMilli(e.Timestamp)
}
