// Package models provides data model definitions for the competition engine.
package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// UUID is a wrapper around string for UUID type safety.
type UUID string

// Value implements driver.Valuer for UUID.
func (u UUID) Value() (driver.Value, error) {
	return string(u), nil
}

// Scan implements sql.Scanner for UUID.
func (u *UUID) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*u = ""
	case string:
		*u = UUID(v)
	case []byte:
		*u = UUID(v)
	default:
		return fmt.Errorf("cannot scan %T into UUID", value)
	}
	return nil
}

// String returns the string representation of the UUID.
func (u UUID) String() string {
	return string(u)
}

// Platform represents one physical scoring station running part of a
// competition independently.
type Platform struct {
	ID            UUID   `db:"id" json:"id"`
	CompetitionID UUID   `db:"competition_id" json:"competition_id"`
	Name          string `db:"name" json:"name"`
	Location      string `db:"location" json:"location,omitempty"`
	Active        bool   `db:"active" json:"active"`
	CreatedAt     int64  `db:"created_at" json:"created_at"`
}

// TableName returns the table name for Platform.
func (Platform) TableName() string {
	return "platforms"
}

// CreatedAtTime returns the CreatedAt as time.Time.
func (p *Platform) CreatedAtTime() time.Time {
	return time.UnixMilli(p.CreatedAt)
}
