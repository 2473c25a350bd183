// Package db provides database schema migration management.
package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// Migration represents a database schema migration.
type Migration struct {
	Version     int
	AppliedAt   time.Time
	Description string
	Checksum    string
}

// migrationStep pairs a migration's metadata with its SQL.
type migrationStep struct {
	Version     int
	Description string
	SQL         string
}

// migrations is the ordered schema history. Append only; never edit an
// applied step, the checksum check will refuse to run.
var migrations = []migrationStep{
	{
		Version:     1,
		Description: "platforms and sync log",
		SQL: `
		CREATE TABLE IF NOT EXISTS platforms (
			id TEXT PRIMARY KEY,
			competition_id TEXT NOT NULL,
			name TEXT NOT NULL CHECK(length(name) > 0),
			location TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_platforms_competition ON platforms(competition_id);

		CREATE TABLE IF NOT EXISTS sync_log (
			id TEXT PRIMARY KEY,
			competition_id TEXT NOT NULL,
			source_platform_id TEXT NOT NULL,
			target_platform_id TEXT,
			sync_type TEXT NOT NULL CHECK(sync_type IN ('athlete_update','attempt_result','order_change')),
			data TEXT NOT NULL,
			synced INTEGER NOT NULL DEFAULT 0,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sync_log_pending ON sync_log(competition_id, synced);
		CREATE INDEX IF NOT EXISTS idx_sync_log_target ON sync_log(target_platform_id);
		`,
	},
	{
		Version:     2,
		Description: "athletes and attempts",
		SQL: `
		CREATE TABLE IF NOT EXISTS athletes (
			id TEXT PRIMARY KEY,
			competition_id TEXT NOT NULL,
			platform_id TEXT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			gender TEXT NOT NULL CHECK(gender IN ('M','F')),
			weight_class TEXT NOT NULL,
			division TEXT NOT NULL,
			age_category TEXT NOT NULL,
			lot_number INTEGER NOT NULL DEFAULT 0,
			bodyweight REAL NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_athletes_competition ON athletes(competition_id);

		CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			athlete_id TEXT NOT NULL,
			platform_id TEXT,
			lift_type TEXT NOT NULL CHECK(lift_type IN ('squat','bench','deadlift')),
			attempt_number INTEGER NOT NULL CHECK(attempt_number BETWEEN 1 AND 3),
			weight_kg REAL NOT NULL CHECK(weight_kg > 0),
			successful INTEGER NOT NULL,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_athlete ON attempts(athlete_id);
		CREATE INDEX IF NOT EXISTS idx_attempts_slot ON attempts(athlete_id, lift_type, attempt_number);
		`,
	},
}

// Migrator handles database schema migrations.
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new Migrator instance.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (m *Migrator) Initialize() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY CHECK(version > 0),
		applied_at INTEGER NOT NULL CHECK(applied_at > 0),
		description TEXT NOT NULL CHECK(length(description) > 0),
		checksum TEXT NOT NULL CHECK(length(checksum) = 64)
	);`
	_, err := m.db.Exec(query)
	return err
}

// CurrentVersion returns the current schema version.
func (m *Migrator) CurrentVersion() (int, error) {
	var version int
	err := m.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

// AppliedMigrations returns all applied migrations in version order.
func (m *Migrator) AppliedMigrations() ([]Migration, error) {
	rows, err := m.db.Query("SELECT version, applied_at, description, checksum FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applied []Migration
	for rows.Next() {
		var mig Migration
		var appliedAt int64
		if err := rows.Scan(&mig.Version, &appliedAt, &mig.Description, &mig.Checksum); err != nil {
			return nil, err
		}
		mig.AppliedAt = time.Unix(appliedAt, 0)
		applied = append(applied, mig)
	}
	return applied, rows.Err()
}

// Up applies all pending migrations. Applied steps are verified against
// their recorded checksum before any new step runs.
func (m *Migrator) Up() error {
	if err := m.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize migrations table: %w", err)
	}

	applied, err := m.AppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	appliedByVersion := make(map[int]Migration, len(applied))
	for _, mig := range applied {
		appliedByVersion[mig.Version] = mig
	}

	steps := make([]migrationStep, len(migrations))
	copy(steps, migrations)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Version < steps[j].Version })

	for _, step := range steps {
		sum := checksum(step.SQL)

		if prev, ok := appliedByVersion[step.Version]; ok {
			if prev.Checksum != sum {
				return fmt.Errorf("migration %d checksum mismatch: schema history was edited", step.Version)
			}
			continue
		}

		tx, err := m.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", step.Version, err)
		}
		if _, err := tx.Exec(step.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", step.Version, step.Description, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at, description, checksum) VALUES (?, ?, ?, ?)",
			step.Version, time.Now().Unix(), step.Description, sum,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", step.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", step.Version, err)
		}
	}

	return nil
}

// checksum returns the hex SHA-256 of a migration's SQL.
func checksum(sqlText string) string {
	sum := sha256.Sum256([]byte(sqlText))
	return hex.EncodeToString(sum[:])
}
