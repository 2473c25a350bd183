// Package db tests for schema migration management.
package db

import (
	"testing"
)

// TestMigratorUp verifies all migrations apply cleanly.
func TestMigratorUp(t *testing.T) {
	database, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer database.Close()

	m := NewMigrator(database.DB)
	if err := m.Up(); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	version, err := m.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion() failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("Expected version %d, got %d", len(migrations), version)
	}

	// All domain tables exist
	for _, table := range []string{"platforms", "sync_log", "athletes", "attempts"} {
		var name string
		err := database.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

// TestMigratorUp_idempotent verifies re-running Up is a no-op.
func TestMigratorUp_idempotent(t *testing.T) {
	database, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer database.Close()

	m := NewMigrator(database.DB)
	if err := m.Up(); err != nil {
		t.Fatalf("First Up() failed: %v", err)
	}
	if err := m.Up(); err != nil {
		t.Fatalf("Second Up() failed: %v", err)
	}

	applied, err := m.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations() failed: %v", err)
	}
	if len(applied) != len(migrations) {
		t.Errorf("Expected %d applied migrations, got %d", len(migrations), len(applied))
	}
	for _, mig := range applied {
		if len(mig.Checksum) != 64 {
			t.Errorf("Migration %d has malformed checksum %q", mig.Version, mig.Checksum)
		}
	}
}

// TestMigratorChecksumMismatch verifies edited history is refused.
func TestMigratorChecksumMismatch(t *testing.T) {
	database, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer database.Close()

	m := NewMigrator(database.DB)
	if err := m.Up(); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	// Corrupt the recorded checksum of version 1
	if _, err := database.Exec(
		"UPDATE schema_migrations SET checksum = ? WHERE version = 1",
		"0000000000000000000000000000000000000000000000000000000000000000",
	); err != nil {
		t.Fatalf("Failed to corrupt checksum: %v", err)
	}

	if err := m.Up(); err == nil {
		t.Error("Up() should refuse to run over edited history")
	}
}
