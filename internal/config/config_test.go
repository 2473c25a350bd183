package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if !cfg.Sync.AutoSync {
		t.Error("Default auto_sync should be enabled")
	}
	if cfg.Sync.SyncIntervalMs != 5000 {
		t.Errorf("Default sync_interval_ms = %d, want 5000", cfg.Sync.SyncIntervalMs)
	}
	if cfg.Sync.ConflictResolution != StrategyLatest {
		t.Errorf("Default conflict_resolution = %s, want latest", cfg.Sync.ConflictResolution)
	}
	if !cfg.Sync.SyncAttempts || !cfg.Sync.SyncDeclarations {
		t.Error("Default sync_attempts and sync_declarations should be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestSyncInterval(t *testing.T) {
	s := SyncConfig{SyncIntervalMs: 1500}
	if got := s.SyncInterval(); got != 1500*time.Millisecond {
		t.Errorf("SyncInterval() = %v, want 1.5s", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file should fall back to defaults: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9200
sync:
  auto_sync: false
  sync_interval_ms: 2000
  conflict_resolution: source_priority
  sync_attempts: true
  sync_declarations: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, want 9200", cfg.Server.Port)
	}
	if cfg.Sync.AutoSync {
		t.Error("auto_sync should be false")
	}
	if cfg.Sync.ConflictResolution != StrategySourcePriority {
		t.Errorf("conflict_resolution = %s", cfg.Sync.ConflictResolution)
	}
	if cfg.Sync.SyncDeclarations {
		t.Error("sync_declarations should be false")
	}
}

func TestLoadInvalidStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "sync:\n  conflict_resolution: newest\n  sync_interval_ms: 1000\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load should reject an unknown conflict_resolution")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PLM_PORT", "9300")
	t.Setenv("PLM_AUTO_SYNC", "false")
	t.Setenv("PLM_CONFLICT_RESOLUTION", StrategyManual)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("port = %d, want 9300", cfg.Server.Port)
	}
	if cfg.Sync.AutoSync {
		t.Error("auto_sync should be overridden to false")
	}
	if cfg.Sync.ConflictResolution != StrategyManual {
		t.Errorf("conflict_resolution = %s, want manual", cfg.Sync.ConflictResolution)
	}
}
