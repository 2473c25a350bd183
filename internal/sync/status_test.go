package sync

import (
	"testing"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
)

// TestCheckStatus verifies per-platform pending counts and last-sync
// timestamps over a mixed log.
func TestCheckStatus(t *testing.T) {
	platforms := []*models.Platform{
		{ID: "platform-a", Name: "Platform A", Active: true},
		{ID: "platform-b", Name: "Platform B", Active: true},
		{ID: "platform-c", Name: "Platform C", Active: true},
	}
	entries := []*models.SyncLogEntry{
		{ID: "e1", SourcePlatformID: "platform-a", TargetPlatformID: "platform-b", Synced: true, Timestamp: 1000},
		{ID: "e2", SourcePlatformID: "platform-a", TargetPlatformID: "platform-b", Synced: true, Timestamp: 3000},
		{ID: "e3", SourcePlatformID: "platform-b", TargetPlatformID: "platform-a", Synced: false, Timestamp: 4000},
	}

	statuses := CheckStatus(platforms, entries)
	if len(statuses) != 3 {
		t.Fatalf("Expected 3 statuses, got %d", len(statuses))
	}

	byID := make(map[models.UUID]PlatformStatus, len(statuses))
	for _, s := range statuses {
		byID[s.PlatformID] = s
	}

	a := byID["platform-a"]
	if a.PendingSyncs != 1 || a.IsSynced {
		t.Errorf("platform-a should have 1 pending entry, got %+v", a)
	}
	if a.LastSync != 3000 {
		t.Errorf("platform-a last sync should be 3000, got %d", a.LastSync)
	}

	b := byID["platform-b"]
	if b.PendingSyncs != 1 || b.IsSynced {
		t.Errorf("platform-b should have 1 pending entry, got %+v", b)
	}

	// platform-c never took part in any sync
	c := byID["platform-c"]
	if c.PendingSyncs != 0 || !c.IsSynced || c.LastSync != 0 {
		t.Errorf("platform-c should be idle and synced, got %+v", c)
	}
}

// TestCheckStatusNoEntries verifies an empty log reports every platform
// as synced with nothing pending.
func TestCheckStatusNoEntries(t *testing.T) {
	platforms := []*models.Platform{{ID: "platform-a", Name: "Platform A"}}

	statuses := CheckStatus(platforms, nil)
	if len(statuses) != 1 {
		t.Fatalf("Expected 1 status, got %d", len(statuses))
	}
	if !statuses[0].IsSynced || statuses[0].PendingSyncs != 0 {
		t.Errorf("Expected synced status, got %+v", statuses[0])
	}
}
