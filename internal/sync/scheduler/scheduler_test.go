package scheduler

import (
	"context"
	"encoding/json"
	stdsync "sync"
	"testing"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	syncpkg "github.com/mateo-brl/powerlifting-manager-sub001/internal/sync"
)

// fakeStore is an in-memory Store for scheduler tests.
type fakeStore struct {
	mu      stdsync.Mutex
	pending []*models.SyncLogEntry
	marked  []string
}

func (f *fakeStore) ListPendingSyncLogs(competitionID string) ([]*models.SyncLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SyncLogEntry
	for _, e := range f.pending {
		if !e.Synced {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSynced(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeStore) markedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.marked...)
}

func testEntry(t *testing.T, id models.UUID) *models.SyncLogEntry {
	t.Helper()
	data, err := (&syncpkg.SyncData{
		EntityType: syncpkg.EntityAttempt,
		EntityID:   "attempt-" + string(id),
		Action:     syncpkg.ActionCreate,
		Payload:    json.RawMessage(`{"weight_kg":120}`),
	}).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return &models.SyncLogEntry{
		ID:               id,
		CompetitionID:    "comp-1",
		SourcePlatformID: "platform-a",
		TargetPlatformID: "platform-b",
		SyncType:         models.SyncTypeAttemptResult,
		Data:             data,
		Timestamp:        1000,
	}
}

// TestDrainOnce verifies a single pass delivers pending entries and persists
// the synced flips through the store.
func TestDrainOnce(t *testing.T) {
	store := &fakeStore{pending: []*models.SyncLogEntry{
		testEntry(t, "entry-1"),
		testEntry(t, "entry-2"),
	}}

	deliver := func(ctx context.Context, entry *models.SyncLogEntry, data *syncpkg.SyncData) bool {
		return true
	}

	sched := New(store, deliver, Config{CompetitionID: "comp-1"})
	result, err := sched.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("DrainOnce failed: %v", err)
	}
	if result.Processed != 2 || result.Failed != 0 {
		t.Errorf("Expected {processed:2 failed:0}, got {processed:%d failed:%d}", result.Processed, result.Failed)
	}

	marked := store.markedIDs()
	if len(marked) != 2 || marked[0] != "entry-1" || marked[1] != "entry-2" {
		t.Errorf("Expected flips persisted in order, got %v", marked)
	}

	when, stats := sched.LastDrain()
	if when.IsZero() {
		t.Error("LastDrain time should be recorded")
	}
	if stats.Processed != 2 {
		t.Errorf("Expected last stats to report 2 processed, got %d", stats.Processed)
	}
}

// TestDrainOnceFailedEntryStaysPending verifies failed deliveries are not
// marked and surface again on the next pass.
func TestDrainOnceFailedEntryStaysPending(t *testing.T) {
	store := &fakeStore{pending: []*models.SyncLogEntry{testEntry(t, "entry-1")}}

	attempts := 0
	deliver := func(ctx context.Context, entry *models.SyncLogEntry, data *syncpkg.SyncData) bool {
		attempts++
		return attempts > 1 // fail first, succeed second
	}

	sched := New(store, deliver, Config{CompetitionID: "comp-1"})

	result, err := sched.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("DrainOnce failed: %v", err)
	}
	if result.Failed != 1 || result.Processed != 0 {
		t.Errorf("First pass should fail the entry, got %+v", result)
	}
	if len(store.markedIDs()) != 0 {
		t.Error("No flip should be persisted on failure")
	}

	result, err = sched.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("DrainOnce failed: %v", err)
	}
	if result.Processed != 1 {
		t.Errorf("Second pass should deliver the entry, got %+v", result)
	}
}

// TestStartStop verifies lifecycle transitions and their idempotence.
func TestStartStop(t *testing.T) {
	store := &fakeStore{}
	deliver := func(ctx context.Context, entry *models.SyncLogEntry, data *syncpkg.SyncData) bool {
		return true
	}

	sched := New(store, deliver, Config{CompetitionID: "comp-1", Interval: 10 * time.Millisecond})
	if sched.IsRunning() {
		t.Error("New scheduler should not be running")
	}

	ctx := context.Background()
	sched.Start(ctx)
	if !sched.IsRunning() {
		t.Error("Scheduler should be running after Start")
	}
	sched.Start(ctx) // second Start is a no-op

	sched.Stop()
	if sched.IsRunning() {
		t.Error("Scheduler should not be running after Stop")
	}
	sched.Stop() // second Stop is a no-op
}

// TestBackgroundDrain verifies the loop picks up pending entries on its own.
func TestBackgroundDrain(t *testing.T) {
	store := &fakeStore{pending: []*models.SyncLogEntry{testEntry(t, "entry-1")}}

	delivered := make(chan models.UUID, 1)
	deliver := func(ctx context.Context, entry *models.SyncLogEntry, data *syncpkg.SyncData) bool {
		select {
		case delivered <- entry.ID:
		default:
		}
		return true
	}

	sched := New(store, deliver, Config{CompetitionID: "comp-1", Interval: 10 * time.Millisecond})
	sched.Start(context.Background())
	defer sched.Stop()

	select {
	case id := <-delivered:
		if id != "entry-1" {
			t.Errorf("Expected entry-1 delivered, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Background loop never drained the pending entry")
	}
}

// TestOfflineGate verifies an offline scheduler keeps ticking without
// draining, then catches up when back online.
func TestOfflineGate(t *testing.T) {
	store := &fakeStore{pending: []*models.SyncLogEntry{testEntry(t, "entry-1")}}

	delivered := make(chan models.UUID, 1)
	deliver := func(ctx context.Context, entry *models.SyncLogEntry, data *syncpkg.SyncData) bool {
		select {
		case delivered <- entry.ID:
		default:
		}
		return true
	}

	sched := New(store, deliver, Config{CompetitionID: "comp-1", Interval: 10 * time.Millisecond})
	sched.SetOnline(false)
	sched.Start(context.Background())
	defer sched.Stop()

	select {
	case <-delivered:
		t.Fatal("Offline scheduler must not drain")
	case <-time.After(60 * time.Millisecond):
	}

	sched.SetOnline(true)
	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduler never caught up after going online")
	}
}
