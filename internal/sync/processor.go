package sync

import (
	"context"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
)

// Deliverer pushes one decoded sync entry to its target platform and reports
// success. Implementations may be backed by HTTP, a message queue or a
// direct socket push; the processor only cares about the boolean outcome.
type Deliverer func(ctx context.Context, entry *models.SyncLogEntry, data *SyncData) bool

// ProcessResult reports the outcome of one drain pass.
type ProcessResult struct {
	Processed int
	Failed    int

	// Delivered lists the ids whose synced flag flipped, in delivery order.
	// The caller persists these flips.
	Delivered []models.UUID
}

// ProcessOptions tunes a drain pass.
type ProcessOptions struct {
	// DeliverTimeout bounds each delivery call. Zero means no bound.
	// A timed-out delivery counts as failed, never as processed.
	DeliverTimeout time.Duration
}

// ProcessPending drains unsynced entries through the delivery callback,
// synchronously and in input order. Already-synced entries are skipped.
// An entry whose payload fails to decode counts as failed and keeps its
// unsynced flag, so an external retry can attempt it again; the processor
// itself never retries.
func ProcessPending(ctx context.Context, entries []*models.SyncLogEntry, deliver Deliverer, opts ProcessOptions) ProcessResult {
	var result ProcessResult

	for _, entry := range entries {
		if entry.Synced {
			continue
		}

		data, err := DecodeSyncData(entry.Data)
		if err != nil {
			logging.Warn("Undecodable sync payload", map[string]interface{}{
				"entry_id":  string(entry.ID),
				"sync_type": string(entry.SyncType),
				"error":     err.Error(),
			})
			result.Failed++
			continue
		}

		if deliverOne(ctx, entry, data, deliver, opts.DeliverTimeout) {
			entry.Synced = true
			result.Processed++
			result.Delivered = append(result.Delivered, entry.ID)
		} else {
			result.Failed++
		}
	}

	return result
}

// deliverOne runs a single delivery, bounded by timeout when one is set.
func deliverOne(ctx context.Context, entry *models.SyncLogEntry, data *SyncData, deliver Deliverer, timeout time.Duration) bool {
	if timeout <= 0 {
		return deliver(ctx, entry, data)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		done <- deliver(callCtx, entry, data)
	}()

	select {
	case ok := <-done:
		return ok
	case <-callCtx.Done():
		logging.Warn("Sync delivery timed out", map[string]interface{}{
			"entry_id": string(entry.ID),
			"target":   string(entry.TargetPlatformID),
			"timeout":  timeout.String(),
		})
		return false
	}
}
