// Package scheduler provides background draining of pending sync log entries.
package scheduler

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	syncpkg "github.com/mateo-brl/powerlifting-manager-sub001/internal/sync"
)

// Store is the persistence surface the scheduler needs: reading pending
// entries and persisting the one-way synced flip after delivery.
type Store interface {
	ListPendingSyncLogs(competitionID string) ([]*models.SyncLogEntry, error)
	MarkSynced(id string) error
}

// Scheduler periodically drains a competition's pending sync log entries
// through a delivery callback. Retry policy lives outside: a failed entry
// simply stays pending and is picked up again on the next tick.
type Scheduler struct {
	store          Store
	deliver        syncpkg.Deliverer
	competitionID  string
	interval       time.Duration
	deliverTimeout time.Duration

	stopCh    chan struct{}
	wg        stdsync.WaitGroup
	mu        stdsync.RWMutex
	isRunning bool
	isOnline  bool
	lastDrain time.Time
	lastStats syncpkg.ProcessResult
}

// Config holds scheduler configuration.
type Config struct {
	CompetitionID  string
	Interval       time.Duration // drain period (default: 5 seconds)
	DeliverTimeout time.Duration // per-delivery bound (default: 10 seconds)
}

// New creates a Scheduler.
func New(store Store, deliver syncpkg.Deliverer, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.DeliverTimeout <= 0 {
		cfg.DeliverTimeout = 10 * time.Second
	}
	return &Scheduler{
		store:          store,
		deliver:        deliver,
		competitionID:  cfg.CompetitionID,
		interval:       cfg.Interval,
		deliverTimeout: cfg.DeliverTimeout,
		stopCh:         make(chan struct{}),
		isOnline:       true, // assume online until told otherwise
	}
}

// Start starts the background drain loop. Calling Start on a running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.drainLoop(ctx)

	logging.Info("Sync scheduler started", map[string]interface{}{
		"competition_id": s.competitionID,
		"interval":       s.interval.String(),
	})
}

// Stop stops the drain loop and waits for it to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	logging.Info("Sync scheduler stopped", map[string]interface{}{
		"competition_id": s.competitionID,
	})
}

// SetOnline toggles the online gate. While offline the loop keeps ticking
// but skips draining; entries accumulate as pending.
func (s *Scheduler) SetOnline(online bool) {
	s.mu.Lock()
	s.isOnline = online
	s.mu.Unlock()
}

// IsRunning reports whether the drain loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastDrain returns the time and stats of the most recent drain pass.
func (s *Scheduler) LastDrain() (time.Time, syncpkg.ProcessResult) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDrain, s.lastStats
}

// drainLoop ticks at the configured interval until stopped.
func (s *Scheduler) drainLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.RLock()
			online := s.isOnline
			s.mu.RUnlock()
			if !online {
				continue
			}

			if _, err := s.DrainOnce(ctx); err != nil {
				logging.Error("Sync drain pass failed", err, map[string]interface{}{
					"competition_id": s.competitionID,
				})
			}
		}
	}
}

// DrainOnce runs a single drain pass: load pending entries, deliver them in
// order, persist the synced flips. Safe to call directly, with or without
// the background loop running.
func (s *Scheduler) DrainOnce(ctx context.Context) (syncpkg.ProcessResult, error) {
	pending, err := s.store.ListPendingSyncLogs(s.competitionID)
	if err != nil {
		return syncpkg.ProcessResult{}, err
	}
	if len(pending) == 0 {
		return syncpkg.ProcessResult{}, nil
	}

	result := syncpkg.ProcessPending(ctx, pending, s.deliver, syncpkg.ProcessOptions{
		DeliverTimeout: s.deliverTimeout,
	})

	for _, id := range result.Delivered {
		if err := s.store.MarkSynced(string(id)); err != nil {
			logging.Error("Failed to persist synced flip", err, map[string]interface{}{
				"entry_id": string(id),
			})
		}
	}

	s.mu.Lock()
	s.lastDrain = time.Now()
	s.lastStats = result
	s.mu.Unlock()

	if result.Processed > 0 || result.Failed > 0 {
		logging.Info("Sync drain pass finished", map[string]interface{}{
			"competition_id": s.competitionID,
			"processed":      result.Processed,
			"failed":         result.Failed,
		})
	}
	return result, nil
}
