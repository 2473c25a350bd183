package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/cmd/server/handlers"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/config"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/db"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	syncpkg "github.com/mateo-brl/powerlifting-manager-sub001/internal/sync"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/sync/conflict"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/sync/scheduler"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	competitionID := flag.String("competition", os.Getenv("PLM_COMPETITION_ID"),
		"competition id for the background sync scheduler (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(os.Stdout, logging.LogLevel(cfg.LogLevel))

	database, err := db.Open(cfg.Storage.DataDir)
	if err != nil {
		logging.Error("Failed to open database", err, nil)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.NewMigrator(database.DB).Up(); err != nil {
		logging.Error("Failed to run migrations", err, nil)
		os.Exit(1)
	}

	repo := db.NewRepository(database.DB)
	defer repo.Close()

	strategy, err := conflict.ParseStrategy(cfg.Sync.ConflictResolution)
	if err != nil {
		logging.Error("Invalid conflict strategy", err, nil)
		os.Exit(1)
	}

	hub := NewWSHub()
	dispatcher := syncpkg.NewDispatcher(cfg.Sync)

	// Delivery pushes the entry to the target platform's live stations.
	deliver := func(ctx context.Context, entry *models.SyncLogEntry, data *syncpkg.SyncData) bool {
		return hub.DeliverTo(string(entry.TargetPlatformID), EventSyncEntry, map[string]interface{}{
			"entry_id":    string(entry.ID),
			"sync_type":   string(entry.SyncType),
			"entity_type": string(data.EntityType),
			"entity_id":   data.EntityID,
			"action":      string(data.Action),
			"payload":     data.Payload,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sched *scheduler.Scheduler
	if cfg.Sync.AutoSync && *competitionID != "" {
		sched = scheduler.New(repo, deliver, scheduler.Config{
			CompetitionID: *competitionID,
			Interval:      cfg.Sync.SyncInterval(),
		})
		sched.Start(ctx)
		defer sched.Stop()
	}

	platformHandler := handlers.NewPlatformHandler(repo, hub)
	athleteHandler := handlers.NewAthleteHandler(repo, dispatcher, hub)
	attemptHandler := handlers.NewAttemptHandler(repo, dispatcher, hub)
	syncHandler := handlers.NewSyncHandler(repo, deliver, 10*time.Second, hub)
	resultsHandler := handlers.NewResultsHandler(repo, strategy)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"powerlifting-manager"}`))
	})
	mux.HandleFunc("/api/platforms", platformHandler.HandleCollection)
	mux.HandleFunc("/api/platforms/", platformHandler.HandleItem)
	mux.HandleFunc("/api/athletes", athleteHandler.HandleCollection)
	mux.HandleFunc("/api/athletes/", athleteHandler.HandleItem)
	mux.HandleFunc("/api/attempts", attemptHandler.HandleCollection)
	mux.HandleFunc("/api/sync/status", syncHandler.GetStatus)
	mux.HandleFunc("/api/sync/logs", syncHandler.GetLogs)
	mux.HandleFunc("/api/sync/trigger", syncHandler.TriggerSync)
	mux.HandleFunc("/api/results", resultsHandler.GetResults)
	mux.HandleFunc("/api/results/rankings", resultsHandler.GetRankings)
	mux.HandleFunc("/api/results/export", resultsHandler.ExportResults)
	mux.HandleFunc("/ws", hub.HandleWebSocket)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logging.Info("Competition server starting", map[string]interface{}{
		"port":     cfg.Server.Port,
		"data_dir": cfg.Storage.DataDir,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Error("Server failed", err, nil)
		os.Exit(1)
	}
}
