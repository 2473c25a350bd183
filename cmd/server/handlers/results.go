package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/db"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/export"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/merge"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/sync/conflict"
)

// ResultsHandler merges per-platform data on demand and serves rankings
// and exports. Merging is pure, so every request recomputes from the
// current snapshot; nothing is cached between requests.
type ResultsHandler struct {
	repo     *db.Repository
	strategy conflict.Strategy
	exporter *export.Service
}

// NewResultsHandler creates a ResultsHandler.
func NewResultsHandler(repo *db.Repository, strategy conflict.Strategy) *ResultsHandler {
	return &ResultsHandler{
		repo:     repo,
		strategy: strategy,
		exporter: export.NewService(),
	}
}

// snapshot loads and merges the competition's current data.
func (h *ResultsHandler) snapshot(competitionID string) ([]*models.MergedResult, []merge.Diagnostic, error) {
	athletes, err := h.repo.ListAthletes(competitionID)
	if err != nil {
		return nil, nil, err
	}
	attempts, err := h.repo.ListAttempts(competitionID)
	if err != nil {
		return nil, nil, err
	}
	platforms, err := h.repo.ListPlatforms(competitionID)
	if err != nil {
		return nil, nil, err
	}

	results, diags := merge.Merge(athletes, attempts, platforms, h.strategy)
	return results, diags, nil
}

// GetResults handles GET /api/results.
// Returns merged results with per-record diagnostics and the conflicted
// subset surfaced separately for the meet director.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		badRequest(w, "competition_id is required")
		return
	}

	results, diags, err := h.snapshot(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":     results,
		"diagnostics": diags,
		"conflicts":   merge.DetectConflicts(results),
	})
}

// GetRankings handles GET /api/results/rankings.
// Optional gender and weight_class parameters narrow the ranking to one
// category; ranks always restart at 1 within the returned set.
func (h *ResultsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		badRequest(w, "competition_id is required")
		return
	}

	results, _, err := h.snapshot(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}

	ranked := merge.Rank(results, &merge.Filter{
		Gender:      r.URL.Query().Get("gender"),
		WeightClass: r.URL.Query().Get("weight_class"),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"rankings": ranked})
}

// ExportResults handles GET /api/results/export.
// Streams the ranked results as CSV in the OpenPowerlifting layout.
func (h *ResultsHandler) ExportResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		badRequest(w, "competition_id is required")
		return
	}

	results, _, err := h.snapshot(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}
	ranked := merge.Rank(results, nil)

	filename := fmt.Sprintf("results_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exporter.WriteCSV(w, ranked); err != nil {
		// Headers already went out; the broken download is the signal
		logging.Error("Results export failed mid-stream", err, map[string]interface{}{
			"competition_id": competitionID,
		})
	}
}
