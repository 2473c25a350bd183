// Package export writes merged competition results as CSV in the
// OpenPowerlifting results layout, so a finished meet can be submitted
// upstream without manual reformatting.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/mateo-brl/powerlifting-manager-sub001/internal/errors"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
)

// csvHeader is the OpenPowerlifting column order. Attempt columns carry
// negative weights for failed attempts; zero weights render as empty cells.
var csvHeader = []string{
	"Place", "Name", "Sex", "Event", "Equipment", "Division", "WeightClassKg",
	"Squat1Kg", "Squat2Kg", "Squat3Kg", "Best3SquatKg",
	"Bench1Kg", "Bench2Kg", "Bench3Kg", "Best3BenchKg",
	"Deadlift1Kg", "Deadlift2Kg", "Deadlift3Kg", "Best3DeadliftKg",
	"TotalKg",
}

// Service renders merged results for submission.
type Service struct{}

// NewService creates an export Service.
func NewService() *Service {
	return &Service{}
}

// Result reports the outcome of a file export.
type Result struct {
	FilePath string
	RowCount int
	Duration time.Duration
}

// WriteCSV streams ranked results to w in the OpenPowerlifting layout.
// Results should already carry ranks; unranked rows get an empty Place.
func (s *Service) WriteCSV(w io.Writer, results []*models.MergedResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, "failed to write csv header", err)
	}
	for _, r := range results {
		if err := cw.Write(resultRow(r)); err != nil {
			return apperrors.Wrap(apperrors.ErrExportFailed, "failed to write csv row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Wrap(apperrors.ErrExportFailed, "failed to flush csv", err)
	}
	return nil
}

// ExportFile writes ranked results to path, creating parent directories as
// needed. An empty path picks a timestamped file under exports/.
func (s *Service) ExportFile(path string, results []*models.MergedResult) (*Result, error) {
	start := time.Now()

	if path == "" {
		path = fmt.Sprintf("exports/results_%s.csv", start.Format("20060102_150405"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to create export directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to create export file", err)
	}
	defer f.Close()

	if err := s.WriteCSV(f, results); err != nil {
		return nil, err
	}

	result := &Result{
		FilePath: path,
		RowCount: len(results),
		Duration: time.Since(start),
	}
	logging.Info("Exported results", map[string]interface{}{
		"file_path": result.FilePath,
		"rows":      result.RowCount,
	})
	return result, nil
}

// resultRow renders one merged result as a CSV record.
func resultRow(r *models.MergedResult) []string {
	row := make([]string, 0, len(csvHeader))

	place := ""
	if r.Rank > 0 {
		place = strconv.Itoa(r.Rank)
	}
	row = append(row,
		place,
		r.AthleteName,
		r.Gender,
		"SBD",
		equipment(r.Division),
		division(r.AgeCategory, r.Division),
		r.WeightClass,
	)

	row = append(row, attemptCells(r.SquatAttempts)...)
	row = append(row, weightCell(r.BestSquat))
	row = append(row, attemptCells(r.BenchAttempts)...)
	row = append(row, weightCell(r.BestBench))
	row = append(row, attemptCells(r.DeadliftAttempts)...)
	row = append(row, weightCell(r.BestDeadlift))
	row = append(row, weightCell(r.Total))

	return row
}

// attemptCells renders the three attempt slots for one lift. A missing slot
// is an empty cell; a failed attempt is reported as a negative weight, per
// the OpenPowerlifting convention.
func attemptCells(attempts []models.Attempt) []string {
	cells := []string{"", "", ""}
	for _, at := range attempts {
		if at.AttemptNumber < 1 || at.AttemptNumber > 3 {
			continue
		}
		weight := at.WeightKg
		if !at.Successful {
			weight = -weight
		}
		cells[at.AttemptNumber-1] = formatWeight(weight)
	}
	return cells
}

// weightCell renders a best or total, with zero as an empty cell.
func weightCell(kg float64) string {
	if kg == 0 {
		return ""
	}
	return formatWeight(kg)
}

func formatWeight(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64)
}

// division maps the age category onto the OpenPowerlifting division
// vocabulary, falling back to the meet's own division label.
func division(ageCategory, fallback string) string {
	switch strings.ToLower(strings.ReplaceAll(ageCategory, "-", "")) {
	case "subjunior":
		return "Sub-Juniors"
	case "junior":
		return "Juniors"
	case "open":
		return "Open"
	case "master", "master1", "masters1":
		return "Masters 1"
	case "master2", "masters2":
		return "Masters 2"
	case "master3", "masters3":
		return "Masters 3"
	case "master4", "masters4":
		return "Masters 4"
	}
	return fallback
}

// equipment derives the OpenPowerlifting equipment class from the division
// label. Divisions that do not say otherwise count as raw.
func equipment(division string) string {
	d := strings.ToLower(division)
	switch {
	case strings.Contains(d, "multi"):
		return "Multi-ply"
	case strings.Contains(d, "single"), strings.Contains(d, "equipped"):
		return "Single-ply"
	default:
		return "Raw"
	}
}
