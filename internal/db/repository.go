// Package db provides CRUD repository operations for the competition models.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/mateo-brl/powerlifting-manager-sub001/internal/errors"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/uuid"
)

// Repository provides CRUD operations for all models.
// Frequently used queries go through a prepared statement cache.
type Repository struct {
	db *sql.DB

	// Statements are prepared on first use and cached for reuse
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PrepareStmt gets or creates a prepared statement from cache.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this, close our duplicate
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}
	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// =====================================================
// Platform Operations
// =====================================================

// CreatePlatform registers a new scoring platform.
func (r *Repository) CreatePlatform(p *models.Platform) error {
	if p.ID == "" {
		p.ID = models.UUID(uuid.New())
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixMilli()
	}

	query := `
	INSERT INTO platforms (id, competition_id, name, location, active, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, p.ID, p.CompetitionID, p.Name, p.Location, p.Active, p.CreatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to create platform", err)
	}
	return nil
}

// GetPlatform retrieves a platform by ID.
func (r *Repository) GetPlatform(id string) (*models.Platform, error) {
	query := `
	SELECT id, competition_id, name, location, active, created_at
	FROM platforms WHERE id = ?
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	var p models.Platform
	err = stmt.QueryRow(id).Scan(&p.ID, &p.CompetitionID, &p.Name, &p.Location, &p.Active, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrPlatformNotFound, fmt.Sprintf("platform %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlatform updates a platform's name, location and active flag.
func (r *Repository) UpdatePlatform(p *models.Platform) error {
	query := `UPDATE platforms SET name = ?, location = ?, active = ? WHERE id = ?`
	res, err := r.db.Exec(query, p.Name, p.Location, p.Active, p.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update platform", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.New(apperrors.ErrPlatformNotFound, fmt.Sprintf("platform %s not found", p.ID))
	}
	return nil
}

// DeletePlatform removes a platform from the registry. Historical attempt
// and sync log rows keep their denormalized platform id; they are never
// cascaded. Deletion is rejected while unsynced log entries still reference
// the platform, unless force is set.
func (r *Repository) DeletePlatform(id string, force bool) error {
	if !force {
		var pending int
		err := r.db.QueryRow(
			"SELECT COUNT(*) FROM sync_log WHERE synced = 0 AND (source_platform_id = ? OR target_platform_id = ?)",
			id, id,
		).Scan(&pending)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "failed to check pending syncs", err)
		}
		if pending > 0 {
			return apperrors.New(apperrors.ErrPlatformInUse,
				fmt.Sprintf("platform %s has %d unsynced log entries", id, pending))
		}
	}

	res, err := r.db.Exec("DELETE FROM platforms WHERE id = ?", id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to delete platform", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.New(apperrors.ErrPlatformNotFound, fmt.Sprintf("platform %s not found", id))
	}
	return nil
}

// ListPlatforms returns all platforms of a competition, active first,
// then by creation time.
func (r *Repository) ListPlatforms(competitionID string) ([]*models.Platform, error) {
	query := `
	SELECT id, competition_id, name, location, active, created_at
	FROM platforms WHERE competition_id = ?
	ORDER BY active DESC, created_at ASC
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var platforms []*models.Platform
	for rows.Next() {
		var p models.Platform
		if err := rows.Scan(&p.ID, &p.CompetitionID, &p.Name, &p.Location, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		platforms = append(platforms, &p)
	}
	return platforms, rows.Err()
}

// =====================================================
// Athlete Operations
// =====================================================

// CreateAthlete registers a new athlete.
func (r *Repository) CreateAthlete(a *models.Athlete) error {
	now := time.Now().UnixMilli()
	if a.ID == "" {
		a.ID = models.UUID(uuid.New())
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query := `
	INSERT INTO athletes (id, competition_id, platform_id, first_name, last_name,
		gender, weight_class, division, age_category, lot_number, bodyweight,
		created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, a.ID, a.CompetitionID, nullable(a.PlatformID),
		a.FirstName, a.LastName, a.Gender, a.WeightClass, a.Division,
		a.AgeCategory, a.LotNumber, a.Bodyweight, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to create athlete", err)
	}
	return nil
}

// UpdateAthlete updates an athlete's identity fields.
func (r *Repository) UpdateAthlete(a *models.Athlete) error {
	a.UpdatedAt = time.Now().UnixMilli()

	query := `
	UPDATE athletes SET platform_id = ?, first_name = ?, last_name = ?, gender = ?,
		weight_class = ?, division = ?, age_category = ?, lot_number = ?,
		bodyweight = ?, updated_at = ?
	WHERE id = ?
	`
	res, err := r.db.Exec(query, nullable(a.PlatformID), a.FirstName, a.LastName,
		a.Gender, a.WeightClass, a.Division, a.AgeCategory, a.LotNumber,
		a.Bodyweight, a.UpdatedAt, a.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update athlete", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.New(apperrors.ErrNotFound, fmt.Sprintf("athlete %s not found", a.ID))
	}
	return nil
}

// GetAthlete retrieves an athlete by ID.
func (r *Repository) GetAthlete(id string) (*models.Athlete, error) {
	query := `
	SELECT id, competition_id, platform_id, first_name, last_name, gender,
		weight_class, division, age_category, lot_number, bodyweight,
		created_at, updated_at
	FROM athletes WHERE id = ?
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	a, err := scanAthlete(stmt.QueryRow(id))
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, fmt.Sprintf("athlete %s not found", id))
	}
	return a, err
}

// ListAthletes returns all athletes of a competition.
func (r *Repository) ListAthletes(competitionID string) ([]*models.Athlete, error) {
	query := `
	SELECT id, competition_id, platform_id, first_name, last_name, gender,
		weight_class, division, age_category, lot_number, bodyweight,
		created_at, updated_at
	FROM athletes WHERE competition_id = ?
	ORDER BY lot_number ASC, last_name ASC
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var athletes []*models.Athlete
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, err
		}
		athletes = append(athletes, a)
	}
	return athletes, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAthlete(row rowScanner) (*models.Athlete, error) {
	var a models.Athlete
	var platformID sql.NullString
	err := row.Scan(&a.ID, &a.CompetitionID, &platformID, &a.FirstName, &a.LastName,
		&a.Gender, &a.WeightClass, &a.Division, &a.AgeCategory, &a.LotNumber,
		&a.Bodyweight, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if platformID.Valid {
		a.PlatformID = models.UUID(platformID.String)
	}
	return &a, nil
}

// =====================================================
// Attempt Operations
// =====================================================

// CreateAttempt records a refereed attempt.
func (r *Repository) CreateAttempt(a *models.Attempt) error {
	if err := a.Validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrValidation, "invalid attempt record", err)
	}
	if a.ID == "" {
		a.ID = models.UUID(uuid.New())
	}
	if a.Timestamp == 0 {
		a.Timestamp = time.Now().UnixMilli()
	}

	query := `
	INSERT INTO attempts (id, athlete_id, platform_id, lift_type, attempt_number,
		weight_kg, successful, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, a.ID, a.AthleteID, nullable(a.PlatformID),
		a.LiftType, a.AttemptNumber, a.WeightKg, a.Successful, a.Timestamp)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to create attempt", err)
	}
	return nil
}

// ListAttempts returns every attempt of a competition, across all platforms,
// in recorded order. This is the merger's read surface.
func (r *Repository) ListAttempts(competitionID string) ([]*models.Attempt, error) {
	query := `
	SELECT at.id, at.athlete_id, at.platform_id, at.lift_type, at.attempt_number,
		at.weight_kg, at.successful, at.timestamp
	FROM attempts at
	JOIN athletes a ON a.id = at.athlete_id
	WHERE a.competition_id = ?
	ORDER BY at.timestamp ASC, at.id ASC
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*models.Attempt
	for rows.Next() {
		var at models.Attempt
		var platformID sql.NullString
		if err := rows.Scan(&at.ID, &at.AthleteID, &platformID, &at.LiftType,
			&at.AttemptNumber, &at.WeightKg, &at.Successful, &at.Timestamp); err != nil {
			return nil, err
		}
		if platformID.Valid {
			at.PlatformID = models.UUID(platformID.String)
		}
		attempts = append(attempts, &at)
	}
	return attempts, rows.Err()
}

// =====================================================
// Sync Log Operations
// =====================================================

// AppendSyncLog durably stores dispatched entries. Entries must be stored
// before the dispatch is considered complete.
func (r *Repository) AppendSyncLog(entries []*models.SyncLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to begin sync log append", err)
	}

	query := `
	INSERT INTO sync_log (id, competition_id, source_platform_id, target_platform_id,
		sync_type, data, synced, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, e := range entries {
		if _, err := tx.Exec(query, e.ID, e.CompetitionID, e.SourcePlatformID,
			nullable(e.TargetPlatformID), e.SyncType, string(e.Data), e.Synced, e.Timestamp); err != nil {
			tx.Rollback()
			return apperrors.Wrap(apperrors.ErrDatabase, "failed to append sync log entry", err)
		}
	}
	return tx.Commit()
}

// ListPendingSyncLogs returns unsynced entries of a competition in id order.
// Sortable entry ids make this creation order.
func (r *Repository) ListPendingSyncLogs(competitionID string) ([]*models.SyncLogEntry, error) {
	query := `
	SELECT id, competition_id, source_platform_id, target_platform_id, sync_type,
		data, synced, timestamp
	FROM sync_log WHERE competition_id = ? AND synced = 0
	ORDER BY id ASC
	`
	return r.querySyncLogs(query, competitionID)
}

// ListSyncLogs returns all entries of a competition, newest first.
func (r *Repository) ListSyncLogs(competitionID string) ([]*models.SyncLogEntry, error) {
	query := `
	SELECT id, competition_id, source_platform_id, target_platform_id, sync_type,
		data, synced, timestamp
	FROM sync_log WHERE competition_id = ?
	ORDER BY id DESC
	`
	return r.querySyncLogs(query, competitionID)
}

func (r *Repository) querySyncLogs(query string, args ...interface{}) ([]*models.SyncLogEntry, error) {
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.SyncLogEntry
	for rows.Next() {
		var e models.SyncLogEntry
		var target sql.NullString
		var data string
		if err := rows.Scan(&e.ID, &e.CompetitionID, &e.SourcePlatformID, &target,
			&e.SyncType, &data, &e.Synced, &e.Timestamp); err != nil {
			return nil, err
		}
		if target.Valid {
			e.TargetPlatformID = models.UUID(target.String)
		}
		e.Data = []byte(data)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// MarkSynced flips an entry's synced flag. The flip is one-way and
// exactly-once: marking an already synced or unknown entry is an error.
func (r *Repository) MarkSynced(id string) error {
	res, err := r.db.Exec("UPDATE sync_log SET synced = 1 WHERE id = ? AND synced = 0", id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to mark entry synced", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var synced bool
		err := r.db.QueryRow("SELECT synced FROM sync_log WHERE id = ?", id).Scan(&synced)
		if err == sql.ErrNoRows {
			return apperrors.New(apperrors.ErrNotFound, fmt.Sprintf("sync log entry %s not found", id))
		}
		if err != nil {
			return err
		}
		return apperrors.New(apperrors.ErrSyncAlreadyMarked,
			fmt.Sprintf("sync log entry %s already marked synced", id))
	}
	return nil
}

// CountPendingForPlatform returns the number of unsynced entries that
// reference a platform as source or target.
func (r *Repository) CountPendingForPlatform(platformID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM sync_log WHERE synced = 0 AND (source_platform_id = ? OR target_platform_id = ?)",
		platformID, platformID,
	).Scan(&count)
	return count, err
}

// nullable converts an empty UUID to a SQL NULL.
func nullable(id models.UUID) interface{} {
	if id == "" {
		return nil
	}
	return string(id)
}
