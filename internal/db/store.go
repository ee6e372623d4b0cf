// Package db provides CRUD operations for the local meal store.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/hkaya/meallogger/internal/apperrors"
	"github.com/hkaya/meallogger/internal/models"
)

// Store provides CRUD operations for meal records.
// Prepared statements are cached to avoid repeated SQL parsing overhead.
type Store struct {
	db        *sql.DB
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewStore creates a new Store instance.
func NewStore(db *DB) *Store {
	return &Store{db: db.DB}
}

// prepareStmt gets or creates a prepared statement from cache.
func (s *Store) prepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := s.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := s.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this, close our duplicate
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}

	return stmt, nil
}

// Close closes all cached prepared statements.
func (s *Store) Close() error {
	var firstErr error
	s.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

const mealColumns = "id, date, name, type, calories, protein, carbs, fat, sugar, notes, timestamp, sync_id, modified_at"

// CreateMeal inserts a record and assigns its local id. Timestamp and
// ModifiedAt are stamped to now when empty; the merge import relies on that
// to preserve a remote ModifiedAt while getting a fresh creation instant.
// SyncID assignment is the caller's concern.
func (s *Store) CreateMeal(m *models.MealRecord) (int64, error) {
	if s.db == nil {
		return 0, apperrors.New(apperrors.ErrStorageUnavailable, "meal store is not open")
	}

	now := time.Now().Format(time.RFC3339)
	if m.Timestamp == "" {
		m.Timestamp = now
	}
	if m.ModifiedAt == "" {
		m.ModifiedAt = now
	}

	query := `
	INSERT INTO meals (date, name, type, calories, protein, carbs, fat, sugar, notes, timestamp, sync_id, modified_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.Exec(query, m.Date, m.Name, string(m.Type), m.Calories, m.Protein,
		m.Carbs, m.Fat, m.Sugar, m.Notes, m.Timestamp, nullable(m.SyncID), nullable(m.ModifiedAt))
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to insert meal", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to read new meal id", err)
	}
	m.ID = id
	return id, nil
}

// UpdateMeal replaces the stored record with m (full replace, not a patch).
// The caller is responsible for bumping ModifiedAt; a merge-applied remote
// overwrite and a user edit stamp it differently.
func (s *Store) UpdateMeal(m *models.MealRecord) error {
	if s.db == nil {
		return apperrors.New(apperrors.ErrStorageUnavailable, "meal store is not open")
	}

	query := `
	UPDATE meals SET date = ?, name = ?, type = ?, calories = ?, protein = ?,
		carbs = ?, fat = ?, sugar = ?, notes = ?, timestamp = ?, sync_id = ?, modified_at = ?
	WHERE id = ?
	`
	res, err := s.db.Exec(query, m.Date, m.Name, string(m.Type), m.Calories, m.Protein,
		m.Carbs, m.Fat, m.Sugar, m.Notes, m.Timestamp, nullable(m.SyncID), nullable(m.ModifiedAt), m.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to update meal", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrNotFound, fmt.Sprintf("meal %d not found", m.ID))
	}
	return nil
}

// DeleteMeal removes a record. Deleting an absent id is not an error; the
// caller has already confirmed intent.
func (s *Store) DeleteMeal(id int64) error {
	if s.db == nil {
		return apperrors.New(apperrors.ErrStorageUnavailable, "meal store is not open")
	}
	if _, err := s.db.Exec("DELETE FROM meals WHERE id = ?", id); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to delete meal", err)
	}
	return nil
}

// GetMealByID returns the record with the given local id.
func (s *Store) GetMealByID(id int64) (*models.MealRecord, error) {
	if s.db == nil {
		return nil, apperrors.New(apperrors.ErrStorageUnavailable, "meal store is not open")
	}

	query := "SELECT " + mealColumns + " FROM meals WHERE id = ?"
	stmt, err := s.prepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to prepare query", err)
	}

	m, err := scanMeal(stmt.QueryRow(id))
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, fmt.Sprintf("meal %d not found", id))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to query meal", err)
	}
	return m, nil
}

// GetMealsByDate returns all records logged for the given calendar date.
func (s *Store) GetMealsByDate(date string) ([]*models.MealRecord, error) {
	query := "SELECT " + mealColumns + " FROM meals WHERE date = ? ORDER BY id"
	return s.queryMeals(query, date)
}

// GetAllMeals returns every record in the store.
func (s *Store) GetAllMeals() ([]*models.MealRecord, error) {
	query := "SELECT " + mealColumns + " FROM meals ORDER BY id"
	return s.queryMeals(query)
}

// GetMealBySyncID returns the record carrying the given sync id. Only the
// sync engine uses this; it is indexed but not a hot path.
func (s *Store) GetMealBySyncID(syncID string) (*models.MealRecord, error) {
	if s.db == nil {
		return nil, apperrors.New(apperrors.ErrStorageUnavailable, "meal store is not open")
	}

	query := "SELECT " + mealColumns + " FROM meals WHERE sync_id = ?"
	stmt, err := s.prepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to prepare query", err)
	}

	m, err := scanMeal(stmt.QueryRow(syncID))
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, fmt.Sprintf("no meal with sync id %s", syncID))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to query meal", err)
	}
	return m, nil
}

// ClearMeals removes all records. Only the destructive full-remote-load path
// calls this, and only after the replacement rows have been fetched.
func (s *Store) ClearMeals() error {
	if s.db == nil {
		return apperrors.New(apperrors.ErrStorageUnavailable, "meal store is not open")
	}
	if _, err := s.db.Exec("DELETE FROM meals"); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to clear meals", err)
	}
	return nil
}

func (s *Store) queryMeals(query string, args ...interface{}) ([]*models.MealRecord, error) {
	if s.db == nil {
		return nil, apperrors.New(apperrors.ErrStorageUnavailable, "meal store is not open")
	}

	stmt, err := s.prepareStmt(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to prepare query", err)
	}

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to query meals", err)
	}
	defer rows.Close()

	var meals []*models.MealRecord
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to scan meal", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to iterate meals", err)
	}
	return meals, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMeal(row rowScanner) (*models.MealRecord, error) {
	var m models.MealRecord
	var mealType string
	var syncID, modifiedAt sql.NullString
	err := row.Scan(&m.ID, &m.Date, &m.Name, &mealType, &m.Calories, &m.Protein,
		&m.Carbs, &m.Fat, &m.Sugar, &m.Notes, &m.Timestamp, &syncID, &modifiedAt)
	if err != nil {
		return nil, err
	}
	m.Type = models.ParseMealType(mealType)
	if syncID.Valid {
		m.SyncID = syncID.String
	}
	if modifiedAt.Valid {
		m.ModifiedAt = modifiedAt.String
	}
	return &m, nil
}

// nullable maps an empty string to NULL so that generation-1 records keep a
// genuinely absent sync identity rather than an empty one.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
