// Package settings persists the device-local configuration that gates sync:
// the selected remote sheet, the cached credential, the last sync instant
// and the per-macro daily targets. It is one typed record with a single
// load/save pair, not a scattered string-keyed bag.
package settings

import (
	"database/sql"
	"strconv"

	"github.com/hkaya/meallogger/internal/apperrors"
	"github.com/hkaya/meallogger/internal/db"
	"github.com/hkaya/meallogger/internal/models"
)

// Settings is the device configuration record.
type Settings struct {
	SheetID      string
	SheetName    string
	AccessToken  string
	LastSyncTime string // RFC3339; empty until the first successful round
	Targets      models.Targets
}

// HasRemoteTarget reports whether a remote sheet has been selected. Without
// one, sync is a no-op.
func (s *Settings) HasRemoteTarget() bool {
	return s.SheetID != ""
}

// storage keys in the app_settings table
const (
	keySheetID      = "sheet_id"
	keySheetName    = "sheet_name"
	keyAccessToken  = "access_token"
	keyLastSyncTime = "last_sync_time"
	keyTargetPrefix = "target_"
)

// Store loads and saves the settings record.
type Store struct {
	db *sql.DB
}

// NewStore creates a settings store over the shared database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database.DB}
}

// Load reads the full settings record. Missing keys load as zero values, so
// a fresh database yields an empty record rather than an error.
func (s *Store) Load() (*Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM app_settings")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to read settings", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to scan setting", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to iterate settings", err)
	}

	return &Settings{
		SheetID:      values[keySheetID],
		SheetName:    values[keySheetName],
		AccessToken:  values[keyAccessToken],
		LastSyncTime: values[keyLastSyncTime],
		Targets: models.Targets{
			Protein: atoiOrZero(values[keyTargetPrefix+"protein"]),
			Carbs:   atoiOrZero(values[keyTargetPrefix+"carbs"]),
			Fat:     atoiOrZero(values[keyTargetPrefix+"fat"]),
			Sugar:   atoiOrZero(values[keyTargetPrefix+"sugar"]),
		},
	}, nil
}

// Save writes the full settings record in one transaction.
func (s *Store) Save(cfg *Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to begin settings save", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keySheetID:                cfg.SheetID,
		keySheetName:              cfg.SheetName,
		keyAccessToken:            cfg.AccessToken,
		keyLastSyncTime:           cfg.LastSyncTime,
		keyTargetPrefix + "protein": itoa(cfg.Targets.Protein),
		keyTargetPrefix + "carbs":   itoa(cfg.Targets.Carbs),
		keyTargetPrefix + "fat":     itoa(cfg.Targets.Fat),
		keyTargetPrefix + "sugar":   itoa(cfg.Targets.Sugar),
	}

	query := `INSERT INTO app_settings (key, value) VALUES (?, ?)
			  ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	for k, v := range pairs {
		if _, err := tx.Exec(query, k, v); err != nil {
			return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to write setting", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to commit settings", err)
	}
	return nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
