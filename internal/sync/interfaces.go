// Package sync orchestrates pull, diff, conflict detection, merge and push
// between the local meal store and the remote spreadsheet.
package sync

import (
	"context"

	"github.com/hkaya/meallogger/internal/models"
	"github.com/hkaya/meallogger/internal/settings"
)

// MealStore is the slice of the local store the engine needs.
type MealStore interface {
	// CreateMeal inserts a record and assigns its local id.
	CreateMeal(m *models.MealRecord) (int64, error)

	// UpdateMeal fully replaces the stored record.
	UpdateMeal(m *models.MealRecord) error

	// GetAllMeals returns every record in the store.
	GetAllMeals() ([]*models.MealRecord, error)

	// GetMealBySyncID returns the record carrying the given sync id.
	GetMealBySyncID(syncID string) (*models.MealRecord, error)

	// ClearMeals removes all records; destructive full-remote-load only.
	ClearMeals() error
}

// RemoteStore is the remote tabular adapter over the spreadsheet backend.
type RemoteStore interface {
	// SetSpreadsheet retargets the adapter at another spreadsheet.
	SetSpreadsheet(id string)

	// FetchRows reads the bounded Meals data range, blanks filtered.
	FetchRows(ctx context.Context) ([]models.RemoteRow, error)

	// ReplaceRows rewrites the header and data region in one batch.
	ReplaceRows(ctx context.Context, rows []models.RemoteRow) error

	// EnsureSettingsSheet creates the settings region if missing.
	EnsureSettingsSheet(ctx context.Context) error

	// ReadSettings reads the key/value pairs of the settings region.
	ReadSettings(ctx context.Context) (map[string]int, error)

	// WriteSettings rewrites the settings region.
	WriteSettings(ctx context.Context, pairs map[string]int) error

	// CreateSpreadsheet creates a new remote target, returning id and name.
	CreateSpreadsheet(ctx context.Context, title string) (string, string, error)
}

// SettingsStore loads and saves the device settings record.
type SettingsStore interface {
	Load() (*settings.Settings, error)
	Save(cfg *settings.Settings) error
}

// Status is the coarse per-round state surfaced to the UI collaborator.
type Status string

const (
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusError   Status = "error"
)

// StatusListener receives status callbacks and one-shot toast notifications.
// The engine never blocks on it; implementations must return promptly.
type StatusListener interface {
	OnSyncStatus(status Status, label string)
	OnToast(message, kind string)
}
