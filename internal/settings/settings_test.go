package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkaya/meallogger/internal/db"
	"github.com/hkaya/meallogger/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.NewMigrator(database.DB).Up())
	return NewStore(database)
}

func TestLoad_freshDatabaseIsEmptyRecord(t *testing.T) {
	store := setupStore(t)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.False(t, cfg.HasRemoteTarget())
	assert.Empty(t, cfg.LastSyncTime)
	assert.True(t, cfg.Targets.IsZero())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := setupStore(t)

	cfg := &Settings{
		SheetID:      "1aBcD",
		SheetName:    "Meal Logger - 3/14/2025",
		AccessToken:  "ya29.token",
		LastSyncTime: "2025-03-14T15:09:26Z",
		Targets:      models.Targets{Protein: 120, Carbs: 200, Fat: 70, Sugar: 40},
	}
	require.NoError(t, store.Save(cfg))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.True(t, got.HasRemoteTarget())
}

func TestSave_overwritesPreviousRecord(t *testing.T) {
	store := setupStore(t)

	require.NoError(t, store.Save(&Settings{SheetID: "old", SheetName: "Old"}))
	require.NoError(t, store.Save(&Settings{SheetID: "new", SheetName: "New"}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", got.SheetID)
	assert.Equal(t, "New", got.SheetName)
}
