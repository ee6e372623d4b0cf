package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenMemory()
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() { database.Close() })
	return database
}

func migratedTestDB(t *testing.T) *DB {
	t.Helper()
	database := setupTestDB(t)
	require.NoError(t, NewMigrator(database.DB).Up())
	return database
}

func TestMigratorUp(t *testing.T) {
	database := setupTestDB(t)
	m := NewMigrator(database.DB)

	require.NoError(t, m.Up())

	version, err := m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	// All generations present: meals with sync columns, app_settings.
	_, err = database.Exec(`INSERT INTO meals (date, name, type, timestamp, sync_id, modified_at)
		VALUES ('2025-01-01', 'Oatmeal', 'breakfast', '2025-01-01T08:00:00Z', 's1', '2025-01-01T08:00:00Z')`)
	assert.NoError(t, err)
	_, err = database.Exec("INSERT INTO app_settings (key, value) VALUES ('sheet_id', 'abc')")
	assert.NoError(t, err)
}

func TestMigratorUp_idempotent(t *testing.T) {
	database := setupTestDB(t)
	m := NewMigrator(database.DB)

	require.NoError(t, m.Up())
	require.NoError(t, m.Up(), "second Up must be a no-op")

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	assert.Len(t, applied, 3)
}

func TestMigratorUp_resumesAfterPartialUpgrade(t *testing.T) {
	database := setupTestDB(t)
	m := NewMigrator(database.DB)

	// Simulate an interrupted upgrade: only generation 1 applied.
	require.NoError(t, m.Initialize())
	require.NoError(t, m.apply(migrations[0]))

	version, err := m.CurrentVersion()
	require.NoError(t, err)
	require.Equal(t, 1, version)

	// Pre-upgrade record with no sync identity.
	_, err = database.Exec(`INSERT INTO meals (date, name, type, timestamp)
		VALUES ('2024-12-31', 'Leftovers', 'dinner', '2024-12-31T19:00:00Z')`)
	require.NoError(t, err)

	// Retry completes the remaining generations without data loss.
	require.NoError(t, m.Up())

	version, err = m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	var name string
	var syncID any
	err = database.QueryRow("SELECT name, sync_id FROM meals").Scan(&name, &syncID)
	require.NoError(t, err)
	assert.Equal(t, "Leftovers", name)
	assert.Nil(t, syncID, "legacy record keeps an absent sync id until merge backfill")
}

func TestGetAppliedMigrations(t *testing.T) {
	database := setupTestDB(t)
	m := NewMigrator(database.DB)
	require.NoError(t, m.Up())

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	require.Len(t, applied, 3)
	assert.Equal(t, "base_meals_table", applied[0].Description)
	assert.Equal(t, "sync_identity_columns", applied[1].Description)
	assert.Len(t, applied[0].Checksum, 64)
	assert.False(t, applied[0].AppliedAt.IsZero())
}
