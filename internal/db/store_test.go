package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkaya/meallogger/internal/apperrors"
	"github.com/hkaya/meallogger/internal/models"
)

func testMeal(name, date string) *models.MealRecord {
	return &models.MealRecord{
		Date:     date,
		Name:     name,
		Type:     models.MealTypeLunch,
		Calories: 420,
		Protein:  35,
		Carbs:    12,
		Fat:      25,
		Sugar:    4,
		Notes:    "test",
	}
}

func TestCreateMeal(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	m := testMeal("Chicken salad", "2025-03-14")
	id, err := store.CreateMeal(m)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, m.ID)
	assert.NotEmpty(t, m.Timestamp, "creation instant stamped")
	assert.NotEmpty(t, m.ModifiedAt)

	// read-your-writes: immediately visible
	got, err := store.GetMealsByDate("2025-03-14")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Chicken salad", got[0].Name)
}

func TestCreateMeal_preservesProvidedInstants(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	m := testMeal("Imported", "2025-03-01")
	m.SyncID = "s1"
	m.ModifiedAt = "2025-03-01T09:00:00Z"
	_, err := store.CreateMeal(m)
	require.NoError(t, err)

	got, err := store.GetMealBySyncID("s1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T09:00:00Z", got.ModifiedAt, "remote modifiedAt preserved")
	assert.NotEqual(t, got.ModifiedAt, got.Timestamp, "fresh local creation instant")
}

func TestCreateMeal_idsNotReused(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	first, err := store.CreateMeal(testMeal("A", "2025-01-01"))
	require.NoError(t, err)
	require.NoError(t, store.DeleteMeal(first))

	second, err := store.CreateMeal(testMeal("B", "2025-01-01"))
	require.NoError(t, err)
	assert.Greater(t, second, first, "AUTOINCREMENT must not reuse deleted ids")
}

func TestUpdateMeal(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	m := testMeal("Eggs", "2025-03-14")
	_, err := store.CreateMeal(m)
	require.NoError(t, err)

	m.Name = "Eggs Benedict"
	m.Calories = 550
	m.Touch()
	require.NoError(t, store.UpdateMeal(m))

	got, err := store.GetAllMeals()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Eggs Benedict", got[0].Name)
	assert.Equal(t, 550, got[0].Calories)
}

func TestUpdateMeal_editKeepsSyncIdentity(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	m := testMeal("Eggs", "2025-03-14")
	m.SyncID = "s1"
	m.ModifiedAt = "2025-03-14T08:00:00Z"
	_, err := store.CreateMeal(m)
	require.NoError(t, err)
	originalTimestamp := m.Timestamp

	// A user edit: change content, bump ModifiedAt, leave identity alone.
	m.Calories = 550
	m.Touch()
	require.NoError(t, store.UpdateMeal(m))

	got, err := store.GetMealBySyncID("s1")
	require.NoError(t, err)
	assert.Equal(t, 550, got.Calories)
	assert.Equal(t, "s1", got.SyncID, "sync id survives the edit")
	assert.Equal(t, originalTimestamp, got.Timestamp, "creation instant immutable")
	assert.NotEqual(t, "2025-03-14T08:00:00Z", got.ModifiedAt, "edit bumps modifiedAt")
}

func TestUpdateMeal_notFound(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	m := testMeal("Ghost", "2025-03-14")
	m.ID = 999
	err := store.UpdateMeal(m)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound), "got %v", err)
}

func TestDeleteMeal_absentIsNotAnError(t *testing.T) {
	store := NewStore(migratedTestDB(t))
	assert.NoError(t, store.DeleteMeal(12345))
}

func TestGetMealsByDate_filtersAndOrders(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	for _, name := range []string{"Oatmeal", "Salad", "Soup"} {
		_, err := store.CreateMeal(testMeal(name, "2025-03-14"))
		require.NoError(t, err)
	}
	_, err := store.CreateMeal(testMeal("Other day", "2025-03-15"))
	require.NoError(t, err)

	got, err := store.GetMealsByDate("2025-03-14")
	require.NoError(t, err)
	require.Len(t, got, 3)
	// stable store order
	assert.Equal(t, "Oatmeal", got[0].Name)
	assert.Equal(t, "Salad", got[1].Name)
	assert.Equal(t, "Soup", got[2].Name)
}

func TestGetMealByID(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	m := testMeal("Soup", "2025-03-14")
	id, err := store.CreateMeal(m)
	require.NoError(t, err)

	got, err := store.GetMealByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Name)
	assert.Equal(t, id, got.ID)
}

func TestGetMealByID_notFound(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	_, err := store.GetMealByID(999)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestGetMealBySyncID_notFound(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	_, err := store.GetMealBySyncID("missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestClearMeals(t *testing.T) {
	store := NewStore(migratedTestDB(t))

	_, err := store.CreateMeal(testMeal("A", "2025-01-01"))
	require.NoError(t, err)
	_, err = store.CreateMeal(testMeal("B", "2025-01-02"))
	require.NoError(t, err)

	require.NoError(t, store.ClearMeals())

	got, err := store.GetAllMeals()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLegacyRecordScansWithEmptySyncIdentity(t *testing.T) {
	database := migratedTestDB(t)
	store := NewStore(database)

	// Row written by the pre-sync generation: NULL sync_id/modified_at.
	_, err := database.Exec(`INSERT INTO meals (date, name, type, timestamp)
		VALUES ('2024-11-02', 'Legacy toast', 'breakfast', '2024-11-02T08:00:00Z')`)
	require.NoError(t, err)

	got, err := store.GetAllMeals()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].SyncID)
	assert.Empty(t, got[0].ModifiedAt)
	assert.False(t, got[0].HasSyncIdentity())
}
