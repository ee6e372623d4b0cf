package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseMealType(t *testing.T) {
	assert.Equal(t, MealTypeBreakfast, ParseMealType("breakfast"))
	assert.Equal(t, MealTypeDinner, ParseMealType("dinner"))
	assert.Equal(t, MealTypeSnack, ParseMealType(""))
	assert.Equal(t, MealTypeSnack, ParseMealType("brunch"))
}

func TestMealRecordTouch(t *testing.T) {
	m := &MealRecord{Name: "Oatmeal"}
	assert.Empty(t, m.ModifiedAt)

	m.Touch()

	parsed, err := time.Parse(time.RFC3339, m.ModifiedAt)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, 5*time.Second)
}

func TestHasSyncIdentity(t *testing.T) {
	m := &MealRecord{Name: "Eggs"}
	assert.False(t, m.HasSyncIdentity())

	m.SyncID = "s1"
	assert.False(t, m.HasSyncIdentity(), "modifiedAt still missing")

	m.Touch()
	assert.True(t, m.HasSyncIdentity())
}

func TestDerivedCalories(t *testing.T) {
	// protein*4 + carbs*4 + fat*9
	assert.Equal(t, 0, DerivedCalories(0, 0, 0))
	assert.Equal(t, 245, DerivedCalories(20, 30, 5))
}

func TestRemoteRowRoundTrip(t *testing.T) {
	m := &MealRecord{
		ID:         7,
		SyncID:     "s1",
		Date:       "2025-03-14",
		Name:       "Chicken salad",
		Type:       MealTypeLunch,
		Calories:   420,
		Protein:    35,
		Carbs:      12,
		Fat:        25,
		Sugar:      4,
		Notes:      "extra dressing",
		Timestamp:  "2025-03-14T12:30:00Z",
		ModifiedAt: "2025-03-14T12:30:00Z",
	}

	row := RemoteRowFromMeal(m)
	assert.Equal(t, int64(7), row.LocalID)
	assert.True(t, row.ContentEquals(m))

	back := row.ToMeal()
	assert.Zero(t, back.ID, "remote local id must be discarded")
	assert.Empty(t, back.Timestamp, "caller stamps a fresh creation instant")
	assert.Equal(t, m.SyncID, back.SyncID)
	assert.Equal(t, m.ModifiedAt, back.ModifiedAt)
	assert.Equal(t, m.Name, back.Name)
	assert.Equal(t, m.Type, back.Type)
	assert.Equal(t, m.Sugar, back.Sugar)
}

func TestRemoteRowContentEquals(t *testing.T) {
	m := &MealRecord{Name: "Eggs", Type: MealTypeBreakfast, Date: "2025-01-01"}
	row := RemoteRowFromMeal(m)
	assert.True(t, row.ContentEquals(m))

	row.Name = "Eggs Benedict"
	assert.False(t, row.ContentEquals(m))

	// ModifiedAt alone never breaks content equality
	row.Name = "Eggs"
	row.ModifiedAt = "2025-06-01T00:00:00Z"
	assert.True(t, row.ContentEquals(m))
}

func TestTargetsMapRoundTrip(t *testing.T) {
	targets := Targets{Protein: 120, Carbs: 200, Fat: 70, Sugar: 40}

	m := targets.ToMap()
	assert.Equal(t, 120, m[TargetKeyProtein])
	assert.Equal(t, targets, TargetsFromMap(m))

	assert.True(t, Targets{}.IsZero())
	assert.False(t, targets.IsZero())
	assert.Equal(t, Targets{}, TargetsFromMap(map[string]int{"unrelated": 9}))
}

func TestSumDay(t *testing.T) {
	meals := []*MealRecord{
		{Calories: 150, Protein: 5, Carbs: 27, Fat: 3, Sugar: 1},
		{Calories: 420, Protein: 35, Carbs: 12, Fat: 25, Sugar: 4},
	}
	tot := SumDay(meals)
	assert.Equal(t, DayTotals{Calories: 570, Protein: 40, Carbs: 39, Fat: 28, Sugar: 5}, tot)
	assert.Zero(t, SumDay(nil))
}
