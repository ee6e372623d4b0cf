// Package models provides data model definitions for the meal logger.
package models

import "time"

// MealType categorizes a logged meal.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// IsValid reports whether t is one of the known meal types.
func (t MealType) IsValid() bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// ParseMealType normalizes a raw type string, falling back to snack the way
// the sheet importer always has.
func ParseMealType(s string) MealType {
	if t := MealType(s); t.IsValid() {
		return t
	}
	return MealTypeSnack
}

// DateFormat is the calendar date layout used for the Date field.
const DateFormat = "2006-01-02"

// MealRecord is one logged meal.
//
// ID is the local store key and is not portable between devices; SyncID is
// the cross-device identity, assigned once at creation. ModifiedAt is bumped
// on every write and is the conflict tie-break field. Records imported from
// the pre-sync schema generation lack SyncID and ModifiedAt until the merge
// backfills them.
type MealRecord struct {
	ID         int64    `db:"id" json:"id"`
	SyncID     string   `db:"sync_id" json:"sync_id,omitempty"`
	Date       string   `db:"date" json:"date"` // YYYY-MM-DD, device-local
	Name       string   `db:"name" json:"name"`
	Type       MealType `db:"type" json:"type"`
	Calories   int      `db:"calories" json:"calories"`
	Protein    int      `db:"protein" json:"protein"`
	Carbs      int      `db:"carbs" json:"carbs"`
	Fat        int      `db:"fat" json:"fat"`
	Sugar      int      `db:"sugar" json:"sugar"`
	Notes      string   `db:"notes" json:"notes,omitempty"`
	Timestamp  string   `db:"timestamp" json:"timestamp"` // RFC3339 creation instant
	ModifiedAt string   `db:"modified_at" json:"modified_at,omitempty"`
}

// TableName returns the table name for MealRecord.
func (MealRecord) TableName() string {
	return "meals"
}

// Touch bumps ModifiedAt to now.
func (m *MealRecord) Touch() {
	m.ModifiedAt = time.Now().Format(time.RFC3339)
}

// HasSyncIdentity reports whether the record carries both fields the sync
// engine needs before it can be trusted in an identity-based merge.
func (m *MealRecord) HasSyncIdentity() bool {
	return m.SyncID != "" && m.ModifiedAt != ""
}

// DerivedCalories returns the conventional calorie estimate for the macros:
// protein*4 + carbs*4 + fat*9.
func DerivedCalories(protein, carbs, fat int) int {
	return protein*4 + carbs*4 + fat*9
}
