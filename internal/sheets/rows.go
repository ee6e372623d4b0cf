// Package sheets is the remote tabular adapter: it maps the spreadsheet's
// Meals and Settings ranges to and from structured data and owns the header
// contract.
package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hkaya/meallogger/internal/models"
)

// Range layout. Rows are addressed by fixed bounds large enough for
// realistic data volume; the adapter does not paginate.
const (
	MealsSheetTitle    = "Meals"
	mealsHeaderRange   = "Meals!A1:L1"
	mealsDataRange     = "Meals!A2:L10000"
	mealsWriteOrigin   = "Meals!A2"
	SettingsSheetTitle = "Settings"
	settingsHeaderRange = "Settings!A1:B1"
	settingsDataRange   = "Settings!A2:B50"
	settingsWriteOrigin = "Settings!A2"
)

// mealHeader is the fixed column order A..L. The remote region is the source
// of truth for shape, not content, after a push.
var mealHeader = []interface{}{
	"ID", "Date", "Name", "Type", "Calories", "Protein", "Carbs", "Fat", "Sugar", "Notes", "SyncID", "ModifiedAt",
}

var settingsHeader = []interface{}{"Setting", "Value"}

// rowToValues projects a RemoteRow onto one sheet row.
func rowToValues(r models.RemoteRow) []interface{} {
	return []interface{}{
		strconv.FormatInt(r.LocalID, 10),
		r.Date,
		r.Name,
		r.Type,
		r.Calories,
		r.Protein,
		r.Carbs,
		r.Fat,
		r.Sugar,
		r.Notes,
		r.SyncID,
		r.ModifiedAt,
	}
}

// valuesToRow parses one sheet row. Returns ok=false for blank padding rows
// (no name in column C); those are not data.
func valuesToRow(vals []interface{}) (models.RemoteRow, bool) {
	if cellString(vals, 2) == "" {
		return models.RemoteRow{}, false
	}
	return models.RemoteRow{
		LocalID:    int64(cellInt(vals, 0)),
		Date:       cellString(vals, 1),
		Name:       cellString(vals, 2),
		Type:       cellString(vals, 3),
		Calories:   cellInt(vals, 4),
		Protein:    cellInt(vals, 5),
		Carbs:      cellInt(vals, 6),
		Fat:        cellInt(vals, 7),
		Sugar:      cellInt(vals, 8),
		Notes:      cellString(vals, 9),
		SyncID:     cellString(vals, 10),
		ModifiedAt: cellString(vals, 11),
	}, true
}

// cellString reads cell i as a trimmed string; short rows read as empty.
func cellString(vals []interface{}, i int) string {
	if i >= len(vals) || vals[i] == nil {
		return ""
	}
	switch v := vals[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// cellInt reads cell i as an integer; anything unparseable reads as 0, the
// way the original importer coerced macro cells.
func cellInt(vals []interface{}, i int) int {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	switch v := vals[i].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
