package models

// Targets holds the per-macro daily goals. Values are grams per day; zero
// means no target set. Targets are device-local until synced through the
// settings region of the remote sheet.
type Targets struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
	Sugar   int `json:"sugar"`
}

// Settings region keys for each macro target.
const (
	TargetKeyProtein = "target_protein"
	TargetKeyCarbs   = "target_carbs"
	TargetKeyFat     = "target_fat"
	TargetKeySugar   = "target_sugar"
)

// ToMap flattens the targets into the key/value pairs written to the remote
// settings region.
func (t Targets) ToMap() map[string]int {
	return map[string]int{
		TargetKeyProtein: t.Protein,
		TargetKeyCarbs:   t.Carbs,
		TargetKeyFat:     t.Fat,
		TargetKeySugar:   t.Sugar,
	}
}

// TargetsFromMap rebuilds targets from settings pairs. Unknown keys are
// ignored, missing keys stay zero.
func TargetsFromMap(m map[string]int) Targets {
	return Targets{
		Protein: m[TargetKeyProtein],
		Carbs:   m[TargetKeyCarbs],
		Fat:     m[TargetKeyFat],
		Sugar:   m[TargetKeySugar],
	}
}

// IsZero reports whether no target has been set.
func (t Targets) IsZero() bool {
	return t == Targets{}
}

// DayTotals aggregates the macros of one calendar day for progress display.
type DayTotals struct {
	Calories int
	Protein  int
	Carbs    int
	Fat      int
	Sugar    int
}

// SumDay totals the macros of the given records.
func SumDay(meals []*MealRecord) DayTotals {
	var tot DayTotals
	for _, m := range meals {
		tot.Calories += m.Calories
		tot.Protein += m.Protein
		tot.Carbs += m.Carbs
		tot.Fat += m.Fat
		tot.Sugar += m.Sugar
	}
	return tot
}
