package models

// RemoteRow is the tabular projection of a MealRecord: one spreadsheet row in
// the fixed column order A..L. LocalID is informational only and is never
// used to match records across devices.
type RemoteRow struct {
	LocalID    int64
	Date       string
	Name       string
	Type       string
	Calories   int
	Protein    int
	Carbs      int
	Fat        int
	Sugar      int
	Notes      string
	SyncID     string
	ModifiedAt string
}

// RemoteRowFromMeal projects a meal record onto its spreadsheet row.
func RemoteRowFromMeal(m *MealRecord) RemoteRow {
	return RemoteRow{
		LocalID:    m.ID,
		Date:       m.Date,
		Name:       m.Name,
		Type:       string(m.Type),
		Calories:   m.Calories,
		Protein:    m.Protein,
		Carbs:      m.Carbs,
		Fat:        m.Fat,
		Sugar:      m.Sugar,
		Notes:      m.Notes,
		SyncID:     m.SyncID,
		ModifiedAt: m.ModifiedAt,
	}
}

// ToMeal converts the row into a meal record for import. The remote local id
// is discarded; the caller stamps Timestamp and lets the store assign ID.
func (r RemoteRow) ToMeal() *MealRecord {
	return &MealRecord{
		Date:       r.Date,
		Name:       r.Name,
		Type:       ParseMealType(r.Type),
		Calories:   r.Calories,
		Protein:    r.Protein,
		Carbs:      r.Carbs,
		Fat:        r.Fat,
		Sugar:      r.Sugar,
		Notes:      r.Notes,
		SyncID:     r.SyncID,
		ModifiedAt: r.ModifiedAt,
	}
}

// ContentEquals compares the user-visible fields of the row against a local
// record. ModifiedAt and identities are deliberately excluded; content
// equality is one half of the conflict predicate.
func (r RemoteRow) ContentEquals(m *MealRecord) bool {
	return r.Name == m.Name &&
		r.Type == string(m.Type) &&
		r.Date == m.Date &&
		r.Calories == m.Calories &&
		r.Protein == m.Protein &&
		r.Carbs == m.Carbs &&
		r.Fat == m.Fat &&
		r.Sugar == m.Sugar &&
		r.Notes == m.Notes
}
