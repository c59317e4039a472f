package reference

import (
	"time"

	"immoprice/server/internal/models"
)

// Table is the immutable postal-code reference table
type Table struct {
	records  []models.PostalCodeRecord
	index    map[int]int
	source   string
	loadedAt time.Time
}

// NewTable indexes records by postal code. When a postal code appears on several rows
// the first row wins.
func NewTable(records []models.PostalCodeRecord, source string) *Table {
	t := &Table{
		records:  records,
		index:    make(map[int]int, len(records)),
		source:   source,
		loadedAt: time.Now(),
	}
	for i, r := range records {
		if _, ok := t.index[r.PostalCode]; !ok {
			t.index[r.PostalCode] = i
		}
	}
	return t
}

// Lookup returns a copy of the record for a postal code
func (t *Table) Lookup(postalCode int) (*models.PostalCodeRecord, bool) {
	i, ok := t.index[postalCode]
	if !ok {
		return nil, false
	}
	record := copyRecord(t.records[i])
	return &record, true
}

// Len returns the number of distinct postal codes
func (t *Table) Len() int {
	return len(t.index)
}

// Records returns a copy of every row, duplicates included
func (t *Table) Records() []models.PostalCodeRecord {
	out := make([]models.PostalCodeRecord, len(t.records))
	for i, r := range t.records {
		out[i] = copyRecord(r)
	}
	return out
}

func (t *Table) Source() string {
	return t.source
}

func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

func copyRecord(r models.PostalCodeRecord) models.PostalCodeRecord {
	r.MeanIncome = copyFloat(r.MeanIncome)
	r.HouseMedianPrice = copyFloat(r.HouseMedianPrice)
	r.ApartmentMedianPrice = copyFloat(r.ApartmentMedianPrice)
	return r
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
