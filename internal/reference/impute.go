package reference

import (
	"sort"

	"immoprice/server/internal/models"
)

// Median returns the median of values, false when values is empty
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// FillGroupMedian replaces missing values with the median of the present values sharing
// the same group key. Groups without any present value stay missing.
func FillGroupMedian[T any, K comparable](items []T, key func(*T) K, get func(*T) *float64, set func(*T, float64)) (filled, unresolved int) {
	groups := make(map[K][]float64)
	for i := range items {
		if v := get(&items[i]); v != nil {
			k := key(&items[i])
			groups[k] = append(groups[k], *v)
		}
	}

	medians := make(map[K]float64, len(groups))
	for k, values := range groups {
		if m, ok := Median(values); ok {
			medians[k] = m
		}
	}

	for i := range items {
		if get(&items[i]) != nil {
			continue
		}
		m, ok := medians[key(&items[i])]
		if !ok {
			unresolved++
			continue
		}
		set(&items[i], m)
		filled++
	}
	return filled, unresolved
}

// ImputeReport counts the statistics filled in by ImputeMedians
type ImputeReport struct {
	HouseFilled         int
	HouseUnresolved     int
	ApartmentFilled     int
	ApartmentUnresolved int
}

// ImputeMedians fills missing house medians by district and missing apartment medians
// by province.
func ImputeMedians(records []models.PostalCodeRecord) ImputeReport {
	var report ImputeReport

	report.HouseFilled, report.HouseUnresolved = FillGroupMedian(records,
		func(r *models.PostalCodeRecord) int { return r.District },
		func(r *models.PostalCodeRecord) *float64 { return r.HouseMedianPrice },
		func(r *models.PostalCodeRecord, v float64) { r.HouseMedianPrice = &v },
	)

	report.ApartmentFilled, report.ApartmentUnresolved = FillGroupMedian(records,
		func(r *models.PostalCodeRecord) string { return r.Province },
		func(r *models.PostalCodeRecord) *float64 { return r.ApartmentMedianPrice },
		func(r *models.PostalCodeRecord, v float64) { r.ApartmentMedianPrice = &v },
	)

	return report
}
