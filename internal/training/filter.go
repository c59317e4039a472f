package training

import (
	"github.com/sirupsen/logrus"

	"immoprice/server/internal/features"
	"immoprice/server/internal/models"
)

// Outlier thresholds observed in the listings analysis
const (
	MaxPrice                = 2_500_000
	MaxApartmentPrice       = 1_000_000
	MaxApartmentLivingArea  = 450
	MaxHouseLivingArea      = 1200
	MaxMixedUseLivingArea   = 1200
	subtypeOther            = "Other_Property"
	subtypeMixedUseBuilding = "Mixed_Use_Building"
)

type predicate struct {
	name   string
	reject func(l *models.Listing) bool
}

func livingAreaAbove(l *models.Listing, limit float64) bool {
	return l.LivingArea != nil && *l.LivingArea > limit
}

// predicates are evaluated in order; a row is counted under the first one that rejects it
var predicates = []predicate{
	{"price_above_max", func(l *models.Listing) bool { return l.Price > MaxPrice }},
	{"other_property", func(l *models.Listing) bool { return l.Subtype == subtypeOther }},
	{"mixed_use_too_large", func(l *models.Listing) bool {
		return l.Subtype == subtypeMixedUseBuilding && livingAreaAbove(l, MaxMixedUseLivingArea)
	}},
	{"apartment_too_large", func(l *models.Listing) bool {
		return l.Category == models.CategoryApartment && livingAreaAbove(l, MaxApartmentLivingArea)
	}},
	{"apartment_too_expensive", func(l *models.Listing) bool {
		return l.Category == models.CategoryApartment && l.Price > MaxApartmentPrice
	}},
	{"house_too_large", func(l *models.Listing) bool {
		return l.Category == models.CategoryHouse && livingAreaAbove(l, MaxHouseLivingArea)
	}},
	{"unknown_category", func(l *models.Listing) bool { return !l.Category.Valid() }},
	{"missing_living_area", func(l *models.Listing) bool { return l.LivingArea == nil }},
	{"condition_not_mentioned", func(l *models.Listing) bool {
		return l.BuildingCondition == features.ConditionNotMentioned
	}},
}

// FilterReport counts removed rows per rule
type FilterReport struct {
	Input   int
	Kept    int
	Removed map[string]int
}

// Log writes the report as one structured entry
func (r FilterReport) Log(logger *logrus.Logger) {
	fields := logrus.Fields{"input": r.Input, "kept": r.Kept}
	for name, n := range r.Removed {
		fields[name] = n
	}
	logger.WithFields(fields).Info("Filtered training listings")
}

// FilterOutliers drops listings matching any outlier or validity rule. Applying it to
// its own output removes nothing.
func FilterOutliers(listings []models.Listing) ([]models.Listing, FilterReport) {
	report := FilterReport{Input: len(listings), Removed: make(map[string]int)}
	kept := make([]models.Listing, 0, len(listings))

	for i := range listings {
		rejected := false
		for _, p := range predicates {
			if p.reject(&listings[i]) {
				report.Removed[p.name]++
				rejected = true
				break
			}
		}
		if !rejected {
			kept = append(kept, listings[i])
		}
	}

	report.Kept = len(kept)
	return kept, report
}
