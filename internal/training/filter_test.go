package training

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"immoprice/server/internal/models"
)

func area(v float64) *float64 {
	return &v
}

func listing(category models.Category, subtype string, price, living float64) models.Listing {
	return models.Listing{
		Category:          category,
		Subtype:           subtype,
		Price:             price,
		LivingArea:        area(living),
		PlotSurface:       area(200),
		BuildingCondition: "Good",
		PostalCode:        1000,
	}
}

func TestFilterOutliersRules(t *testing.T) {
	noArea := listing(models.CategoryHouse, "House", 300000, 0)
	noArea.LivingArea = nil
	notMentioned := listing(models.CategoryHouse, "House", 300000, 150)
	notMentioned.BuildingCondition = "Not mentioned"

	tests := []struct {
		name    string
		listing models.Listing
		rule    string
	}{
		{"price above max", listing(models.CategoryHouse, "Villa", 2_500_001, 300), "price_above_max"},
		{"other property", listing(models.CategoryHouse, "Other_Property", 300000, 150), "other_property"},
		{"large mixed use", listing(models.CategoryHouse, "Mixed_Use_Building", 900000, 1201), "mixed_use_too_large"},
		{"large apartment", listing(models.CategoryApartment, "Apartment", 500000, 451), "apartment_too_large"},
		{"expensive apartment", listing(models.CategoryApartment, "Penthouse", 1_000_001, 200), "apartment_too_expensive"},
		{"large house", listing(models.CategoryHouse, "Castle", 2_000_000, 1201), "house_too_large"},
		{"unknown category", listing("Land", "Land", 100000, 10), "unknown_category"},
		{"missing living area", noArea, "missing_living_area"},
		{"condition not mentioned", notMentioned, "condition_not_mentioned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, report := FilterOutliers([]models.Listing{tt.listing})
			assert.Empty(t, kept)
			assert.Equal(t, 1, report.Removed[tt.rule])
			assert.Equal(t, 1, report.Input)
			assert.Equal(t, 0, report.Kept)
		})
	}
}

func TestFilterOutliersKeepsBoundaryValues(t *testing.T) {
	rows := []models.Listing{
		listing(models.CategoryHouse, "Villa", 2_500_000, 1200),
		listing(models.CategoryApartment, "Apartment", 1_000_000, 450),
		listing(models.CategoryHouse, "Mixed_Use_Building", 800000, 1200),
	}
	kept, report := FilterOutliers(rows)
	assert.Len(t, kept, 3)
	assert.Empty(t, report.Removed)
}

func TestFilterOutliersIsIdempotent(t *testing.T) {
	rows := []models.Listing{
		listing(models.CategoryHouse, "Villa", 2_600_000, 300),
		listing(models.CategoryHouse, "House", 300000, 150),
		listing(models.CategoryApartment, "Apartment", 250000, 90),
		listing(models.CategoryApartment, "Apartment", 250000, 500),
		listing("Garage", "Garage", 20000, 15),
		listing(models.CategoryHouse, "Town_House", 400000, 180),
	}

	once, first := FilterOutliers(rows)
	twice, second := FilterOutliers(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, 3, first.Kept)
	assert.Empty(t, second.Removed)
}
