package config

import "immoprice/server/internal/models"

// FormOptions lists the choices offered by the estimation form
type FormOptions struct {
	Categories     []models.Category `json:"categories"`
	HouseTypes     []string          `json:"house_types"`
	ApartmentTypes []string          `json:"apartment_types"`
	Conditions     []string          `json:"conditions"`
}

// HouseTypes are the display labels offered for houses
var HouseTypes = []string{
	"House",
	"Bungalow",
	"Castle",
	"Chalet",
	"Country cottage",
	"Exceptional property",
	"Farmhouse",
	"Manor house",
	"Mansion",
	"Town house",
	"Villa",
}

// ApartmentTypes are the display labels offered for apartments
var ApartmentTypes = []string{
	"Apartment",
	"Loft",
	"Penthouse",
	"Triplex",
	"Duplex",
	"Studio",
	"Kot",
}

// ConditionLabels are ordered from best to worst
var ConditionLabels = []string{
	"As new",
	"Just renovated",
	"Good",
	"To be done up",
	"To renovate",
	"To restore",
}

// GetFormOptions returns copies of the form option lists
func GetFormOptions() FormOptions {
	return FormOptions{
		Categories:     []models.Category{models.CategoryHouse, models.CategoryApartment},
		HouseTypes:     append([]string(nil), HouseTypes...),
		ApartmentTypes: append([]string(nil), ApartmentTypes...),
		Conditions:     append([]string(nil), ConditionLabels...),
	}
}

// SubtypesFor returns the display labels offered for a category
func SubtypesFor(category models.Category) []string {
	switch category {
	case models.CategoryHouse:
		return HouseTypes
	case models.CategoryApartment:
		return ApartmentTypes
	default:
		return nil
	}
}

// IsSubtypeOffered reports whether the subtype label belongs to the category's list
func IsSubtypeOffered(category models.Category, subtype string) bool {
	for _, s := range SubtypesFor(category) {
		if s == subtype {
			return true
		}
	}
	return false
}
