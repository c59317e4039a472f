package features

import (
	"fmt"

	"immoprice/server/internal/models"
)

// subtypeRewrites maps form display labels to schema identifiers
var subtypeRewrites = map[string]string{
	"Country cottage":      "Country_Cottage",
	"Exceptional property": "Exceptional_Property",
	"Town house":           "Town_House",
	"Manor house":          "Manor_House",
	"Studio":               "Flat_Studio",
}

// NormalizeSubtype rewrites a display label to its schema identifier.
// Unlisted labels are returned unchanged.
func NormalizeSubtype(label string) string {
	if id, ok := subtypeRewrites[label]; ok {
		return id
	}
	return label
}

var conditionValues = map[string]int{
	"As new":         6,
	"Just renovated": 5,
	"Good":           4,
	"To be done up":  3,
	"To renovate":    2,
	"To restore":     1,
}

// ConditionNotMentioned is the corpus label for listings without a usable condition
const ConditionNotMentioned = "Not mentioned"

// ConditionValue maps a building condition label to its ordinal, 1 (worst) to 6 (best)
func ConditionValue(label string) (int, error) {
	v, ok := conditionValues[label]
	if !ok {
		return 0, &models.ValidationError{Field: "building_condition", Message: fmt.Sprintf("unrecognized condition %q", label)}
	}
	return v, nil
}

// ConditionLabel is the inverse of ConditionValue
func ConditionLabel(value int) (string, bool) {
	for label, v := range conditionValues {
		if v == value {
			return label, true
		}
	}
	return "", false
}

// PoolValue encodes the swimming pool flag
func PoolValue(hasPool bool) float64 {
	if hasPool {
		return 1
	}
	return 0
}
