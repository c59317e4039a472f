package reference

// ProvinceUnknown is returned for postal codes matched by no province band
const ProvinceUnknown = "Unknown"

type postalBand struct {
	low, high int
}

type provinceRule struct {
	name  string
	bands []postalBand
}

// provinceRules follow the Belgian postal-code convention used when the model was trained.
// Evaluated in order, first match wins. 5681-5999 intentionally matches nothing.
var provinceRules = []provinceRule{
	{name: "Brussels", bands: []postalBand{{1000, 1299}}},
	{name: "Brabant Wallon", bands: []postalBand{{1300, 1499}}},
	{name: "Vlaams-Brabant", bands: []postalBand{{1500, 1999}, {3000, 3499}}},
	{name: "Antwerp", bands: []postalBand{{2000, 2999}}},
	{name: "Limburg", bands: []postalBand{{3500, 3999}}},
	{name: "Liège", bands: []postalBand{{4000, 4999}}},
	{name: "Namur", bands: []postalBand{{5000, 5680}}},
	{name: "Hainaut", bands: []postalBand{{6000, 6599}, {7000, 7999}}},
	{name: "Luxembourg", bands: []postalBand{{6600, 6999}}},
	{name: "West-Vlaanderen", bands: []postalBand{{8000, 8999}}},
	{name: "Oost-Vlaanderen", bands: []postalBand{{9000, 9999}}},
}

// Provinces returns the eleven province labels in rule order
func Provinces() []string {
	names := make([]string, len(provinceRules))
	for i, rule := range provinceRules {
		names[i] = rule.name
	}
	return names
}

func (r provinceRule) matches(postalCode int) bool {
	for _, b := range r.bands {
		if postalCode >= b.low && postalCode <= b.high {
			return true
		}
	}
	return false
}

// ClassifyProvince maps a postal code to its province label
func ClassifyProvince(postalCode int) string {
	if postalCode < 1000 || postalCode > 9999 {
		return ProvinceUnknown
	}
	for _, rule := range provinceRules {
		if rule.matches(postalCode) {
			return rule.name
		}
	}
	return ProvinceUnknown
}
