package models

// Category is the top-level property kind offered by the form
type Category string

const (
	CategoryHouse     Category = "House"
	CategoryApartment Category = "Apartment"
)

// Valid reports whether the category is one the model was trained on
func (c Category) Valid() bool {
	return c == CategoryHouse || c == CategoryApartment
}

// PropertyQuery is the raw input collected by the estimation form
type PropertyQuery struct {
	Category          Category `json:"category"`
	Subtype           string   `json:"subtype"`
	PostalCode        int      `json:"postal_code"`
	LivingArea        float64  `json:"living_area"`
	PlotSurface       float64  `json:"plot_surface"`
	BuildingCondition string   `json:"building_condition"`
	SwimmingPool      bool     `json:"swimming_pool"`
}

// PostalCodeRecord is one row of the enriched reference table
type PostalCodeRecord struct {
	PostalCode           int      `json:"postal_code"`
	Commune              string   `json:"commune,omitempty"`
	District             int      `json:"district"`
	Province             string   `json:"province"`
	MeanIncome           *float64 `json:"mean_income"`
	HouseMedianPrice     *float64 `json:"house_median_price"`
	ApartmentMedianPrice *float64 `json:"apartment_median_price"`
}

// MedianPriceFor returns the district sale statistic matching the category.
// Houses use the house median, everything else the apartment median.
func (r *PostalCodeRecord) MedianPriceFor(category Category) *float64 {
	if category == CategoryHouse {
		return r.HouseMedianPrice
	}
	return r.ApartmentMedianPrice
}

// Listing is one historical sale from the training corpus
type Listing struct {
	Category          Category
	Subtype           string
	Price             float64
	LivingArea        *float64
	PlotSurface       *float64
	BuildingCondition string
	SwimmingPool      bool
	PostalCode        int
}
