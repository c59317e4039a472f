package features

import (
	"fmt"
	"strconv"
)

// Continuous feature columns, in model order
const (
	ColLivingArea        = "living_area"
	ColPlotSurface       = "plot_surface"
	ColBuildingCondition = "building_condition"
	ColSwimmingPool      = "swimming_pool"
	ColMeanIncome        = "mean_income"
	ColMedianPrice       = "median_price"
)

const (
	subtypePrefix  = "subtype_"
	districtPrefix = "district_"
)

// BaselineSubtype and BaselineDistrict are the categories dropped from the one-hot
// encoding. They are represented by all indicators being zero.
const (
	BaselineSubtype  = "Apartment"
	BaselineDistrict = 11000
)

var continuousColumns = []string{
	ColLivingArea,
	ColPlotSurface,
	ColBuildingCondition,
	ColSwimmingPool,
	ColMeanIncome,
	ColMedianPrice,
}

// subtypeCategories are the schema identifiers with an indicator column
var subtypeCategories = []string{
	"Bungalow",
	"Castle",
	"Chalet",
	"Country_Cottage",
	"Duplex",
	"Exceptional_Property",
	"Farmhouse",
	"Flat_Studio",
	"House",
	"Kot",
	"Loft",
	"Manor_House",
	"Mansion",
	"Penthouse",
	"Town_House",
	"Triplex",
	"Villa",
}

// districtCodes are the refnis districts with an indicator column
var districtCodes = []int{
	12000, 13000,
	21000, 23000, 24000, 25000,
	31000, 32000, 33000, 34000, 35000, 36000, 37000, 38000,
	41000, 42000, 43000, 44000, 45000, 46000,
	51000, 52000, 53000, 55000, 56000, 57000, 58000,
	61000, 62000, 63000, 64000,
	71000, 72000, 73000,
	81000, 82000, 83000, 84000, 85000,
	91000, 92000, 93000,
}

// SubtypeColumn names the indicator column of a subtype identifier
func SubtypeColumn(subtype string) string {
	return subtypePrefix + subtype
}

// DistrictColumn names the indicator column of a district code
func DistrictColumn(code int) string {
	return districtPrefix + strconv.Itoa(code)
}

// Schema is an ordered, duplicate-free list of feature columns
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a schema from column names
func NewSchema(columns []string) (*Schema, error) {
	s := &Schema{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := s.index[c]; dup {
			return nil, fmt.Errorf("duplicate feature column %q", c)
		}
		s.index[c] = i
	}
	return s, nil
}

var defaultSchema = func() *Schema {
	columns := append([]string(nil), continuousColumns...)
	for _, st := range subtypeCategories {
		columns = append(columns, SubtypeColumn(st))
	}
	for _, code := range districtCodes {
		columns = append(columns, DistrictColumn(code))
	}
	s, err := NewSchema(columns)
	if err != nil {
		panic(err)
	}
	return s
}()

// DefaultSchema returns the column layout the regression was trained on
func DefaultSchema() *Schema {
	return defaultSchema
}

// Columns returns a copy of the column names in order
func (s *Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

func (s *Schema) Len() int {
	return len(s.columns)
}

// Index returns the position of a column
func (s *Schema) Index(column string) (int, bool) {
	i, ok := s.index[column]
	return i, ok
}

// Vector is one encoded row, Values aligned with Columns
type Vector struct {
	Columns []string  `json:"columns"`
	Values  []float64 `json:"values"`
}

// Get returns the value of a named column
func (v Vector) Get(column string) (float64, bool) {
	for i, c := range v.Columns {
		if c == column {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Map returns the vector as column -> value
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.Columns))
	for i, c := range v.Columns {
		m[c] = v.Values[i]
	}
	return m
}
