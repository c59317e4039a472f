package training

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immoprice/server/internal/features"
	"immoprice/server/internal/models"
	"immoprice/server/internal/reference"
)

func ptr(v float64) *float64 {
	return &v
}

func testTable() *reference.Table {
	return reference.NewTable([]models.PostalCodeRecord{
		{PostalCode: 1000, District: 21000, Province: "Brussels", MeanIncome: ptr(18000), HouseMedianPrice: ptr(450000), ApartmentMedianPrice: ptr(260000)},
		{PostalCode: 1020, District: 21000, Province: "Brussels", MeanIncome: ptr(16000), HouseMedianPrice: ptr(440000), ApartmentMedianPrice: nil},
		{PostalCode: 3700, District: 37000, Province: "Limburg", MeanIncome: nil, HouseMedianPrice: ptr(260000), ApartmentMedianPrice: ptr(190000)},
	}, "test")
}

func TestPrepareImputesAndEncodes(t *testing.T) {
	plotless := listing(models.CategoryHouse, "House", 500000, 160)
	plotless.PlotSurface = nil
	plotless.PostalCode = 1020

	studio := listing(models.CategoryApartment, "Studio", 150000, 30)
	studio.PostalCode = 1020
	studio.PlotSurface = area(0)

	listings := []models.Listing{
		listing(models.CategoryHouse, "House", 480000, 150),
		plotless,
		studio,
		{Category: models.CategoryHouse, Subtype: "Villa", Price: 300000, LivingArea: area(200), BuildingCondition: "Good", PostalCode: 9999},
		listing(models.CategoryHouse, "Mixed_Use_Building", 400000, 300),
		listing(models.CategoryApartment, "Penthouse", 350000, 120),
	}
	limburg := listing(models.CategoryHouse, "Villa", 600000, 250)
	limburg.PostalCode = 3700
	listings = append(listings, limburg)

	enc := features.DefaultEncoder()
	ds, report := Prepare(listings, testTable(), enc, logrus.New())

	assert.Equal(t, 7, report.Corpus)
	assert.Equal(t, 1, report.Unmatched)
	assert.Equal(t, 1, report.PlotFilled)
	assert.Equal(t, 1, report.MedianFilled)
	assert.Equal(t, 1, report.UnknownSubtype)
	assert.Equal(t, 1, report.Incomplete)
	require.Equal(t, 4, ds.Len())
	assert.Equal(t, enc.Schema().Columns(), ds.Columns)

	// Plot surface borrowed from the house in the same district
	plot, _ := features.Vector{Columns: ds.Columns, Values: ds.X[1]}.Get(features.ColPlotSurface)
	assert.Equal(t, 200.0, plot)

	// The studio's missing apartment median comes from the penthouse in Brussels
	row := features.Vector{Columns: ds.Columns, Values: ds.X[2]}
	median, _ := row.Get(features.ColMedianPrice)
	assert.Equal(t, 260000.0, median)
	flat, _ := row.Get(features.SubtypeColumn("Flat_Studio"))
	assert.Equal(t, 1.0, flat)
	assert.Equal(t, []float64{480000, 500000, 150000, 350000}, ds.Y)
}

func TestPrepareMatchesInferenceEncoding(t *testing.T) {
	enc := features.DefaultEncoder()
	l := listing(models.CategoryHouse, "Town house", 420000, 180)
	l.SwimmingPool = true

	ds, _ := Prepare([]models.Listing{l}, testTable(), enc, nil)
	require.Equal(t, 1, ds.Len())

	record, ok := testTable().Lookup(1000)
	require.True(t, ok)
	vec, err := enc.Encode(models.PropertyQuery{
		Category:          models.CategoryHouse,
		Subtype:           "Town house",
		PostalCode:        1000,
		LivingArea:        180,
		PlotSurface:       200,
		BuildingCondition: "Good",
		SwimmingPool:      true,
	}, record)
	require.NoError(t, err)
	assert.Equal(t, vec.Values, ds.X[0])
}

func TestDatasetSubset(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"a"},
		X:       [][]float64{{1}, {2}, {3}},
		Y:       []float64{10, 20, 30},
	}
	sub := ds.Subset([]int{2, 0})
	assert.Equal(t, [][]float64{{3}, {1}}, sub.X)
	assert.Equal(t, []float64{30, 10}, sub.Y)
}
