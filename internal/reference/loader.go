package reference

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"immoprice/server/internal/csvutil"
	"immoprice/server/internal/models"
)

// Reference CSV columns
const (
	ColPostalCode      = "Postal code"
	ColCommune         = "commune"
	ColDistrict        = "district"
	ColMeanIncome      = "mean-income"
	ColMedianIncome    = "median-income"
	ColHouseMedian     = "house-median-price"
	ColApartmentMedian = "apartment-median-price"
)

var requiredColumns = []string{ColPostalCode, ColDistrict, ColMeanIncome, ColHouseMedian, ColApartmentMedian}

// districtOverrides repairs rows whose district is missing from the source data
var districtOverrides = map[int]int{
	3717: 37000,
}

// Load reads the reference CSV at path and returns the enriched table
func Load(path string, logger *logrus.Logger) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &models.DataLoadError{Path: path, Reason: "cannot open reference file", Err: err}
	}
	defer file.Close()

	return Parse(file, path, logger)
}

// Parse reads a reference table from r. source names the input in errors and logs.
func Parse(r io.Reader, source string, logger *logrus.Logger) (*Table, error) {
	raw, err := csvutil.Read(r, source)
	if err != nil {
		return nil, &models.DataLoadError{Path: source, Reason: "malformed CSV", Err: err}
	}
	if absent := raw.Missing(requiredColumns...); len(absent) > 0 {
		return nil, &models.DataLoadError{Path: source, Reason: "missing required columns: " + strings.Join(absent, ", ")}
	}

	records := make([]models.PostalCodeRecord, 0, len(raw.Rows))
	patched, missingDistrict := 0, 0
	for line, row := range raw.Rows {
		postalCode, ok := csvutil.ParseCode(raw.Get(row, ColPostalCode))
		if !ok {
			return nil, &models.DataLoadError{Path: source, Reason: fmt.Sprintf("row %d: invalid postal code %q", line+2, raw.Get(row, ColPostalCode))}
		}

		district, ok := csvutil.ParseCode(raw.Get(row, ColDistrict))
		if override, has := districtOverrides[postalCode]; has {
			if !ok || district != override {
				patched++
			}
			district, ok = override, true
		}
		if !ok {
			// Unresolvable rows are left out so the postal code reads as unknown.
			missingDistrict++
			continue
		}

		records = append(records, models.PostalCodeRecord{
			PostalCode:           postalCode,
			Commune:              raw.Get(row, ColCommune),
			District:             district,
			Province:             ClassifyProvince(postalCode),
			MeanIncome:           csvutil.ParseFloat(raw.Get(row, ColMeanIncome)),
			HouseMedianPrice:     csvutil.ParseFloat(raw.Get(row, ColHouseMedian)),
			ApartmentMedianPrice: csvutil.ParseFloat(raw.Get(row, ColApartmentMedian)),
		})
	}

	report := ImputeMedians(records)
	table := NewTable(records, source)

	if logger != nil {
		entry := logger.WithFields(logrus.Fields{
			"source":               source,
			"rows":                 len(records),
			"postal_codes":         table.Len(),
			"districts_patched":    patched,
			"districts_missing":    missingDistrict,
			"house_filled":         report.HouseFilled,
			"apartment_filled":     report.ApartmentFilled,
			"house_unresolved":     report.HouseUnresolved,
			"apartment_unresolved": report.ApartmentUnresolved,
		})
		if report.HouseUnresolved > 0 || report.ApartmentUnresolved > 0 {
			entry.Warn("Reference table loaded with unresolved median prices")
		} else {
			entry.Info("Reference table loaded")
		}
	}

	return table, nil
}
