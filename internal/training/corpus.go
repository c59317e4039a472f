package training

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"immoprice/server/internal/csvutil"
	"immoprice/server/internal/models"
)

// Corpus columns of the scraped listings dataset
const (
	colProperty          = "Property"
	colPropertyType      = "Property type"
	colPrice             = "Price"
	colLivingArea        = "Living area"
	colPlotSurface       = "Surface of the plot"
	colBuildingCondition = "Building condition"
	colSwimmingPool      = "Swimming pool"
	colZipCode           = "Zip code"
)

var corpusColumns = []string{
	colProperty,
	colPropertyType,
	colPrice,
	colLivingArea,
	colPlotSurface,
	colBuildingCondition,
	colSwimmingPool,
	colZipCode,
}

// LoadCorpus reads the historical listings CSV
func LoadCorpus(path string, logger *logrus.Logger) ([]models.Listing, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &models.DataLoadError{Path: path, Reason: "cannot open corpus", Err: err}
	}
	defer file.Close()

	return ParseCorpus(file, path, logger)
}

// ParseCorpus reads listings from r. Rows without a usable price or zip code are skipped.
func ParseCorpus(r io.Reader, source string, logger *logrus.Logger) ([]models.Listing, error) {
	raw, err := csvutil.Read(r, source)
	if err != nil {
		return nil, &models.DataLoadError{Path: source, Reason: "malformed CSV", Err: err}
	}
	if absent := raw.Missing(corpusColumns...); len(absent) > 0 {
		return nil, &models.DataLoadError{
			Path:   source,
			Reason: fmt.Sprintf("missing required columns: %s", strings.Join(absent, ", ")),
		}
	}

	var listings []models.Listing
	skipped := 0
	for _, row := range raw.Rows {
		price := csvutil.ParseFloat(raw.Get(row, colPrice))
		zip, ok := csvutil.ParseCode(raw.Get(row, colZipCode))
		if price == nil || !ok {
			skipped++
			continue
		}

		listings = append(listings, models.Listing{
			Category:          models.Category(raw.Get(row, colProperty)),
			Subtype:           raw.Get(row, colPropertyType),
			Price:             *price,
			LivingArea:        csvutil.ParseFloat(raw.Get(row, colLivingArea)),
			PlotSurface:       csvutil.ParseFloat(raw.Get(row, colPlotSurface)),
			BuildingCondition: raw.Get(row, colBuildingCondition),
			SwimmingPool:      parseFlag(raw.Get(row, colSwimmingPool)),
			PostalCode:        zip,
		})
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"source":   source,
			"listings": len(listings),
			"skipped":  skipped,
		}).Info("Loaded training corpus")
	}
	return listings, nil
}

// parseFlag accepts the boolean spellings found in exported datasets
func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "yes", "y":
		return true
	}
	return false
}
