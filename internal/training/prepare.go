package training

import (
	"errors"

	"github.com/sirupsen/logrus"

	"immoprice/server/internal/features"
	"immoprice/server/internal/models"
	"immoprice/server/internal/reference"
)

// Dataset is the encoded design matrix and target
type Dataset struct {
	Columns []string
	X       [][]float64
	Y       []float64
}

func (d *Dataset) Len() int {
	return len(d.Y)
}

// Subset returns the rows at the given indexes
func (d *Dataset) Subset(rows []int) *Dataset {
	out := &Dataset{
		Columns: d.Columns,
		X:       make([][]float64, len(rows)),
		Y:       make([]float64, len(rows)),
	}
	for i, r := range rows {
		out.X[i] = d.X[r]
		out.Y[i] = d.Y[r]
	}
	return out
}

// PrepareReport summarizes how many listings survived each stage
type PrepareReport struct {
	Corpus           int
	Unmatched        int
	Filter           FilterReport
	PlotFilled       int
	MedianFilled     int
	Incomplete       int
	UnknownSubtype   int
	InvalidCondition int
	Encoded          int
}

// merged is a listing joined with its reference record
type merged struct {
	listing     models.Listing
	district    int
	province    string
	meanIncome  *float64
	medianPrice *float64
}

type provinceCategory struct {
	province string
	category models.Category
}

// Prepare joins the corpus with the reference table, filters and imputes it, and
// encodes every remaining listing with enc.
func Prepare(listings []models.Listing, table *reference.Table, enc *features.Encoder, logger *logrus.Logger) (*Dataset, PrepareReport) {
	report := PrepareReport{Corpus: len(listings)}

	matched := make([]models.Listing, 0, len(listings))
	records := make(map[int]*models.PostalCodeRecord)
	for _, l := range listings {
		rec, ok := table.Lookup(l.PostalCode)
		if !ok {
			report.Unmatched++
			continue
		}
		records[l.PostalCode] = rec
		matched = append(matched, l)
	}

	kept, filterReport := FilterOutliers(matched)
	report.Filter = filterReport

	rows := make([]merged, len(kept))
	for i, l := range kept {
		rec := records[l.PostalCode]
		rows[i] = merged{
			listing:     l,
			district:    rec.District,
			province:    rec.Province,
			meanIncome:  rec.MeanIncome,
			medianPrice: rec.MedianPriceFor(l.Category),
		}
	}

	report.PlotFilled, _ = reference.FillGroupMedian(rows,
		func(m *merged) int { return m.district },
		func(m *merged) *float64 { return m.listing.PlotSurface },
		func(m *merged, v float64) { m.listing.PlotSurface = &v },
	)
	report.MedianFilled, _ = reference.FillGroupMedian(rows,
		func(m *merged) provinceCategory { return provinceCategory{m.province, m.listing.Category} },
		func(m *merged) *float64 { return m.medianPrice },
		func(m *merged, v float64) { m.medianPrice = &v },
	)

	ds := &Dataset{Columns: enc.Schema().Columns()}
	for _, m := range rows {
		l := m.listing
		if l.LivingArea == nil || l.PlotSurface == nil || m.meanIncome == nil || m.medianPrice == nil {
			report.Incomplete++
			continue
		}
		if !enc.HasSubtypeColumn(l.Subtype) {
			report.UnknownSubtype++
			continue
		}

		vec, err := enc.EncodeInput(features.Input{
			Category:          l.Category,
			Subtype:           l.Subtype,
			LivingArea:        *l.LivingArea,
			PlotSurface:       *l.PlotSurface,
			BuildingCondition: l.BuildingCondition,
			SwimmingPool:      l.SwimmingPool,
			MeanIncome:        *m.meanIncome,
			MedianPrice:       *m.medianPrice,
			District:          m.district,
		})
		if err != nil {
			var validationErr *models.ValidationError
			if errors.As(err, &validationErr) {
				report.InvalidCondition++
				continue
			}
			report.Incomplete++
			continue
		}
		ds.X = append(ds.X, vec.Values)
		ds.Y = append(ds.Y, l.Price)
	}
	report.Encoded = ds.Len()

	if logger != nil {
		report.Filter.Log(logger)
		logger.WithFields(logrus.Fields{
			"corpus":            report.Corpus,
			"unmatched":         report.Unmatched,
			"plot_filled":       report.PlotFilled,
			"median_filled":     report.MedianFilled,
			"incomplete":        report.Incomplete,
			"unknown_subtype":   report.UnknownSubtype,
			"invalid_condition": report.InvalidCondition,
			"encoded":           report.Encoded,
		}).Info("Prepared training dataset")
	}
	return ds, report
}
