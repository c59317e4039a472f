package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"immoprice/server/internal/csvutil"
	"immoprice/server/internal/models"
)

// Sources lists the raw statistics files joined into the reference table
type Sources struct {
	ZipCodesPath     string
	MedianIncomePath string
	MeanIncomePath   string
	SalesPath        string

	// Only rows of these years are kept
	IncomeYear int
	SalesYear  int
}

// DefaultSources uses the file names of the published statistics
func DefaultSources(dir string) Sources {
	return Sources{
		ZipCodesPath:     dir + "/code-nis-zip-code.csv",
		MedianIncomePath: dir + "/median-income-2022.csv",
		MeanIncomePath:   dir + "/mean-income-2022.csv",
		SalesPath:        dir + "/sales-real-estates-belgium-district.csv",
		IncomeYear:       2022,
		SalesYear:        2023,
	}
}

// SourceRow is one joined row before district repair and imputation
type SourceRow struct {
	PostalCode      int
	Commune         string
	District        *int
	MeanIncome      *float64
	MedianIncome    *float64
	HouseMedian     *float64
	ApartmentMedian *float64
}

type municipalityIncome struct {
	district *int
	median   *float64
}

type districtSales struct {
	house     *float64
	apartment *float64
}

// Build joins the raw sources: zip codes to municipal income on the municipality refnis,
// then to mean income on the commune name, then to district sales on the district refnis.
// Joins are left joins, unmatched fields stay nil.
func Build(src Sources, logger *logrus.Logger) ([]SourceRow, error) {
	var zips, medianIncome, meanIncome, sales *csvutil.Table

	var g errgroup.Group
	load := func(path string, dst **csvutil.Table, required ...string) {
		g.Go(func() error {
			t, err := csvutil.ReadFile(path)
			if err != nil {
				return &models.DataLoadError{Path: path, Reason: "cannot read source", Err: err}
			}
			if absent := t.Missing(required...); len(absent) > 0 {
				return &models.DataLoadError{Path: path, Reason: fmt.Sprintf("missing required columns: %v", absent)}
			}
			*dst = t
			return nil
		})
	}
	load(src.ZipCodesPath, &zips, "Postal code", "Refnis code", "Nom commune")
	load(src.MedianIncomePath, &medianIncome, "CD_MUNTY_REFNIS", "CD_DSTR_REFNIS", "CD_YEAR", "MS_MEDIAN")
	load(src.MeanIncomePath, &meanIncome, "Nom", "Revenu")
	load(src.SalesPath, &sales, "refnis", "année", "prix médian(€)-maison", "prix médian(€)-appartement")
	if err := g.Wait(); err != nil {
		return nil, err
	}

	incomeByMunicipality := indexMedianIncome(medianIncome, src.IncomeYear)
	meanByCommune := indexMeanIncome(meanIncome)
	salesByDistrict := indexSales(sales, src.SalesYear)

	rows := make([]SourceRow, 0, len(zips.Rows))
	var unmatchedIncome, unmatchedSales int
	for _, record := range zips.Rows {
		postalCode, ok := csvutil.ParseCode(zips.Get(record, "Postal code"))
		if !ok {
			continue
		}
		row := SourceRow{PostalCode: postalCode, Commune: zips.Get(record, "Nom commune")}

		if refnis, ok := csvutil.ParseCode(zips.Get(record, "Refnis code")); ok {
			if inc, found := incomeByMunicipality[refnis]; found {
				row.District = inc.district
				row.MedianIncome = inc.median
			}
		}
		if row.District == nil {
			unmatchedIncome++
		}

		row.MeanIncome = meanByCommune[row.Commune]

		if row.District != nil {
			if s, found := salesByDistrict[*row.District]; found {
				row.HouseMedian = s.house
				row.ApartmentMedian = s.apartment
			} else {
				unmatchedSales++
			}
		}

		rows = append(rows, row)
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"rows":             len(rows),
			"unmatched_income": unmatchedIncome,
			"unmatched_sales":  unmatchedSales,
			"income_year":      src.IncomeYear,
			"sales_year":       src.SalesYear,
		}).Info("Joined reference sources")
	}
	return rows, nil
}

func indexMedianIncome(t *csvutil.Table, year int) map[int]municipalityIncome {
	index := make(map[int]municipalityIncome)
	for _, row := range t.Rows {
		if y, ok := csvutil.ParseCode(t.Get(row, "CD_YEAR")); !ok || y != year {
			continue
		}
		refnis, ok := csvutil.ParseCode(t.Get(row, "CD_MUNTY_REFNIS"))
		if !ok {
			continue
		}
		if _, seen := index[refnis]; seen {
			continue
		}
		inc := municipalityIncome{median: csvutil.ParseFloat(t.Get(row, "MS_MEDIAN"))}
		if d, ok := csvutil.ParseCode(t.Get(row, "CD_DSTR_REFNIS")); ok {
			inc.district = &d
		}
		index[refnis] = inc
	}
	return index
}

func indexMeanIncome(t *csvutil.Table) map[string]*float64 {
	index := make(map[string]*float64)
	for _, row := range t.Rows {
		name := t.Get(row, "Nom")
		if _, seen := index[name]; seen || name == "" {
			continue
		}
		index[name] = csvutil.ParseFloat(t.Get(row, "Revenu"))
	}
	return index
}

// indexSales averages the yearly median prices of each district, ignoring blanks
func indexSales(t *csvutil.Table, year int) map[int]districtSales {
	type acc struct {
		houseSum, aptSum     float64
		houseCount, aptCount int
	}
	sums := make(map[int]*acc)
	for _, row := range t.Rows {
		if y, ok := csvutil.ParseCode(t.Get(row, "année")); !ok || y != year {
			continue
		}
		refnis, ok := csvutil.ParseCode(t.Get(row, "refnis"))
		if !ok {
			continue
		}
		a := sums[refnis]
		if a == nil {
			a = &acc{}
			sums[refnis] = a
		}
		if v := csvutil.ParseFloat(t.Get(row, "prix médian(€)-maison")); v != nil {
			a.houseSum += *v
			a.houseCount++
		}
		if v := csvutil.ParseFloat(t.Get(row, "prix médian(€)-appartement")); v != nil {
			a.aptSum += *v
			a.aptCount++
		}
	}

	index := make(map[int]districtSales, len(sums))
	for refnis, a := range sums {
		var s districtSales
		if a.houseCount > 0 {
			v := a.houseSum / float64(a.houseCount)
			s.house = &v
		}
		if a.aptCount > 0 {
			v := a.aptSum / float64(a.aptCount)
			s.apartment = &v
		}
		index[refnis] = s
	}
	return index
}

// WriteCSV writes joined rows in the reference table format read by Load
func WriteCSV(w io.Writer, rows []SourceRow) error {
	writer := csv.NewWriter(w)
	header := []string{ColPostalCode, ColCommune, ColDistrict, ColMeanIncome, ColMedianIncome, ColHouseMedian, ColApartmentMedian}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range rows {
		district := ""
		if r.District != nil {
			district = strconv.Itoa(*r.District)
		}
		record := []string{
			strconv.Itoa(r.PostalCode),
			r.Commune,
			district,
			csvutil.FormatFloat(r.MeanIncome),
			csvutil.FormatFloat(r.MedianIncome),
			csvutil.FormatFloat(r.HouseMedian),
			csvutil.FormatFloat(r.ApartmentMedian),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write postal code %d: %w", r.PostalCode, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes joined rows to path
func WriteCSVFile(path string, rows []SourceRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, rows); err != nil {
		return err
	}
	return file.Close()
}
