// Package csvutil reads the header-addressed CSV exports shared by the reference
// and training datasets.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table is a fully read CSV file addressed by header name
type Table struct {
	Source  string
	Rows    [][]string
	columns map[string]int
}

func ReadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file, path)
}

// Read consumes r entirely. Header names are trimmed and a leading byte order mark is
// dropped. When a header repeats, the first column wins.
func Read(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &Table{Source: source, columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := t.columns[name]; !dup {
			t.columns[name] = i
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// Missing returns the required columns absent from the header
func (t *Table) Missing(required ...string) []string {
	var absent []string
	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			absent = append(absent, col)
		}
	}
	return absent
}

// Get returns the trimmed cell of row under col, empty when the column or cell is absent
func (t *Table) Get(row []string, col string) string {
	i, ok := t.columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseFloat converts a cell to a float pointer, nil for blank or NaN cells
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

// ParseCode converts an integer identifier that may be written as "37000.0"
func ParseCode(s string) (int, bool) {
	f := ParseFloat(s)
	if f == nil || *f != math.Trunc(*f) {
		return 0, false
	}
	return int(*f), true
}

func FormatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
