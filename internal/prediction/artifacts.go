package prediction

import (
	"encoding/json"
	"fmt"
	"os"

	"immoprice/server/internal/models"
)

// Scaler standardizes features: (x - mean) / scale
type Scaler struct {
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// Model is a fitted linear regression
type Model struct {
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (s *Scaler) validate() error {
	n := len(s.FeatureNames)
	if n == 0 {
		return fmt.Errorf("scaler has no features")
	}
	if len(s.Mean) != n || len(s.Scale) != n {
		return fmt.Errorf("scaler has %d features but %d means and %d scales", n, len(s.Mean), len(s.Scale))
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return fmt.Errorf("scaler has zero scale for %q", s.FeatureNames[i])
		}
	}
	return nil
}

func (m *Model) validate() error {
	if len(m.FeatureNames) == 0 {
		return fmt.Errorf("model has no features")
	}
	if len(m.Coefficients) != len(m.FeatureNames) {
		return fmt.Errorf("model has %d features but %d coefficients", len(m.FeatureNames), len(m.Coefficients))
	}
	return nil
}

// checkColumns fails unless got matches want name for name, in order
func checkColumns(want, got []string) error {
	if len(want) != len(got) {
		return &models.PredictionError{Reason: fmt.Sprintf("expected %d feature columns, got %d", len(want), len(got))}
	}
	for i := range want {
		if want[i] != got[i] {
			return &models.PredictionError{Reason: fmt.Sprintf("feature column %d is %q, expected %q", i, got[i], want[i])}
		}
	}
	return nil
}

// Transform scales one row whose columns must match the fitted feature names
func (s *Scaler) Transform(columns []string, values []float64) ([]float64, error) {
	if err := checkColumns(s.FeatureNames, columns); err != nil {
		return nil, err
	}
	if len(values) != len(columns) {
		return nil, &models.PredictionError{Reason: fmt.Sprintf("%d values for %d columns", len(values), len(columns))}
	}
	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return scaled, nil
}

// Predict applies the regression to one scaled row
func (m *Model) Predict(columns []string, scaled []float64) (float64, error) {
	if err := checkColumns(m.FeatureNames, columns); err != nil {
		return 0, err
	}
	if len(scaled) != len(columns) {
		return 0, &models.PredictionError{Reason: fmt.Sprintf("%d values for %d columns", len(scaled), len(columns))}
	}
	y := m.Intercept
	for i, x := range scaled {
		y += m.Coefficients[i] * x
	}
	return y, nil
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &models.DataLoadError{Path: path, Reason: "cannot read artifact", Err: err}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &models.DataLoadError{Path: path, Reason: "corrupt artifact", Err: err}
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadScaler reads a scaler artifact
func LoadScaler(path string) (*Scaler, error) {
	var s Scaler
	if err := readJSON(path, &s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, &models.DataLoadError{Path: path, Reason: "invalid scaler", Err: err}
	}
	return &s, nil
}

// LoadModel reads a model artifact
func LoadModel(path string) (*Model, error) {
	var m Model
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, &models.DataLoadError{Path: path, Reason: "invalid model", Err: err}
	}
	return &m, nil
}

// SaveScaler writes a scaler artifact
func SaveScaler(path string, s *Scaler) error {
	return writeJSON(path, s)
}

// SaveModel writes a model artifact
func SaveModel(path string, m *Model) error {
	return writeJSON(path, m)
}
