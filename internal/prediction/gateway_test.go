package prediction

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immoprice/server/internal/features"
	"immoprice/server/internal/models"
)

func smallArtifacts() (*Scaler, *Model) {
	names := []string{"living_area", "swimming_pool"}
	return &Scaler{
			FeatureNames: names,
			Mean:         []float64{100, 0.5},
			Scale:        []float64{50, 0.5},
		}, &Model{
			FeatureNames: names,
			Coefficients: []float64{1000, 200},
			Intercept:    300000,
		}
}

func TestGatewayPredict(t *testing.T) {
	scaler, model := smallArtifacts()
	g, err := NewGateway(scaler, model)
	require.NoError(t, err)

	price, err := g.Predict(features.Vector{
		Columns: []string{"living_area", "swimming_pool"},
		Values:  []float64{150, 1},
	})
	require.NoError(t, err)
	// (150-100)/50 = 1, (1-0.5)/0.5 = 1
	assert.InDelta(t, 301200, price, 1e-9)
}

func TestGatewayRejectsColumnMismatch(t *testing.T) {
	scaler, model := smallArtifacts()
	g, err := NewGateway(scaler, model)
	require.NoError(t, err)

	tests := []struct {
		name    string
		columns []string
		values  []float64
	}{
		{"missing column", []string{"living_area"}, []float64{150}},
		{"reordered", []string{"swimming_pool", "living_area"}, []float64{1, 150}},
		{"renamed", []string{"living_area", "pool"}, []float64{150, 1}},
		{"extra column", []string{"living_area", "swimming_pool", "plot_surface"}, []float64{150, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Predict(features.Vector{Columns: tt.columns, Values: tt.values})
			var predErr *models.PredictionError
			assert.True(t, errors.As(err, &predErr), "got %v", err)
		})
	}
}

func TestNewGatewayRequiresMatchingArtifacts(t *testing.T) {
	scaler, model := smallArtifacts()
	model.FeatureNames = []string{"swimming_pool", "living_area"}
	_, err := NewGateway(scaler, model)
	assert.Error(t, err)

	scaler, model = smallArtifacts()
	model.Coefficients = model.Coefficients[:1]
	_, err = NewGateway(scaler, model)
	assert.Error(t, err)

	scaler, model = smallArtifacts()
	scaler.Scale[1] = 0
	_, err = NewGateway(scaler, model)
	assert.Error(t, err)
}

func TestArtifactsRoundTripThroughFiles(t *testing.T) {
	dir := t.TempDir()
	scalerPath := filepath.Join(dir, "scaler.json")
	modelPath := filepath.Join(dir, "model.json")

	scaler, model := smallArtifacts()
	require.NoError(t, SaveScaler(scalerPath, scaler))
	require.NoError(t, SaveModel(modelPath, model))

	g, err := LoadGateway(scalerPath, modelPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"living_area", "swimming_pool"}, g.FeatureNames())
}

func TestLoadArtifactErrors(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0644))
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"feature_names": []}`), 0644))

	tests := []struct {
		name string
		load func() error
	}{
		{"missing scaler", func() error { _, err := LoadScaler(filepath.Join(dir, "nope.json")); return err }},
		{"missing model", func() error { _, err := LoadModel(filepath.Join(dir, "nope.json")); return err }},
		{"corrupt scaler", func() error { _, err := LoadScaler(corrupt); return err }},
		{"corrupt model", func() error { _, err := LoadModel(corrupt); return err }},
		{"empty model", func() error { _, err := LoadModel(empty); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.load()
			var loadErr *models.DataLoadError
			assert.True(t, errors.As(err, &loadErr), "got %v", err)
		})
	}
}

func TestCheckSchema(t *testing.T) {
	scaler, model := smallArtifacts()
	g, err := NewGateway(scaler, model)
	require.NoError(t, err)
	assert.Error(t, g.CheckSchema(features.DefaultSchema()))

	names := features.DefaultSchema().Columns()
	n := len(names)
	g, err = NewGateway(
		&Scaler{FeatureNames: names, Mean: make([]float64, n), Scale: ones(n)},
		&Model{FeatureNames: names, Coefficients: make([]float64, n)},
	)
	require.NoError(t, err)
	assert.NoError(t, g.CheckSchema(features.DefaultSchema()))
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
