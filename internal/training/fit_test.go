package training

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immoprice/server/internal/features"
	"immoprice/server/internal/prediction"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeFileAt(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestSplit(t *testing.T) {
	train, test := Split(10, 0.2, 42)
	assert.Len(t, train, 8)
	assert.Len(t, test, 2)

	seen := make(map[int]bool)
	for _, i := range append(append([]int(nil), train...), test...) {
		assert.False(t, seen[i], "index %d repeated", i)
		seen[i] = true
	}
	assert.Len(t, seen, 10)

	train2, test2 := Split(10, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, test = Split(11, 0.2, 42)
	assert.Len(t, test, 3)
}

func TestFitScaler(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"a", "b"},
		X:       [][]float64{{1, 5}, {3, 5}},
		Y:       []float64{0, 0},
	}
	s := FitScaler(ds)
	assert.Equal(t, []float64{2, 5}, s.Mean)
	// Population std of {1,3} is 1; the constant column keeps a unit scale
	assert.Equal(t, []float64{1, 1}, s.Scale)
}

func TestFitOLSRecoversExactRelation(t *testing.T) {
	columns := []string{"x1", "x2", "constant"}
	var X [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		x1 := float64(i)
		x2 := float64((i * 7) % 5)
		X = append(X, []float64{x1, x2, 0})
		y = append(y, 3+2*x1-x2)
	}

	model, err := FitOLS(columns, X, y)
	require.NoError(t, err)
	assert.InDelta(t, 2, model.Coefficients[0], 1e-8)
	assert.InDelta(t, -1, model.Coefficients[1], 1e-8)
	assert.InDelta(t, 0, model.Coefficients[2], 1e-8)
	assert.InDelta(t, 3, model.Intercept, 1e-8)
}

func TestFitOLSRequiresRows(t *testing.T) {
	_, err := FitOLS([]string{"a"}, nil, nil)
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	perfect := Evaluate([]float64{100, 200, 300}, []float64{100, 200, 300})
	assert.InDelta(t, 1, perfect.R2, 1e-12)
	assert.Zero(t, perfect.MAE)
	assert.Zero(t, perfect.RMSE)
	assert.Zero(t, perfect.MAPE)

	m := Evaluate([]float64{100, 200}, []float64{110, 180})
	assert.InDelta(t, 15, m.MAE, 1e-9)
	assert.InDelta(t, 15.811388300841896, m.RMSE, 1e-9)
	assert.InDelta(t, 0.1, m.MAPE, 1e-9)
	// SSres = 500, SStot = 5000
	assert.InDelta(t, 0.9, m.R2, 1e-9)
}

func TestTrainerRunWritesUsableArtifacts(t *testing.T) {
	dir := t.TempDir()
	refPath := filepath.Join(dir, "additional_data.csv")
	corpusPath := filepath.Join(dir, "corpus.csv")

	require.NoError(t, writeFileAt(refPath, `Postal code,commune,district,mean-income,house-median-price,apartment-median-price
1000,Bruxelles,21000,18000,450000,260000
1300,Wavre,25000,24000,330000,210000
3700,Tongeren,37000,22000,260000,190000
`))
	corpus := "Property,Property type,Price,Living area,Surface of the plot,Building condition,Swimming pool,Zip code\n"
	rows := []string{
		"House,House,420000,150,300,Good,0,1000",
		"House,Villa,650000,260,1200,As new,1,1300",
		"House,Bungalow,310000,120,800,To renovate,0,3700",
		"Apartment,Apartment,250000,90,,Just renovated,0,1000",
		"Apartment,Penthouse,480000,160,,As new,0,1300",
		"House,Town house,380000,170,150,To be done up,0,1000",
		"House,Farmhouse,520000,240,2500,Good,0,3700",
		"Apartment,Studio,140000,35,,Good,0,1000",
		"House,House,295000,130,400,To restore,0,3700",
		"Apartment,Duplex,330000,130,,Good,0,1300",
		"House,Villa,1200000,400,3000,As new,1,1300",
		"Apartment,Loft,310000,110,,Just renovated,0,1000",
	}
	for _, r := range rows {
		corpus += r + "\n"
	}
	require.NoError(t, writeFileAt(corpusPath, corpus))

	opts := Options{
		CorpusPath:    corpusPath,
		ReferencePath: refPath,
		ScalerPath:    filepath.Join(dir, "predict", "scaler.json"),
		ModelPath:     filepath.Join(dir, "predict", "model.json"),
		DatasetPath:   filepath.Join(dir, "dataset-preprocessed.csv"),
		Seed:          DefaultSeed,
	}
	enc := features.DefaultEncoder()
	result, err := NewTrainer(enc, quietLogger()).Run(opts)
	require.NoError(t, err)

	assert.Equal(t, 12, result.Run.CorpusRows)
	assert.Equal(t, 12, result.Report.Encoded)
	assert.Equal(t, 9, result.Run.TrainRows)
	assert.Equal(t, 3, result.Run.TestRows)
	assert.Equal(t, enc.Schema().Len(), result.Run.Features)
	// Fewer rows than columns, so the training rows are interpolated exactly
	assert.Greater(t, result.Run.Train.R2, 0.99)

	g, err := prediction.LoadGateway(opts.ScalerPath, opts.ModelPath, nil)
	require.NoError(t, err)
	assert.NoError(t, g.CheckSchema(enc.Schema()))
	assert.FileExists(t, opts.DatasetPath)
}
