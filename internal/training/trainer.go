package training

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"immoprice/server/internal/features"
	"immoprice/server/internal/models"
	"immoprice/server/internal/prediction"
	"immoprice/server/internal/reference"
)

const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// Options configures one training run
type Options struct {
	CorpusPath    string
	ReferencePath string
	ScalerPath    string
	ModelPath     string
	// DatasetPath, when set, receives the encoded dataset as CSV
	DatasetPath  string
	TestFraction float64
	Seed         int64
}

// Result is the outcome of a training run
type Result struct {
	Report PrepareReport
	Scaler *prediction.Scaler
	Model  *prediction.Model
	Run    models.TrainingRun
}

// Trainer fits the scaler and regression from the listings corpus
type Trainer struct {
	encoder *features.Encoder
	logger  *logrus.Logger
}

func NewTrainer(encoder *features.Encoder, logger *logrus.Logger) *Trainer {
	return &Trainer{encoder: encoder, logger: logger}
}

// Run loads the inputs, fits the artifacts and writes them to disk
func (t *Trainer) Run(opts Options) (*Result, error) {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = DefaultTestFraction
	}

	table, err := reference.Load(opts.ReferencePath, t.logger)
	if err != nil {
		return nil, err
	}
	listings, err := LoadCorpus(opts.CorpusPath, t.logger)
	if err != nil {
		return nil, err
	}

	ds, report := Prepare(listings, table, t.encoder, t.logger)
	if ds.Len() < 2 {
		return nil, fmt.Errorf("only %d usable listings after preparation", ds.Len())
	}

	result, err := t.Fit(ds, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.Run.CorpusRows = report.Corpus

	if err := writeArtifacts(opts.ScalerPath, opts.ModelPath, result); err != nil {
		return nil, err
	}
	result.Run.ScalerPath = opts.ScalerPath
	result.Run.ModelPath = opts.ModelPath

	if opts.DatasetPath != "" {
		if err := WriteDataset(opts.DatasetPath, ds); err != nil {
			return nil, err
		}
		t.logger.WithField("path", opts.DatasetPath).Info("Wrote preprocessed dataset")
	}
	return result, nil
}

// Fit splits ds, fits the scaler on the training rows and the regression on the scaled
// training rows, and scores both partitions.
func (t *Trainer) Fit(ds *Dataset, testFraction float64, seed int64) (*Result, error) {
	trainIdx, testIdx := Split(ds.Len(), testFraction, seed)
	train, test := ds.Subset(trainIdx), ds.Subset(testIdx)

	scaler := FitScaler(train)
	trainX, err := scaleRows(scaler, train)
	if err != nil {
		return nil, err
	}
	testX, err := scaleRows(scaler, test)
	if err != nil {
		return nil, err
	}

	model, err := FitOLS(ds.Columns, trainX, train.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to fit regression: %w", err)
	}

	trainMetrics, err := score(model, ds.Columns, trainX, train.Y)
	if err != nil {
		return nil, err
	}
	testMetrics, err := score(model, ds.Columns, testX, test.Y)
	if err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"train_rows": train.Len(),
		"train_r2":   trainMetrics.R2,
		"train_mae":  trainMetrics.MAE,
		"train_rmse": trainMetrics.RMSE,
		"train_mape": trainMetrics.MAPE,
		"test_rows":  test.Len(),
		"test_r2":    testMetrics.R2,
		"test_mae":   testMetrics.MAE,
		"test_rmse":  testMetrics.RMSE,
		"test_mape":  testMetrics.MAPE,
	}).Info("Fitted linear regression")

	return &Result{
		Scaler: scaler,
		Model:  model,
		Run: models.TrainingRun{
			TrainRows: train.Len(),
			TestRows:  test.Len(),
			Features:  len(ds.Columns),
			Train:     trainMetrics,
			Test:      testMetrics,
			CreatedAt: time.Now(),
		},
	}, nil
}

func score(model *prediction.Model, columns []string, X [][]float64, y []float64) (models.Metrics, error) {
	predicted := make([]float64, len(y))
	for i, row := range X {
		p, err := model.Predict(columns, row)
		if err != nil {
			return models.Metrics{}, err
		}
		predicted[i] = p
	}
	return Evaluate(y, predicted), nil
}

func writeArtifacts(scalerPath, modelPath string, result *Result) error {
	for _, path := range []string{scalerPath, modelPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}
	if err := prediction.SaveScaler(scalerPath, result.Scaler); err != nil {
		return err
	}
	return prediction.SaveModel(modelPath, result.Model)
}

// WriteDataset writes the encoded features followed by the price column
func WriteDataset(path string, ds *Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := append(append([]string(nil), ds.Columns...), "price")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write dataset header: %w", err)
	}
	record := make([]string, len(header))
	for i, row := range ds.X {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		record[len(row)] = strconv.FormatFloat(ds.Y[i], 'f', -1, 64)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write dataset row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
