package training

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"immoprice/server/internal/models"
	"immoprice/server/internal/prediction"
)

// rcond is the relative singular value cutoff used to determine the rank of the design matrix
const rcond = 1e-12

// Split shuffles row indexes with seed and returns train and test partitions.
// The test partition holds ceil(n*testFraction) rows.
func Split(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest > n {
		nTest = n
	}
	return perm[nTest:], perm[:nTest]
}

// FitScaler computes per-column mean and population standard deviation.
// Constant columns get a scale of 1.
func FitScaler(ds *Dataset) *prediction.Scaler {
	cols := len(ds.Columns)
	s := &prediction.Scaler{
		FeatureNames: append([]string(nil), ds.Columns...),
		Mean:         make([]float64, cols),
		Scale:        make([]float64, cols),
	}
	column := make([]float64, ds.Len())
	for j := 0; j < cols; j++ {
		for i, row := range ds.X {
			column[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s
}

// scaleRows applies the scaler to every row of ds
func scaleRows(s *prediction.Scaler, ds *Dataset) ([][]float64, error) {
	out := make([][]float64, ds.Len())
	for i, row := range ds.X {
		scaled, err := s.Transform(ds.Columns, row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// FitOLS solves ordinary least squares with an intercept by centering the design matrix
// and the target, then taking the minimum-norm SVD solution.
func FitOLS(columns []string, X [][]float64, y []float64) (*prediction.Model, error) {
	n := len(y)
	if n == 0 {
		return nil, fmt.Errorf("no rows to fit")
	}
	p := len(columns)

	xMean := make([]float64, p)
	for _, row := range X {
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean := stat.Mean(y, nil)

	A := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			A.Set(i, j, v-xMean[j])
		}
		b.SetVec(i, y[i]-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(A, mat.SVDThin); !ok {
		return nil, fmt.Errorf("failed to factorize design matrix")
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return nil, fmt.Errorf("design matrix has rank zero")
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, b, rank)

	m := &prediction.Model{
		FeatureNames: append([]string(nil), columns...),
		Coefficients: make([]float64, p),
		Intercept:    yMean,
	}
	for j := 0; j < p; j++ {
		m.Coefficients[j] = beta.AtVec(j)
		m.Intercept -= m.Coefficients[j] * xMean[j]
	}
	return m, nil
}

// Evaluate scores predictions against the true targets
func Evaluate(y, predicted []float64) models.Metrics {
	if len(y) == 0 {
		return models.Metrics{}
	}
	var absSum, sqSum, pctSum float64
	pctCount := 0
	for i := range y {
		diff := y[i] - predicted[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if y[i] != 0 {
			pctSum += math.Abs(diff / y[i])
			pctCount++
		}
	}
	n := float64(len(y))

	metrics := models.Metrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
	if pctCount > 0 {
		metrics.MAPE = pctSum / float64(pctCount)
	}
	if stat.Variance(y, nil) > 0 {
		metrics.R2 = stat.RSquaredFrom(predicted, y, nil)
	} else if sqSum == 0 {
		metrics.R2 = 1
	}
	return metrics
}
