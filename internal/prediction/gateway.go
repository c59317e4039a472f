package prediction

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"immoprice/server/internal/features"
)

// Gateway scales a feature vector and applies the regression
type Gateway struct {
	scaler *Scaler
	model  *Model
}

// NewGateway pairs a scaler and a model fit on the same columns
func NewGateway(scaler *Scaler, model *Model) (*Gateway, error) {
	if err := scaler.validate(); err != nil {
		return nil, err
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	if err := checkColumns(scaler.FeatureNames, model.FeatureNames); err != nil {
		return nil, fmt.Errorf("scaler and model disagree: %w", err)
	}
	return &Gateway{scaler: scaler, model: model}, nil
}

// LoadGateway reads both artifacts. Any failure is fatal for the caller.
func LoadGateway(scalerPath, modelPath string, logger *logrus.Logger) (*Gateway, error) {
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, err
	}
	g, err := NewGateway(scaler, model)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"scaler":   scalerPath,
			"model":    modelPath,
			"features": len(model.FeatureNames),
		}).Info("Loaded prediction artifacts")
	}
	return g, nil
}

// FeatureNames returns the columns the artifacts were fit on
func (g *Gateway) FeatureNames() []string {
	return append([]string(nil), g.model.FeatureNames...)
}

// Predict returns the estimated price of one feature vector
func (g *Gateway) Predict(v features.Vector) (float64, error) {
	scaled, err := g.scaler.Transform(v.Columns, v.Values)
	if err != nil {
		return 0, err
	}
	return g.model.Predict(v.Columns, scaled)
}

// CheckSchema verifies the artifacts were fit on the encoder's schema
func (g *Gateway) CheckSchema(schema *features.Schema) error {
	return checkColumns(g.model.FeatureNames, schema.Columns())
}
