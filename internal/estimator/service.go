package estimator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"immoprice/server/config"
	"immoprice/server/internal/features"
	"immoprice/server/internal/models"
)

// RecordSource resolves postal codes to reference records
type RecordSource interface {
	Lookup(postalCode int) (*models.PostalCodeRecord, bool)
}

// Predictor turns a feature vector into a price
type Predictor interface {
	Predict(v features.Vector) (float64, error)
}

// Estimate is the outcome of one successful estimation
type Estimate struct {
	Query  models.PropertyQuery
	Record models.PostalCodeRecord
	Vector features.Vector
	// Price is the raw regression output
	Price float64
}

// WholePrice truncates the estimate to whole euros, as shown to the user
func (e *Estimate) WholePrice() int64 {
	return int64(e.Price)
}

// Service validates a form query, encodes it and runs the regression
type Service struct {
	records   RecordSource
	encoder   *features.Encoder
	predictor Predictor
	limits    config.Limits
	logger    *logrus.Logger
}

func NewService(records RecordSource, encoder *features.Encoder, predictor Predictor, limits config.Limits, logger *logrus.Logger) *Service {
	return &Service{
		records:   records,
		encoder:   encoder,
		predictor: predictor,
		limits:    limits,
		logger:    logger,
	}
}

// Validate checks a query against the form's domain
func (s *Service) Validate(q models.PropertyQuery) error {
	if !q.Category.Valid() {
		return &models.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", q.Category)}
	}
	if !config.IsSubtypeOffered(q.Category, q.Subtype) {
		return &models.ValidationError{Field: "subtype", Message: fmt.Sprintf("%q is not a %s type", q.Subtype, q.Category)}
	}
	if q.PostalCode < s.limits.MinPostalCode || q.PostalCode > s.limits.MaxPostalCode {
		return &models.ValidationError{
			Field:   "postal_code",
			Message: fmt.Sprintf("must be between %d and %d", s.limits.MinPostalCode, s.limits.MaxPostalCode),
		}
	}
	if q.LivingArea < s.limits.MinSurface {
		return &models.ValidationError{Field: "living_area", Message: fmt.Sprintf("must be at least %g", s.limits.MinSurface)}
	}
	if q.PlotSurface < s.limits.MinSurface {
		return &models.ValidationError{Field: "plot_surface", Message: fmt.Sprintf("must be at least %g", s.limits.MinSurface)}
	}
	if _, err := features.ConditionValue(q.BuildingCondition); err != nil {
		return err
	}
	return nil
}

// Estimate prices one query
func (s *Service) Estimate(q models.PropertyQuery) (*Estimate, error) {
	if err := s.Validate(q); err != nil {
		return nil, err
	}

	record, ok := s.records.Lookup(q.PostalCode)
	if !ok {
		return nil, &models.LookupError{PostalCode: q.PostalCode}
	}

	vec, err := s.encoder.Encode(q, record)
	if err != nil {
		return nil, err
	}

	price, err := s.predictor.Predict(vec)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"category":    q.Category,
			"subtype":     q.Subtype,
			"postal_code": q.PostalCode,
			"district":    record.District,
			"price":       price,
		}).Debug("Estimated property price")
	}

	return &Estimate{Query: q, Record: *record, Vector: vec, Price: price}, nil
}
