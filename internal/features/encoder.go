package features

import (
	"fmt"

	"immoprice/server/internal/models"
)

// Input is a property with every reference statistic already resolved. Both the
// inference path and the training driver encode through it.
type Input struct {
	Category          models.Category
	Subtype           string
	LivingArea        float64
	PlotSurface       float64
	BuildingCondition string
	SwimmingPool      bool
	MeanIncome        float64
	MedianPrice       float64
	District          int
}

// Encoder turns properties into feature vectors laid out by a schema
type Encoder struct {
	schema     *Schema
	continuous [6]int
}

// NewEncoder returns an encoder for schema, which must carry every continuous column
func NewEncoder(schema *Schema) (*Encoder, error) {
	e := &Encoder{schema: schema}
	for i, c := range continuousColumns {
		idx, ok := schema.Index(c)
		if !ok {
			return nil, fmt.Errorf("schema is missing continuous column %q", c)
		}
		e.continuous[i] = idx
	}
	return e, nil
}

// DefaultEncoder encodes against DefaultSchema
func DefaultEncoder() *Encoder {
	e, err := NewEncoder(DefaultSchema())
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Encoder) Schema() *Schema {
	return e.schema
}

// Resolve joins a query with its reference record
func (e *Encoder) Resolve(query models.PropertyQuery, record *models.PostalCodeRecord) (Input, error) {
	if record == nil {
		return Input{}, &models.LookupError{PostalCode: query.PostalCode}
	}
	if record.MeanIncome == nil {
		return Input{}, &models.LookupError{PostalCode: query.PostalCode, Reason: "no mean income available"}
	}
	median := record.MedianPriceFor(query.Category)
	if median == nil {
		return Input{}, &models.LookupError{
			PostalCode: query.PostalCode,
			Reason:     fmt.Sprintf("no %s median price available", query.Category),
		}
	}

	return Input{
		Category:          query.Category,
		Subtype:           NormalizeSubtype(query.Subtype),
		LivingArea:        query.LivingArea,
		PlotSurface:       query.PlotSurface,
		BuildingCondition: query.BuildingCondition,
		SwimmingPool:      query.SwimmingPool,
		MeanIncome:        *record.MeanIncome,
		MedianPrice:       *median,
		District:          record.District,
	}, nil
}

// Encode builds the feature vector of a query
func (e *Encoder) Encode(query models.PropertyQuery, record *models.PostalCodeRecord) (Vector, error) {
	in, err := e.Resolve(query, record)
	if err != nil {
		return Vector{}, err
	}
	return e.EncodeInput(in)
}

// EncodeInput builds the feature vector of a resolved property.
// Subtypes and districts without an indicator column encode as the baseline.
func (e *Encoder) EncodeInput(in Input) (Vector, error) {
	condition, err := ConditionValue(in.BuildingCondition)
	if err != nil {
		return Vector{}, err
	}

	values := make([]float64, e.schema.Len())
	values[e.continuous[0]] = in.LivingArea
	values[e.continuous[1]] = in.PlotSurface
	values[e.continuous[2]] = float64(condition)
	values[e.continuous[3]] = PoolValue(in.SwimmingPool)
	values[e.continuous[4]] = in.MeanIncome
	values[e.continuous[5]] = in.MedianPrice

	if subtype := NormalizeSubtype(in.Subtype); subtype != BaselineSubtype {
		if idx, ok := e.schema.Index(SubtypeColumn(subtype)); ok {
			values[idx] = 1
		}
	}

	if in.District != BaselineDistrict {
		if idx, ok := e.schema.Index(DistrictColumn(in.District)); ok {
			values[idx] = 1
		}
	}

	return Vector{Columns: e.schema.Columns(), Values: values}, nil
}

// HasSubtypeColumn reports whether a subtype encodes to an indicator or the baseline
func (e *Encoder) HasSubtypeColumn(subtype string) bool {
	subtype = NormalizeSubtype(subtype)
	if subtype == BaselineSubtype {
		return true
	}
	_, ok := e.schema.Index(SubtypeColumn(subtype))
	return ok
}
