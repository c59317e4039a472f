package models

import "fmt"

// DataLoadError is returned when a reference file or artifact is missing or malformed
type DataLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to load %s: %s", e.Path, e.Reason)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// ValidationError reports user input outside the allowed domain
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// LookupError reports a postal code without a usable reference record
type LookupError struct {
	PostalCode int
	Reason     string
}

func (e *LookupError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("postal code %d: %s", e.PostalCode, e.Reason)
	}
	return fmt.Sprintf("postal code %d not found in reference table", e.PostalCode)
}

// PredictionError reports a feature vector that does not match the trained artifacts
type PredictionError struct {
	Reason string
}

func (e *PredictionError) Error() string {
	return "prediction failed: " + e.Reason
}
