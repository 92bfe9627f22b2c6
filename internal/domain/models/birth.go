package models

import (
	"math"
	"time"
)

// BirthInput is the immutable input of a chart computation.
//
// Timestamp is used by its wall-clock fields only; no timezone conversion is
// applied, so callers pass a time already resolved to UTC-equivalent civil time.
type BirthInput struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"birth_time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// NewBirthInput validates and builds a BirthInput. Out-of-range coordinates
// are rejected, never clamped.
func NewBirthInput(name string, ts time.Time, latitude, longitude float64) (BirthInput, error) {
	in := BirthInput{Name: name, Timestamp: ts, Latitude: latitude, Longitude: longitude}
	if err := in.Validate(); err != nil {
		return BirthInput{}, err
	}
	return in, nil
}

// Validate checks the coordinate and timestamp invariants.
func (b BirthInput) Validate() error {
	if b.Timestamp.IsZero() {
		return &ValidationError{Field: "birth_time", Message: "is required"}
	}
	if y := b.Timestamp.Year(); y < 1 || y > 9999 {
		return &ValidationError{Field: "birth_time", Message: "year must be between 1 and 9999"}
	}
	if math.IsNaN(b.Latitude) || math.IsInf(b.Latitude, 0) {
		return &ValidationError{Field: "latitude", Message: "must be finite"}
	}
	if math.IsNaN(b.Longitude) || math.IsInf(b.Longitude, 0) {
		return &ValidationError{Field: "longitude", Message: "must be finite"}
	}
	if b.Latitude < -90 || b.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "must be between -90 and 90"}
	}
	if b.Longitude < -180 || b.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "must be between -180 and 180"}
	}
	return nil
}
