package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every ValidationError.
	ErrInvalidInput = errors.New("invalid birth input")
	// ErrComputation is matched by every ComputationError.
	ErrComputation = errors.New("chart computation failed")
	// ErrChartNotFound is returned when a chart hash is unknown to cache and archive.
	ErrChartNotFound = errors.New("chart not found")
)

// ValidationError rejects a BirthInput before any computation runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ComputationError reports a non-finite intermediate or result value.
type ComputationError struct {
	Stage string
	Body  string
	Value float64
}

func (e *ComputationError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %s produced %v for %s", ErrComputation, e.Stage, e.Value, e.Body)
	}
	return fmt.Sprintf("%s: %s produced %v", ErrComputation, e.Stage, e.Value)
}

func (e *ComputationError) Is(target error) bool { return target == ErrComputation }
