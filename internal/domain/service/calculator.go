package service

import (
	"celestial/internal/domain/models"
)

// ChartCalculator turns validated birth data into a complete natal chart.
// Implementations must be pure and deterministic.
type ChartCalculator interface {
	Compute(in models.BirthInput) (models.NatalChart, error)
	// Hash returns the key Compute would stamp on the chart for in,
	// without computing it.
	Hash(in models.BirthInput) string
}
