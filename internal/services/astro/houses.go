package astro

import (
	"fmt"

	"celestial/internal/domain/models"
)

// EqualHouses builds twelve cusps 30° apart starting at the ascendant.
func EqualHouses(asc float64) [12]models.HouseCusp {
	var cusps [12]models.HouseCusp
	for i := range cusps {
		cusps[i] = models.NewHouseCusp(i+1, NormalizeAngle(asc+float64(i)*30))
	}
	return cusps
}

// AssignHouse returns the 1-based house whose half-open interval
// [cusp[i], cusp[i+1]) contains lon. Intervals crossing 0° wrap.
func AssignHouse(lon float64, cusps [12]models.HouseCusp) (int, error) {
	house := 0
	for i := range cusps {
		start, end := cusps[i].Longitude, cusps[(i+1)%12].Longitude
		var in bool
		if start <= end {
			in = lon >= start && lon < end
		} else {
			in = lon >= start || lon < end
		}
		if !in {
			continue
		}
		if house != 0 {
			return 0, &models.ComputationError{Stage: fmt.Sprintf("house assignment (houses %d and %d)", house, i+1), Value: lon}
		}
		house = i + 1
	}
	if house == 0 {
		return 0, &models.ComputationError{Stage: "house assignment", Value: lon}
	}
	return house, nil
}
