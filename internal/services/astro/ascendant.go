package astro

import (
	"math"

	"celestial/internal/domain/models"
)

// Obliquity returns the mean obliquity of the ecliptic in degrees.
func Obliquity(t float64) float64 {
	return 23.4393 - 0.0130*t
}

// LocalSiderealAngle is the local sidereal longitude proxy theta in degrees.
func LocalSiderealAngle(jd, lon float64) float64 {
	return NormalizeAngle(280.46061837 + 360.98564736629*(jd-J2000) + lon)
}

// Ascendant returns the ecliptic longitude rising on the eastern horizon.
func Ascendant(jd, lat, lon float64) (float64, error) {
	theta := radians(LocalSiderealAngle(jd, lon))
	eps := radians(Obliquity(CenturiesSinceJ2000(jd)))
	y := -math.Cos(theta)
	x := math.Sin(theta)*math.Cos(eps) + math.Tan(radians(lat))*math.Sin(eps)
	asc := NormalizeAngle(degrees(math.Atan2(y, x)) + 180)
	if !finite(asc) {
		return 0, &models.ComputationError{Stage: "ascendant", Value: asc}
	}
	return asc, nil
}

// Midheaven uses the fixed 270° offset from the ascendant, which puts it on
// the 10th equal-house cusp.
func Midheaven(asc float64) float64 {
	return NormalizeAngle(asc + 270)
}
