package astro

import (
	"fmt"
	"math"

	"celestial/internal/domain/models"
)

// meanMotion is a linear mean-longitude model: L = norm(L0 + Rate*T).
// Rate is in degrees per Julian century. Radius is the mean orbital radius
// in AU and selects the retrograde window.
type meanMotion struct {
	L0     float64
	Rate   float64
	Radius float64
	// periodic adds body-specific terms to the mean longitude.
	periodic func(t, meanLon float64) float64
}

var motionTable = map[models.CelestialBody]meanMotion{
	models.Sun:     {L0: 280.46646, Rate: 36000.76983, periodic: sunEquationOfCenter},
	models.Moon:    {L0: 218.3164477, Rate: 481267.88123421, periodic: moonPerturbations},
	models.Mercury: {L0: 252.25, Rate: 149472.67, Radius: 0.387},
	models.Venus:   {L0: 181.98, Rate: 58517.82, Radius: 0.723},
	models.Mars:    {L0: 355.43, Rate: 19140.30, Radius: 1.524},
	models.Jupiter: {L0: 34.35, Rate: 3034.91, Radius: 5.203},
	models.Saturn:  {L0: 50.08, Rate: 1222.11, Radius: 9.555},
	models.Uranus:  {L0: 314.06, Rate: 428.47, Radius: 19.22},
	models.Neptune: {L0: 304.35, Rate: 218.49, Radius: 30.11},
	models.Pluto:   {L0: 238.93, Rate: 145.21, Radius: 39.48},

	// mean lunar node regresses
	models.NorthNode: {L0: 125.04452, Rate: -1934.136261},
}

func sunEquationOfCenter(t, _ float64) float64 {
	m := radians(NormalizeAngle(357.52911 + 35999.05029*t))
	return (1.914602-0.004817*t)*math.Sin(m) + 0.019993*math.Sin(2*m)
}

func moonPerturbations(t, _ float64) float64 {
	m := 134.9633964 + 477198.8675055*t
	d := 297.8501921 + 445267.1114034*t
	return 6.289*math.Sin(radians(m)) + 1.274*math.Sin(radians(2*d-m))
}

// BodyLongitude returns the ecliptic longitude of body at jd, in [0, 360).
func BodyLongitude(body models.CelestialBody, jd float64) (float64, error) {
	mm, ok := motionTable[body]
	if !ok {
		return 0, fmt.Errorf("astro: no motion model for body %d", int(body))
	}
	t := CenturiesSinceJ2000(jd)
	lon := NormalizeAngle(mm.L0 + mm.Rate*t)
	if mm.periodic != nil {
		lon = NormalizeAngle(lon + mm.periodic(t, lon))
	}
	if !finite(lon) {
		return 0, &models.ComputationError{Stage: "longitude", Body: body.String(), Value: lon}
	}
	return lon, nil
}

// Retrograde applies the elongation heuristic. It compares a body's
// longitude with the Sun's rather than computing true daily motion, so it
// is an approximation: superior bodies are flagged near opposition
// (150° < elongation < 210°), inferior bodies on the far side of the Sun
// (90° < elongation < 270°). The North Node is always retrograde; the Sun
// and Moon never are.
func Retrograde(body models.CelestialBody, lon, sunLon float64) bool {
	switch {
	case body == models.NorthNode:
		return true
	case !body.IsPlanet():
		return false
	}
	diff := NormalizeAngle(lon - sunLon)
	if motionTable[body].Radius > 1 {
		return diff > 150 && diff < 210
	}
	return diff > 90 && diff < 270
}
