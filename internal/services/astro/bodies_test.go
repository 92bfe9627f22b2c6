package astro

import (
	"math"
	"testing"
	"time"

	"celestial/internal/domain/models"
)

var birthJD = JulianDay(time.Date(1990, 6, 15, 14, 30, 0, 0, time.UTC))

func TestBodyLongitudeKnownDate(t *testing.T) {
	cases := []struct {
		body models.CelestialBody
		want float64
	}{
		{models.Sun, 84.2328},
		{models.Moon, 346.9607},
		{models.Mercury, 22.6913},
		{models.Jupiter, 104.6193},
		{models.Pluto, 225.0674},
		{models.NorthNode, 309.6888},
	}
	for _, c := range cases {
		got, err := BodyLongitude(c.body, birthJD)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.body, err)
		}
		if math.Abs(got-c.want) > 1e-3 {
			t.Fatalf("%s: longitude = %v, want %v", c.body, got, c.want)
		}
	}
}

func TestBodyLongitudeRange(t *testing.T) {
	for _, jd := range []float64{J2000 - 40000, birthJD, J2000, J2000 + 12345.678} {
		for _, b := range models.Bodies() {
			lon, err := BodyLongitude(b, jd)
			if err != nil {
				t.Fatalf("%s at %v: %v", b, jd, err)
			}
			if lon < 0 || lon >= 360 {
				t.Fatalf("%s at %v: longitude %v out of range", b, jd, lon)
			}
		}
	}
}

func TestBodyLongitudeUnknownBody(t *testing.T) {
	if _, err := BodyLongitude(models.CelestialBody(42), J2000); err == nil {
		t.Fatalf("expected error for unknown body")
	}
}

func TestRetrograde(t *testing.T) {
	cases := []struct {
		name   string
		body   models.CelestialBody
		lon    float64
		sunLon float64
		want   bool
	}{
		{"sun never", models.Sun, 180, 0, false},
		{"moon never", models.Moon, 180, 0, false},
		{"node always", models.NorthNode, 0, 0, true},
		{"outer at opposition", models.Saturn, 180, 0, true},
		{"outer window is open", models.Saturn, 150, 0, false},
		{"outer near conjunction", models.Mars, 20, 0, false},
		{"outer wraps", models.Jupiter, 10, 200, true},
		{"inner far side", models.Venus, 100, 0, true},
		{"inner near sun", models.Mercury, 20, 0, false},
		{"inner window is open", models.Mercury, 270, 0, false},
	}
	for _, c := range cases {
		if got := Retrograde(c.body, c.lon, c.sunLon); got != c.want {
			t.Fatalf("%s: Retrograde = %v, want %v", c.name, got, c.want)
		}
	}
}
