// Package astro computes natal charts from closed-form, low-order
// astronomical approximations. Every function is pure and safe for
// concurrent use.
package astro

import (
	"math"
	"time"
)

const (
	// J2000 is the Julian Day of the J2000.0 epoch.
	J2000          = 2451545.0
	daysPerCentury = 36525.0
)

// NormalizeAngle reduces deg to [0, 360). Negative inputs wrap forward.
func NormalizeAngle(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	// -1e-17 + 360 rounds to 360 in float64.
	if r >= 360 {
		r = 0
	}
	return r
}

// JulianDay converts a civil date-time to a Gregorian-calendar Julian Day.
// The wall-clock fields of t are used as is; seconds and sub-second parts
// are ignored and every day is exactly 86400 seconds.
func JulianDay(t time.Time) float64 {
	y, m := t.Year(), int(t.Month())
	d := float64(t.Day()) + float64(t.Hour())/24 + float64(t.Minute())/1440
	if m <= 2 {
		y--
		m += 12
	}
	century := math.Floor(float64(y) / 100)
	b := 2 - century + math.Floor(century/4)
	return math.Floor(365.25*float64(y+4716)) + math.Floor(30.6001*float64(m+1)) + d + b - 1524.5
}

// CenturiesSinceJ2000 returns T, Julian centuries from J2000.0.
func CenturiesSinceJ2000(jd float64) float64 {
	return (jd - J2000) / daysPerCentury
}

// Separation returns the shorter arc between two longitudes, in [0, 180].
func Separation(a, b float64) float64 {
	angle := math.Abs(a - b)
	if angle > 180 {
		angle = 360 - angle
	}
	return angle
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
