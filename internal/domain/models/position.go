package models

import (
	"fmt"
	"math"
)

// BodyPosition places one body on the ecliptic.
// House is zero until house assignment has run.
type BodyPosition struct {
	Body       CelestialBody `json:"body"`
	Longitude  float64       `json:"longitude"`
	Sign       ZodiacSign    `json:"sign"`
	SignDegree float64       `json:"sign_degree"`
	Retrograde bool          `json:"retrograde"`
	House      int           `json:"house"`
}

// NewBodyPosition derives sign and in-sign degree from a normalized longitude.
func NewBodyPosition(body CelestialBody, longitude float64, retrograde bool) BodyPosition {
	return BodyPosition{
		Body:       body,
		Longitude:  longitude,
		Sign:       SignOf(longitude),
		SignDegree: SignDegree(longitude),
		Retrograde: retrograde,
	}
}

// Formatted renders the position as "D° M' Sign", with " ℞" when retrograde.
func (p BodyPosition) Formatted() string {
	s := FormatDegrees(p.SignDegree, p.Sign)
	if p.Retrograde {
		s += " ℞"
	}
	return s
}

// HouseCusp is the starting longitude of one of the twelve houses.
type HouseCusp struct {
	House      int        `json:"house"`
	Longitude  float64    `json:"longitude"`
	Sign       ZodiacSign `json:"sign"`
	SignDegree float64    `json:"sign_degree"`
}

// NewHouseCusp derives sign data for house n (1..12).
func NewHouseCusp(n int, longitude float64) HouseCusp {
	return HouseCusp{
		House:      n,
		Longitude:  longitude,
		Sign:       SignOf(longitude),
		SignDegree: SignDegree(longitude),
	}
}

func (c HouseCusp) Formatted() string {
	return FormatDegrees(c.SignDegree, c.Sign)
}

// FormatDegrees truncates (never rounds) to whole degrees and minutes.
func FormatDegrees(signDegree float64, sign ZodiacSign) string {
	deg := math.Floor(signDegree)
	min := math.Floor((signDegree - deg) * 60)
	return fmt.Sprintf("%d° %d' %s", int(deg), int(min), sign)
}
