package models

import "fmt"

// AspectType is a significant angular separation between two bodies.
type AspectType int

// Declaration order is the canonical scan order: the first type whose orb
// window contains a separation wins.
const (
	Conjunction AspectType = iota
	Sextile
	Square
	Trine
	Opposition
	Quincunx
	SemiSextile
	SemiSquare
	Sesquiquadrate
)

// AspectCategory groups aspect types.
type AspectCategory string

const (
	Major AspectCategory = "Major"
	Minor AspectCategory = "Minor"
)

type aspectInfo struct {
	name     string
	angle    float64
	maxOrb   float64
	category AspectCategory
}

var aspectTable = [...]aspectInfo{
	{"Conjunction", 0, 8, Major},
	{"Sextile", 60, 6, Major},
	{"Square", 90, 8, Major},
	{"Trine", 120, 8, Major},
	{"Opposition", 180, 8, Major},
	{"Quincunx", 150, 3, Minor},
	{"Semi-Sextile", 30, 2, Minor},
	{"Semi-Square", 45, 2, Minor},
	{"Sesquiquadrate", 135, 2, Minor},
}

// AspectTypes returns every type in canonical scan order.
func AspectTypes() []AspectType {
	out := make([]AspectType, len(aspectTable))
	for i := range out {
		out[i] = AspectType(i)
	}
	return out
}

func (t AspectType) Valid() bool { return t >= Conjunction && t <= Sesquiquadrate }

func (t AspectType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("AspectType(%d)", int(t))
	}
	return aspectTable[t].name
}

// Angle is the exact separation in degrees.
func (t AspectType) Angle() float64 { return aspectTable[t].angle }

// MaxOrb is the allowed deviation from Angle.
func (t AspectType) MaxOrb() float64 { return aspectTable[t].maxOrb }

func (t AspectType) Category() AspectCategory { return aspectTable[t].category }

func (t AspectType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid aspect type %d", int(t))
	}
	return []byte(aspectTable[t].name), nil
}

func (t *AspectType) UnmarshalText(text []byte) error {
	for i, info := range aspectTable {
		if info.name == string(text) {
			*t = AspectType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown aspect type %q", string(text))
}

// Strength tiers an aspect by its orb.
type Strength string

const (
	Exact    Strength = "Exact"
	Strong   Strength = "Strong"
	Moderate Strength = "Moderate"
	Weak     Strength = "Weak"
)

// StrengthOf maps an orb to its tier.
func StrengthOf(orb float64) Strength {
	switch {
	case orb <= 1:
		return Exact
	case orb <= 3:
		return Strong
	case orb <= 5:
		return Moderate
	default:
		return Weak
	}
}

// Aspect relates two distinct bodies. Body1 precedes Body2 in canonical body
// order.
type Aspect struct {
	Body1    CelestialBody `json:"body1"`
	Body2    CelestialBody `json:"body2"`
	Type     AspectType    `json:"type"`
	Orb      float64       `json:"orb"`
	Strength Strength      `json:"strength"`
	Applying bool          `json:"applying"`
}

// Involves reports whether b is one side of the aspect.
func (a Aspect) Involves(b CelestialBody) bool {
	return a.Body1 == b || a.Body2 == b
}
