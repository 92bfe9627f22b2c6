package models

import (
	"fmt"
	"math"
)

// Element of a zodiac sign.
type Element string

const (
	Fire  Element = "Fire"
	Earth Element = "Earth"
	Air   Element = "Air"
	Water Element = "Water"
)

// Modality of a zodiac sign.
type Modality string

const (
	Cardinal Modality = "Cardinal"
	Fixed    Modality = "Fixed"
	Mutable  Modality = "Mutable"
)

// ZodiacSign indexes the twelve 30° sectors of the ecliptic starting at Aries.
type ZodiacSign int

const (
	Aries ZodiacSign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

type signInfo struct {
	name     string
	glyph    string
	element  Element
	modality Modality
}

var signTable = [12]signInfo{
	{"Aries", "♈", Fire, Cardinal},
	{"Taurus", "♉", Earth, Fixed},
	{"Gemini", "♊", Air, Mutable},
	{"Cancer", "♋", Water, Cardinal},
	{"Leo", "♌", Fire, Fixed},
	{"Virgo", "♍", Earth, Mutable},
	{"Libra", "♎", Air, Cardinal},
	{"Scorpio", "♏", Water, Fixed},
	{"Sagittarius", "♐", Fire, Mutable},
	{"Capricorn", "♑", Earth, Cardinal},
	{"Aquarius", "♒", Air, Fixed},
	{"Pisces", "♓", Water, Mutable},
}

// Signs lists the signs in zodiacal order.
func Signs() []ZodiacSign {
	out := make([]ZodiacSign, len(signTable))
	for i := range out {
		out[i] = ZodiacSign(i)
	}
	return out
}

// SignOf returns the sign containing an ecliptic longitude already reduced
// to [0,360).
func SignOf(longitude float64) ZodiacSign {
	idx := int(math.Floor(longitude/30)) % 12
	if idx < 0 {
		idx += 12
	}
	return ZodiacSign(idx)
}

// SignDegree is the longitude's offset inside its sign, in [0,30).
func SignDegree(longitude float64) float64 {
	d := math.Mod(longitude, 30)
	if d < 0 {
		d += 30
	}
	return d
}

func (s ZodiacSign) Valid() bool { return s >= Aries && s <= Pisces }

func (s ZodiacSign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("ZodiacSign(%d)", int(s))
	}
	return signTable[s].name
}

func (s ZodiacSign) Glyph() string      { return signTable[s].glyph }
func (s ZodiacSign) Element() Element   { return signTable[s].element }
func (s ZodiacSign) Modality() Modality { return signTable[s].modality }

func (s ZodiacSign) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid zodiac sign %d", int(s))
	}
	return []byte(signTable[s].name), nil
}

func (s *ZodiacSign) UnmarshalText(text []byte) error {
	for i, info := range signTable {
		if info.name == string(text) {
			*s = ZodiacSign(i)
			return nil
		}
	}
	return fmt.Errorf("unknown zodiac sign %q", string(text))
}
