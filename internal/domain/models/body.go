package models

import "fmt"

// CelestialBody is one of the eleven bodies placed in a natal chart.
type CelestialBody int

const (
	Sun CelestialBody = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	NorthNode
)

var bodyNames = [...]string{
	"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter",
	"Saturn", "Uranus", "Neptune", "Pluto", "North Node",
}

// Bodies lists every body in canonical order.
func Bodies() []CelestialBody {
	out := make([]CelestialBody, len(bodyNames))
	for i := range out {
		out[i] = CelestialBody(i)
	}
	return out
}

// Valid reports whether b is a member of the closed set.
func (b CelestialBody) Valid() bool {
	return b >= Sun && b <= NorthNode
}

func (b CelestialBody) String() string {
	if !b.Valid() {
		return fmt.Sprintf("CelestialBody(%d)", int(b))
	}
	return bodyNames[b]
}

// IsPlanet is true for the eight bodies whose retrograde flag comes from the
// elongation heuristic.
func (b CelestialBody) IsPlanet() bool {
	return b >= Mercury && b <= Pluto
}

func (b CelestialBody) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid celestial body %d", int(b))
	}
	return []byte(bodyNames[b]), nil
}

func (b *CelestialBody) UnmarshalText(text []byte) error {
	v, err := ParseBody(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ParseBody resolves a display name such as "North Node".
func ParseBody(name string) (CelestialBody, error) {
	for i, n := range bodyNames {
		if n == name {
			return CelestialBody(i), nil
		}
	}
	return 0, fmt.Errorf("unknown celestial body %q", name)
}
