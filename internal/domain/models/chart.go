package models

// NatalChart is the complete, immutable result of one computation.
// Positions holds all eleven bodies; Houses is ordered 1..12; Aspects is
// ordered by ascending orb. Values are built once by the engine and must not
// be mutated afterwards; use WithName to derive a relabelled copy.
type NatalChart struct {
	Birth     BirthInput                     `json:"birth"`
	Positions map[CelestialBody]BodyPosition `json:"positions"`
	Houses    []HouseCusp                    `json:"houses"`
	Aspects   []Aspect                       `json:"aspects"`
	Ascendant float64                        `json:"ascendant"`
	Midheaven float64                        `json:"midheaven"`
	Hash      string                         `json:"chart_hash"`
}

func (c NatalChart) SunSign() ZodiacSign  { return c.Positions[Sun].Sign }
func (c NatalChart) MoonSign() ZodiacSign { return c.Positions[Moon].Sign }

// RisingSign is the sign on the ascendant.
func (c NatalChart) RisingSign() ZodiacSign { return SignOf(c.Ascendant) }

// Position returns the placement of b.
func (c NatalChart) Position(b CelestialBody) (BodyPosition, bool) {
	p, ok := c.Positions[b]
	return p, ok
}

// OrderedPositions lists positions in canonical body order.
func (c NatalChart) OrderedPositions() []BodyPosition {
	out := make([]BodyPosition, 0, len(c.Positions))
	for _, b := range Bodies() {
		if p, ok := c.Positions[b]; ok {
			out = append(out, p)
		}
	}
	return out
}

// WithName returns a deep copy labelled with another display name. The name
// is not part of the hash, so the hash is kept.
func (c NatalChart) WithName(name string) NatalChart {
	out := c
	out.Birth.Name = name
	out.Positions = make(map[CelestialBody]BodyPosition, len(c.Positions))
	for k, v := range c.Positions {
		out.Positions[k] = v
	}
	out.Houses = append([]HouseCusp(nil), c.Houses...)
	out.Aspects = append([]Aspect(nil), c.Aspects...)
	return out
}
