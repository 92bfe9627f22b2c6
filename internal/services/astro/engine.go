package astro

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"celestial/internal/domain/models"
	domsvc "celestial/internal/domain/service"
)

// HashLength is the number of hex characters kept from the chart digest.
const HashLength = 16

// Engine assembles natal charts. The zero value is ready to use and holds
// no state, so one Engine may be shared by any number of goroutines.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

var _ domsvc.ChartCalculator = (*Engine)(nil)

// Compute validates in and builds the complete chart. Any failure aborts
// the whole computation; no partial chart is returned.
func (e *Engine) Compute(in models.BirthInput) (models.NatalChart, error) {
	if err := in.Validate(); err != nil {
		return models.NatalChart{}, err
	}
	jd := JulianDay(in.Timestamp)

	longitudes := make(map[models.CelestialBody]float64, len(models.Bodies()))
	for _, b := range models.Bodies() {
		lon, err := BodyLongitude(b, jd)
		if err != nil {
			return models.NatalChart{}, err
		}
		longitudes[b] = lon
	}

	asc, err := Ascendant(jd, in.Latitude, in.Longitude)
	if err != nil {
		return models.NatalChart{}, err
	}
	mc := Midheaven(asc)
	cusps := EqualHouses(asc)

	sunLon := longitudes[models.Sun]
	ordered := make([]models.BodyPosition, 0, len(longitudes))
	positions := make(map[models.CelestialBody]models.BodyPosition, len(longitudes))
	for _, b := range models.Bodies() {
		lon := longitudes[b]
		pos := models.NewBodyPosition(b, lon, Retrograde(b, lon, sunLon))
		house, err := AssignHouse(lon, cusps)
		if err != nil {
			return models.NatalChart{}, fmt.Errorf("%s: %w", b, err)
		}
		pos.House = house
		positions[b] = pos
		ordered = append(ordered, pos)
	}

	return models.NatalChart{
		Birth:     in,
		Positions: positions,
		Houses:    cusps[:],
		Aspects:   FindAspects(ordered),
		Ascendant: asc,
		Midheaven: mc,
		Hash:      ChartHash(in),
	}, nil
}

// Hash implements domsvc.ChartCalculator.
func (e *Engine) Hash(in models.BirthInput) string { return ChartHash(in) }

// HashInput is the canonical string the chart hash is derived from:
// ISO timestamp, then latitude and longitude with six decimals. The name is
// not part of it.
func HashInput(in models.BirthInput) string {
	return fmt.Sprintf("%s|%.6f|%.6f", isoTimestamp(in.Timestamp), in.Latitude, in.Longitude)
}

// ChartHash is the first 16 hex characters of the SHA-256 of HashInput.
// It is a cache and idempotency key, not a credential.
func ChartHash(in models.BirthInput) string {
	sum := sha256.Sum256([]byte(HashInput(in)))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// isoTimestamp renders wall-clock fields without a zone; microseconds are
// appended only when non-zero.
func isoTimestamp(t time.Time) string {
	s := t.Format("2006-01-02T15:04:05")
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// ComputeChart is the single entry point for callers holding raw values.
func ComputeChart(name string, ts time.Time, lat, lon float64) (models.NatalChart, error) {
	in, err := models.NewBirthInput(name, ts, lat, lon)
	if err != nil {
		return models.NatalChart{}, err
	}
	return (&Engine{}).Compute(in)
}
