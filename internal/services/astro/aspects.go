package astro

import (
	"math"
	"sort"

	"celestial/internal/domain/models"
)

// FindAspects scans every unordered pair of positions and records at most
// one aspect per pair: the first type, in canonical order, whose orb window
// contains the separation. The result is sorted by ascending orb; equal orbs
// keep pair iteration order.
func FindAspects(positions []models.BodyPosition) []models.Aspect {
	types := models.AspectTypes()
	var out []models.Aspect
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			p1, p2 := positions[i], positions[j]
			angle := Separation(p1.Longitude, p2.Longitude)
			for _, at := range types {
				orb := math.Abs(angle - at.Angle())
				if orb > at.MaxOrb() {
					continue
				}
				out = append(out, models.Aspect{
					Body1:    p1.Body,
					Body2:    p2.Body,
					Type:     at,
					Orb:      orb,
					Strength: models.StrengthOf(orb),
					Applying: p1.Retrograde != p2.Retrograde,
				})
				break
			}
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Orb < out[b].Orb })
	return out
}
