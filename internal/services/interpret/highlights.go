package interpret

import (
	"celestial/internal/domain/models"
)

// Highlights is the short reading rendered next to a chart.
type Highlights struct {
	Sun          SunText           `json:"sun"`
	Moon         MoonText          `json:"moon"`
	Rising       models.ZodiacSign `json:"rising"`
	SunHouse     HouseMeaning      `json:"sun_house"`
	MoonHouse    HouseMeaning      `json:"moon_house"`
	MajorAspects int               `json:"major_aspects"`
}

// ForChart builds highlights from values the chart already carries.
func ForChart(chart models.NatalChart) Highlights {
	h := Highlights{Rising: chart.RisingSign()}
	h.Sun, _ = Sun(chart.SunSign())
	h.Moon, _ = Moon(chart.MoonSign())
	h.SunHouse, _ = House(chart.Positions[models.Sun].House)
	h.MoonHouse, _ = House(chart.Positions[models.Moon].House)
	for _, a := range chart.Aspects {
		if a.Type.Category() == models.Major {
			h.MajorAspects++
		}
	}
	return h
}
