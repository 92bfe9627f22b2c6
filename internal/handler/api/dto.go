package api

import (
	"math"
	"time"

	"celestial/internal/domain/models"
	"celestial/internal/services/interpret"
	"celestial/internal/usecase"
)

type BirthResponse struct {
	Name      string    `json:"name"`
	BirthTime time.Time `json:"birth_time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type PositionResponse struct {
	Body       models.CelestialBody `json:"body"`
	Longitude  float64              `json:"longitude"`
	Sign       models.ZodiacSign    `json:"sign"`
	SignDegree float64              `json:"sign_degree"`
	House      int                  `json:"house"`
	Retrograde bool                 `json:"retrograde"`
	Formatted  string               `json:"formatted"`
}

type HouseResponse struct {
	House      int               `json:"house"`
	Longitude  float64           `json:"longitude"`
	Sign       models.ZodiacSign `json:"sign"`
	SignDegree float64           `json:"sign_degree"`
	Formatted  string            `json:"formatted"`
}

type AspectResponse struct {
	Body1    models.CelestialBody `json:"body1"`
	Body2    models.CelestialBody `json:"body2"`
	Type     models.AspectType    `json:"type"`
	Category string               `json:"category"`
	Orb      float64              `json:"orb"`
	Strength models.Strength      `json:"strength"`
	Applying bool                 `json:"applying"`
}

type ChartResponse struct {
	Hash       string               `json:"chart_hash"`
	Birth      BirthResponse        `json:"birth"`
	Ascendant  float64              `json:"ascendant"`
	Midheaven  float64              `json:"midheaven"`
	SunSign    models.ZodiacSign    `json:"sun_sign"`
	MoonSign   models.ZodiacSign    `json:"moon_sign"`
	RisingSign models.ZodiacSign    `json:"rising_sign"`
	Positions  []PositionResponse   `json:"positions"`
	Houses     []HouseResponse      `json:"houses"`
	Aspects    []AspectResponse     `json:"aspects"`
	Highlights interpret.Highlights `json:"highlights"`
	Source     usecase.Source       `json:"source"`
}

func toChartResponse(c models.NatalChart, src usecase.Source) ChartResponse {
	resp := ChartResponse{
		Hash: c.Hash,
		Birth: BirthResponse{
			Name:      c.Birth.Name,
			BirthTime: c.Birth.Timestamp,
			Latitude:  c.Birth.Latitude,
			Longitude: c.Birth.Longitude,
		},
		Ascendant:  c.Ascendant,
		Midheaven:  c.Midheaven,
		SunSign:    c.SunSign(),
		MoonSign:   c.MoonSign(),
		RisingSign: c.RisingSign(),
		Positions:  make([]PositionResponse, 0, len(c.Positions)),
		Houses:     make([]HouseResponse, 0, len(c.Houses)),
		Aspects:    make([]AspectResponse, 0, len(c.Aspects)),
		Highlights: interpret.ForChart(c),
		Source:     src,
	}
	for _, p := range c.OrderedPositions() {
		resp.Positions = append(resp.Positions, PositionResponse{
			Body:       p.Body,
			Longitude:  p.Longitude,
			Sign:       p.Sign,
			SignDegree: p.SignDegree,
			House:      p.House,
			Retrograde: p.Retrograde,
			Formatted:  p.Formatted(),
		})
	}
	for _, h := range c.Houses {
		resp.Houses = append(resp.Houses, HouseResponse{
			House:      h.House,
			Longitude:  h.Longitude,
			Sign:       h.Sign,
			SignDegree: h.SignDegree,
			Formatted:  h.Formatted(),
		})
	}
	for _, a := range c.Aspects {
		resp.Aspects = append(resp.Aspects, AspectResponse{
			Body1:    a.Body1,
			Body2:    a.Body2,
			Type:     a.Type,
			Category: string(a.Type.Category()),
			Orb:      math.Round(a.Orb*100) / 100,
			Strength: a.Strength,
			Applying: a.Applying,
		})
	}
	return resp
}
