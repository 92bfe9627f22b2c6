package models

// Requests for the chart endpoints and the Kafka request topic. Defined in
// domain for reuse across transports.

type ChartRequest struct {
	Name      string   `json:"name" default:"Anonymous" validate:"max=120"`
	BirthDate string   `json:"birth_date" validate:"required,datetime=2006-01-02"`
	BirthTime string   `json:"birth_time" default:"12:00" validate:"required,clock"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type BatchChartRequest struct {
	Charts []ChartRequest `json:"charts" validate:"required,min=1,max=50,dive"`
}

type ChartHashRequest struct {
	Hash string `param:"hash" json:"hash" validate:"required,len=16,hexadecimal"`
}

// OrderChartRequest is the payload of the chart request topic.
type OrderChartRequest struct {
	OrderID string `json:"order_id" validate:"required,max=64"`
	ChartRequest
}

// ChartComputed is published once per computed order chart.
type ChartComputed struct {
	EventID        string `json:"event_id"`
	OrderID        string `json:"order_id,omitempty"`
	ChartHash      string `json:"chart_hash"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	SunSign        string `json:"sun_sign"`
	MoonSign       string `json:"moon_sign"`
	RisingSign     string `json:"rising_sign"`
	Source         string `json:"source"`
	ComputedAt     int64  `json:"computed_at"`
}
