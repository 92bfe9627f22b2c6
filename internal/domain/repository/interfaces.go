package repository

import (
	"context"

	"celestial/internal/domain/models"
)

// ChartArchive is the durable store of computed charts, keyed by chart hash.
type ChartArchive interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Save(ctx context.Context, chart models.NatalChart) error
	SaveBatch(ctx context.Context, charts []models.NatalChart) error
	// Get returns models.ErrChartNotFound when hash was never saved.
	Get(ctx context.Context, hash string) (models.NatalChart, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// EventPublisher announces computed charts to downstream consumers.
type EventPublisher interface {
	PublishChartComputed(ctx context.Context, ev models.ChartComputed) error
	Close() error
}

type Metrics interface {
	RecordChart(source string)
	RecordCacheLookup(hit bool)
	RecordError(kind string)
	RecordSkipped(reason string)
	RecordLatency(op string, seconds float64)
}
