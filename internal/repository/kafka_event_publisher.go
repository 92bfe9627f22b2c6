package repository

import (
	"context"

	"celestial/internal/domain/models"
	domrepo "celestial/internal/domain/repository"
	pkgkafka "celestial/pkg/kafka"
)

// KafkaEventPublisher writes ChartComputed events keyed by chart hash, so
// every event of one chart lands on the same partition.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

func (p *KafkaEventPublisher) PublishChartComputed(ctx context.Context, ev models.ChartComputed) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
		Key:   []byte(ev.ChartHash),
		Value: ev,
		Headers: map[string]string{
			"event_type":      "chart.computed",
			"idempotency_key": ev.IdempotencyKey,
		},
	}})
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
