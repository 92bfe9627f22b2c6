package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"celestial/internal/domain/models"
	domrepo "celestial/internal/domain/repository"
	pkgcache "celestial/pkg/cache"
	xhttp "celestial/pkg/http"
	pkgkafka "celestial/pkg/kafka"
	applogger "celestial/pkg/logger"
)

// KafkaChartHandler consumes chart orders and publishes one ChartComputed
// event per order and birth data.
type KafkaChartHandler struct {
	topic    string
	charts   *ChartService
	locks    pkgcache.Service
	orderTTL time.Duration
	metrics  domrepo.Metrics
	log      *applogger.Logger
}

func NewKafkaChartHandler(
	topic string,
	charts *ChartService,
	locks pkgcache.Service,
	orderTTL time.Duration,
	metrics domrepo.Metrics,
	log *applogger.Logger,
) *KafkaChartHandler {
	if log == nil {
		log = applogger.Nop()
	}
	return &KafkaChartHandler{
		topic:    topic,
		charts:   charts,
		locks:    locks,
		orderTTL: orderTTL,
		metrics:  metrics,
		log:      log.With(applogger.String("component", "kafka_chart_handler")),
	}
}

func (h *KafkaChartHandler) Topic() string { return h.topic }

// Handle processes {order_id, name, birth_date, birth_time, latitude, longitude}.
// A redelivered order whose key is still locked is acknowledged without
// publishing again.
func (h *KafkaChartHandler) Handle(ctx context.Context, b []byte) error {
	var req models.OrderChartRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return &models.ValidationError{Message: fmt.Sprintf("malformed payload: %v", err)}
	}
	if verrs := xhttp.ValidateStruct(ctx, &req); len(verrs) > 0 {
		h.metrics.RecordError("consumer_validation")
		return &models.ValidationError{Field: verrs[0].Field, Message: verrs[0].Message}
	}

	in, err := BirthInputFromRequest(req.ChartRequest)
	if err != nil {
		h.metrics.RecordError("consumer_validation")
		return err
	}

	key := OrderKey(req.OrderID, h.charts.Hash(in))
	ok, err := h.locks.TryLock(ctx, key, h.orderTTL)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	if !ok {
		h.log.Info("duplicate order skipped", applogger.String("order_id", req.OrderID), applogger.String("key", key))
		h.metrics.RecordSkipped("duplicate_order")
		return nil
	}

	ev, err := h.charts.ComputeOrder(ctx, req.OrderID, in)
	if err != nil {
		// release so the consumer's retry can take the order again
		if uerr := h.locks.Unlock(context.WithoutCancel(ctx), key); uerr != nil {
			h.log.Warn("unlock order", applogger.String("key", key), applogger.Error(uerr))
		}
		return err
	}

	h.log.Debug("order chart published",
		applogger.String("order_id", ev.OrderID),
		applogger.String("hash", ev.ChartHash),
		applogger.String("source", ev.Source),
		applogger.String("trace_id", pkgkafka.TraceIDFrom(ctx)))
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaChartHandler)(nil)
