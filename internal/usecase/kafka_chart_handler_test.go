package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celestial/internal/domain/models"
)

const orderPayload = `{
	"order_id": "ord-42",
	"name": "Ada",
	"birth_date": "1990-06-15",
	"birth_time": "14:30",
	"latitude": 40.7128,
	"longitude": -74.006
}`

func newHandler(t *testing.T) (*KafkaChartHandler, fixture) {
	t.Helper()
	f := newFixture(t)
	h := NewKafkaChartHandler("celestial.chart.requests", f.svc, f.cache, time.Hour, f.metrics, nil)
	return h, f
}

func TestKafkaChartHandlerPublishesOrder(t *testing.T) {
	h, f := newHandler(t)
	assert.Equal(t, "celestial.chart.requests", h.Topic())

	require.NoError(t, h.Handle(context.Background(), []byte(orderPayload)))

	events := f.pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, "ord-42", events[0].OrderID)
	assert.Equal(t, scenarioHash, events[0].ChartHash)
	assert.Equal(t, "order:ord-42:"+scenarioHash, events[0].IdempotencyKey)
}

func TestKafkaChartHandlerSkipsRedelivery(t *testing.T) {
	h, f := newHandler(t)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, []byte(orderPayload)))
	require.NoError(t, h.Handle(ctx, []byte(orderPayload)))

	assert.Len(t, f.pub.published(), 1)
	assert.Equal(t, 1, f.metrics.skipped["duplicate_order"])
	assert.Zero(t, f.metrics.errs["consumer_duplicate"])
}

func TestKafkaChartHandlerDefaultsBirthTime(t *testing.T) {
	h, f := newHandler(t)
	payload := `{"order_id":"o","birth_date":"1990-06-15","latitude":0,"longitude":0}`

	require.NoError(t, h.Handle(context.Background(), []byte(payload)))
	events := f.pub.published()
	require.Len(t, events, 1)

	want := models.BirthInput{Timestamp: time.Date(1990, 6, 15, 12, 0, 0, 0, time.UTC)}
	assert.Equal(t, f.svc.Hash(want), events[0].ChartHash)
}

func TestKafkaChartHandlerRejectsInvalidPayloads(t *testing.T) {
	cases := map[string]string{
		"malformed":        `{"order_id":`,
		"missing order":    `{"birth_date":"1990-06-15","latitude":1,"longitude":1}`,
		"latitude range":   `{"order_id":"o","birth_date":"1990-06-15","latitude":95,"longitude":1}`,
		"missing latitude": `{"order_id":"o","birth_date":"1990-06-15","longitude":1}`,
		"bad clock":        `{"order_id":"o","birth_date":"1990-06-15","birth_time":"25:00","latitude":1,"longitude":1}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			h, f := newHandler(t)
			err := h.Handle(context.Background(), []byte(payload))
			require.ErrorIs(t, err, models.ErrInvalidInput)
			assert.Empty(t, f.pub.published())
		})
	}
}

func TestKafkaChartHandlerReleasesLockOnFailure(t *testing.T) {
	h, f := newHandler(t)
	ctx := context.Background()

	f.pub.err = errors.New("kafka down")
	require.Error(t, h.Handle(ctx, []byte(orderPayload)))

	f.pub.err = nil
	require.NoError(t, h.Handle(ctx, []byte(orderPayload)), "retry must be able to take the order again")
	assert.Len(t, f.pub.published(), 1)
}

func TestArchiveJob(t *testing.T) {
	archive := newFakeArchive()
	job := NewArchiveJob(archive)
	assert.Equal(t, ArchiveJobType, job.Type())

	f := newFixture(t)
	chart, _, err := f.svc.Compute(context.Background(), scenarioInput("Ada"))
	require.NoError(t, err)
	payload, err := json.Marshal(chart)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), payload))
	got, err := archive.Get(context.Background(), scenarioHash)
	require.NoError(t, err)
	assert.Equal(t, chart.Positions, got.Positions)

	assert.Error(t, job.Handle(context.Background(), json.RawMessage(`{}`)))
	assert.Error(t, job.Handle(context.Background(), json.RawMessage(`not json`)))
}
