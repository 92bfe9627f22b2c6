package kafka

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "celestial/pkg/logger"
)

func TestHookChainOrderAndThreading(t *testing.T) {
	var calls []string
	type key struct{}

	first := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			calls = append(calls, "before1")
			return context.WithValue(ctx, key{}, "v"), km, append(data, '1'), nil
		},
		After: func(context.Context, string, kafka.Message, []byte, error) { calls = append(calls, "after1") },
	}
	second := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			calls = append(calls, "before2")
			assert.Equal(t, "v", ctx.Value(key{}))
			return ctx, km, append(data, '2'), nil
		},
		After: func(context.Context, string, kafka.Message, []byte, error) { calls = append(calls, "after2") },
	}

	chain := NewHookChain(first, nil, second)
	ctx, km, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "x12", string(data))
	chain.AfterHandle(ctx, "t", km, data, nil)

	assert.Equal(t, []string{"before1", "before2", "after2", "after1"}, calls)
}

func TestHookChainRecoversPanic(t *testing.T) {
	var notified error
	panicky := HookFuncs{
		Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("boom")
		},
		Err: func(_ context.Context, _ string, _ kafka.Message, _ []byte, err error) { notified = err },
	}
	chain := NewHookChain(panicky, HookFuncs{
		After: func(context.Context, string, kafka.Message, []byte, error) { panic("after") },
	})

	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	require.Error(t, err)
	var he *HookError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "ERR_PANIC", he.Code)
	assert.Equal(t, "x", string(data))
	assert.Equal(t, err, notified)

	assert.NotPanics(t, func() { chain.AfterHandle(context.Background(), "t", kafka.Message{}, nil, nil) })
}

func TestTraceHook(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}
	ctx, _, _, err := TraceHook().BeforeHandle(context.Background(), "t", km, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", TraceIDFrom(ctx))
	_, ok := ctx.Value(CtxStartTime).(time.Time)
	assert.True(t, ok)

	ctx, _, _, _ = TraceHook().BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	assert.Empty(t, TraceIDFrom(ctx))
}

func TestLoggingHookWritesFailures(t *testing.T) {
	var buf bytes.Buffer
	h := LoggingHook(applogger.NewWithWriter(&buf, zerolog.DebugLevel), time.Second)

	ctx := WithTraceID(context.Background(), "t-1")
	h.OnError(ctx, "chart.requests", kafka.Message{Partition: 2, Offset: 9}, nil, errors.New("bad payload"))

	out := buf.String()
	assert.Contains(t, out, "message attempt failed")
	assert.Contains(t, out, `"trace_id":"t-1"`)
	assert.Contains(t, out, `"offset":9`)
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = encodeValue("text")
	require.NoError(t, err)
	assert.Equal(t, "text", string(b))

	b, err = encodeValue(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	_, err = encodeValue(make(chan int))
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Lz4, parseCompression("lz4"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("gzip"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 200*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 200*time.Millisecond)
	}

	d := backoffWithJitter(0, 0, 1)
	assert.Greater(t, d, 25*time.Millisecond)
	assert.LessOrEqual(t, d, 50*time.Millisecond)
}

func TestProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
	_, err = NewConsumer()
	assert.Error(t, err)
}

func TestMetricsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	p1, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithProducerRegisterer(reg))
	require.NoError(t, err)
	defer p1.Close()
	p2, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithProducerRegisterer(reg))
	require.NoError(t, err)
	defer p2.Close()

	p1.metrics.observe("events", "gzip", 10, 1, time.Millisecond, nil)
	p2.metrics.observe("events", "gzip", 5, 1, time.Millisecond, errors.New("x"))

	assert.Equal(t, 1.0, testutil.ToFloat64(p1.metrics.messages.WithLabelValues("events", "gzip", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p1.metrics.errors.WithLabelValues("events")))
	assert.Equal(t, 15.0, testutil.ToFloat64(p2.metrics.bytes.WithLabelValues("events", "gzip")))
}

func TestConsumerStartWithoutHandlers(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}), WithConsumerRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	assert.Error(t, c.Start())
}

type recordingHandler struct {
	topic string
	fails int
	calls int
}

func (h *recordingHandler) Topic() string { return h.topic }

func (h *recordingHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.calls <= h.fails {
		return errors.New("transient")
	}
	return nil
}

func TestProcessRetriesUntilSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRegisterer(reg),
		WithConsumerRetry(3, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)

	var errs int
	c.WithConsumerHook(HookFuncs{Err: func(context.Context, string, kafka.Message, []byte, error) { errs++ }})

	h := &recordingHandler{topic: "chart.requests", fails: 2}
	c.RegisterHandler(h)
	c.process(h, &message{topic: "chart.requests", data: []byte("{}")})

	assert.Equal(t, 3, h.calls)
	assert.Equal(t, 2, errs)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.handled.WithLabelValues("chart.requests", "ok")))
}

func TestProcessGivesUpAfterRetryMax(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRegisterer(prometheus.NewRegistry()),
		WithConsumerRetry(1, time.Millisecond, time.Millisecond),
	)
	require.NoError(t, err)

	h := &recordingHandler{topic: "chart.requests", fails: 10}
	c.process(h, &message{topic: "chart.requests"})

	assert.Equal(t, 2, h.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.handled.WithLabelValues("chart.requests", "failed")))
}

type panicHandler struct{}

func (panicHandler) Topic() string                        { return "p" }
func (panicHandler) Handle(context.Context, []byte) error { panic("handler") }

func TestProcessRecoversHandlerPanic(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}), WithConsumerRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)

	assert.NotPanics(t, func() { c.process(panicHandler{}, &message{topic: "p"}) })
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.handled.WithLabelValues("p", "panic")))
}
