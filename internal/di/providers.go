package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	domrepo "celestial/internal/domain/repository"
	domsvc "celestial/internal/domain/service"
	"celestial/internal/handler/api"
	internalrepo "celestial/internal/repository"
	"celestial/internal/service/ratelimit"
	"celestial/internal/services/astro"
	"celestial/internal/usecase"
	pkgcache "celestial/pkg/cache"
	pkgch "celestial/pkg/clickhouse"
	"celestial/pkg/config"
	xhttp "celestial/pkg/http"
	pkgkafka "celestial/pkg/kafka"
	applogger "celestial/pkg/logger"
	"celestial/pkg/metrics"
	"celestial/pkg/queue"
	"celestial/pkg/server"
)

const schemaTimeout = 10 * time.Second

// ProvideLogger builds the process logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the registry behind /metrics with the Go and
// process collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.NewWithRegisterer(reg)
}

// ProvideCalculator returns the chart engine.
func ProvideCalculator() domsvc.ChartCalculator {
	return astro.NewEngine()
}

// ProvideRedisCache dials redis when the cache backend or the queue needs it;
// otherwise it returns nil.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, func(), error) {
	if !cfg.RedisRequired() {
		return nil, func() {}, nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 30*time.Second),
		pkgcache.WithRedisPrefix("celestial"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

// ProvideCache selects the chart cache backend.
func ProvideCache(cfg *config.Config, rc *pkgcache.RedisCache) (pkgcache.Service, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		return rc, func() {}, nil
	case "layered":
		lc := pkgcache.NewLayeredCache(rc,
			pkgcache.WithLayeredMemorySize(cfg.Cache.MemorySize),
			pkgcache.WithLayeredMemoryTTL(cfg.Cache.MemoryTTL),
		)
		return lc, func() { _ = lc.Close() }, nil
	case "memory":
		mc := pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemorySize))
		return mc, func() { _ = mc.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideKafkaProducer creates the producer when kafka is enabled and, if
// configured, ships aggregated error logs through it.
func ProvideKafkaProducer(cfg *config.Config, log *applogger.Logger, reg *prometheus.Registry) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithClientID("celestial"),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerLogger(log),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	if cfg.Logging.Collector.Enabled {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval: cfg.Logging.Collector.FlushInterval,
			Topic:        cfg.Logging.Collector.Topic,
			Publisher:    producer,
		})
	}
	return producer, func() {
		log.RemoveCollector()
		_ = producer.Close()
	}, nil
}

// ProvideClickHouseClient connects to ClickHouse when the archive is enabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideChartArchive creates the archive tables and returns the archive, or
// nil without ClickHouse.
func ProvideChartArchive(client *pkgch.Client, log *applogger.Logger) (domrepo.ChartArchive, error) {
	if client == nil {
		return nil, nil
	}
	archive := internalrepo.NewCHChartArchive(client, log)

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if err := archive.Init(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}

// ProvideEventPublisher announces computed charts on the events topic, or
// returns nil without kafka.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideArchiveQueue creates the redis job queue running the archive job.
func ProvideArchiveQueue(cfg *config.Config, rc *pkgcache.RedisCache, archive domrepo.ChartArchive, log *applogger.Logger) *queue.RedisQueue {
	if !cfg.Queue.Enabled || rc == nil || archive == nil {
		return nil
	}
	q := queue.NewRedisQueue(log, queue.Config{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rc.Client(), queue.WithKeyPrefix("celestial:"+cfg.Queue.Name))
	q.RegisterJobs(usecase.NewArchiveJob(archive))
	return q
}

// ProvideChartService assembles the chart service from whatever backends are
// enabled.
func ProvideChartService(
	cfg *config.Config,
	calc domsvc.ChartCalculator,
	cache pkgcache.Service,
	rec domrepo.Metrics,
	log *applogger.Logger,
	archive domrepo.ChartArchive,
	publisher domrepo.EventPublisher,
	q *queue.RedisQueue,
) *usecase.ChartService {
	opts := []usecase.ChartServiceOption{
		usecase.WithCacheTTL(cfg.Chart.CacheTTL),
		usecase.WithBatch(cfg.Chart.BatchLimit, cfg.Chart.BatchWorkers),
	}
	if archive != nil {
		opts = append(opts, usecase.WithArchive(archive))
	}
	if q != nil {
		opts = append(opts, usecase.WithArchiveQueue(q))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithEventPublisher(publisher))
	}
	return usecase.NewChartService(calc, cache, rec, log, opts...)
}

// ProvideRateLimiter returns the per-client limiter for POST routes, or nil
// when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.Server.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(float64(cfg.Server.RateLimit.Rate), cfg.Server.RateLimit.Burst)
}

// ProvideChartsHandler creates the chart API with health checks for every
// enabled backend.
func ProvideChartsHandler(
	log *applogger.Logger,
	charts *usecase.ChartService,
	limiter *ratelimit.Limiter,
	rc *pkgcache.RedisCache,
	archive domrepo.ChartArchive,
) *api.ChartsEchoHandler {
	var opts []api.ChartsOption
	if limiter != nil {
		opts = append(opts, api.WithRateLimit(ratelimit.Middleware(limiter, ratelimit.ClientIP)))
	}
	if rc != nil {
		opts = append(opts, api.WithHealthCheck("redis", func(ctx context.Context) error {
			return rc.Client().Ping(ctx).Err()
		}))
	}
	if archive != nil {
		opts = append(opts, api.WithHealthCheck("clickhouse", archive.Health))
	}
	return api.NewChartsEchoHandler(log, charts, opts...)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.ChartsEchoHandler, reg *prometheus.Registry, log *applogger.Logger) *xhttp.Server {
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithLogger(log),
		xhttp.WithMetrics(path, reg, reg),
	)
}

// ProvideKafkaConsumer consumes chart requests when kafka is enabled.
func ProvideKafkaConsumer(
	cfg *config.Config,
	charts *usecase.ChartService,
	cache pkgcache.Service,
	rec domrepo.Metrics,
	log *applogger.Logger,
	reg *prometheus.Registry,
) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(log),
		pkgkafka.WithConsumerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook(),
		pkgkafka.LoggingHook(log, time.Second),
	))
	consumer.RegisterHandler(usecase.NewKafkaChartHandler(
		cfg.Kafka.RequestsTopic, charts, cache, cfg.Chart.OrderTTL, rec, log,
	))
	return consumer, nil
}

// ProvideApp registers the long-running components in start order.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	q *queue.RedisQueue,
) *server.App {
	app := server.New(log, cfg.Server.ShutdownTimeout)
	if q != nil {
		app.Add("archive-queue", q)
	}
	if consumer != nil {
		app.Add("kafka-consumer", consumer)
	}
	return app.Add("http", srv)
}
