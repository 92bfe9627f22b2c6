//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	domrepo "celestial/internal/domain/repository"
	"celestial/pkg/config"
	"celestial/pkg/metrics"
	"celestial/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application and
// the cleanup that releases its clients.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		wire.Bind(new(domrepo.Metrics), new(*metrics.Recorder)),

		// Infrastructure clients
		ProvideRedisCache,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideClickHouseClient,

		// Repositories
		ProvideChartArchive,
		ProvideEventPublisher,
		ProvideArchiveQueue,

		// Use cases
		ProvideCalculator,
		ProvideChartService,

		// Transports
		ProvideRateLimiter,
		ProvideChartsHandler,
		ProvideHTTPServer,
		ProvideKafkaConsumer,

		// Application
		ProvideApp,
	)
	return nil, nil, nil
}
