//go:build wireinject
// +build wireinject

package di

import (
	"SediPull/pkg/config"
	"SediPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,
		ProvideScanQueue,
		ProvideQueueService,

		// Repositories
		ProvideFilingStore,
		ProvideSignalPublisher,

		// External services
		ProvideMarketData,
		ProvideNews,
		ProvideCommentary,
		ProvideAlertStream,

		// Engine and use cases
		ProvideEngine,
		ProvideEscalator,
		ProvideReporter,
		ProvideScanner,
		ProvideFilingsHandler,
		ProvideAlertCollector,
		ProvideOverview,
		ProvideHistory,

		// HTTP API
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
