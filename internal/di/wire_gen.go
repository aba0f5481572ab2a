// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"SediPull/pkg/config"
	"SediPull/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	alertStream := ProvideAlertStream(cfg, logger)
	metrics := ProvideMetrics()
	redisCache, err := ProvideRedisCache(cfg)
	if err != nil {
		return nil, err
	}
	redisQueue := ProvideScanQueue(logger, cfg, redisCache)
	queueService := ProvideQueueService(redisQueue)
	alertCollector := ProvideAlertCollector(alertStream, metrics, queueService)
	consumer, err := ProvideKafkaConsumer(cfg)
	if err != nil {
		return nil, err
	}
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	filingStore, err := ProvideFilingStore(client, logger)
	if err != nil {
		return nil, err
	}
	messageHandler := ProvideFilingsHandler(cfg, filingStore, queueService, metrics, logger)
	service := ProvideCacheService(redisCache)
	marketDataProvider := ProvideMarketData(cfg, service, logger)
	engine := ProvideEngine(cfg, marketDataProvider, metrics, logger)
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	signalPublisher := ProvideSignalPublisher(producer, cfg)
	newsProvider := ProvideNews(cfg, logger)
	commentaryService := ProvideCommentary(cfg, logger)
	escalator := ProvideEscalator(newsProvider, commentaryService, metrics, logger)
	reporter := ProvideReporter(logger)
	scanner := ProvideScanner(engine, filingStore, signalPublisher, escalator, reporter, cfg, metrics, logger)
	overviewUseCase := ProvideOverview(filingStore, marketDataProvider, cfg)
	historyUseCase := ProvideHistory(filingStore)
	handler := ProvideHTTPHandler(logger, scanner, overviewUseCase, historyUseCase, cfg)
	app := ProvideApp(cfg, logger, alertCollector, consumer, messageHandler, client, redisQueue, scanner, signalPublisher, producer, handler)
	return app, nil
}
