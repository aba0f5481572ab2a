package di

import (
	"context"
	"fmt"
	"time"

	domrepo "SediPull/internal/domain/repository"
	domsvc "SediPull/internal/domain/service"
	"SediPull/internal/engine"
	"SediPull/internal/handler/api"
	mid "SediPull/internal/middleware"
	internalrepo "SediPull/internal/repository"
	icache "SediPull/internal/service/cache"
	"SediPull/internal/service/commentary"
	"SediPull/internal/service/marketdata"
	"SediPull/internal/service/news"
	"SediPull/internal/service/sedistream"
	"SediPull/internal/usecase"
	pkgcache "SediPull/pkg/cache"
	pkgch "SediPull/pkg/clickhouse"
	"SediPull/pkg/config"
	xhttp "SediPull/pkg/http"
	pkgkafka "SediPull/pkg/kafka"
	"SediPull/pkg/logger"
	"SediPull/pkg/metrics"
	pkgqueue "SediPull/pkg/queue"
	"SediPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideFilingStore creates the ClickHouse filing store and runs schema
// migration.
func ProvideFilingStore(chClient *pkgch.Client, l *logger.Logger) (domrepo.FilingStore, error) {
	store := internalrepo.NewCHFilingStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, fmt.Errorf("filing store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.SignalPublisher {
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisCache creates the shared Redis connection.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

// ProvideCacheService layers an in-process cache over Redis for quote
// lookups.
func ProvideCacheService(rc *pkgcache.RedisCache) pkgcache.Service {
	return pkgcache.NewLayeredCache(rc)
}

// ProvideScanQueue creates the redis-backed scan task queue.
func ProvideScanQueue(l *logger.Logger, cfg *config.Config, rc *pkgcache.RedisCache) *pkgqueue.RedisQueue {
	qc := &pkgqueue.QueueConfig{
		Workers:    cfg.Scanner.Workers,
		QueueSize:  256,
		RetryLimit: 3,
		RetryDelay: 5 * time.Second,
	}
	return pkgqueue.NewRedisQueue(l, qc, rc.Client(), pkgqueue.ModeProducerConsumer)
}

// ProvideQueueService exposes the queue's publish side.
func ProvideQueueService(q *pkgqueue.RedisQueue) pkgqueue.QueueService {
	return q
}

// ProvideMarketData creates the quote provider with caching and rate
// limiting.
func ProvideMarketData(cfg *config.Config, svc pkgcache.Service, l *logger.Logger) domsvc.MarketDataProvider {
	client := marketdata.NewClient(*cfg, l)
	return marketdata.NewCached(client, svc, cfg.MarketData.CacheTTL, l)
}

// ProvideEngine creates the scoring engine.
func ProvideEngine(cfg *config.Config, quotes domsvc.MarketDataProvider, m domrepo.Metrics, l *logger.Logger) *engine.Engine {
	return engine.New(cfg.Scoring, quotes, m, l)
}

// ProvideNews creates the headline provider.
func ProvideNews(cfg *config.Config, l *logger.Logger) domsvc.NewsProvider {
	return news.NewClient(*cfg, l)
}

// ProvideCommentary creates the LLM commentary service, or nil when
// disabled.
func ProvideCommentary(cfg *config.Config, l *logger.Logger) domsvc.CommentaryService {
	if !cfg.Commentary.Enabled {
		return nil
	}
	return commentary.NewClaude(*cfg, l)
}

// ProvideEscalator creates the escalation enricher.
func ProvideEscalator(n domsvc.NewsProvider, c domsvc.CommentaryService, m domrepo.Metrics, l *logger.Logger) *usecase.Escalator {
	return usecase.NewEscalator(n, c, m, l)
}

// ProvideReporter creates the scan result reporter.
func ProvideReporter(l *logger.Logger) *usecase.Reporter {
	return usecase.NewReporter(l)
}

// ProvideScanner creates the symbol scanner.
func ProvideScanner(
	eng *engine.Engine,
	store domrepo.FilingStore,
	publisher domrepo.SignalPublisher,
	escalator *usecase.Escalator,
	reporter *usecase.Reporter,
	cfg *config.Config,
	m domrepo.Metrics,
	l *logger.Logger,
) *usecase.Scanner {
	return usecase.NewScanner(eng, store, publisher, escalator, reporter, cfg, m, l)
}

// ProvideFilingsHandler registers the handler for the raw filings topic.
func ProvideFilingsHandler(
	cfg *config.Config,
	store domrepo.FilingStore,
	qs pkgqueue.QueueService,
	m domrepo.Metrics,
	l *logger.Logger,
) pkgkafka.MessageHandler {
	return usecase.NewKafkaFilingsHandler(cfg.Kafka.FilingsTopic, store, qs, m, l)
}

// ProvideAlertStream creates the live filing stream, or nil when no feed
// endpoint is configured.
func ProvideAlertStream(cfg *config.Config, l *logger.Logger) domrepo.AlertStream {
	if cfg.Stream.URL == "" {
		return nil
	}
	return sedistream.New(
		cfg.Stream.Token,
		cfg.Stream.URL,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		l,
	)
}

// ProvideAlertCollector creates the stream consumer feeding the scan
// queue, or nil when the stream is absent.
func ProvideAlertCollector(stream domrepo.AlertStream, m domrepo.Metrics, qs pkgqueue.QueueService) *usecase.AlertCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewAlertPipeline(usecase.NewScanEnqueuer(qs), m)
	return usecase.NewAlertCollector(stream, m, pipe)
}

// ProvideOverview creates the symbol overview use case.
func ProvideOverview(store domrepo.FilingStore, quotes domsvc.MarketDataProvider, cfg *config.Config) *usecase.OverviewUseCase {
	return usecase.NewOverviewUseCase(store, quotes, cfg.Scoring.LookbackDays)
}

// ProvideHistory creates the filing history use case.
func ProvideHistory(store domrepo.FilingStore) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(store)
}

// ProvideHTTPHandler creates the Echo API handler with response caching.
func ProvideHTTPHandler(
	l *logger.Logger,
	scanner *usecase.Scanner,
	overview *usecase.OverviewUseCase,
	history *usecase.HistoryUseCase,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewSignalsEchoHandler(l, scanner, overview, history)

	if cfg.Redis.Enabled {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	collector *usecase.AlertCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	q *pkgqueue.RedisQueue,
	scanner *usecase.Scanner,
	publisher domrepo.SignalPublisher,
	producer *pkgkafka.Producer,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient, q, scanner, publisher, producer)
	app.SetHTTPHandler(handler)
	return app
}
