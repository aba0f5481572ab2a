package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "SediPull/internal/domain/repository"
	"SediPull/internal/usecase"
	pkgch "SediPull/pkg/clickhouse"
	"SediPull/pkg/config"
	xhttp "SediPull/pkg/http"
	pkgkafka "SediPull/pkg/kafka"
	applogger "SediPull/pkg/logger"
	pkgqueue "SediPull/pkg/queue"
)

// aggregatedLogTopic receives deduplicated error-log batches.
const aggregatedLogTopic = "sedi.logs.errors"

// App encapsulates the entire application lifecycle: the Kafka filings
// consumer, the redis scan queue, the optional live alert stream, the
// periodic watchlist sweep and the HTTP API.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	collector *usecase.AlertCollector
	consumer  *pkgkafka.Consumer
	kh        pkgkafka.MessageHandler
	chClient  *pkgch.Client
	queue     *pkgqueue.RedisQueue
	scanner   *usecase.Scanner
	publisher domrepo.SignalPublisher
	producer  *pkgkafka.Producer

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.AlertCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	q *pkgqueue.RedisQueue,
	scanner *usecase.Scanner,
	publisher domrepo.SignalPublisher,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		queue:     q,
		scanner:   scanner,
		publisher: publisher,
		producer:  producer,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// logPublisher adapts the Kafka producer to the log collector sink.
type logPublisher struct {
	p *pkgkafka.Producer
}

func (lp logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return lp.p.Publish(ctx, topic, nil, payload)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.log

	// Ship repeated error logs as aggregated batches rather than spamming
	// the log topic once per failed scan.
	if a.producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   time.Minute,
			CountThreshold: 100,
			Topic:          aggregatedLogTopic,
			Publisher:      logPublisher{p: a.producer},
		})
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(l, time.Second),
	)

	// Scan queue workers: every rescan request funnels through here, from
	// the filings consumer, the alert pipeline and the HTTP watchlist API.
	if a.queue != nil {
		a.queue.RegisterJob(usecase.NewScanJob(a.scanner))
		if err := a.queue.Start(); err != nil {
			l.Error("scan queue start error", applogger.Error(err))
			return err
		}
		l.Info("scan queue started", applogger.Int("workers", a.cfg.Scanner.Workers))
	}

	// Kafka filings consumer.
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Live filing alert stream, when a feed endpoint is configured.
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("alert collector error", applogger.Error(err))
			}
		}()
		l.Info("alert collector started", applogger.String("url", a.cfg.Stream.URL))
	}

	// Periodic watchlist sweep. Stored filings decay out of the lookback
	// window over time, so watched securities are rescored even when no
	// new filing arrives.
	go a.watchlistLoop(ctx)

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) watchlistLoop(ctx context.Context) {
	interval := a.cfg.Scanner.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	if err := a.scanner.ScanWatchlist(ctx); err != nil {
		a.log.Warn("watchlist sweep error", applogger.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.scanner.ScanWatchlist(ctx); err != nil {
				a.log.Warn("watchlist sweep error", applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.log
	l.Info("shutting down...")

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("alert collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			l.Warn("scan queue stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			l.Warn("signal publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.RemoveCollector()
	l.Info("shutdown complete")
	return nil
}
