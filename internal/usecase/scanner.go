package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
	"SediPull/internal/engine"
	"SediPull/pkg/config"
	"SediPull/pkg/logger"
	"SediPull/pkg/queue"
)

// ScanTaskType is the queue message type for one-symbol rescans.
const ScanTaskType = "scan_symbol"

// ScanTask is the queue payload: which security to rescore.
type ScanTask struct {
	Symbol string `json:"symbol"`
}

// Scanner drives the scoring pipeline for one security at a time: load
// the lookback window from the store, run the engine, persist and
// publish whatever comes out.
type Scanner struct {
	engine    *engine.Engine
	store     domrepo.FilingStore
	publisher domrepo.SignalPublisher
	escalator *Escalator
	reporter  *Reporter

	mu    sync.RWMutex
	watch map[string]bool

	lookback  int
	minDelay  time.Duration
	maxDelay  time.Duration
	metrics   domrepo.Metrics
	log       *logger.Logger
}

func NewScanner(
	eng *engine.Engine,
	store domrepo.FilingStore,
	publisher domrepo.SignalPublisher,
	escalator *Escalator,
	reporter *Reporter,
	cfg *config.Config,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *Scanner {
	return &Scanner{
		engine:    eng,
		store:     store,
		publisher: publisher,
		escalator: escalator,
		reporter:  reporter,
		watch:     cfg.Watched(),
		lookback:  cfg.Scoring.LookbackDays,
		minDelay:  cfg.Scanner.MinDelay,
		maxDelay:  cfg.Scanner.MaxDelay,
		metrics:   metrics,
		log:       log,
	}
}

// ScanSymbol rescores one security from its stored lookback window.
func (s *Scanner) ScanSymbol(ctx context.Context, symbol string) (models.ScanResult, error) {
	start := time.Now()
	since := time.Now().AddDate(0, 0, -s.lookback)

	recs, err := s.store.RecentFilings(ctx, symbol, since)
	if err != nil {
		s.metrics.RecordError("scan_load")
		return models.ScanResult{Symbol: symbol}, fmt.Errorf("load filings for %s: %w", symbol, err)
	}

	result := s.engine.AnalyzeSecurity(ctx, symbol, recs, s.Watched(symbol))

	if result.Escalated && s.escalator != nil {
		// Best effort: a commentary failure never blocks persistence.
		s.escalator.Enrich(ctx, &result)
	}

	if len(result.Signals) > 0 {
		if err := s.store.SaveSignals(ctx, result.Signals); err != nil {
			s.metrics.RecordError("scan_save")
			s.log.Error("save signals failed",
				logger.String("symbol", symbol), logger.Error(err))
		}
		if s.publisher != nil {
			if err := s.publisher.PublishBatch(ctx, result.Signals); err != nil {
				s.metrics.RecordError("scan_publish")
				s.log.Error("publish signals failed",
					logger.String("symbol", symbol), logger.Error(err))
			}
		}
	}

	if s.reporter != nil {
		s.reporter.Report(result)
	}

	s.metrics.RecordLatency("scan_symbol", time.Since(start).Seconds())
	return result, nil
}

// ScanWatchlist sweeps every watchlisted security with a jittered pause
// between symbols, so a restart does not hammer the quote provider.
func (s *Scanner) ScanWatchlist(ctx context.Context) error {
	symbols := s.Watchlist()

	for i, sym := range symbols {
		if _, err := s.ScanSymbol(ctx, sym); err != nil {
			s.log.Warn("watchlist scan failed",
				logger.String("symbol", sym), logger.Error(err))
		}
		if i == len(symbols)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.jitter()):
		}
	}
	return nil
}

// Watched reports whether a symbol is on the watchlist.
func (s *Scanner) Watched(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watch[strings.ToUpper(symbol)]
}

// Watch adds a symbol to the watchlist for the lifetime of the process.
func (s *Scanner) Watch(symbol string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}
	s.mu.Lock()
	s.watch[symbol] = true
	s.mu.Unlock()
}

// Unwatch removes a symbol from the watchlist.
func (s *Scanner) Unwatch(symbol string) {
	s.mu.Lock()
	delete(s.watch, strings.ToUpper(strings.TrimSpace(symbol)))
	s.mu.Unlock()
}

// Watchlist returns the watched symbols in sorted order.
func (s *Scanner) Watchlist() []string {
	s.mu.RLock()
	symbols := make([]string, 0, len(s.watch))
	for sym := range s.watch {
		symbols = append(symbols, sym)
	}
	s.mu.RUnlock()
	sort.Strings(symbols)
	return symbols
}

func (s *Scanner) jitter() time.Duration {
	min, max := s.minDelay, s.maxDelay
	if min <= 0 {
		min = 2 * time.Second
	}
	if max <= min {
		max = min + 5*time.Second
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// ScanJob adapts the Scanner to the task queue.
type ScanJob struct {
	scanner *Scanner
}

func NewScanJob(scanner *Scanner) *ScanJob {
	return &ScanJob{scanner: scanner}
}

func (j *ScanJob) Name() string { return "scanner" }

func (j *ScanJob) Type() string { return ScanTaskType }

func (j *ScanJob) Handle(ctx context.Context, payload interface{}) error {
	task, err := queue.ParsePayload[ScanTask](payload)
	if err != nil {
		return fmt.Errorf("scan task payload: %w", err)
	}
	if task.Symbol == "" {
		return fmt.Errorf("scan task without symbol")
	}
	_, err = j.scanner.ScanSymbol(ctx, task.Symbol)
	return err
}

var _ queue.Job = (*ScanJob)(nil)

// ScanEnqueuer turns filing alerts into queued scan tasks. It is the
// downstream end of the alert pipeline.
type ScanEnqueuer struct {
	queue queue.QueueService
}

func NewScanEnqueuer(q queue.QueueService) *ScanEnqueuer {
	return &ScanEnqueuer{queue: q}
}

func (e *ScanEnqueuer) Process(ctx context.Context, a models.FilingAlert) error {
	return e.queue.PublishMessage(ctx, ScanTaskType, ScanTask{Symbol: a.Symbol})
}
