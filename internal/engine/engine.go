package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
	domsvc "SediPull/internal/domain/service"
	"SediPull/pkg/config"
	"SediPull/pkg/logger"
)

const defaultQuoteTimeout = 5 * time.Second

// Engine is the signal scoring pipeline: normalized records in, ranked
// explainable signals out. It holds no state between runs; the scoring
// configuration is fixed at construction and never mutated mid-run.
type Engine struct {
	cfg        config.Scoring
	classifier *Classifier
	anomaly    *AnomalyFilter
	evaluator  *Evaluator
	consensus  *Consensus
	gate       *Gate

	quotes       domsvc.MarketDataProvider
	metrics      domrepo.Metrics
	log          *logger.Logger
	quoteTimeout time.Duration

	now func() time.Time
}

// New builds the pipeline. quotes may be nil, in which case every
// security is scored in degraded mode.
func New(cfg config.Scoring, quotes domsvc.MarketDataProvider, metrics domrepo.Metrics, log *logger.Logger) *Engine {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	classifier := NewClassifier(cfg.Codes)
	anomaly := NewAnomalyFilter(cfg)
	return &Engine{
		cfg:          cfg,
		classifier:   classifier,
		anomaly:      anomaly,
		evaluator:    NewEvaluator(cfg, classifier, anomaly, metrics),
		consensus:    NewConsensus(cfg),
		gate:         NewGate(cfg),
		quotes:       quotes,
		metrics:      metrics,
		log:          log,
		quoteTimeout: defaultQuoteTimeout,
		now:          time.Now,
	}
}

// Analyze runs the full pipeline over a batch of records spanning any
// number of securities. Securities are independent and scored in
// parallel; a failure on one never aborts the others. Output is ordered
// by descending score.
func (e *Engine) Analyze(ctx context.Context, recs []models.TransactionRecord, watchlist map[string]bool) []models.Signal {
	start := e.now()
	groups := GroupBySymbol(e.prepare(recs))

	var (
		mu  sync.Mutex
		all []models.Signal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for symbol, group := range groups {
		g.Go(func() error {
			res := e.analyzeGroup(gctx, symbol, group, watchlist[symbol])
			mu.Lock()
			all = append(all, res.Signals...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sortSignals(all)
	e.metrics.RecordLatency("analyze", e.now().Sub(start).Seconds())
	return all
}

// AnalyzeSecurity scores one security's records. Used by the scan worker,
// which processes one symbol per task.
func (e *Engine) AnalyzeSecurity(ctx context.Context, symbol string, recs []models.TransactionRecord, watchlisted bool) models.ScanResult {
	return e.analyzeGroup(ctx, symbol, e.prepare(recs), watchlisted)
}

// prepare applies the temporal and identity filter: lookback window first,
// then last-wins dedup. Both are pure, so re-preparing filtered input is a
// no-op.
func (e *Engine) prepare(recs []models.TransactionRecord) []models.TransactionRecord {
	recent := FilterRecent(recs, e.now(), e.cfg.LookbackDays)
	for i := 0; i < len(recs)-len(recent); i++ {
		e.metrics.RecordDropped("stale")
	}
	unique := Deduplicate(recent)
	for i := 0; i < len(recent)-len(unique); i++ {
		e.metrics.RecordDropped("duplicate")
	}
	return unique
}

func (e *Engine) analyzeGroup(ctx context.Context, symbol string, recs []models.TransactionRecord, watchlisted bool) models.ScanResult {
	result := models.ScanResult{Symbol: symbol}

	market := e.fetchMarket(ctx, symbol)
	result.Market = market

	var sigs []models.Signal
	byInsider := GroupByInsider(recs)
	for _, insider := range sortedInsiders(recs) {
		if sig := e.evaluator.Evaluate(byInsider[insider], watchlisted, market); sig != nil {
			sigs = append(sigs, *sig)
		}
	}

	sigs = e.consensus.Adjust(sigs)

	escalate := e.gate.ShouldEscalate(sigs, watchlisted)
	sigs = e.gate.Mark(sigs, escalate)

	now := e.now()
	for i := range sigs {
		sigs[i].DisplayScore = DisplayScore(sigs[i].Score, e.cfg)
		sigs[i].GeneratedAt = now
		e.metrics.RecordSignal(symbol, sigs[i].Score)
	}

	sortSignals(sigs)
	result.Signals = sigs
	result.Escalated = escalate
	if escalate {
		e.metrics.RecordEscalation(symbol)
		if e.log != nil {
			e.log.Info("security escalated",
				logger.String("symbol", symbol),
				logger.Int("signals", len(sigs)),
				logger.Bool("watchlisted", watchlisted))
		}
	}
	return result
}

// fetchMarket resolves the security's market context, bounded by the
// quote timeout. Any failure degrades to a nil context: scoring proceeds
// with context-independent rules only.
func (e *Engine) fetchMarket(ctx context.Context, symbol string) *models.MarketContext {
	if e.quotes == nil {
		return nil
	}
	qctx, cancel := context.WithTimeout(ctx, e.quoteTimeout)
	defer cancel()

	market, err := e.quotes.MarketContext(qctx, symbol)
	if err != nil {
		e.metrics.RecordError("marketdata")
		if e.log != nil {
			e.log.Warn("market context unavailable",
				logger.String("symbol", symbol), logger.Error(err))
		}
		return nil
	}
	return market
}

// sortedInsiders returns the distinct insiders of a record set in a
// deterministic order, so repeated runs yield identical output.
func sortedInsiders(recs []models.TransactionRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range recs {
		if !seen[r.Insider] {
			seen[r.Insider] = true
			names = append(names, r.Insider)
		}
	}
	sort.Strings(names)
	return names
}

func sortSignals(sigs []models.Signal) {
	sort.SliceStable(sigs, func(i, j int) bool {
		if sigs[i].Score != sigs[j].Score {
			return sigs[i].Score > sigs[j].Score
		}
		if sigs[i].NetCash != sigs[j].NetCash {
			return sigs[i].NetCash > sigs[j].NetCash
		}
		if sigs[i].Symbol != sigs[j].Symbol {
			return sigs[i].Symbol < sigs[j].Symbol
		}
		return sigs[i].Insider < sigs[j].Insider
	})
}
