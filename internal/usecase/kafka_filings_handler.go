package usecase

import (
	"context"
	"encoding/json"
	"time"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
	"SediPull/internal/engine"
	pkgkafka "SediPull/pkg/kafka"
	"SediPull/pkg/logger"
	"SediPull/pkg/queue"
)

// KafkaFilingsHandler consumes raw filing batches from the ingest topic,
// normalizes them, persists the new ones and queues a rescan for every
// security that actually gained records. Replayed batches are absorbed by
// the store's dedup set and queue nothing.
type KafkaFilingsHandler struct {
	topic   string
	store   domrepo.FilingStore
	queue   queue.QueueService
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewKafkaFilingsHandler(
	topic string,
	store domrepo.FilingStore,
	q queue.QueueService,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *KafkaFilingsHandler {
	return &KafkaFilingsHandler{topic: topic, store: store, queue: q, metrics: metrics, log: log}
}

func (h *KafkaFilingsHandler) Topic() string { return h.topic }

// Handle accepts either a JSON array of raw filings or a single object.
func (h *KafkaFilingsHandler) Handle(ctx context.Context, b []byte) error {
	raws, err := decodeRawFilings(b)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if len(raws) == 0 {
		return nil
	}

	recs := engine.NormalizeBatch(raws, time.Now())
	if len(recs) == 0 {
		h.metrics.RecordDropped("no_transaction_id")
		return nil
	}

	start := time.Now()
	newCount, err := h.store.SaveFilings(ctx, recs)
	h.metrics.RecordLatency("filing_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	if newCount == 0 {
		return nil
	}

	for _, rec := range recs {
		h.metrics.RecordFilingIngested(rec.Symbol)
	}

	for _, symbol := range distinctSymbols(recs) {
		if err := h.queue.PublishMessage(ctx, ScanTaskType, ScanTask{Symbol: symbol}); err != nil {
			h.metrics.RecordError("scan_enqueue")
			h.log.Error("scan enqueue failed",
				logger.String("symbol", symbol), logger.Error(err))
		}
	}

	h.log.Debug("filings ingested",
		logger.Int("received", len(recs)),
		logger.Int("new", newCount))
	return nil
}

func decodeRawFilings(b []byte) ([]engine.RawFiling, error) {
	var raws []engine.RawFiling
	if err := json.Unmarshal(b, &raws); err == nil {
		return raws, nil
	}
	var one engine.RawFiling
	if err := json.Unmarshal(b, &one); err != nil {
		return nil, err
	}
	return []engine.RawFiling{one}, nil
}

func distinctSymbols(recs []models.TransactionRecord) []string {
	seen := make(map[string]bool, len(recs))
	var out []string
	for _, r := range recs {
		if r.Symbol == "" || seen[r.Symbol] {
			continue
		}
		seen[r.Symbol] = true
		out = append(out, r.Symbol)
	}
	return out
}

var _ pkgkafka.MessageHandler = (*KafkaFilingsHandler)(nil)
