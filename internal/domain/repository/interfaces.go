package repository

import (
	"context"
	"time"

	"SediPull/internal/domain/models"
)

// AlertStream delivers new-filing alerts for securities as they are
// disclosed upstream.
type AlertStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.FilingAlert, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// FilingStore persists normalized filings and scored signals. It also owns
// the durable dedup set: SaveFilings must report how many records were new.
type FilingStore interface {
	Init(ctx context.Context) error
	SaveFilings(ctx context.Context, recs []models.TransactionRecord) (int, error)
	RecentFilings(ctx context.Context, symbol string, since time.Time) ([]models.TransactionRecord, error)
	SaveSignals(ctx context.Context, sigs []models.Signal) error
	LatestSignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher hands scored signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, sig models.Signal) error
	PublishBatch(ctx context.Context, sigs []models.Signal) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordFilingIngested(symbol string)
	RecordDropped(reason string)
	RecordSignal(symbol string, score int)
	RecordEscalation(symbol string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
