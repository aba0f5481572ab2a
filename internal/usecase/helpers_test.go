package usecase

import (
	"context"
	"sync"
	"time"

	"SediPull/internal/domain/models"
	"SediPull/pkg/logger"
)

func testLogger() *logger.Logger {
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return l
}

// fakeStore implements repository.FilingStore in memory.
type fakeStore struct {
	mu       sync.Mutex
	filings  []models.TransactionRecord
	signals  []models.Signal
	newCount int
	saveErr  error
}

func (s *fakeStore) Init(context.Context) error { return nil }

func (s *fakeStore) SaveFilings(_ context.Context, recs []models.TransactionRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	s.filings = append(s.filings, recs...)
	return s.newCount, nil
}

func (s *fakeStore) RecentFilings(_ context.Context, symbol string, since time.Time) ([]models.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TransactionRecord
	for _, r := range s.filings {
		if r.Symbol == symbol && !r.TxDate.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveSignals(_ context.Context, sigs []models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, sigs...)
	return nil
}

func (s *fakeStore) LatestSignals(_ context.Context, symbol string, limit int) ([]models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Signal
	for _, sig := range s.signals {
		if symbol == "" || sig.Symbol == symbol {
			out = append(out, sig)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

func filing(id, symbol, insider, relationship, code string, daysAgo int, qty, price float64) models.TransactionRecord {
	return models.TransactionRecord{
		ID:            id,
		Symbol:        symbol,
		Insider:       insider,
		Relationship:  relationship,
		Code:          code,
		TxDate:        time.Now().AddDate(0, 0, -daysAgo),
		Quantity:      qty,
		Price:         price,
		Currency:      "CAD",
		SecurityClass: "Common Shares",
	}
}

// fakeQueue records published scan tasks.
type fakeQueue struct {
	mu       sync.Mutex
	messages []queuedMessage
	err      error
}

type queuedMessage struct {
	Type    string
	Payload interface{}
}

func (q *fakeQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.messages = append(q.messages, queuedMessage{Type: msgType, Payload: payload})
	return nil
}

func (q *fakeQueue) symbols() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []string
	for _, m := range q.messages {
		if task, ok := m.Payload.(ScanTask); ok {
			out = append(out, task.Symbol)
		}
	}
	return out
}
