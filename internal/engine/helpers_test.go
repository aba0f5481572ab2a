package engine

import (
	"context"
	"time"

	"SediPull/internal/domain/models"
	"SediPull/pkg/config"
)

// Fixed clock so lookback filtering is deterministic in tests.
var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func testScoring() config.Scoring {
	return config.Default().Scoring
}

func testEngine(cfg config.Scoring, quotes *stubQuotes) *Engine {
	var e *Engine
	if quotes == nil {
		e = New(cfg, nil, nil, nil)
	} else {
		e = New(cfg, quotes, nil, nil)
	}
	e.now = func() time.Time { return testNow }
	return e
}

type stubQuotes struct {
	mc    *models.MarketContext
	err   error
	calls int
}

func (s *stubQuotes) MarketContext(_ context.Context, _ string) (*models.MarketContext, error) {
	s.calls++
	return s.mc, s.err
}

func rec(id, symbol, insider, relationship, code string, daysAgo int, qty, price float64, class string) models.TransactionRecord {
	return models.TransactionRecord{
		ID:            id,
		Symbol:        symbol,
		Insider:       insider,
		Relationship:  relationship,
		Code:          code,
		TxDate:        testNow.AddDate(0, 0, -daysAgo),
		Quantity:      qty,
		Price:         price,
		Currency:      "CAD",
		SecurityClass: class,
	}
}
