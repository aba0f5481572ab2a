package usecase

import (
	"context"
	"fmt"
	"time"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
)

// HistoryUseCase serves stored filing history for review tooling.
type HistoryUseCase struct {
	store domrepo.FilingStore
}

func NewHistoryUseCase(store domrepo.FilingStore) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

type GetFilingsParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetFilingsResult struct {
	Symbol  string                     `json:"symbol"`
	From    time.Time                  `json:"from"`
	To      time.Time                  `json:"to"`
	Count   int                        `json:"count"`
	Filings []models.TransactionRecord `json:"filings"`
}

func (uc *HistoryUseCase) GetFilings(ctx context.Context, p GetFilingsParams) (*GetFilingsResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.To.IsZero() {
		p.To = time.Now()
	}
	if p.From.IsZero() {
		p.From = p.To.AddDate(0, 0, -90)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	filings, err := uc.store.RecentFilings(ctx, p.Symbol, p.From)
	if err != nil {
		return nil, fmt.Errorf("get filings: %w", err)
	}

	// RecentFilings has no upper bound; trim here.
	trimmed := filings[:0]
	for _, f := range filings {
		if f.TxDate.After(p.To) {
			continue
		}
		trimmed = append(trimmed, f)
		if len(trimmed) >= p.Limit {
			break
		}
	}

	return &GetFilingsResult{
		Symbol:  p.Symbol,
		From:    p.From,
		To:      p.To,
		Count:   len(trimmed),
		Filings: trimmed,
	}, nil
}
