package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
	domsvc "SediPull/internal/domain/service"
)

// SymbolOverview is the combined read-side view for one security: the
// latest stored signals, the current filing window and a quote snapshot.
type SymbolOverview struct {
	Symbol    string                `json:"symbol"`
	Signals   []models.Signal       `json:"signals"`
	Filings   int                   `json:"filings_in_window"`
	Market    *models.MarketContext `json:"market,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
	Errors    map[string]string     `json:"errors,omitempty"`
}

// OverviewUseCase fans out the three independent lookups and tolerates
// partial failure: whichever sources respond populate the view, the
// rest land in Errors.
type OverviewUseCase struct {
	store    domrepo.FilingStore
	quotes   domsvc.MarketDataProvider
	lookback int
	timeout  time.Duration
}

func NewOverviewUseCase(store domrepo.FilingStore, quotes domsvc.MarketDataProvider, lookbackDays int) *OverviewUseCase {
	return &OverviewUseCase{store: store, quotes: quotes, lookback: lookbackDays, timeout: 10 * time.Second}
}

type GetOverviewParams struct {
	Symbol string
	Limit  int
}

func (uc *OverviewUseCase) GetOverview(ctx context.Context, p GetOverviewParams) (*SymbolOverview, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &SymbolOverview{
		Symbol:    p.Symbol,
		Timestamp: time.Now(),
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.store.LatestSignals(ctx, p.Symbol, p.Limit)
		ch <- item{"signals", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		since := time.Now().AddDate(0, 0, -uc.lookback)
		v, err := uc.store.RecentFilings(ctx, p.Symbol, since)
		ch <- item{"filings", v, err}
	}()
	if uc.quotes != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := uc.quotes.MarketContext(ctx, p.Symbol)
			ch <- item{"market", v, err}
		}()
	}

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "signals":
			res.Signals = it.val.([]models.Signal)
		case "filings":
			res.Filings = len(it.val.([]models.TransactionRecord))
		case "market":
			if mc, ok := it.val.(*models.MarketContext); ok {
				res.Market = mc
			}
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
