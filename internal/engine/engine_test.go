package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SediPull/internal/domain/models"
)

func TestAnalyzeRanksAcrossSecurities(t *testing.T) {
	e := testEngine(testScoring(), nil)

	recs := []models.TransactionRecord{
		rec("a1", "AAA", "Alice", "Director of Issuer", "10", 3, 60000, 1.00, "Common Shares"),
		rec("b1", "BBB", "Bob", "Shareholder", "30", 5, 12000, 6.00, "Common Shares"),
		rec("c1", "CCC", "Carol", "Officer of Issuer", "50", 2, 10000, 0.50, "Options"),
	}

	out := e.Analyze(context.Background(), recs, nil)

	require.Len(t, out, 2, "grant-only insider produces no signal")
	assert.Equal(t, "AAA", out[0].Symbol, "ranked by descending score")
	assert.Equal(t, "BBB", out[1].Symbol)
	assert.Greater(t, out[0].Score, out[1].Score)
	assert.True(t, out[1].Plan)

	for _, s := range out {
		assert.Equal(t, DisplayScore(s.Score, e.cfg), s.DisplayScore)
		assert.Equal(t, testNow, s.GeneratedAt)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	e := testEngine(testScoring(), nil)

	recs := []models.TransactionRecord{
		rec("a1", "AAA", "Alice", "Director of Issuer", "10", 3, 60000, 1.00, "Common Shares"),
		rec("a2", "AAA", "Ann", "Officer of Issuer", "10", 4, 40000, 1.50, "Common Shares"),
		rec("b1", "BBB", "Bob", "Director of Issuer", "11", 5, 120000, 0.50, "Common Shares"),
	}

	first := e.Analyze(context.Background(), recs, nil)
	second := e.Analyze(context.Background(), recs, nil)

	assert.Equal(t, first, second, "same batch, same clock, same output")
}

func TestAnalyzeDropsDuplicatesAndStale(t *testing.T) {
	e := testEngine(testScoring(), nil)

	fresh := rec("a1", "AAA", "Alice", "Director of Issuer", "10", 3, 60000, 1.00, "Common Shares")
	stale := rec("a2", "AAA", "Alice", "Director of Issuer", "10", 400, 500000, 1.00, "Common Shares")

	base := e.Analyze(context.Background(), []models.TransactionRecord{fresh}, nil)
	noisy := e.Analyze(context.Background(),
		[]models.TransactionRecord{fresh, fresh, fresh, stale}, nil)

	require.Len(t, base, 1)
	require.Len(t, noisy, 1)
	assert.Equal(t, base[0].Score, noisy[0].Score, "duplicates never inflate a position")
	assert.Equal(t, base[0].NetCash, noisy[0].NetCash)
}

func TestAnalyzeSecurityDegradesWithoutQuotes(t *testing.T) {
	quotes := &stubQuotes{err: errors.New("rate limited")}
	e := testEngine(testScoring(), quotes)

	recs := []models.TransactionRecord{
		rec("a1", "AAA", "Alice", "Director of Issuer", "10", 3, 60000, 1.00, "Common Shares"),
	}
	res := e.AnalyzeSecurity(context.Background(), "AAA", recs, false)

	assert.Equal(t, 1, quotes.calls)
	assert.Nil(t, res.Market)
	require.Len(t, res.Signals, 1, "scoring proceeds on context-free rules")
	assert.NotContains(t, res.Signals[0].Reasons, ReasonUptrend)
}

func TestAnalyzeSecurityAppliesMarketContext(t *testing.T) {
	quotes := &stubQuotes{mc: &models.MarketContext{
		Price:     1.10,
		MarketCap: 500_000_000,
		MA50:      0.90,
		Currency:  "CAD",
	}}
	e := testEngine(testScoring(), quotes)

	recs := []models.TransactionRecord{
		rec("a1", "AAA", "Alice", "Director of Issuer", "10", 3, 60000, 1.00, "Common Shares"),
	}
	res := e.AnalyzeSecurity(context.Background(), "AAA", recs, false)

	require.Len(t, res.Signals, 1)
	assert.Contains(t, res.Signals[0].Reasons, ReasonUptrend)
	assert.Same(t, quotes.mc, res.Market)
}

func TestAnalyzeSecurityEscalation(t *testing.T) {
	cfg := testScoring()
	e := testEngine(cfg, nil)

	// Premium common buy plus large size plus rank clears the trigger.
	hot := []models.TransactionRecord{
		rec("a1", "AAA", "Alice", "Director of Issuer", "10", 3, 60000, 1.00, "Common Shares"),
	}
	res := e.AnalyzeSecurity(context.Background(), "AAA", hot, false)
	require.Len(t, res.Signals, 1)
	assert.True(t, res.Escalated)
	assert.True(t, res.Signals[0].Escalated)

	// A lone plan buy never comes close.
	cold := []models.TransactionRecord{
		rec("b1", "BBB", "Bob", "Shareholder", "30", 5, 2000, 6.00, "Common Shares"),
	}
	res = e.AnalyzeSecurity(context.Background(), "BBB", cold, false)
	assert.False(t, res.Escalated)
}

func TestAnalyzeSecurityWatchlisted(t *testing.T) {
	e := testEngine(testScoring(), nil)

	recs := []models.TransactionRecord{
		rec("a1", "AAA", "Alice", "Shareholder", "10", 3, -5000, 1.00, "Common Shares"),
	}
	res := e.AnalyzeSecurity(context.Background(), "AAA", recs, true)

	assert.True(t, res.Escalated, "watchlisted names always escalate")
	require.Len(t, res.Signals, 1, "watchlisted net-seller stays visible")
	assert.False(t, res.Signals[0].Escalated, "but a sell is never marked for analysis")
}

func TestAnalyzeWatchlistLookup(t *testing.T) {
	e := testEngine(testScoring(), nil)

	recs := []models.TransactionRecord{
		rec("a1", "AAA", "Alice", "Shareholder", "10", 3, 1000, 1.00, "Common Shares"),
	}
	watched := e.Analyze(context.Background(), recs, map[string]bool{"AAA": true})
	unwatched := e.Analyze(context.Background(), recs, nil)

	require.Len(t, watched, 1, "small buy survives only on the watchlist")
	assert.True(t, watched[0].Watchlisted)
	assert.Empty(t, unwatched)
}
