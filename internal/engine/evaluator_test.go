package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
)

func newTestEvaluator() *Evaluator {
	cfg := testScoring()
	cl := NewClassifier(cfg.Codes)
	return NewEvaluator(cfg, cl, NewAnomalyFilter(cfg), domrepo.NopMetrics{})
}

func TestEvaluateDirectorPublicCommonBuy(t *testing.T) {
	// The canonical scenario: 10,000 shares at $17.50 on the open market,
	// common shares, director, no market context.
	cfg := testScoring()
	ev := newTestEvaluator()

	group := []models.TransactionRecord{
		rec("t1", "T.TO", "Darren Entwistle", "5 - Senior Officer, Director", "10", 3, 10000, 17.50, "Common Shares"),
	}
	sig := ev.Evaluate(group, false, nil)
	require.NotNil(t, sig)

	assert.Equal(t, 175000.0, sig.NetCash)
	want := cfg.PremiumCommonBuy + cfg.SizeBonus + cfg.RankBonus
	assert.Equal(t, want, sig.Score)
	assert.Equal(t, []string{ReasonMarketBuy, ReasonCommonShares, ReasonLargeSize, ReasonTopInsider}, sig.Reasons)
	assert.False(t, sig.Plan)
}

func TestEvaluateNetSellerYieldsNothingUnlessWatchlisted(t *testing.T) {
	ev := newTestEvaluator()
	group := []models.TransactionRecord{
		rec("s1", "SUNN", "Paper Hands", "4 - Director", "10", 2, -5000, 1.50, "Common Shares"),
	}

	assert.Nil(t, ev.Evaluate(group, false, nil), "net sellers are noise")

	sig := ev.Evaluate(group, true, nil)
	require.NotNil(t, sig, "watchlisted names keep sells visible")
	assert.Equal(t, 0, sig.Score)
	assert.Less(t, sig.NetCash, 0.0)
	assert.Equal(t, []string{ReasonNetSell}, sig.Reasons)
}

func TestEvaluateSmallBuyerFilteredUnlessWatchlisted(t *testing.T) {
	ev := newTestEvaluator()
	group := []models.TransactionRecord{
		rec("b1", "XYZ", "Tiny", "", "10", 2, 1000, 1.0, "Common Shares"), // $1k < min
	}
	assert.Nil(t, ev.Evaluate(group, false, nil))
	assert.NotNil(t, ev.Evaluate(group, true, nil))
}

func TestEvaluateGrantsAndNoiseNeverContribute(t *testing.T) {
	ev := newTestEvaluator()
	group := []models.TransactionRecord{
		rec("g1", "T.TO", "Mario Mele", "5 - Senior Officer", "56", 4, 5000, 10, "RSU"),
		rec("g2", "T.TO", "Mario Mele", "5 - Senior Officer", "90", 4, 9000, 10, "Common Shares"),
	}
	assert.Nil(t, ev.Evaluate(group, false, nil), "grant plus noise is zero qualifying cash")

	sig := ev.Evaluate(group, true, nil)
	require.NotNil(t, sig)
	assert.Zero(t, sig.NetCash)
}

func TestEvaluatePlanBuyDominatesBase(t *testing.T) {
	cfg := testScoring()
	ev := newTestEvaluator()
	group := []models.TransactionRecord{
		rec("p1", "XYZ", "Routine", "", "30", 2, 20000, 1.0, "Common Shares"),
		rec("p2", "XYZ", "Routine", "", "10", 3, 20000, 1.0, "Common Shares"),
	}
	sig := ev.Evaluate(group, false, nil)
	require.NotNil(t, sig)
	assert.True(t, sig.Plan)
	assert.Contains(t, sig.Reasons, ReasonAutoPlan)
	assert.NotContains(t, sig.Reasons, ReasonCommonShares)
	assert.Equal(t, cfg.PlanBuy, sig.Score, "plan base with no other bonuses at this size")
}

func TestEvaluatePrivatePlacementCarriesDilutionPenalty(t *testing.T) {
	cfg := testScoring()
	ev := newTestEvaluator()
	group := []models.TransactionRecord{
		rec("v1", "XYZ", "Backer", "", "16", 2, 120000, 0.50, "Units"),
	}
	sig := ev.Evaluate(group, false, nil)
	require.NotNil(t, sig)
	assert.Equal(t, cfg.PrivateBuy+cfg.SizeBonus+cfg.DilutionPenalty, sig.Score)
	assert.Equal(t, []string{ReasonPrivate, ReasonLargeSize, ReasonDilution}, sig.Reasons)
}

func TestEvaluateMarketContextModifiers(t *testing.T) {
	cfg := testScoring()
	ev := newTestEvaluator()
	market := &models.MarketContext{Price: 1.00, MarketCap: 10e6, MA50: 0.80}

	// netCash 100k on a $10M cap = 1% impact: whale, and price paid at a
	// 10% premium over market while trending up.
	group := []models.TransactionRecord{
		rec("m1", "XYZ", "Whale", "", "10", 2, 90909, 1.10, "Common Shares"),
	}
	sig := ev.Evaluate(group, false, market)
	require.NotNil(t, sig)

	want := cfg.PremiumCommonBuy + cfg.SizeBonus*2 + cfg.PremiumBuyBonus + cfg.UptrendBonus
	assert.Equal(t, want, sig.Score)
	assert.Contains(t, sig.Reasons[2], "whale")
	assert.Contains(t, sig.Reasons, ReasonPremiumPaid)
	assert.Contains(t, sig.Reasons, ReasonUptrend)
}

func TestEvaluateDeepDiscountPenalty(t *testing.T) {
	cfg := testScoring()
	ev := newTestEvaluator()
	// Big cap so the buy is neither whale nor large relative thresholds.
	market := &models.MarketContext{Price: 10.0, MarketCap: 100e9, MA50: 11.0}

	group := []models.TransactionRecord{
		rec("d1", "XYZ", "Bargain", "", "10", 2, 2000, 5.0, "Common Shares"), // 50% below market
	}
	sig := ev.Evaluate(group, true, market)
	require.NotNil(t, sig)
	assert.Equal(t, cfg.PremiumCommonBuy+cfg.DiscountPenalty, sig.Score)
	assert.Contains(t, sig.Reasons, ReasonDeepDiscount)
}

func TestEvaluateUSDConversion(t *testing.T) {
	cfg := testScoring()
	ev := newTestEvaluator()
	r := rec("u1", "XYZ", "Cross Border", "", "10", 2, 10000, 1.0, "Common Shares")
	r.Currency = "USD"

	sig := ev.Evaluate([]models.TransactionRecord{r}, false, nil)
	require.NotNil(t, sig)
	assert.InDelta(t, 10000*cfg.USDCADRate, sig.NetCash, 1e-9)
}

func TestEvaluateCorruptedRecordExcludedFromAggregates(t *testing.T) {
	ev := newTestEvaluator()
	good := rec("ok", "XYZ", "Mixed", "", "10", 2, 10000, 1.0, "Common Shares")
	corrupt := rec("bad", "XYZ", "Mixed", "", "10", 2, 29906, 29906, "Common Shares")

	sig := ev.Evaluate([]models.TransactionRecord{good, corrupt}, false, nil)
	require.NotNil(t, sig)
	assert.Equal(t, 10000.0, sig.NetCash, "collision record must not reach buyCost")
	assert.Equal(t, 10000.0, sig.BuyVolume)
}
