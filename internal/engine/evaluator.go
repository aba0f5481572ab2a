package engine

import (
	"fmt"
	"math"
	"strings"

	"SediPull/internal/domain/models"
	domrepo "SediPull/internal/domain/repository"
	"SediPull/pkg/config"
)

// Reason tags, appended in evaluation order. Insertion order is part of
// the Signal contract: downstream renderers rely on it and the consensus
// stage only ever appends.
const (
	ReasonAutoPlan     = "auto-plan"
	ReasonPrivate      = "private-placement"
	ReasonMarketBuy    = "market-buy"
	ReasonCommonShares = "common-shares"
	ReasonLargeSize    = "large-size"
	ReasonPremiumPaid  = "premium-paid"
	ReasonDeepDiscount = "deep-discount"
	ReasonUptrend      = "uptrend"
	ReasonTopInsider   = "top-insider"
	ReasonDilution     = "dilution-risk"
	ReasonNetSell      = "net-sell"
	ReasonRobot        = "robot-consensus"
)

// Evaluator aggregates one insider's qualifying transactions for one
// security into net cash flow and a raw conviction score.
type Evaluator struct {
	cfg        config.Scoring
	classifier *Classifier
	anomaly    *AnomalyFilter
	metrics    domrepo.Metrics
}

func NewEvaluator(cfg config.Scoring, classifier *Classifier, anomaly *AnomalyFilter, metrics domrepo.Metrics) *Evaluator {
	return &Evaluator{cfg: cfg, classifier: classifier, anomaly: anomaly, metrics: metrics}
}

// Evaluate scores one insider group. group must hold records for exactly
// one (security, insider) pair. Returns nil when the insider is noise: a
// net seller or a sub-minimum buyer on a security nobody watches. For
// watchlisted securities a Signal is returned even at score zero so that
// sells stay visible for monitored names.
func (e *Evaluator) Evaluate(group []models.TransactionRecord, watchlisted bool, market *models.MarketContext) *models.Signal {
	if len(group) == 0 {
		return nil
	}
	meta := group[0]

	var (
		buyVol, buyCost, sellProceeds float64
		isPlan, isPrivate, hasPublic  bool
		isCommon                      bool
		lastTx                        = meta.TxDate
	)

	for _, rec := range group {
		cat := e.classifier.Classify(rec.Code)
		if !cat.Qualifies() {
			continue
		}

		mult := 1.0
		if strings.Contains(rec.Currency, "USD") {
			mult = e.cfg.USDCADRate
		}
		absQty := math.Abs(rec.Quantity)
		cash := absQty * rec.Price * mult

		if reason, ok := e.anomaly.Check(rec, cash, market); !ok {
			e.metrics.RecordDropped(reason)
			continue
		}

		if rec.Quantity > 0 {
			buyCost += cash
			buyVol += absQty

			if rec.TxDate.After(lastTx) {
				lastTx = rec.TxDate
			}

			switch cat {
			case models.CategoryPlanBuy:
				isPlan = true
			case models.CategoryPrivateBuy:
				isPrivate = true
			case models.CategoryPublicBuy:
				hasPublic = true
				class := strings.ToLower(rec.SecurityClass)
				if strings.Contains(class, "common") || strings.Contains(class, "voting") {
					isCommon = true
				}
			}
		} else {
			sellProceeds += cash
		}
	}

	netCash := buyCost - sellProceeds

	// Net sellers and token buyers are noise unless the name is monitored.
	if !watchlisted {
		if netCash < 0 {
			return nil
		}
		if netCash < e.cfg.MinNetCash {
			return nil
		}
	}

	sig := models.Signal{
		Symbol:       meta.Symbol,
		Issuer:       meta.Issuer,
		Insider:      meta.Insider,
		Relationship: meta.Relationship,
		NetCash:      netCash,
		BuyVolume:    buyVol,
		Watchlisted:  watchlisted,
		LastTxDate:   lastTx,
		Market:       market,
		Plan:         isPlan,
	}
	if buyVol > 0 {
		sig.AvgPrice = buyCost / buyVol
	}

	if netCash <= 0 {
		sig.Reasons = append(sig.Reasons, ReasonNetSell)
		return &sig
	}

	score := 0
	reason := func(tag string, pts int) {
		score += pts
		sig.Reasons = append(sig.Reasons, tag)
	}

	// Base score by buy category, weakest claim first. A plan flag wins
	// over everything: an insider whose window includes automatic buys is
	// scored as routine even if other codes are present.
	switch {
	case isPlan:
		reason(ReasonAutoPlan, e.cfg.PlanBuy)
	case isPrivate:
		reason(ReasonPrivate, e.cfg.PrivateBuy)
	case hasPublic && isCommon:
		// Open-market purchase of common shares is the gold standard.
		reason(ReasonMarketBuy, 0)
		reason(ReasonCommonShares, e.cfg.PremiumCommonBuy)
	default:
		reason(ReasonMarketBuy, e.cfg.MarketBuy)
	}

	if market != nil && market.MarketCap > 0 {
		impact := netCash / market.MarketCap
		if impact > e.cfg.SignificantImpactRatio {
			reason(fmt.Sprintf("whale (%.2f%% of cap)", impact*100), e.cfg.SizeBonus*2)
		} else if netCash > e.cfg.LargeSize {
			reason(ReasonLargeSize, e.cfg.SizeBonus)
		}

		if hasPublic && buyVol > 0 && market.Price > 0 {
			discount := (market.Price - sig.AvgPrice) / market.Price
			if discount < -e.cfg.PremiumBand {
				// Paying above market is conviction, not carelessness.
				reason(ReasonPremiumPaid, e.cfg.PremiumBuyBonus)
			} else if discount > e.cfg.DiscountBand {
				// Deep discounts are typical of warrant-laden deals.
				reason(ReasonDeepDiscount, e.cfg.DiscountPenalty)
			}
		}

		if market.Price > market.MA50 {
			reason(ReasonUptrend, e.cfg.UptrendBonus)
		}
	} else if netCash > e.cfg.LargeSize {
		reason(ReasonLargeSize, e.cfg.SizeBonus)
	}

	if strings.Contains(meta.Relationship, "Director") || strings.Contains(meta.Relationship, "Officer") {
		reason(ReasonTopInsider, e.cfg.RankBonus)
	}

	if isPrivate {
		reason(ReasonDilution, e.cfg.DilutionPenalty)
	}

	sig.Score = score
	return &sig
}
