package engine

import (
	"math"

	"SediPull/internal/domain/models"
	"SediPull/pkg/config"
)

// Drop reasons reported to metrics when a record fails a sanity check.
const (
	DropCollision   = "price_vol_collision"
	DropPriceSanity = "price_sanity"
	DropCapSanity   = "cap_sanity"
)

// AnomalyFilter rejects individually corrupted records before they can
// contribute to any aggregate. A single bad record can distort an entire
// insider's score, so either failing check disqualifies the record
// outright. These are heuristics: a real extreme trade tripping them is an
// accepted cost.
type AnomalyFilter struct {
	cfg config.Scoring
}

func NewAnomalyFilter(cfg config.Scoring) *AnomalyFilter {
	return &AnomalyFilter{cfg: cfg}
}

// Check returns ("", true) if the record may be aggregated, or the drop
// reason and false otherwise. cash must already be currency-converted.
func (f *AnomalyFilter) Check(rec models.TransactionRecord, cash float64, market *models.MarketContext) (string, bool) {
	absQty := math.Abs(rec.Quantity)

	// Digit-transposition corruption: a price field populated with the
	// volume value (price 29906 against volume 29906).
	if math.Abs(rec.Price-absQty) < f.cfg.PriceVolTolerance && rec.Price > f.cfg.CollisionPriceFloor {
		return DropCollision, false
	}

	if market == nil {
		return "", true
	}

	// A unit price several multiples above the live quote is a
	// transcription error, not a trade.
	if market.Price > 0 && rec.Price > market.Price*f.cfg.MaxPriceDiscrepancy {
		return DropPriceSanity, false
	}

	// Same for a single transaction worth a large fraction of the
	// company's entire market cap.
	if market.MarketCap > 0 && cash > market.MarketCap*f.cfg.MaxCapImpact {
		return DropCapSanity, false
	}

	return "", true
}
