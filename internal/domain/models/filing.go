package models

import "time"

// TransactionRecord is one normalized insider filing. Immutable once built
// by the normalizer; the engine never writes to it.
type TransactionRecord struct {
	ID            string
	Symbol        string
	Issuer        string
	IssuerNumber  string
	Insider       string
	Relationship  string
	Code          string // leading token of the type field, e.g. "10"
	TxDate        time.Time
	FilingDate    time.Time
	Quantity      float64 // signed: positive acquired, negative disposed
	Price         float64
	Currency      string
	SecurityClass string // e.g. "Common Shares", "Units", "Options"
	Balance       float64 // post-transaction holdings
	ScrapedAt     time.Time
}

// MarketContext is a point-in-time quote snapshot for a security. A nil
// context means degraded mode: the engine skips market-dependent rules.
type MarketContext struct {
	Price     float64
	Volume    float64
	AvgVolume float64
	MarketCap float64
	MA50      float64
	MA200     float64
	High52W   float64
	Low52W    float64
	Currency  string
}

// Category is the semantic class of a transaction code.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryPublicBuy
	CategoryPrivateBuy
	CategoryPlanBuy
	CategoryExercise
	CategoryGrant
	CategoryNoise
)

func (c Category) String() string {
	switch c {
	case CategoryPublicBuy:
		return "public_buy"
	case CategoryPrivateBuy:
		return "private_buy"
	case CategoryPlanBuy:
		return "plan_buy"
	case CategoryExercise:
		return "exercise"
	case CategoryGrant:
		return "grant"
	case CategoryNoise:
		return "noise"
	default:
		return "unknown"
	}
}

// Qualifies reports whether records of this category may contribute to
// cash aggregation. Grants are unpaid compensation and noise codes carry
// no conviction, so both are excluded.
func (c Category) Qualifies() bool {
	return c != CategoryGrant && c != CategoryNoise && c != CategoryUnknown
}

// Signal is the engine's output for one (security, insider) pair.
// Reasons is append-only and keeps evaluation order. The consensus
// adjuster and escalation gate return adjusted copies; a Signal handed to
// the caller is never mutated afterwards.
type Signal struct {
	Symbol       string
	Issuer       string
	Insider      string
	Relationship string
	Score        int
	DisplayScore int // sigmoid-normalized presentation score in [0,100]
	NetCash      float64
	BuyVolume    float64
	AvgPrice     float64
	Reasons      []string
	Plan         bool // dominant buy category was an automatic plan purchase
	Watchlisted  bool
	Escalated    bool
	LastTxDate   time.Time
	Market       *MarketContext
	Commentary   string // opaque annotation attached by the escalation step
	GeneratedAt  time.Time
}

// WithScore returns a copy with an adjusted score and one appended reason.
func (s Signal) WithScore(score int, reason string) Signal {
	out := s
	out.Score = score
	out.Reasons = append(append([]string(nil), s.Reasons...), reason)
	return out
}

// ScanResult is everything one run produced for one security.
type ScanResult struct {
	Symbol    string
	Signals   []Signal
	Escalated bool
	Market    *MarketContext
}
