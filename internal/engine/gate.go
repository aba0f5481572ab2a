package engine

import (
	"SediPull/internal/domain/models"
	"SediPull/pkg/config"
)

// Gate decides whether a security warrants the expensive downstream
// analysis step. It is a pure predicate over already-adjusted signals;
// fetching news and commentary is the escalation collaborator's job.
type Gate struct {
	cfg config.Scoring
}

func NewGate(cfg config.Scoring) *Gate {
	return &Gate{cfg: cfg}
}

// maxBuyScore is the top score among positive, net-buying signals.
func (g *Gate) maxBuyScore(sigs []models.Signal) int {
	max := 0
	for _, s := range sigs {
		if s.Score > max && s.NetCash > 0 {
			max = s.Score
		}
	}
	return max
}

// ShouldEscalate reports whether the security crosses the deep-analysis
// trigger. Watchlisted names always escalate, even with no qualifying
// signals at all.
func (g *Gate) ShouldEscalate(sigs []models.Signal, watchlisted bool) bool {
	if watchlisted {
		return true
	}
	return g.maxBuyScore(sigs) >= g.cfg.EscalationTriggerScore
}

// Mark returns copies of the active signals flagged for downstream
// analysis. Active means a positive net-buying signal above the activity
// floor; a watchlisted signal is always kept visible.
func (g *Gate) Mark(sigs []models.Signal, escalate bool) []models.Signal {
	out := make([]models.Signal, 0, len(sigs))
	for _, s := range sigs {
		active := s.Score >= g.cfg.ActiveScore && s.NetCash > 0
		if !active && !s.Watchlisted {
			continue
		}
		s.Escalated = escalate && active
		out = append(out, s)
	}
	return out
}
