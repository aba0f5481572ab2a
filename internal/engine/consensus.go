package engine

import (
	"fmt"
	"math"

	"SediPull/internal/domain/models"
	"SediPull/pkg/config"
)

// Consensus re-weights one security's signals based on how many insiders
// are buying and whether that buying looks organic. It is a value
// transformation: adjusted copies are returned and the evaluator's output
// is never touched.
type Consensus struct {
	cfg config.Scoring
}

func NewConsensus(cfg config.Scoring) *Consensus {
	return &Consensus{cfg: cfg}
}

// buyers returns the signals that count as genuine buying interest for
// consensus purposes, and how many of those are plan-driven.
func (c *Consensus) buyers(sigs []models.Signal) (total, plan int) {
	for _, s := range sigs {
		if s.Score <= 0 || s.NetCash <= 0 {
			continue
		}
		if s.NetCash > c.cfg.BuyerMinNetCash || s.Score > c.cfg.BuyerMinScore {
			total++
			if s.Plan {
				plan++
			}
		}
	}
	return total, plan
}

// Adjust applies the cluster logic across all of one security's signals.
// With a single buyer nothing changes. With several, a plan-buy majority
// means the synchronization is mechanical, not informed, and every buying
// signal takes a fixed penalty; otherwise each buying signal gets a capped
// multiplicative bonus. Each adjustment appends its own reason tag.
func (c *Consensus) Adjust(sigs []models.Signal) []models.Signal {
	out := make([]models.Signal, len(sigs))
	copy(out, sigs)

	total, plan := c.buyers(sigs)
	if total <= 1 {
		return out
	}

	robot := float64(plan)/float64(total) > c.cfg.PlanMajority
	multiplier := 1 + math.Min(float64(total-1)*c.cfg.ClusterStep, c.cfg.ClusterCap)

	for i, s := range out {
		if s.NetCash <= 0 || s.Score <= 0 {
			continue
		}
		if robot {
			out[i] = s.WithScore(s.Score+c.cfg.ClusterPenalty, ReasonRobot)
		} else {
			adjusted := int(math.Round(float64(s.Score) * multiplier))
			out[i] = s.WithScore(adjusted, fmt.Sprintf("consensus (%d)", total))
		}
	}
	return out
}
