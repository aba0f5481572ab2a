package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SediPull/internal/domain/models"
)

func TestGateTriggerThresholdEdges(t *testing.T) {
	cfg := testScoring()
	g := NewGate(cfg)

	at := []models.Signal{buyer("A", cfg.EscalationTriggerScore, 50000, false)}
	below := []models.Signal{buyer("A", cfg.EscalationTriggerScore-1, 50000, false)}

	assert.True(t, g.ShouldEscalate(at, false), "exactly at the trigger escalates")
	assert.False(t, g.ShouldEscalate(below, false), "one point below does not")
}

func TestGateWatchlistAlwaysEscalates(t *testing.T) {
	g := NewGate(testScoring())

	assert.True(t, g.ShouldEscalate(nil, true), "watchlisted with zero qualifying signals still escalates")
	assert.False(t, g.ShouldEscalate(nil, false))
}

func TestGateIgnoresNetSellersForTrigger(t *testing.T) {
	cfg := testScoring()
	g := NewGate(cfg)

	seller := models.Signal{Score: cfg.EscalationTriggerScore + 10, NetCash: -1000}
	assert.False(t, g.ShouldEscalate([]models.Signal{seller}, false))
}

func TestGateMark(t *testing.T) {
	cfg := testScoring()
	g := NewGate(cfg)

	active := buyer("A", cfg.ActiveScore, 50000, false)
	weak := buyer("B", cfg.ActiveScore-1, 50000, false)
	watchedSell := models.Signal{Insider: "C", Score: 0, NetCash: -100, Watchlisted: true}

	out := g.Mark([]models.Signal{active, weak, watchedSell}, true)

	assert.Len(t, out, 2, "weak non-watchlisted signal dropped")
	assert.True(t, out[0].Escalated)
	assert.False(t, out[1].Escalated, "watchlisted sell is visible but not escalated")
}

func TestDisplayScoreMapping(t *testing.T) {
	cfg := testScoring()

	assert.GreaterOrEqual(t, DisplayScore(-1000, cfg), 0)
	assert.LessOrEqual(t, DisplayScore(1000, cfg), 100)
	assert.Equal(t, 50, DisplayScore(int(cfg.DisplayMidpoint), cfg))

	prev := -1
	for raw := -100; raw <= 300; raw += 10 {
		v := DisplayScore(raw, cfg)
		assert.GreaterOrEqual(t, v, prev, "sigmoid is monotone")
		prev = v
	}
}
