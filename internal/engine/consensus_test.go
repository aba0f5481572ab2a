package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SediPull/internal/domain/models"
)

func buyer(insider string, score int, netCash float64, plan bool) models.Signal {
	return models.Signal{
		Symbol:  "XYZ",
		Insider: insider,
		Score:   score,
		NetCash: netCash,
		Plan:    plan,
		Reasons: []string{ReasonMarketBuy},
	}
}

func TestConsensusSingleBuyerUnchanged(t *testing.T) {
	c := NewConsensus(testScoring())
	in := []models.Signal{buyer("A", 80, 100000, false)}

	out := c.Adjust(in)
	require.Len(t, out, 1)
	assert.Equal(t, 80, out[0].Score)
	assert.Equal(t, []string{ReasonMarketBuy}, out[0].Reasons)
}

func TestConsensusBonusAndMonotonicity(t *testing.T) {
	cfg := testScoring()
	c := NewConsensus(cfg)

	// Adding one more non-plan buyer never decreases any existing buyer's
	// adjusted score; the multiplier is >= 1 and capped.
	prev := 0
	for n := 2; n <= 15; n++ {
		var in []models.Signal
		for i := 0; i < n; i++ {
			in = append(in, buyer(fmt.Sprintf("ins-%d", i), 50, 50000, false))
		}
		out := c.Adjust(in)
		require.Len(t, out, n)

		assert.GreaterOrEqual(t, out[0].Score, 50, "multiplier is never below 1")
		assert.GreaterOrEqual(t, out[0].Score, prev, "adding a buyer never lowers scores")
		assert.LessOrEqual(t, float64(out[0].Score), 50*(1+cfg.ClusterCap)+1, "cap bounds inflation")
		assert.Equal(t, fmt.Sprintf("consensus (%d)", n), out[0].Reasons[len(out[0].Reasons)-1])
		prev = out[0].Score
	}
}

func TestConsensusRobotDampening(t *testing.T) {
	cfg := testScoring()
	c := NewConsensus(cfg)

	// 3 of 4 buying insiders are plan buys: every buying signal takes the
	// penalty path, none the bonus path.
	in := []models.Signal{
		buyer("plan-1", 20, 10000, true),
		buyer("plan-2", 20, 10000, true),
		buyer("plan-3", 20, 10000, true),
		buyer("organic", 80, 100000, false),
	}
	out := c.Adjust(in)

	for _, s := range out {
		last := s.Reasons[len(s.Reasons)-1]
		assert.Equal(t, ReasonRobot, last, "insider %s", s.Insider)
		assert.NotContains(t, last, "consensus (")
	}
	assert.Equal(t, 80+cfg.ClusterPenalty, out[3].Score)
}

func TestConsensusExactHalfPlanIsNotRobot(t *testing.T) {
	c := NewConsensus(testScoring())
	in := []models.Signal{
		buyer("plan-1", 20, 10000, true),
		buyer("organic", 80, 100000, false),
	}
	out := c.Adjust(in)
	assert.Contains(t, out[1].Reasons[len(out[1].Reasons)-1], "consensus (2)")
}

func TestConsensusDoesNotMutateInput(t *testing.T) {
	c := NewConsensus(testScoring())
	in := []models.Signal{
		buyer("A", 50, 50000, false),
		buyer("B", 50, 50000, false),
	}
	_ = c.Adjust(in)

	assert.Equal(t, 50, in[0].Score, "evaluator output must stay untouched")
	assert.Len(t, in[0].Reasons, 1)
}

func TestConsensusSkipsNetSellers(t *testing.T) {
	c := NewConsensus(testScoring())
	seller := models.Signal{Symbol: "XYZ", Insider: "S", Score: 0, NetCash: -5000, Reasons: []string{ReasonNetSell}}
	in := []models.Signal{
		buyer("A", 50, 50000, false),
		buyer("B", 50, 50000, false),
		seller,
	}
	out := c.Adjust(in)
	assert.Equal(t, 0, out[2].Score)
	assert.Equal(t, []string{ReasonNetSell}, out[2].Reasons)
}
